package crf

import (
	"testing"

	"github.com/qcodec/qcodec/internal/config"
)

func baseConfig() Config {
	return Config{
		VMAFMin:          90,
		VMAFMax:          93,
		OffsetThreshold:  5,
		OffsetMultiplier: 1.3,
		OffsetMode:       config.OffsetThreshold,
		MaxAttempts:      10,
		InitialStep:      1,
	}
}

func TestAcceptWithinWindow(t *testing.T) {
	state := NewState(42, 1)
	decision, _ := Next(state, 91, baseConfig())
	if decision != Accept {
		t.Errorf("Next() = %v, want Accept", decision)
	}
}

func TestAcceptAtBoundaries(t *testing.T) {
	cfg := baseConfig()
	state := NewState(42, 1)

	if d, _ := Next(state, cfg.VMAFMin, cfg); d != Accept {
		t.Errorf("vmaf == vmaf_min: Next() = %v, want Accept", d)
	}
	if d, _ := Next(state, cfg.VMAFMax, cfg); d != Accept {
		t.Errorf("vmaf == vmaf_max: Next() = %v, want Accept", d)
	}
}

func TestMultiplierForcedBySevereDeviation(t *testing.T) {
	// S2: crf=44, vmaf=70, vmaf_min=90 -> deviation 20, forced multiplier
	// even though the config selects THRESHOLD mode.
	cfg := baseConfig()
	state := NewState(44, 1)

	decision, next := Next(state, 70, cfg)
	if decision != Retry {
		t.Fatalf("Next() decision = %v, want Retry", decision)
	}
	wantCRF := int32(44 - (1 + int(20*1.3)))
	if next.CRF != wantCRF {
		t.Errorf("next.CRF = %d, want %d", next.CRF, wantCRF)
	}
	if next.Attempt != state.Attempt+1 {
		t.Errorf("next.Attempt = %d, want %d", next.Attempt, state.Attempt+1)
	}
}

func TestClampProducesSkip(t *testing.T) {
	// S4: initial_crf=2, initial_crf_step=5, vmaf below window by less
	// than the forced-multiplier threshold so step stays at 5; crf-5 = -3
	// falls outside [1,63].
	cfg := baseConfig()
	cfg.OffsetThreshold = 100 // keeps floor(d/threshold) at 0 for small d
	cfg.InitialStep = 5
	state := NewState(2, 5)

	decision, unchanged := Next(state, cfg.VMAFMin-1, cfg)
	if decision != Skip {
		t.Fatalf("Next() decision = %v, want Skip", decision)
	}
	if unchanged != state {
		t.Errorf("Skip must not mutate state, got %+v", unchanged)
	}
}

func TestExhaustedAtMaxAttempts(t *testing.T) {
	// Exhaustion is gated at step 7 (after the clamp check), not as a
	// precondition before Accept: a would-be Retry whose CRF stays within
	// [1,63] only becomes Exhausted once one more attempt would exceed
	// max_attempts, so this fixture keeps the deviation small enough that
	// the clamp never fires first.
	cfg := baseConfig()
	cfg.MaxAttempts = 3
	state := State{CRF: 30, Step: 1, Attempt: 2}

	decision, _ := Next(state, cfg.VMAFMin-1, cfg)
	if decision != Exhausted {
		t.Errorf("Next() decision = %v, want Exhausted", decision)
	}
}

func TestExactlyMaxAttemptsEncodes(t *testing.T) {
	// spec.md §8 S3: exactly max_attempts encodes total. A vmaf that would
	// land inside the window on the final allowed attempt must still
	// Accept, never be downgraded to Exhausted just for being the last one.
	cfg := baseConfig()
	cfg.MaxAttempts = 3
	state := State{CRF: 30, Step: 1, Attempt: 2}

	decision, _ := Next(state, cfg.VMAFMin, cfg)
	if decision != Accept {
		t.Errorf("Next() decision = %v, want Accept on the final allowed attempt", decision)
	}
}

func TestRetryAllowedBelowMaxAttempts(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxAttempts = 3
	state := State{CRF: 30, Step: 1, Attempt: 1}

	decision, next := Next(state, cfg.VMAFMin-1, cfg)
	if decision != Retry {
		t.Fatalf("Next() decision = %v, want Retry", decision)
	}
	if next.Attempt != 2 {
		t.Errorf("next.Attempt = %d, want 2", next.Attempt)
	}
}

func TestRetryMovesAtLeastInitialStep(t *testing.T) {
	cfg := baseConfig()
	state := NewState(40, 2)

	// Small deviation below the window: threshold mode may contribute 0,
	// but the base step still moves the CRF by at least initial_crf_step.
	decision, next := Next(state, cfg.VMAFMin-1, cfg)
	if decision != Retry {
		t.Fatalf("Next() decision = %v, want Retry", decision)
	}
	delta := state.CRF - next.CRF
	if delta < int32(cfg.InitialStep) {
		t.Errorf("CRF moved by %d, want >= %d", delta, cfg.InitialStep)
	}
	if next.CRF < 1 || next.CRF > 63 {
		t.Errorf("next.CRF = %d, want within [1,63]", next.CRF)
	}
}

func TestRetryDirection(t *testing.T) {
	cfg := baseConfig()
	state := NewState(40, 1)

	// Below window -> CRF should decrease (higher quality).
	_, lower := Next(state, cfg.VMAFMin-2, cfg)
	if lower.CRF >= state.CRF {
		t.Errorf("vmaf below window: CRF should decrease, got %d -> %d", state.CRF, lower.CRF)
	}

	// Above window -> CRF should increase (lower quality, smaller file).
	_, higher := Next(state, cfg.VMAFMax+2, cfg)
	if higher.CRF <= state.CRF {
		t.Errorf("vmaf above window: CRF should increase, got %d -> %d", state.CRF, higher.CRF)
	}
}
