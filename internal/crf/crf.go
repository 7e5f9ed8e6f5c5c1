// Package crf implements the CRF Controller: a pure function mapping a
// search unit's current state and measured VMAF score to a decision and
// the next state. It performs no I/O and holds no locks, the way
// five82-drapto's internal/tq keeps its State/Config/pure-function shape —
// only the algorithm differs: a single threshold/multiplier step rule
// instead of a converging binary search.
package crf

import (
	"math"

	"github.com/qcodec/qcodec/internal/config"
)

// State is a search unit's mutable CRF-search state.
type State struct {
	CRF     int32
	Step    uint32
	Attempt uint32
}

// NewState builds the initial state for a search unit.
func NewState(initialCRF, initialStep int) State {
	return State{CRF: int32(initialCRF), Step: uint32(initialStep), Attempt: 0}
}

// Decision is the Controller's verdict for one step.
type Decision int

const (
	// Accept means the measured VMAF fell inside [vmaf_min, vmaf_max].
	Accept Decision = iota
	// Retry means another encode attempt should be made at the returned State.
	Retry
	// Skip means the next CRF would leave [1,63]; keep the last candidate.
	Skip
	// Exhausted means attempt >= max_attempts; give up.
	Exhausted
)

// String implements fmt.Stringer.
func (d Decision) String() string {
	switch d {
	case Accept:
		return "Accept"
	case Retry:
		return "Retry"
	case Skip:
		return "Skip"
	case Exhausted:
		return "Exhausted"
	default:
		return "Unknown"
	}
}

// Config carries the tunables the Controller reads; it never mutates
// config state, only the State it is handed.
type Config struct {
	VMAFMin              float64
	VMAFMax              float64
	OffsetThreshold       uint32
	OffsetMultiplier      float64
	OffsetMode            config.VMAFOffsetMode
	MaxAttempts           uint32
	InitialStep           uint32
}

// FromConfig builds a crf.Config from the process Config.
func FromConfig(c config.Config) Config {
	return Config{
		VMAFMin:          c.VMAFMin,
		VMAFMax:          c.VMAFMax,
		OffsetThreshold:  uint32(c.VMAFOffsetThreshold),
		OffsetMultiplier: c.VMAFOffsetMultiplier,
		OffsetMode:       c.VMAFOffsetMode,
		MaxAttempts:      uint32(c.MaxAttempts),
		InitialStep:      uint32(c.InitialCRFStep),
	}
}

// forcedDeviation is the deviation at or above which threshold mode is
// forced into multiplier mode regardless of config (spec.md §4.C step 4).
const forcedDeviation = 5

// Next implements spec.md §4.C's one-step algorithm.
func Next(state State, vmaf float64, cfg Config) (Decision, State) {
	// Step 1: reset step at the start of each iteration.
	step := cfg.InitialStep

	// Step 2: closed-interval accept.
	if vmaf >= cfg.VMAFMin && vmaf <= cfg.VMAFMax {
		return Accept, state
	}

	// Step 3: signed deviation; lower means we want a lower CRF (higher quality).
	var deviation float64
	wantLower := vmaf < cfg.VMAFMin
	if wantLower {
		deviation = cfg.VMAFMin - vmaf
	} else {
		deviation = vmaf - cfg.VMAFMax
	}

	// Step 4: mode selection, forced multiplier on severe deviation.
	useThreshold := cfg.OffsetMode == config.OffsetThreshold && deviation < forcedDeviation
	if useThreshold {
		if cfg.OffsetThreshold > 0 {
			step += uint32(math.Floor(deviation / float64(cfg.OffsetThreshold)))
		}
	} else {
		step += uint32(math.Floor(deviation * cfg.OffsetMultiplier))
	}

	// Step 5: propose the next CRF.
	var newCRF int32
	if wantLower {
		newCRF = state.CRF - int32(step)
	} else {
		newCRF = state.CRF + int32(step)
	}

	// Step 6: clamp check.
	if newCRF < 1 || newCRF > 63 {
		return Skip, state
	}

	// Step 7: exactly max_attempts encodes total (spec.md §8 S3) — only
	// the attempt that would exceed the budget is turned into Exhausted,
	// never the one that would have landed inside the window.
	if state.Attempt+1 >= cfg.MaxAttempts {
		return Exhausted, state
	}
	return Retry, State{CRF: newCRF, Step: step, Attempt: state.Attempt + 1}
}
