package validation

import (
	"errors"
	"testing"
)

// mockAnalyzer implements MediaAnalyzer for testing.
type mockAnalyzer struct {
	durations map[string]float64
	durErr    error
	codec     string
	codecErr  error
}

func (m *mockAnalyzer) DurationSeconds(path string) (float64, error) {
	if m.durErr != nil {
		return 0, m.durErr
	}
	return m.durations[path], nil
}

func (m *mockAnalyzer) VideoCodec(path string) (string, error) {
	return m.codec, m.codecErr
}

func TestValidateWithAnalyzer_PassesWithinTolerance(t *testing.T) {
	mock := &mockAnalyzer{
		durations: map[string]float64{"in.mkv": 120.0, "out.mkv": 120.4},
		codec:     "av1",
	}

	result, err := ValidateWithAnalyzer(mock, "in.mkv", "out.mkv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Passed {
		t.Errorf("Passed = false, want true: %+v", result)
	}
	if !result.IsDurationCorrect {
		t.Errorf("IsDurationCorrect = false, want true")
	}
	if !result.IsAV1 {
		t.Errorf("IsAV1 = false, want true")
	}
}

func TestValidateWithAnalyzer_FailsOnDurationDrift(t *testing.T) {
	mock := &mockAnalyzer{
		durations: map[string]float64{"in.mkv": 120.0, "out.mkv": 125.0},
		codec:     "av1",
	}

	result, err := ValidateWithAnalyzer(mock, "in.mkv", "out.mkv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Passed {
		t.Errorf("Passed = true, want false on 5s drift")
	}
	if result.IsDurationCorrect {
		t.Errorf("IsDurationCorrect = true, want false")
	}
}

func TestValidateWithAnalyzer_FailsOnNonAV1Codec(t *testing.T) {
	mock := &mockAnalyzer{
		durations: map[string]float64{"in.mkv": 60.0, "out.mkv": 60.0},
		codec:     "h264",
	}

	result, err := ValidateWithAnalyzer(mock, "in.mkv", "out.mkv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Passed {
		t.Errorf("Passed = true, want false for non-AV1 codec")
	}
	if result.IsAV1 {
		t.Errorf("IsAV1 = true, want false")
	}
}

func TestValidateWithAnalyzer_PropagatesDurationProbeError(t *testing.T) {
	mock := &mockAnalyzer{durErr: errors.New("ffprobe failed")}

	if _, err := ValidateWithAnalyzer(mock, "in.mkv", "out.mkv"); err == nil {
		t.Fatal("expected error, got nil")
	}
}
