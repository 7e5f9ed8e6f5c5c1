package vmaf

import (
	"os"
	"path/filepath"
	"testing"
)

func writeLog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "log.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write test log: %v", err)
	}
	return path
}

func TestParseHarmonicMean(t *testing.T) {
	path := writeLog(t, `{"pooled_metrics":{"vmaf":{"harmonic_mean":91.42}}}`)
	score, err := parseHarmonicMean(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 91.42 {
		t.Errorf("score = %v, want 91.42", score)
	}
}

func TestParseHarmonicMeanOutOfRange(t *testing.T) {
	path := writeLog(t, `{"pooled_metrics":{"vmaf":{"harmonic_mean":142}}}`)
	if _, err := parseHarmonicMean(path); err == nil {
		t.Error("expected error for score outside [0,100]")
	}
}

func TestParseHarmonicMeanMissingFile(t *testing.T) {
	if _, err := parseHarmonicMean(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing log file")
	}
}

func TestParseHarmonicMeanMalformed(t *testing.T) {
	path := writeLog(t, `not json`)
	if _, err := parseHarmonicMean(path); err == nil {
		t.Error("expected error for malformed log")
	}
}
