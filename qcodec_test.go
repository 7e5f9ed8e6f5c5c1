package qcodec

import "testing"

func TestNewAppliesOptions(t *testing.T) {
	enc, err := New(
		WithVMAFWindow(85, 92),
		WithChunkMode(ChunkFixedCount),
		WithChunkWorkers(4),
		WithFileWorkers(2),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if enc.cfg.VMAFMin != 85 || enc.cfg.VMAFMax != 92 {
		t.Errorf("VMAF window = [%v,%v], want [85,92]", enc.cfg.VMAFMin, enc.cfg.VMAFMax)
	}
	if enc.cfg.ChunkMode != ChunkFixedCount {
		t.Errorf("ChunkMode = %v, want ChunkFixedCount", enc.cfg.ChunkMode)
	}
	if enc.cfg.ChunkWorkers != 4 {
		t.Errorf("ChunkWorkers = %d, want 4", enc.cfg.ChunkWorkers)
	}
	if enc.cfg.FileWorkers != 2 {
		t.Errorf("FileWorkers = %d, want 2", enc.cfg.FileWorkers)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(WithVMAFWindow(95, 90)); err == nil {
		t.Fatal("expected error for inverted VMAF window, got nil")
	}
}

func TestReductionPercent(t *testing.T) {
	cases := []struct {
		original, encoded uint64
		want              float64
	}{
		{original: 1000, encoded: 500, want: 50},
		{original: 1000, encoded: 1000, want: 0},
		{original: 0, encoded: 500, want: 0},
	}
	for _, tc := range cases {
		if got := reductionPercent(tc.original, tc.encoded); got != tc.want {
			t.Errorf("reductionPercent(%d, %d) = %v, want %v", tc.original, tc.encoded, got, tc.want)
		}
	}
}
