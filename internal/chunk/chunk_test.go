package chunk

import (
	"testing"

	"github.com/qcodec/qcodec/internal/config"
	"github.com/qcodec/qcodec/internal/ffprobe"
)

func baseCfg(t *testing.T) config.Config {
	t.Helper()
	c := config.Default()
	c.InputDir = t.TempDir()
	c.OutputDir = t.TempDir()
	c.TmpDir = t.TempDir()
	if err := c.Validate(); err != nil {
		t.Fatalf("invalid base config: %v", err)
	}
	return c
}

func assertContiguous(t *testing.T, descriptors []Descriptor, totalFrames uint64) {
	t.Helper()
	var want uint64
	for i, d := range descriptors {
		if d.Index != i+1 {
			t.Errorf("descriptor[%d].Index = %d, want %d", i, d.Index, i+1)
		}
		if d.StartFrame != want {
			t.Errorf("descriptor[%d].StartFrame = %d, want %d", i, d.StartFrame, want)
		}
		if d.EndFrame < d.StartFrame {
			t.Errorf("descriptor[%d] end %d before start %d", i, d.EndFrame, d.StartFrame)
		}
		want = d.EndFrame
	}
	if want != totalFrames {
		t.Errorf("union ends at %d, want %d", want, totalFrames)
	}
}

func TestPlanNoneSingleDescriptor(t *testing.T) {
	c := baseCfg(t)
	c.ChunkMode = config.ChunkNone

	descriptors, err := Plan(c, "in.mp4", 600, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(descriptors) != 1 {
		t.Fatalf("len = %d, want 1", len(descriptors))
	}
	assertContiguous(t, descriptors, 600)
}

func TestPlanFixedCountExactDivision(t *testing.T) {
	c := baseCfg(t)
	c.ChunkMode = config.ChunkFixedCount
	c.ChunkSize = 4

	descriptors, err := Plan(c, "in.mp4", 600, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(descriptors) != 4 {
		t.Fatalf("len = %d, want 4", len(descriptors))
	}
	assertContiguous(t, descriptors, 600)
	if descriptors[len(descriptors)-1].EndFrame != 600 {
		t.Errorf("last chunk end = %d, want 600", descriptors[len(descriptors)-1].EndFrame)
	}
}

func TestPlanFixedCountNonDivisibleRemainder(t *testing.T) {
	c := baseCfg(t)
	c.ChunkMode = config.ChunkFixedCount
	c.ChunkSize = 7

	descriptors, err := Plan(c, "in.mp4", 601, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(descriptors) != 7 {
		t.Fatalf("len = %d, want 7", len(descriptors))
	}
	assertContiguous(t, descriptors, 601)
}

func TestPlanFixedLengthAbsorbsRemainder(t *testing.T) {
	c := baseCfg(t)
	c.ChunkMode = config.ChunkFixedLength
	c.ChunkLengthSeconds = 10

	descriptors, err := Plan(c, "in.mp4", 625, 60) // 625/60 ~= 10.4s, last chunk absorbs remainder
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertContiguous(t, descriptors, 625)
	if len(descriptors) != 2 {
		t.Fatalf("len = %d, want 2", len(descriptors))
	}
}

func TestDescriptorSecondsHalfOpen(t *testing.T) {
	d := Descriptor{StartFrame: 60, EndFrame: 120}
	if got := d.StartSecs(60); got != 1.0 {
		t.Errorf("StartSecs = %v, want 1.0", got)
	}
	if got := d.EndSecs(60); got != 2.0 {
		t.Errorf("EndSecs = %v, want 2.0", got)
	}
}

func TestDescriptorsFromKeyframesLastBoundaryAtTotalFrames(t *testing.T) {
	c := baseCfg(t)
	// keyframes at 0, 2.0, 5.0, 7.5s; total_frames=450, fps=60 -> last
	// boundary 7.5*60=450=totalFrames, so no trailing remainder chunk.
	packets := []ffprobe.KeyframePacket{
		{PTSTime: 0, Keyframe: true},
		{PTSTime: 2.0, Keyframe: true},
		{PTSTime: 5.0, Keyframe: true},
		{PTSTime: 7.5, Keyframe: true},
	}

	descriptors := descriptorsFromKeyframes(c, packets, 450, 60)
	if len(descriptors) != 3 {
		t.Fatalf("len = %d, want 3", len(descriptors))
	}
	assertContiguous(t, descriptors, 450)
	for _, d := range descriptors {
		if d.StartFrame >= d.EndFrame {
			t.Errorf("descriptor[%d] violates start < end: %d >= %d", d.Index, d.StartFrame, d.EndFrame)
		}
	}
}

func TestDescriptorsFromKeyframesTrailingRemainder(t *testing.T) {
	c := baseCfg(t)
	// last keyframe boundary falls short of totalFrames, so the tail
	// frames must still get their own chunk.
	packets := []ffprobe.KeyframePacket{
		{PTSTime: 0, Keyframe: true},
		{PTSTime: 2.0, Keyframe: true},
	}

	descriptors := descriptorsFromKeyframes(c, packets, 200, 60)
	if len(descriptors) != 2 {
		t.Fatalf("len = %d, want 2", len(descriptors))
	}
	assertContiguous(t, descriptors, 200)
	if descriptors[1].StartFrame != 120 || descriptors[1].EndFrame != 200 {
		t.Errorf("trailing descriptor = [%d,%d), want [120,200)", descriptors[1].StartFrame, descriptors[1].EndFrame)
	}
}

func TestPlanUnknownChunkMode(t *testing.T) {
	c := baseCfg(t)
	c.ChunkMode = config.ChunkMode(99)

	if _, err := Plan(c, "in.mp4", 100, 30); err == nil {
		t.Error("expected error for unknown chunk mode")
	}
}
