package pipeline

import (
	"testing"

	"github.com/qcodec/qcodec/internal/encode"
	"github.com/qcodec/qcodec/internal/ffmpeg"
	"github.com/qcodec/qcodec/internal/reporter"
)

type recordingReporter struct {
	reporter.NullReporter
	snapshots []reporter.ProgressSnapshot
}

func (r *recordingReporter) EncodingProgress(p reporter.ProgressSnapshot) {
	r.snapshots = append(r.snapshots, p)
}

func TestProgressTrackerAggregatesAcrossChunks(t *testing.T) {
	rep := &recordingReporter{}
	p := newProgressTracker(2, 200, rep)

	p.update(1, ffmpeg.Progress{CurrentFrame: 50})
	p.update(2, ffmpeg.Progress{CurrentFrame: 50})

	if len(rep.snapshots) != 2 {
		t.Fatalf("len(snapshots) = %d, want 2", len(rep.snapshots))
	}
	last := rep.snapshots[len(rep.snapshots)-1]
	if last.CurrentFrame != 100 {
		t.Errorf("CurrentFrame = %d, want 100 (sum across chunks)", last.CurrentFrame)
	}
	if last.Percent != 50 {
		t.Errorf("Percent = %v, want 50", last.Percent)
	}
}

func TestProgressTrackerChunkDoneDropsContribution(t *testing.T) {
	rep := &recordingReporter{}
	p := newProgressTracker(2, 100, rep)

	p.update(1, ffmpeg.Progress{CurrentFrame: 40})
	p.chunkDone(1)
	p.update(2, ffmpeg.Progress{CurrentFrame: 10})

	last := rep.snapshots[len(rep.snapshots)-1]
	if last.CurrentFrame != 10 {
		t.Errorf("CurrentFrame = %d, want 10 (chunk 1 contribution dropped)", last.CurrentFrame)
	}
	if last.ChunksComplete != 1 {
		t.Errorf("ChunksComplete = %d, want 1", last.ChunksComplete)
	}
}

func TestOutcomeNameCoversAllOutcomes(t *testing.T) {
	cases := map[encode.Outcome]string{
		encode.Accepted:  "accepted",
		encode.Skipped:   "skipped",
		encode.Exhausted: "exhausted",
	}
	for outcome, want := range cases {
		if got := outcomeName(outcome); got != want {
			t.Errorf("outcomeName(%v) = %q, want %q", outcome, got, want)
		}
	}
}
