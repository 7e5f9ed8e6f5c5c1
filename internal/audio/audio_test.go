package audio

import "testing"

func TestResolveAbsentWhenNoStream(t *testing.T) {
	// ProbeAudioMeta shells to ffprobe; this only exercises the struct
	// contract Resolve must honor once probed.
	plan := Plan{Present: false}
	if plan.Present {
		t.Fatal("expected Present == false for absent audio stream")
	}
}

func TestResolveDetectedBitrateFormatting(t *testing.T) {
	bitrate := detectedBitrateString(192000)
	if bitrate != "192k" {
		t.Errorf("detectedBitrateString(192000) = %q, want 192k", bitrate)
	}
}

// detectedBitrateString mirrors Resolve's bps-to-"Nk" conversion so it can
// be tested without a real ffprobe invocation.
func detectedBitrateString(bps uint64) string {
	return formatKbps(bps)
}
