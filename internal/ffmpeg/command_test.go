package ffmpeg

import (
	"strings"
	"testing"
)

func containsArg(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func TestBuildCutArgsLosslessNoAudio(t *testing.T) {
	args := BuildCutArgs(CutParams{
		SourcePath: "in.mp4",
		StartSecs:  1.0,
		EndSecs:    5.5,
		OutPath:    "chunk1.mkv",
	})
	for _, want := range []string{"-c:v", "libx264", "-preset", "ultrafast", "-qp", "0", "-an"} {
		if !containsArg(args, want) {
			t.Errorf("BuildCutArgs() missing %q, got %v", want, args)
		}
	}
}

func TestBuildEncodeArgsCarriesCRF(t *testing.T) {
	args := BuildEncodeArgs(EncodeParams{
		SourcePath:             "chunk1.mkv",
		StartSecs:              0,
		EndSecs:                10,
		OutPath:                "out1.ivf",
		CRF:                    28,
		KeyframeIntervalFrames: 240,
		Preset:                 6,
		PixelFormat:            "yuv420p10le",
		TuneMode:               0,
	})
	if !containsArg(args, "libsvtav1") {
		t.Errorf("BuildEncodeArgs() missing libsvtav1 codec, got %v", args)
	}
	if !containsArg(args, "28") {
		t.Errorf("BuildEncodeArgs() missing crf value, got %v", args)
	}
	if !containsArg(args, "yuv420p10le") {
		t.Errorf("BuildEncodeArgs() missing pix_fmt, got %v", args)
	}
}

func TestBuildConcatArgsWithAudio(t *testing.T) {
	args := BuildConcatArgs(ConcatParams{
		ListPath:     "concatlist.txt",
		AudioPath:    "audio.aac",
		AudioBitrate: "192k",
		OutPath:      "final.mkv",
	})
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-c:a aac") {
		t.Errorf("BuildConcatArgs() missing aac re-encode, got %v", args)
	}
	if !strings.Contains(joined, "+faststart") {
		t.Errorf("BuildConcatArgs() missing faststart, got %v", args)
	}
}

func TestBuildConcatArgsWithoutAudio(t *testing.T) {
	args := BuildConcatArgs(ConcatParams{
		ListPath: "concatlist.txt",
		OutPath:  "final.mkv",
	})
	joined := strings.Join(args, " ")
	if strings.Contains(joined, "-c:a") {
		t.Errorf("BuildConcatArgs() should drop audio mapping when absent, got %v", args)
	}
}

func TestCalculateAudioBitrateKnownLayouts(t *testing.T) {
	tests := []struct {
		channels uint32
		want     uint32
	}{
		{1, 64},
		{2, 128},
		{6, 256},
		{8, 384},
		{4, 192},
	}
	for _, tt := range tests {
		if got := CalculateAudioBitrate(tt.channels); got != tt.want {
			t.Errorf("CalculateAudioBitrate(%d) = %d, want %d", tt.channels, got, tt.want)
		}
	}
}
