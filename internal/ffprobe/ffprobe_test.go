package ffprobe

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    uint32
		wantErr bool
	}{
		{"ntsc film", "24000/1001", 24, false},
		{"integer", "25/1", 25, false},
		{"pal", "50/1", 50, false},
		{"zero denominator", "30/0", 0, true},
		{"missing slash", "30", 0, true},
		{"garbage", "abc/def", 0, true},
		{"zero rate", "0/1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFrameRate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseFrameRate(%q) = %d, nil; want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFrameRate(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseFrameRate(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestStreamProbeOutputUnmarshal(t *testing.T) {
	raw := []byte(`{"streams":[{"codec_name":"h264","nb_frames":"240","avg_frame_rate":"24000/1001","bit_rate":"512000"}]}`)
	var out streamProbeOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Streams) != 1 {
		t.Fatalf("len(Streams) = %d, want 1", len(out.Streams))
	}
	s := out.Streams[0]
	if s.CodecName != "h264" || s.NbFrames != "240" || s.AvgFrameRate != "24000/1001" || s.BitRate != "512000" {
		t.Errorf("unexpected decoded stream: %+v", s)
	}
}

func TestPacketProbeKeyframeFlag(t *testing.T) {
	tests := []struct {
		flags string
		want  bool
	}{
		{"K_", true},
		{"K__", true},
		{"__", false},
		{"", false},
	}
	for _, tt := range tests {
		got := strings.Contains(tt.flags, "K")
		if got != tt.want {
			t.Errorf("flags %q: keyframe = %v, want %v", tt.flags, got, tt.want)
		}
	}
}
