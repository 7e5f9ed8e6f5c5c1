// Package ffprobe invokes ffprobe to extract the per-file metadata the
// rest of qcodec treats as ground truth: video/audio stream summaries and
// keyframe packet timestamps for KEYFRAME chunk planning.
package ffprobe

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// VideoMeta is the Probe's video-stream summary (spec's Data Model).
type VideoMeta struct {
	TotalFrames uint64
	FPS         uint32
	CodecName   string
	Width       int
	Height      int
}

// AudioMeta is the Probe's audio-stream summary. Absence of an audio
// stream is valid and reported via Present, not an error.
type AudioMeta struct {
	Present   bool
	CodecName string
	Bitrate   uint64
}

// KeyframePacket is one packet observed while scanning for keyframe
// boundaries.
type KeyframePacket struct {
	PTSTime  float64
	Keyframe bool
}

type streamProbeOutput struct {
	Streams []streamProbe `json:"streams"`
}

type streamProbe struct {
	CodecName    string `json:"codec_name"`
	NbFrames     string `json:"nb_frames"`
	AvgFrameRate string `json:"avg_frame_rate"`
	BitRate      string `json:"bit_rate"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

type packetProbeOutput struct {
	Packets []packetProbe `json:"packets"`
}

type packetProbe struct {
	PTSTime string `json:"pts_time"`
	Flags   string `json:"flags"`
}

// ProbeVideoMeta runs the first-video-stream probe. An unparseable
// avg_frame_rate is fatal: the core never silently falls back to a guess.
func ProbeVideoMeta(path string) (VideoMeta, error) {
	out, err := runStreamProbe(path, "v:0")
	if err != nil {
		return VideoMeta{}, err
	}
	if len(out.Streams) == 0 {
		return VideoMeta{}, fmt.Errorf("ffprobe: no video stream in %s", path)
	}
	s := out.Streams[0]

	fps, err := parseFrameRate(s.AvgFrameRate)
	if err != nil {
		return VideoMeta{}, fmt.Errorf("ffprobe: unparseable avg_frame_rate %q for %s: %w", s.AvgFrameRate, path, err)
	}

	var frames uint64
	if s.NbFrames != "" {
		frames, _ = strconv.ParseUint(s.NbFrames, 10, 64)
	}

	return VideoMeta{
		TotalFrames: frames,
		FPS:         fps,
		CodecName:   s.CodecName,
		Width:       s.Width,
		Height:      s.Height,
	}, nil
}

// ProbeAudioMeta runs the first-audio-stream probe. Returns
// AudioMeta{Present: false} when the file carries no audio stream.
func ProbeAudioMeta(path string) (AudioMeta, error) {
	out, err := runStreamProbe(path, "a:0")
	if err != nil {
		return AudioMeta{}, err
	}
	if len(out.Streams) == 0 {
		return AudioMeta{Present: false}, nil
	}
	s := out.Streams[0]

	var bitrate uint64
	if s.BitRate != "" {
		bitrate, _ = strconv.ParseUint(s.BitRate, 10, 64)
	}

	return AudioMeta{
		Present:   true,
		CodecName: s.CodecName,
		Bitrate:   bitrate,
	}, nil
}

// ProbeKeyframes scans video packets and reports pts_time/keyframe-flag
// pairs in presentation order, for KEYFRAME chunk planning.
func ProbeKeyframes(path string) ([]KeyframePacket, error) {
	cmd := exec.Command("ffprobe",
		"-v", "quiet",
		"-select_streams", "v:0",
		"-show_entries", "packet=pts_time,flags",
		"-of", "json",
		path,
	)
	raw, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe packet probe failed for %s: %w", path, err)
	}

	var out packetProbeOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("ffprobe: failed to parse packet probe output for %s: %w", path, err)
	}

	packets := make([]KeyframePacket, 0, len(out.Packets))
	for _, p := range out.Packets {
		pts, err := strconv.ParseFloat(p.PTSTime, 64)
		if err != nil {
			continue
		}
		packets = append(packets, KeyframePacket{
			PTSTime:  pts,
			Keyframe: strings.Contains(p.Flags, "K"),
		})
	}
	return packets, nil
}

func runStreamProbe(path, selector string) (*streamProbeOutput, error) {
	cmd := exec.Command("ffprobe",
		"-v", "quiet",
		"-show_streams",
		"-select_streams", selector,
		"-of", "json",
		path,
	)
	raw, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe stream probe failed for %s: %w", path, err)
	}

	var out streamProbeOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("ffprobe: failed to parse stream probe output for %s: %w", path, err)
	}
	return &out, nil
}

// parseFrameRate parses ffprobe's "num/den" avg_frame_rate form.
func parseFrameRate(s string) (uint32, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected num/den form")
	}
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, err
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return 0, fmt.Errorf("invalid denominator %q", parts[1])
	}
	fps := num / den
	if fps <= 0 {
		return 0, fmt.Errorf("non-positive frame rate %v", fps)
	}
	return uint32(fps + 0.5), nil
}
