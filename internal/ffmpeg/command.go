package ffmpeg

import (
	"fmt"
	"strconv"
)

// CutParams describes one lossless chunk-cut invocation (spec §4.E).
type CutParams struct {
	SourcePath string
	StartSecs  float64
	EndSecs    float64
	OutPath    string
}

// BuildCutArgs builds the lossless H.264 ultrafast/qp-0 cut command.
func BuildCutArgs(p CutParams) []string {
	return []string{
		"-nostdin",
		"-ss", formatSeconds(p.StartSecs),
		"-to", formatSeconds(p.EndSecs),
		"-i", p.SourcePath,
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-qp", "0",
		"-an",
		"-y",
		p.OutPath,
	}
}

// EncodeParams describes one AV1 chunk-encode invocation (spec §4.F).
type EncodeParams struct {
	SourcePath             string
	StartSecs              float64
	EndSecs                float64
	OutPath                string
	CRF                    int32
	KeyframeIntervalFrames int
	Preset                 int
	PixelFormat            string
	TuneMode               int
	SvtAv1Params           string // extra colon-separated svtav1-params, may be empty
}

// BuildEncodeArgs builds the libsvtav1 encode command for one chunk window.
func BuildEncodeArgs(p EncodeParams) []string {
	svtParams := NewSvtAv1ParamsBuilder().WithTune(uint8(p.TuneMode))
	params := svtParams.Build()
	if p.SvtAv1Params != "" {
		params = params + ":" + p.SvtAv1Params
	}

	args := []string{
		"-nostdin",
		"-ss", formatSeconds(p.StartSecs),
		"-to", formatSeconds(p.EndSecs),
		"-i", p.SourcePath,
		"-c:v", "libsvtav1",
		"-crf", strconv.Itoa(int(p.CRF)),
		"-b:v", "0",
		"-an",
		"-g", strconv.Itoa(p.KeyframeIntervalFrames),
		"-preset", strconv.Itoa(p.Preset),
		"-pix_fmt", p.PixelFormat,
		"-svtav1-params", params,
		"-y",
		p.OutPath,
	}
	return args
}

// ConcatParams describes the final concat-demuxer + audio-mux invocation
// (spec §4.H).
type ConcatParams struct {
	ListPath     string
	AudioPath    string // empty when no audio track
	AudioBitrate string // e.g. "192k"; only used when AudioPath is set
	OutPath      string
}

// BuildConcatArgs builds the concat + mux command. Video is always stream
// copied; audio, when present, is re-encoded to AAC at AudioBitrate.
func BuildConcatArgs(p ConcatParams) []string {
	args := []string{
		"-nostdin",
		"-safe", "0",
		"-f", "concat",
		"-i", p.ListPath,
	}
	if p.AudioPath != "" {
		args = append(args, "-i", p.AudioPath, "-c:v", "copy", "-c:a", "aac", "-b:a", p.AudioBitrate)
	} else {
		args = append(args, "-c:v", "copy")
	}
	args = append(args, "-movflags", "+faststart", "-y", p.OutPath)
	return args
}

// CalculateAudioBitrate maps a channel count to an AAC bitrate in kbps.
// audio.Resolve does not use it: when the source stream reports no
// bitrate, the configured audio_bitrate is used instead.
func CalculateAudioBitrate(channels uint32) uint32 {
	switch channels {
	case 1:
		return 64
	case 2:
		return 128
	case 6:
		return 256
	case 8:
		return 384
	default:
		return channels * 48
	}
}

func formatSeconds(secs float64) string {
	return fmt.Sprintf("%.6f", secs)
}
