package validation

import "github.com/qcodec/qcodec/internal/ffprobe"

// MediaAnalyzer provides the media facts validation needs, kept as an
// interface so ValidateWithAnalyzer can be tested without shelling out
// to ffprobe.
type MediaAnalyzer interface {
	// DurationSeconds returns the file's stream duration in seconds.
	DurationSeconds(path string) (float64, error)
	// VideoCodec returns the video stream's codec name.
	VideoCodec(path string) (string, error)
}

// DefaultAnalyzer implements MediaAnalyzer using internal/ffprobe.
type DefaultAnalyzer struct{}

// NewDefaultAnalyzer returns a DefaultAnalyzer.
func NewDefaultAnalyzer() *DefaultAnalyzer {
	return &DefaultAnalyzer{}
}

func (a *DefaultAnalyzer) DurationSeconds(path string) (float64, error) {
	meta, err := ffprobe.ProbeVideoMeta(path)
	if err != nil {
		return 0, err
	}
	if meta.FPS == 0 {
		return 0, nil
	}
	return float64(meta.TotalFrames) / float64(meta.FPS), nil
}

func (a *DefaultAnalyzer) VideoCodec(path string) (string, error) {
	meta, err := ffprobe.ProbeVideoMeta(path)
	if err != nil {
		return "", err
	}
	return meta.CodecName, nil
}
