// Package chunk partitions a source file into contiguous, half-open
// frame windows per spec.md §4.D, and materializes each window into a
// lossless intermediate per spec.md §4.E.
package chunk

import (
	"fmt"
	"path/filepath"

	"github.com/qcodec/qcodec/internal/config"
	"github.com/qcodec/qcodec/internal/ffprobe"
)

// Descriptor is one chunk's frame window and derived paths. Frame bounds
// are half-open: [StartFrame, EndFrame).
type Descriptor struct {
	Index         int
	StartFrame    uint64
	EndFrame      uint64
	PreparedPath  string
	ConvertedPath string
}

// StartSecs and EndSecs derive the cut/encode window in seconds, using
// the reference convention of integer frame / integer fps.
func (d Descriptor) StartSecs(fps uint32) float64 {
	return float64(d.StartFrame) / float64(fps)
}

func (d Descriptor) EndSecs(fps uint32) float64 {
	return float64(d.EndFrame) / float64(fps)
}

// Plan computes the ordered list of Descriptors for a file, given its
// probed total frame count and fps and the configured chunk mode.
func Plan(cfg config.Config, sourcePath string, totalFrames uint64, fps uint32) ([]Descriptor, error) {
	switch cfg.ChunkMode {
	case config.ChunkNone:
		return planNone(cfg, totalFrames), nil
	case config.ChunkFixedCount:
		return planFixedCount(cfg, totalFrames), nil
	case config.ChunkFixedLength:
		return planFixedLength(cfg, totalFrames, fps), nil
	case config.ChunkKeyframe:
		return planKeyframe(cfg, sourcePath, totalFrames, fps)
	default:
		return nil, fmt.Errorf("chunk: unknown chunk mode %v", cfg.ChunkMode)
	}
}

func withPaths(cfg config.Config, index int, startFrame, endFrame uint64) Descriptor {
	name := fmt.Sprintf("chunk%d.%s", index, cfg.OutputExt)
	return Descriptor{
		Index:         index,
		StartFrame:    startFrame,
		EndFrame:      endFrame,
		PreparedPath:  filepath.Join(cfg.PreparedDir(), name),
		ConvertedPath: filepath.Join(cfg.ConvertedDir(), name),
	}
}

func planNone(cfg config.Config, totalFrames uint64) []Descriptor {
	return []Descriptor{withPaths(cfg, 1, 0, totalFrames)}
}

func planFixedCount(cfg config.Config, totalFrames uint64) []Descriptor {
	n := cfg.ChunkSize
	descriptors := make([]Descriptor, 0, n)
	var start uint64
	for i := 1; i <= n; i++ {
		end := totalFrames * uint64(i) / uint64(n)
		descriptors = append(descriptors, withPaths(cfg, i, start, end))
		if end != totalFrames {
			start = end
		}
	}
	return descriptors
}

func planFixedLength(cfg config.Config, totalFrames uint64, fps uint32) []Descriptor {
	var descriptors []Descriptor
	lengthFrames := uint64(cfg.ChunkLengthSeconds) * uint64(fps)
	if lengthFrames == 0 {
		lengthFrames = totalFrames
	}

	index := 0
	var start uint64
	for start < totalFrames {
		index++
		end := start + lengthFrames
		if end >= totalFrames {
			end = totalFrames
		}
		descriptors = append(descriptors, withPaths(cfg, index, start, end))
		if end == totalFrames {
			break
		}
		start = end
	}
	return descriptors
}

func planKeyframe(cfg config.Config, sourcePath string, totalFrames uint64, fps uint32) ([]Descriptor, error) {
	packets, err := ffprobe.ProbeKeyframes(sourcePath)
	if err != nil {
		return nil, err
	}
	return descriptorsFromKeyframes(cfg, packets, totalFrames, fps), nil
}

// descriptorsFromKeyframes turns keyframe boundary timestamps into
// contiguous Descriptors. A boundary that already reaches totalFrames
// closes the final chunk; it must not also start a trailing zero-length
// one.
func descriptorsFromKeyframes(cfg config.Config, packets []ffprobe.KeyframePacket, totalFrames uint64, fps uint32) []Descriptor {
	var descriptors []Descriptor
	index := 0
	var start uint64
	for _, p := range packets {
		if !p.Keyframe || p.PTSTime <= 0 {
			continue
		}
		index++
		end := uint64(p.PTSTime * float64(fps))
		descriptors = append(descriptors, withPaths(cfg, index, start, end))
		start = end
	}

	if start < totalFrames {
		index++
		descriptors = append(descriptors, withPaths(cfg, index, start, totalFrames))
	}
	return descriptors
}
