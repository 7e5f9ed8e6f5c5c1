// Package validation performs the post-encode sanity checks spec.md's
// Non-goals leave in scope: the output's duration must match the source
// within tolerance, and the output's video stream must actually be AV1.
// Crop/HDR/bit-depth checks from the teacher's validator have no
// counterpart in this domain and are not carried over.
package validation

import (
	"fmt"
	"math"
	"strings"
)

// durationToleranceSecs is the maximum allowed difference in duration
// between input and output.
const durationToleranceSecs = 1.0

// Result is the outcome of validating one encoded file.
type Result struct {
	Passed            bool
	IsDurationCorrect bool
	DurationMessage   string
	IsAV1             bool
	CodecName         string
	CodecMessage      string
}

// Validate runs the default ffprobe-backed analyzer against outputPath,
// comparing its duration against sourcePath's.
func Validate(sourcePath, outputPath string) (*Result, error) {
	return ValidateWithAnalyzer(NewDefaultAnalyzer(), sourcePath, outputPath)
}

// ValidateWithAnalyzer runs validation through a MediaAnalyzer, allowing
// tests to exercise the comparison logic without real ffprobe calls.
func ValidateWithAnalyzer(analyzer MediaAnalyzer, sourcePath, outputPath string) (*Result, error) {
	sourceDuration, err := analyzer.DurationSeconds(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to probe source duration: %w", err)
	}
	outputDuration, err := analyzer.DurationSeconds(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to probe output duration: %w", err)
	}

	result := &Result{}
	result.IsDurationCorrect, result.DurationMessage = validateDuration(outputDuration, sourceDuration)

	codecName, err := analyzer.VideoCodec(outputPath)
	if err != nil {
		result.IsAV1 = false
		result.CodecMessage = fmt.Sprintf("failed to read output codec: %v", err)
	} else {
		result.CodecName = codecName
		result.IsAV1 = strings.Contains(strings.ToLower(codecName), "av1") ||
			strings.Contains(strings.ToLower(codecName), "av01")
		if result.IsAV1 {
			result.CodecMessage = fmt.Sprintf("video codec is %s", codecName)
		} else {
			result.CodecMessage = fmt.Sprintf("expected av1 video codec, got %s", codecName)
		}
	}

	result.Passed = result.IsDurationCorrect && result.IsAV1
	return result, nil
}

func validateDuration(actual, expected float64) (bool, string) {
	diff := math.Abs(actual - expected)
	if diff <= durationToleranceSecs {
		return true, fmt.Sprintf("duration matches source (%.1fs)", actual)
	}
	return false, fmt.Sprintf("duration mismatch: got %.1fs, expected %.1fs (diff: %.1fs)", actual, expected, diff)
}
