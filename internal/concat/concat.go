// Package concat writes the collected accepted chunks into a strictly
// increasing concat list and invokes ffmpeg's concat demuxer plus audio
// mux to produce the final output file (spec.md §4.H).
package concat

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/qcodec/qcodec/internal/audio"
	"github.com/qcodec/qcodec/internal/errors"
	"github.com/qcodec/qcodec/internal/ffmpeg"
)

// Accepted is one chunk admitted to the concat list, keyed by index.
type Accepted struct {
	Index         int
	ConvertedPath string
}

// WriteList writes accepted chunks to listPath in strict index order.
// The caller must ensure accepted is dense and contiguous starting at 1;
// WriteList validates this invariant.
func WriteList(listPath string, accepted []Accepted) error {
	sorted := make([]Accepted, len(accepted))
	copy(sorted, accepted)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	for i, a := range sorted {
		if a.Index != i+1 {
			return errors.NewOperationFailedError(
				fmt.Sprintf("concat list is not dense: expected index %d, got %d", i+1, a.Index), nil)
		}
	}

	f, err := os.Create(listPath)
	if err != nil {
		return errors.NewIOError("failed to create concat list", err)
	}
	defer f.Close()

	for _, a := range sorted {
		if _, err := fmt.Fprintf(f, "file '%s'\n", a.ConvertedPath); err != nil {
			return errors.NewIOError("failed to write concat list", err)
		}
	}
	return nil
}

// Run builds the concat list and invokes ffmpeg to produce outputPath,
// muxing audioPlan's extracted track when present.
func Run(ctx context.Context, listPath string, accepted []Accepted, audioPlan audio.Plan, outputPath string) error {
	if err := WriteList(listPath, accepted); err != nil {
		return err
	}

	params := ffmpeg.ConcatParams{
		ListPath: listPath,
		OutPath:  outputPath,
	}
	if audioPlan.Present {
		params.AudioPath = audioPlan.OutputPath
		params.AudioBitrate = audioPlan.Bitrate
	}

	return ffmpeg.RunConcat(ctx, params)
}
