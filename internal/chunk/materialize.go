package chunk

import (
	"context"

	"github.com/qcodec/qcodec/internal/ffmpeg"
)

// Materialize cuts the source window for d into its visually lossless
// prepared intermediate (spec.md §4.E).
func Materialize(ctx context.Context, sourcePath string, d Descriptor, fps uint32) error {
	return ffmpeg.RunCut(ctx, ffmpeg.CutParams{
		SourcePath: sourcePath,
		StartSecs:  d.StartSecs(fps),
		EndSecs:    d.EndSecs(fps),
		OutPath:    d.PreparedPath,
	})
}
