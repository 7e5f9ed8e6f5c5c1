// Package audio stream-copies the source's first audio track in
// parallel with the chunk pipeline (spec.md §4.G).
package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/qcodec/qcodec/internal/errors"
	"github.com/qcodec/qcodec/internal/ffprobe"
)

// Plan is the resolved audio-handling decision for one file, derived
// from ProbeAudioMeta before extraction starts.
type Plan struct {
	Present      bool
	CodecName    string
	OutputPath   string
	Bitrate      string // resolved AAC mux bitrate, only meaningful when Present
}

// Resolve probes the source's audio stream and computes where the
// extracted track will live plus the bitrate the Concatenator should mux
// at when detect_audio_bitrate is set.
func Resolve(sourcePath, tmpDir, configuredBitrate string, detectBitrate bool) (Plan, error) {
	meta, err := ffprobe.ProbeAudioMeta(sourcePath)
	if err != nil {
		return Plan{}, err
	}
	if !meta.Present {
		return Plan{Present: false}, nil
	}

	bitrate := configuredBitrate
	if detectBitrate && meta.Bitrate > 0 {
		bitrate = formatKbps(meta.Bitrate)
	}

	return Plan{
		Present:    true,
		CodecName:  meta.CodecName,
		OutputPath: filepath.Join(tmpDir, fmt.Sprintf("audio.%s", meta.CodecName)),
		Bitrate:    bitrate,
	}, nil
}

// Extract stream-copies the first audio track to plan.OutputPath.
// Success is detected by file existence, matching the contract the
// Concatenator relies on. A no-op when plan.Present is false.
func Extract(ctx context.Context, sourcePath string, plan Plan) error {
	if !plan.Present {
		return nil
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", "-nostdin", "-i", sourcePath, "-vn", "-c:a", "copy", "-y", plan.OutputPath)
	if err := cmd.Run(); err != nil {
		return errors.NewCommandFailedError("ffmpeg", 0, err.Error())
	}

	if _, err := os.Stat(plan.OutputPath); err != nil {
		return errors.NewIOError(fmt.Sprintf("audio extraction produced no file at %s", plan.OutputPath), err)
	}
	return nil
}

// formatKbps converts a bits-per-second measurement into ffmpeg's "Nk"
// bitrate notation.
func formatKbps(bps uint64) string {
	return fmt.Sprintf("%dk", bps/1000)
}
