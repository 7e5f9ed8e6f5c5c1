// Package encode drives the per-chunk CRF search: encode, evaluate VMAF,
// ask the CRF Controller, repeat until accepted, skipped, or exhausted
// (spec.md §4.F).
package encode

import (
	"context"
	"os"

	"github.com/qcodec/qcodec/internal/chunk"
	"github.com/qcodec/qcodec/internal/crf"
	"github.com/qcodec/qcodec/internal/errors"
	"github.com/qcodec/qcodec/internal/ffmpeg"
	"github.com/qcodec/qcodec/internal/vmaf"
)

// Outcome is how a search unit ended.
type Outcome int

const (
	// Accepted means the Controller returned Accept; ConvertedPath holds
	// the file that should be enqueued for concatenation.
	Accepted Outcome = iota
	// Skipped means the Controller returned Skip; the last converted
	// file is retained and is still enqueued for concatenation.
	Skipped
	// Exhausted means max_attempts was reached without an Accept.
	Exhausted
)

// Params bundles the search unit's fixed inputs.
type Params struct {
	SourcePath       string // original input file, windowed via -ss/-to per attempt
	ReferencePath    string // VMAF reference: prepared chunk, or SourcePath for NONE mode
	Descriptor       chunk.Descriptor
	FPS              uint32
	InitialCRF       int
	CRFConfig        crf.Config
	ThreadHint       int
	KeyframeInterval int
	Preset           int
	PixelFormat      string
	TuneMode         int
	OnProgress       ffmpeg.ProgressCallback
	OnAttempt        func(attempt uint32, crf int32, vmafScore float64, decision crf.Decision)
}

// Result is what SearchUnit produces for its chunk.
type Result struct {
	Outcome       Outcome
	FinalCRF      int32
	Attempts      uint32
	ConvertedPath string
}

// SearchUnit runs the encode/evaluate/decide loop for a single chunk or
// whole file until the Controller returns a terminal decision.
func SearchUnit(ctx context.Context, p Params) (Result, error) {
	state := crf.NewState(p.InitialCRF, int(p.CRFConfig.InitialStep))

	totalFrames := p.Descriptor.EndFrame - p.Descriptor.StartFrame

	for {
		if err := ffmpeg.RunEncode(ctx, ffmpeg.EncodeParams{
			SourcePath:             p.SourcePath,
			StartSecs:              p.Descriptor.StartSecs(p.FPS),
			EndSecs:                p.Descriptor.EndSecs(p.FPS),
			OutPath:                p.Descriptor.ConvertedPath,
			CRF:                    state.CRF,
			KeyframeIntervalFrames: p.KeyframeInterval,
			Preset:                 p.Preset,
			PixelFormat:            p.PixelFormat,
			TuneMode:               p.TuneMode,
		}, totalFrames, p.OnProgress); err != nil {
			return Result{}, err
		}

		score, err := vmaf.Evaluate(ctx, p.ReferencePath, p.Descriptor.ConvertedPath, p.ThreadHint)
		if err != nil {
			return Result{}, err
		}

		decision, next := crf.Next(state, score, p.CRFConfig)
		if p.OnAttempt != nil {
			p.OnAttempt(state.Attempt, state.CRF, score, decision)
		}
		switch decision {
		case crf.Accept:
			return Result{Outcome: Accepted, FinalCRF: state.CRF, Attempts: state.Attempt + 1, ConvertedPath: p.Descriptor.ConvertedPath}, nil
		case crf.Skip:
			return Result{Outcome: Skipped, FinalCRF: state.CRF, Attempts: state.Attempt + 1, ConvertedPath: p.Descriptor.ConvertedPath}, nil
		case crf.Exhausted:
			return Result{}, errors.NewSearchExhaustedError(p.Descriptor.ConvertedPath, state.Attempt+1)
		case crf.Retry:
			if err := os.Remove(p.Descriptor.ConvertedPath); err != nil && !os.IsNotExist(err) {
				return Result{}, errors.NewIOError("failed to remove rejected converted file", err)
			}
			state = next
		}
	}
}
