// Package qcodec provides a Go library for quality-targeted AV1 video
// encoding: each chunk is encoded at the first CRF whose measured VMAF
// score falls inside a configured quality window, searched via a CRF
// Controller rather than a single fixed quality setting.
//
// Basic usage:
//
//	enc, err := qcodec.New(
//	    qcodec.WithVMAFWindow(90, 95),
//	    qcodec.WithChunkMode(qcodec.ChunkKeyframe),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := enc.Encode(context.Background(), "input.mkv", "output/", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
package qcodec

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/qcodec/qcodec/internal/config"
	"github.com/qcodec/qcodec/internal/dispatch"
	"github.com/qcodec/qcodec/internal/pipeline"
	"github.com/qcodec/qcodec/internal/reporter"
	"github.com/qcodec/qcodec/internal/util"
)

// Re-exported chunk-mode vocabulary.
type ChunkMode = config.ChunkMode

const (
	ChunkNone        = config.ChunkNone
	ChunkFixedCount  = config.ChunkFixedCount
	ChunkFixedLength = config.ChunkFixedLength
	ChunkKeyframe    = config.ChunkKeyframe
)

// Reporter re-exports the reporter interface so callers can supply their
// own without importing the internal package directly.
type Reporter = reporter.Reporter

// Result is the outcome of encoding a single file.
type Result struct {
	OutputFile           string
	OriginalSize         uint64
	EncodedSize          uint64
	SizeReductionPercent float64
}

// BatchResult is the outcome of encoding every file in a directory.
type BatchResult struct {
	TotalFiles     int
	SucceededFiles int
	FailedFiles    int
	SkippedFiles   int
}

// Encoder is the main entry point for video encoding.
type Encoder struct {
	cfg config.Config
}

// Option configures an Encoder's Config before validation.
type Option func(*config.Config)

// New creates an Encoder from the reference defaults plus opts.
func New(opts ...Option) (*Encoder, error) {
	cfg := config.Default()
	cfg.InputDir = "."
	cfg.OutputDir = "output"
	cfg.TmpDir = filepath.Join(os.TempDir(), "qcodec")

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Encoder{cfg: cfg}, nil
}

// WithVMAFWindow sets the accepted VMAF score range.
func WithVMAFWindow(min, max float64) Option {
	return func(c *config.Config) {
		c.VMAFMin = min
		c.VMAFMax = max
	}
}

// WithChunkMode sets the chunk-partitioning strategy.
func WithChunkMode(mode ChunkMode) Option {
	return func(c *config.Config) {
		c.ChunkMode = mode
		c.ChunkModeStr = mode.String()
	}
}

// WithChunkWorkers bounds concurrent chunk search within one file.
func WithChunkWorkers(n int) Option {
	return func(c *config.Config) { c.ChunkWorkers = n }
}

// WithFileWorkers bounds concurrent file dispatch in EncodeBatch.
func WithFileWorkers(n int) Option {
	return func(c *config.Config) { c.FileWorkers = n }
}

// WithTmpDir overrides the scratch directory used for prepared/converted
// chunk artifacts.
func WithTmpDir(dir string) Option {
	return func(c *config.Config) { c.TmpDir = dir }
}

// WithKeepTmpFiles disables cleanup of per-file temp workspaces, useful
// for debugging a chunk search.
func WithKeepTmpFiles() Option {
	return func(c *config.Config) { c.KeepTmpFiles = true }
}

// Encode encodes a single file. outputDir is created if it does not
// already exist; the output filename is derived from input's stem and
// the Encoder's configured output_ext.
func (e *Encoder) Encode(ctx context.Context, input, outputDir string, rep Reporter) (*Result, error) {
	cfg := e.cfg
	cfg.OutputDir = outputDir
	if err := util.EnsureDirectory(outputDir); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if rep == nil {
		rep = reporter.NullReporter{}
	}

	outputPath := util.ResolveOutputPath(input, outputDir, cfg.OutputExt)
	if err := pipeline.Run(ctx, cfg, input, outputPath, rep); err != nil {
		return nil, err
	}

	originalSize, err := util.GetFileSize(input)
	if err != nil {
		return nil, err
	}
	encodedSize, err := util.GetFileSize(outputPath)
	if err != nil {
		return nil, err
	}

	return &Result{
		OutputFile:           outputPath,
		OriginalSize:         originalSize,
		EncodedSize:          encodedSize,
		SizeReductionPercent: reductionPercent(originalSize, encodedSize),
	}, nil
}

// EncodeBatch encodes every eligible file under inputDir into outputDir,
// skipping stems already present in outputDir, file_workers at a time.
func (e *Encoder) EncodeBatch(ctx context.Context, inputDir, outputDir string, rep Reporter) (*BatchResult, error) {
	cfg := e.cfg
	cfg.InputDir = inputDir
	cfg.OutputDir = outputDir
	if err := util.EnsureDirectory(outputDir); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if rep == nil {
		rep = reporter.NullReporter{}
	}

	summary, err := dispatch.Run(ctx, cfg, rep)
	if err != nil {
		return nil, err
	}
	return &BatchResult{
		TotalFiles:     summary.TotalFiles,
		SucceededFiles: summary.SucceededFiles,
		FailedFiles:    summary.FailedFiles,
		SkippedFiles:   summary.SkippedFiles,
	}, nil
}

func reductionPercent(original, encoded uint64) float64 {
	if original == 0 {
		return 0
	}
	return (1 - float64(encoded)/float64(original)) * 100
}
