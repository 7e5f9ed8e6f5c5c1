// Package dispatch enumerates input_dir, skips files already converted
// under output_dir, and fans out one internal/pipeline.Run per file
// bounded by file_workers (spec.md §4.J).
package dispatch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/qcodec/qcodec/internal/config"
	"github.com/qcodec/qcodec/internal/errors"
	"github.com/qcodec/qcodec/internal/logging"
	"github.com/qcodec/qcodec/internal/pipeline"
	"github.com/qcodec/qcodec/internal/reporter"
	"github.com/qcodec/qcodec/internal/util"
	"github.com/qcodec/qcodec/internal/validation"
)

// Summary is the batch-level result returned once every dispatched file
// has either succeeded or failed.
type Summary struct {
	TotalFiles     int
	SucceededFiles int
	FailedFiles    int
	SkippedFiles   int
}

// Run enumerates cfg.InputDir, skips stems already present in
// cfg.OutputDir, and runs pipeline.Run over the rest, file_workers at a
// time.
func Run(ctx context.Context, cfg config.Config, rep reporter.Reporter) (Summary, error) {
	inputs, err := discoverInputs(cfg)
	if err != nil {
		return Summary{}, err
	}
	if len(inputs) == 0 {
		return Summary{}, errors.NewNoFilesFoundError(cfg.InputDir)
	}

	pending := make([]string, 0, len(inputs))
	skipped := 0
	for _, in := range inputs {
		exists, err := util.StemExistsInDir(in, cfg.OutputDir)
		if err != nil {
			return Summary{}, errors.NewIOError("failed to check output_dir for existing stems", err)
		}
		if exists {
			skipped++
			continue
		}
		pending = append(pending, in)
	}

	log := logging.GlobalQueue()
	log.Info("discovered video files", "count", len(inputs), "input_dir", cfg.InputDir, "skipped", skipped)

	rep.BatchStarted(reporter.BatchStartInfo{
		TotalFiles: len(pending),
		FileList:   pending,
		OutputDir:  cfg.OutputDir,
	})

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(cfg.FileWorkers)

	results := make([]reporter.FileResult, len(pending))
	failures := make([]error, len(pending))
	start := time.Now()

	for i, in := range pending {
		i, in := i, in
		group.Go(func() error {
			rep.FileProgress(reporter.FileProgressContext{CurrentFile: i + 1, TotalFiles: len(pending)})
			log.Debug("starting file", "index", i+1, "total", len(pending), "path", in)

			outputPath := util.ResolveOutputPath(in, cfg.OutputDir, cfg.OutputExt)
			if err := pipeline.Run(groupCtx, cfg, in, outputPath, rep); err != nil {
				failures[i] = err
				log.Error("file failed", "path", in, "error", err)
				rep.Error(reporter.ReporterError{
					Title:   "encode failed",
					Message: err.Error(),
					Context: in,
				})
				return nil
			}

			if result, err := validation.Validate(in, outputPath); err != nil {
				rep.Warning("post-encode validation could not run: " + err.Error())
			} else if !result.Passed {
				rep.Warning("validation failed for " + filepath.Base(outputPath) + ": " + result.DurationMessage + "; " + result.CodecMessage)
			}

			originalSize, _ := util.GetFileSize(in)
			encodedSize, _ := util.GetFileSize(outputPath)
			reduction := 0.0
			if originalSize > 0 {
				reduction = 1 - float64(encodedSize)/float64(originalSize)
			}
			results[i] = reporter.FileResult{Filename: filepath.Base(in), Reduction: reduction}
			return nil
		})
	}

	_ = group.Wait()

	summary := Summary{TotalFiles: len(inputs), SkippedFiles: skipped}
	batchSummary := reporter.BatchSummary{TotalFiles: len(pending), TotalDuration: time.Since(start)}
	for i := range pending {
		if failures[i] != nil {
			summary.FailedFiles++
			continue
		}
		summary.SucceededFiles++
		batchSummary.SuccessfulCount++
		batchSummary.FileResults = append(batchSummary.FileResults, results[i])
	}
	rep.BatchComplete(batchSummary)

	return summary, nil
}

// discoverInputs lists cfg.InputDir for files matching cfg.InputExt (or
// any supported video extension when InputExt is "*"), sorted for
// deterministic dispatch order.
func discoverInputs(cfg config.Config) ([]string, error) {
	entries, err := os.ReadDir(cfg.InputDir)
	if err != nil {
		return nil, errors.NewIOError("failed to read input_dir", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var matches []string
	for _, name := range names {
		path := filepath.Join(cfg.InputDir, name)
		if !util.IsVideoFile(path) {
			continue
		}
		if cfg.InputExt != "*" {
			ext := filepath.Ext(name)
			if ext == "" || ext[1:] != cfg.InputExt {
				continue
			}
		}
		matches = append(matches, path)
	}
	return matches, nil
}
