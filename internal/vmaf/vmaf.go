// Package vmaf invokes ffmpeg's libvmaf filter to score a candidate
// encode against its reference and returns the pooled harmonic-mean
// VMAF, the number the CRF Controller steers on.
package vmaf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/qcodec/qcodec/internal/errors"
)

type vmafLog struct {
	PooledMetrics struct {
		VMAF struct {
			HarmonicMean float64 `json:"harmonic_mean"`
		} `json:"vmaf"`
	} `json:"pooled_metrics"`
}

// Evaluate runs ffmpeg with the libvmaf filter over reference and
// candidate and returns the pooled harmonic-mean score. Every call uses
// its own temporary log path: the original tool's fixed "log.json" name
// made concurrent evaluations clobber each other, which is why this one
// never hard-codes a log filename.
func Evaluate(ctx context.Context, reference, candidate string, threadHint int) (float64, error) {
	logFile, err := os.CreateTemp("", "qcodec-vmaf-*.json")
	if err != nil {
		return 0, errors.NewVMAFError("failed to create vmaf log file", err)
	}
	logPath := logFile.Name()
	logFile.Close()
	defer os.Remove(logPath)

	if threadHint < 1 {
		threadHint = 1
	}

	filter := fmt.Sprintf("libvmaf=log_path=%s:log_fmt=json:n_threads=%d", logPath, threadHint)

	args := []string{
		"-i", candidate,
		"-i", reference,
		"-lavfi", filter,
		"-f", "null",
		"-",
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, errors.NewVMAFError(fmt.Sprintf("ffmpeg vmaf evaluation failed: %s", stderr.String()), err)
	}

	return parseHarmonicMean(logPath)
}

func parseHarmonicMean(logPath string) (float64, error) {
	raw, err := os.ReadFile(logPath)
	if err != nil {
		return 0, errors.NewVMAFError("failed to read vmaf log", err)
	}

	var log vmafLog
	if err := json.Unmarshal(raw, &log); err != nil {
		return 0, errors.NewVMAFError("failed to parse vmaf log", err)
	}

	score := log.PooledMetrics.VMAF.HarmonicMean
	if score < 0 || score > 100 {
		return 0, errors.NewVMAFError(fmt.Sprintf("vmaf score %v out of [0,100]", score), nil)
	}
	return score, nil
}
