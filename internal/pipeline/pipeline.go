// Package pipeline builds and supervises the per-file stage graph:
// Probe -> Planner -> one goroutine per chunk (Materializer, then
// Encoder/Searcher, each stage capped at chunk_workers by its own
// semaphore) -> accepted channel -> Concatenator, with the Audio
// Extractor running concurrently (spec.md §4.I).
//
// The accepted channel is closed once every chunk goroutine has returned;
// that close is the single end-of-stream signal the collector waits on.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/qcodec/qcodec/internal/audio"
	"github.com/qcodec/qcodec/internal/chunk"
	"github.com/qcodec/qcodec/internal/concat"
	"github.com/qcodec/qcodec/internal/config"
	"github.com/qcodec/qcodec/internal/crf"
	"github.com/qcodec/qcodec/internal/encode"
	"github.com/qcodec/qcodec/internal/errors"
	"github.com/qcodec/qcodec/internal/ffmpeg"
	"github.com/qcodec/qcodec/internal/ffprobe"
	"github.com/qcodec/qcodec/internal/failure"
	"github.com/qcodec/qcodec/internal/logging"
	"github.com/qcodec/qcodec/internal/reporter"
	"github.com/qcodec/qcodec/internal/templife"
	"github.com/qcodec/qcodec/internal/util"
	"github.com/qcodec/qcodec/internal/worker"
)

// Run drives one input file through the full pipeline and writes the
// result to outputPath.
func Run(ctx context.Context, cfg config.Config, sourcePath, outputPath string, rep reporter.Reporter) error {
	start := time.Now()
	log := logging.GlobalQueue()
	log.Info("starting pipeline run", "source", sourcePath)

	videoMeta, err := ffprobe.ProbeVideoMeta(sourcePath)
	if err != nil {
		return err
	}
	audioMeta, err := ffprobe.ProbeAudioMeta(sourcePath)
	if err != nil {
		return err
	}

	rep.Initialization(reporter.InitializationSummary{
		InputFile:        sourcePath,
		OutputFile:       filepath.Base(outputPath),
		Duration:         util.FormatDuration(float64(videoMeta.TotalFrames) / float64(videoMeta.FPS)),
		Resolution:       fmt.Sprintf("%dx%d (%s)", videoMeta.Width, videoMeta.Height, videoMeta.CodecName),
		AudioDescription: audioDescription(audioMeta),
	})

	runRoot, err := util.CreateTempDir(cfg.TmpDir, "qcodec")
	if err != nil {
		return errors.NewIOError("failed to create run workspace", err)
	}
	runCfg := cfg
	runCfg.TmpDir = runRoot.Path()

	ws, err := templife.Open(runCfg.TmpDir, runCfg.PreparedDir(), runCfg.ConvertedDir(), cfg.KeepTmpFiles)
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	descriptors, err := chunk.Plan(runCfg, sourcePath, videoMeta.TotalFrames, videoMeta.FPS)
	if err != nil {
		return errors.NewChunkPlanError("failed to plan chunks", err)
	}

	rep.Plan(reporter.PlanSummary{
		ChunkMode:   runCfg.ChunkMode.String(),
		ChunkCount:  len(descriptors),
		TotalFrames: videoMeta.TotalFrames,
		FPS:         videoMeta.FPS,
	})

	crfCfg := crf.FromConfig(runCfg)
	threadHint := util.DefaultThreadHint()
	rep.EncodingConfig(reporter.EncodingConfigSummary{
		Encoder:          "libsvtav1",
		Preset:           fmt.Sprintf("%d", runCfg.AV1Preset),
		Tune:             fmt.Sprintf("%d", runCfg.TuneMode),
		PixelFormat:      runCfg.PixelFormat,
		SVTAV1Params:     "",
		VMAFMin:          runCfg.VMAFMin,
		VMAFMax:          runCfg.VMAFMax,
		InitialCRF:       runCfg.InitialCRF,
		ThreadHint:       threadHint,
		AudioCodec:       "aac",
		AudioDescription: audioDescription(audioMeta),
	})

	fail := failure.New()

	audioPlan, err := audio.Resolve(sourcePath, runCfg.TmpDir, runCfg.AudioBitrate, runCfg.DetectAudioBitrate)
	if err != nil {
		return err
	}
	var audioWG sync.WaitGroup
	audioWG.Add(1)
	go func() {
		defer audioWG.Done()
		if err := audio.Extract(ctx, sourcePath, audioPlan); err != nil {
			log.Error("audio extraction failed", "source", sourcePath, "error", err)
			fail.Set(err)
		}
	}()

	prog := newProgressTracker(len(descriptors), videoMeta.TotalFrames, rep)
	rep.EncodingStarted(videoMeta.TotalFrames)

	accepted, err := runChunkStages(ctx, runCfg, sourcePath, descriptors, videoMeta.FPS, crfCfg, threadHint, fail, prog, rep)
	if err != nil {
		audioWG.Wait()
		return err
	}

	audioWG.Wait()
	if fail.IsSet() {
		return fail.Err()
	}

	listPath := filepath.Join(runCfg.TmpDir, "concatlist.txt")
	if err := concat.Run(ctx, listPath, accepted, audioPlan, outputPath); err != nil {
		return err
	}
	defer func() { _ = templife.RemoveSentinel(listPath) }()

	log.Info("pipeline run completed", "source", sourcePath, "elapsed", time.Since(start))
	return reportCompletion(sourcePath, outputPath, videoMeta, audioMeta, start, rep)
}

// runChunkStages runs Materialize then Search for every descriptor,
// each stage gated by its own worker.Semaphore so chunk_workers bounds
// materialize and search concurrency independently — one goroutine per
// chunk, permits acquired via sem.Chan() and returned via Release(),
// grounded on five82-drapto/internal/encode/encode_tq.go's dispatch loop.
func runChunkStages(
	ctx context.Context,
	cfg config.Config,
	sourcePath string,
	descriptors []chunk.Descriptor,
	fps uint32,
	crfCfg crf.Config,
	threadHint int,
	fail *failure.Flag,
	prog *progressTracker,
	rep reporter.Reporter,
) ([]concat.Accepted, error) {
	matSem := worker.NewSemaphore(cfg.ChunkWorkers)
	encSem := worker.NewSemaphore(cfg.ChunkWorkers)
	acceptCh := make(chan concat.Accepted, len(descriptors))

	var wg sync.WaitGroup
	for _, d := range descriptors {
		d := d
		wg.Add(1)
		go func() {
			defer wg.Done()
			runChunk(ctx, cfg, sourcePath, d, fps, crfCfg, threadHint, matSem, encSem, fail, prog, rep, acceptCh)
		}()
	}
	go func() {
		wg.Wait()
		close(acceptCh)
	}()

	accepted := make([]concat.Accepted, 0, len(descriptors))
	for a := range acceptCh {
		accepted = append(accepted, a)
	}

	if fail.IsSet() {
		return nil, fail.Err()
	}
	return accepted, nil
}

// runChunk materializes and searches one chunk, acquiring a permit from
// matSem and encSem respectively before each stage. It is a no-op once
// fail is set, so a run already in flight unwinds quickly instead of
// starting new work after a sibling chunk has failed the file.
func runChunk(
	ctx context.Context,
	cfg config.Config,
	sourcePath string,
	d chunk.Descriptor,
	fps uint32,
	crfCfg crf.Config,
	threadHint int,
	matSem, encSem *worker.Semaphore,
	fail *failure.Flag,
	prog *progressTracker,
	rep reporter.Reporter,
	acceptCh chan<- concat.Accepted,
) {
	if !acquire(ctx, matSem, fail) {
		return
	}
	err := chunk.Materialize(ctx, sourcePath, d, fps)
	matSem.Release()
	if err != nil {
		logging.GlobalQueue().Error("chunk materialize failed", "chunk", d.Index, "error", err)
		fail.Set(err)
		return
	}

	if !acquire(ctx, encSem, fail) {
		return
	}
	defer encSem.Release()

	reference := d.PreparedPath
	if cfg.ChunkMode == config.ChunkNone {
		reference = sourcePath
	}

	result, err := encode.SearchUnit(ctx, encode.Params{
		SourcePath:       sourcePath,
		ReferencePath:    reference,
		Descriptor:       d,
		FPS:              fps,
		InitialCRF:       cfg.InitialCRF,
		CRFConfig:        crfCfg,
		ThreadHint:       threadHint,
		KeyframeInterval: cfg.KeyframeIntervalFrames,
		Preset:           cfg.AV1Preset,
		PixelFormat:      cfg.PixelFormat,
		TuneMode:         cfg.TuneMode,
		OnProgress: func(p ffmpeg.Progress) {
			prog.update(d.Index, p)
		},
		OnAttempt: func(attempt uint32, candidateCRF int32, score float64, decision crf.Decision) {
			rep.ChunkSearchProgress(reporter.ChunkSearchUpdate{
				ChunkIndex: d.Index,
				Attempt:    attempt,
				CRF:        candidateCRF,
				VMAFScore:  score,
				Decision:   decision.String(),
			})
		},
	})
	if err != nil {
		logging.GlobalQueue().Error("chunk search failed", "chunk", d.Index, "error", err)
		fail.Set(err)
		return
	}

	prog.chunkDone(d.Index)
	rep.ChunkComplete(reporter.ChunkOutcome{
		ChunkIndex: d.Index,
		Outcome:    outcomeName(result.Outcome),
		FinalCRF:   result.FinalCRF,
		Attempts:   result.Attempts,
	})

	if !cfg.KeepTmpFiles {
		_ = templife.RemoveSentinel(d.PreparedPath)
	}

	if result.Outcome == encode.Accepted || result.Outcome == encode.Skipped {
		select {
		case acceptCh <- concat.Accepted{Index: d.Index, ConvertedPath: result.ConvertedPath}:
		case <-ctx.Done():
			fail.Set(errors.NewCancelledError())
		case <-fail.Done():
		}
	}
}

// acquire waits for a semaphore permit, cancellation, or a sibling
// chunk's failure, whichever comes first. It returns false when the
// caller should abandon its chunk without doing any work.
func acquire(ctx context.Context, sem *worker.Semaphore, fail *failure.Flag) bool {
	if fail.IsSet() {
		return false
	}
	select {
	case <-sem.Chan():
		return true
	case <-ctx.Done():
		fail.Set(errors.NewCancelledError())
		return false
	case <-fail.Done():
		return false
	}
}

func outcomeName(o encode.Outcome) string {
	switch o {
	case encode.Accepted:
		return "accepted"
	case encode.Skipped:
		return "skipped"
	default:
		return "exhausted"
	}
}

// progressTracker aggregates per-chunk ffmpeg progress into the
// file-level snapshot the Reporter renders.
type progressTracker struct {
	mu          sync.Mutex
	rep         reporter.Reporter
	chunksTotal int
	chunksDone  int
	totalFrames uint64
	chunkFrames map[int]uint64
}

func newProgressTracker(chunksTotal int, totalFrames uint64, rep reporter.Reporter) *progressTracker {
	return &progressTracker{
		rep:         rep,
		chunksTotal: chunksTotal,
		totalFrames: totalFrames,
		chunkFrames: make(map[int]uint64),
	}
}

func (p *progressTracker) update(chunkIdx int, prog ffmpeg.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chunkFrames[chunkIdx] = prog.CurrentFrame

	var framesComplete uint64
	for _, f := range p.chunkFrames {
		framesComplete += f
	}
	percent := float32(0)
	if p.totalFrames > 0 {
		percent = float32(framesComplete) / float32(p.totalFrames) * 100
	}

	p.rep.EncodingProgress(reporter.ProgressSnapshot{
		CurrentFrame:   framesComplete,
		TotalFrames:    p.totalFrames,
		Percent:        percent,
		Speed:          prog.Speed,
		FPS:            prog.FPS,
		ETA:            prog.ETA,
		ChunksComplete: p.chunksDone,
		ChunksTotal:    p.chunksTotal,
	})
}

func (p *progressTracker) chunkDone(chunkIdx int) {
	p.mu.Lock()
	p.chunksDone++
	delete(p.chunkFrames, chunkIdx)
	p.mu.Unlock()
}

func audioDescription(meta ffprobe.AudioMeta) string {
	if !meta.Present {
		return "none"
	}
	return meta.CodecName
}

func reportCompletion(sourcePath, outputPath string, videoMeta ffprobe.VideoMeta, audioMeta ffprobe.AudioMeta, start time.Time, rep reporter.Reporter) error {
	originalSize, err := util.GetFileSize(sourcePath)
	if err != nil {
		return errors.NewIOError("failed to stat source file", err)
	}
	encodedSize, err := util.GetFileSize(outputPath)
	if err != nil {
		return errors.NewIOError("failed to stat output file", err)
	}

	elapsed := time.Since(start)
	avgSpeed := float32(0)
	if seconds := float64(videoMeta.TotalFrames) / float64(videoMeta.FPS); seconds > 0 && elapsed.Seconds() > 0 {
		avgSpeed = float32(seconds / elapsed.Seconds())
	}

	rep.EncodingComplete(reporter.EncodingOutcome{
		InputFile:    filepath.Base(sourcePath),
		OutputFile:   filepath.Base(outputPath),
		OriginalSize: originalSize,
		EncodedSize:  encodedSize,
		VideoStream:  videoMeta.CodecName,
		AudioStream:  audioDescription(audioMeta),
		TotalTime:    elapsed,
		AverageSpeed: avgSpeed,
		OutputPath:   outputPath,
	})
	return nil
}
