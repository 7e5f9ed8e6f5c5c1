// Package reporter provides progress reporting interfaces and
// implementations for the pipeline stages: probing, chunk planning,
// per-chunk CRF search, concatenation, and batch-level file progress.
package reporter

import "time"

// HardwareSummary contains hardware information.
type HardwareSummary struct {
	Hostname string
}

// InitializationSummary describes the current file after ffprobe has
// run, before planning begins.
type InitializationSummary struct {
	InputFile        string
	OutputFile       string
	Duration         string
	Resolution       string
	AudioDescription string
}

// PlanSummary describes the chunk plan chosen for the current file.
type PlanSummary struct {
	ChunkMode  string
	ChunkCount int
	TotalFrames uint64
	FPS        uint32
}

// EncodingConfigSummary contains the resolved encode parameters for
// the current file.
type EncodingConfigSummary struct {
	Encoder          string
	Preset           string
	Tune             string
	PixelFormat      string
	SVTAV1Params     string
	VMAFMin          float64
	VMAFMax          float64
	InitialCRF       int
	ThreadHint       int
	AudioCodec       string
	AudioDescription string
}

// ChunkSearchUpdate reports one CRF attempt within a chunk's search.
type ChunkSearchUpdate struct {
	ChunkIndex int
	Attempt    uint32
	CRF        int32
	VMAFScore  float64
	Decision   string
}

// ChunkOutcome reports a chunk's terminal search result.
type ChunkOutcome struct {
	ChunkIndex int
	Outcome    string
	FinalCRF   int32
	Attempts   uint32
}

// ProgressSnapshot contains aggregate encoding progress across the
// active chunk workers for a file.
type ProgressSnapshot struct {
	CurrentFrame   uint64
	TotalFrames    uint64
	Percent        float32
	Speed          float32
	FPS            float32
	ETA            time.Duration
	Bitrate        string
	ChunksComplete int
	ChunksTotal    int
}

// ValidationSummary contains validation results (duration and codec
// match checks only).
type ValidationSummary struct {
	Passed bool
	Steps  []ValidationStep
}

// ValidationStep represents a single validation check.
type ValidationStep struct {
	Name    string
	Passed  bool
	Details string
}

// EncodingOutcome contains final encoding results for one file.
type EncodingOutcome struct {
	InputFile    string
	OutputFile   string
	OriginalSize uint64
	EncodedSize  uint64
	VideoStream  string
	AudioStream  string
	TotalTime    time.Duration
	AverageSpeed float32
	OutputPath   string
}

// ReporterError contains error information.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}

// BatchStartInfo contains batch start metadata.
type BatchStartInfo struct {
	TotalFiles int
	FileList   []string
	OutputDir  string
}

// FileProgressContext contains current file index within a batch.
type FileProgressContext struct {
	CurrentFile int
	TotalFiles  int
}

// BatchSummary contains batch completion information.
type BatchSummary struct {
	SuccessfulCount       int
	TotalFiles            int
	TotalOriginalSize     uint64
	TotalEncodedSize      uint64
	TotalDuration         time.Duration
	AverageSpeed          float32
	FileResults           []FileResult
	ValidationPassedCount int
	ValidationFailedCount int
}

// FileResult contains per-file encoding result.
type FileResult struct {
	Filename  string
	Reduction float64
}

// StageProgress represents a generic stage update (used for coarse
// stage-transition messages: "probing", "materializing", "searching",
// "concatenating").
type StageProgress struct {
	Stage   string
	Percent float32
	Message string
	ETA     *time.Duration
}
