// Package config defines qcodec's process-scoped configuration record and
// its validating constructor.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/qcodec/qcodec/internal/errors"
)

// ChunkMode selects the chunk-partitioning strategy.
type ChunkMode int

const (
	// ChunkNone treats the whole file as a single search unit.
	ChunkNone ChunkMode = iota
	// ChunkFixedCount splits the file into exactly ChunkSize chunks.
	ChunkFixedCount
	// ChunkFixedLength splits the file into chunks of ChunkLengthSeconds.
	ChunkFixedLength
	// ChunkKeyframe splits the file at keyframe boundaries.
	ChunkKeyframe
)

// String implements fmt.Stringer.
func (m ChunkMode) String() string {
	switch m {
	case ChunkNone:
		return "NONE"
	case ChunkFixedCount:
		return "FIXED_COUNT"
	case ChunkFixedLength:
		return "FIXED_LENGTH"
	case ChunkKeyframe:
		return "KEYFRAME"
	default:
		return "UNKNOWN"
	}
}

// ParseChunkMode parses a chunk_mode configuration string.
func ParseChunkMode(s string) (ChunkMode, error) {
	switch s {
	case "NONE":
		return ChunkNone, nil
	case "FIXED_COUNT":
		return ChunkFixedCount, nil
	case "FIXED_LENGTH":
		return ChunkFixedLength, nil
	case "KEYFRAME":
		return ChunkKeyframe, nil
	default:
		return ChunkNone, fmt.Errorf("unknown chunk_mode %q", s)
	}
}

// VMAFOffsetMode selects how the CRF Controller grows its step on a miss.
type VMAFOffsetMode int

const (
	// OffsetThreshold grows the step by floor(deviation / offset_threshold).
	OffsetThreshold VMAFOffsetMode = iota
	// OffsetMultiplier grows the step by floor(deviation * offset_multiplier).
	OffsetMultiplier
)

// String implements fmt.Stringer.
func (m VMAFOffsetMode) String() string {
	if m == OffsetMultiplier {
		return "MULTIPLIER"
	}
	return "THRESHOLD"
}

// ParseVMAFOffsetMode parses a vmaf_offset_mode configuration string.
func ParseVMAFOffsetMode(s string) (VMAFOffsetMode, error) {
	switch s {
	case "THRESHOLD":
		return OffsetThreshold, nil
	case "MULTIPLIER":
		return OffsetMultiplier, nil
	default:
		return OffsetThreshold, fmt.Errorf("unknown vmaf_offset_mode %q", s)
	}
}

// Config is qcodec's process-scoped, immutable-after-load configuration
// record — the typed replacement for the original tool's dynamically typed
// settings dictionary (spec's Design Notes: "downstream code cannot
// observe unchecked strings").
type Config struct {
	// Paths
	InputDir string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`
	TmpDir   string `yaml:"tmp_dir"`

	// Extensions ("*" matches any)
	InputExt  string `yaml:"input_ext"`
	OutputExt string `yaml:"output_ext"`

	// Chunking
	ChunkMode          ChunkMode `yaml:"-"`
	ChunkModeStr       string    `yaml:"chunk_mode"`
	ChunkSize          int       `yaml:"chunk_size"`
	ChunkLengthSeconds int       `yaml:"chunk_length_seconds"`

	// Encoder
	AV1Preset              int    `yaml:"av1_preset"`
	PixelFormat            string `yaml:"pixel_format"`
	TuneMode               int    `yaml:"tune_mode"`
	KeyframeIntervalFrames int    `yaml:"keyframe_interval_frames"`
	AudioBitrate           string `yaml:"audio_bitrate"`
	DetectAudioBitrate     bool   `yaml:"detect_audio_bitrate"`

	// Search
	InitialCRF           int            `yaml:"initial_crf"`
	InitialCRFStep       int            `yaml:"initial_crf_step"`
	VMAFMin              float64        `yaml:"vmaf_min"`
	VMAFMax              float64        `yaml:"vmaf_max"`
	VMAFOffsetThreshold  int            `yaml:"vmaf_offset_threshold"`
	VMAFOffsetMultiplier float64        `yaml:"vmaf_offset_multiplier"`
	VMAFOffsetMode       VMAFOffsetMode `yaml:"-"`
	VMAFOffsetModeStr    string         `yaml:"vmaf_offset_mode"`
	MaxAttempts          int            `yaml:"max_attempts"`

	// Concurrency
	FileWorkers  int `yaml:"file_workers"`
	ChunkWorkers int `yaml:"chunk_workers"`

	// Misc
	KeepTmpFiles  bool `yaml:"keep_tmp_files"`
	FFmpegVerbose int  `yaml:"ffmpeg_verbose"` // 0,1,2
}

// Default returns a Config populated with the reference defaults, still
// subject to Validate once paths are filled in.
func Default() Config {
	return Config{
		InputExt:               "*",
		OutputExt:              "mkv",
		ChunkMode:              ChunkKeyframe,
		ChunkModeStr:           "KEYFRAME",
		ChunkSize:              4,
		ChunkLengthSeconds:     60,
		AV1Preset:              6,
		PixelFormat:            "yuv420p10le",
		TuneMode:               0,
		KeyframeIntervalFrames: 240,
		AudioBitrate:           "192k",
		DetectAudioBitrate:     false,
		InitialCRF:             28,
		InitialCRFStep:         2,
		VMAFMin:                90,
		VMAFMax:                95,
		VMAFOffsetThreshold:    5,
		VMAFOffsetMultiplier:   1.3,
		VMAFOffsetMode:         OffsetThreshold,
		VMAFOffsetModeStr:      "THRESHOLD",
		MaxAttempts:            8,
		FileWorkers:            1,
		ChunkWorkers:           2,
		KeepTmpFiles:           false,
		FFmpegVerbose:          0,
	}
}

// Validate checks every invariant from the Data Model section and resolves
// the string-typed enum fields (as loaded from YAML/CLI) into their typed
// form. It must be called once, by the single validating constructor path,
// before the Config is used anywhere else.
func (c *Config) Validate() error {
	if c.InputDir == "" || c.OutputDir == "" || c.TmpDir == "" {
		return errors.NewConfigError("input_dir, output_dir and tmp_dir are required")
	}
	absIn, err := filepath.Abs(c.InputDir)
	if err != nil {
		return errors.NewConfigError("invalid input_dir: " + err.Error())
	}
	absOut, err := filepath.Abs(c.OutputDir)
	if err != nil {
		return errors.NewConfigError("invalid output_dir: " + err.Error())
	}
	if absIn == absOut {
		return errors.NewConfigError("input_dir and output_dir must differ")
	}
	absTmp, err := filepath.Abs(c.TmpDir)
	if err != nil {
		return errors.NewConfigError("invalid tmp_dir: " + err.Error())
	}
	if absTmp == absIn || absTmp == absOut {
		return errors.NewConfigError("tmp_dir must be distinct from input_dir and output_dir")
	}

	if c.InputExt == "" {
		c.InputExt = "*"
	}
	if c.OutputExt == "" {
		return errors.NewConfigError("output_ext is required")
	}

	mode, err := ParseChunkMode(c.ChunkModeStr)
	if err != nil {
		return errors.NewConfigError(err.Error())
	}
	c.ChunkMode = mode
	if mode == ChunkFixedCount && c.ChunkSize < 1 {
		return errors.NewConfigError("chunk_size must be >= 1 for FIXED_COUNT")
	}
	if mode == ChunkFixedLength && c.ChunkLengthSeconds < 1 {
		return errors.NewConfigError("chunk_length_seconds must be >= 1 for FIXED_LENGTH")
	}

	if c.AV1Preset < 0 || c.AV1Preset > 12 {
		return errors.NewConfigError("av1_preset must be in [0,12]")
	}
	if c.TuneMode != 0 && c.TuneMode != 1 {
		return errors.NewConfigError("tune_mode must be 0 or 1")
	}
	if c.KeyframeIntervalFrames < 1 {
		return errors.NewConfigError("keyframe_interval_frames must be >= 1")
	}

	if c.InitialCRF < 1 || c.InitialCRF > 63 {
		return errors.NewConfigError("initial_crf must be in [1,63]")
	}
	if c.InitialCRFStep < 1 {
		return errors.NewConfigError("initial_crf_step must be >= 1")
	}
	if c.VMAFMin < 0 || c.VMAFMax > 100 || c.VMAFMin > c.VMAFMax {
		return errors.NewConfigError("vmaf_min/vmaf_max must satisfy 0 <= vmaf_min <= vmaf_max <= 100")
	}
	if c.VMAFOffsetThreshold < 1 {
		return errors.NewConfigError("vmaf_offset_threshold must be >= 1")
	}
	if c.VMAFOffsetMultiplier <= 0 {
		return errors.NewConfigError("vmaf_offset_multiplier must be > 0")
	}
	offsetMode, err := ParseVMAFOffsetMode(c.VMAFOffsetModeStr)
	if err != nil {
		return errors.NewConfigError(err.Error())
	}
	c.VMAFOffsetMode = offsetMode
	if c.MaxAttempts < 1 {
		return errors.NewConfigError("max_attempts must be >= 1")
	}

	if c.FileWorkers < 1 {
		return errors.NewConfigError("file_workers must be >= 1")
	}
	if c.ChunkWorkers < 1 {
		return errors.NewConfigError("chunk_workers must be >= 1")
	}
	if c.FFmpegVerbose < 0 || c.FFmpegVerbose > 2 {
		return errors.NewConfigError("ffmpeg_verbose must be in {0,1,2}")
	}

	return nil
}

// PreparedDir is the workspace subdirectory holding prepared (lossless) chunks.
func (c *Config) PreparedDir() string { return filepath.Join(c.TmpDir, "prepared") }

// ConvertedDir is the workspace subdirectory holding converted (AV1) chunks.
func (c *Config) ConvertedDir() string { return filepath.Join(c.TmpDir, "converted") }
