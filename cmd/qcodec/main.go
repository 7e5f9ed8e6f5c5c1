// Command qcodec is the CLI entry point for quality-targeted AV1 encoding.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/qcodec/qcodec/internal/config"
	"github.com/qcodec/qcodec/internal/dispatch"
	"github.com/qcodec/qcodec/internal/logging"
	"github.com/qcodec/qcodec/internal/pipeline"
	"github.com/qcodec/qcodec/internal/reporter"
	"github.com/qcodec/qcodec/internal/util"
)

const appVersion = "0.1.0"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "qcodec",
		Short: "Quality-targeted AV1 video encoder",
	}
	root.AddCommand(newEncodeCommand())
	root.AddCommand(newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("qcodec version %s\n", appVersion)
			return nil
		},
	}
}

type encodeFlags struct {
	input       string
	output      string
	configPath  string
	vmafMin     float64
	vmafMax     float64
	chunkMode   string
	chunkSize   int
	chunkLength int
	fileWorkers int
	chunkWorker int
	keepTmp     bool
	jsonOutput  bool
	verbose     bool
}

func newEncodeCommand() *cobra.Command {
	var flags encodeFlags

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode video files to AV1 via CRF search against a VMAF window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd.Context(), flags)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&flags.input, "input", "i", "", "Input video file or directory (required)")
	fs.StringVarP(&flags.output, "output", "o", "", "Output directory (required)")
	fs.StringVarP(&flags.configPath, "config", "c", "", "Path to a settings file (defaults to the standard search locations)")
	fs.Float64Var(&flags.vmafMin, "vmaf-min", 0, "Lower bound of the accepted VMAF window (0 = use config default)")
	fs.Float64Var(&flags.vmafMax, "vmaf-max", 0, "Upper bound of the accepted VMAF window (0 = use config default)")
	fs.StringVar(&flags.chunkMode, "chunk-mode", "", "Chunk partitioning strategy: NONE, FIXED_COUNT, FIXED_LENGTH, KEYFRAME")
	fs.IntVar(&flags.chunkSize, "chunk-size", 0, "Chunk count for FIXED_COUNT mode")
	fs.IntVar(&flags.chunkLength, "chunk-length", 0, "Chunk length in seconds for FIXED_LENGTH mode")
	fs.IntVar(&flags.fileWorkers, "file-workers", 0, "Concurrent files in flight (0 = use config default)")
	fs.IntVar(&flags.chunkWorker, "chunk-workers", 0, "Concurrent chunk searches per file (0 = use config default)")
	fs.BoolVar(&flags.keepTmp, "keep-tmp-files", false, "Keep the per-file temp workspace instead of removing it on success")
	fs.BoolVar(&flags.jsonOutput, "json", false, "Emit newline-delimited JSON events instead of terminal output")
	fs.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug-level diagnostic logging")

	return cmd
}

func runEncode(ctx context.Context, flags encodeFlags) error {
	if flags.input == "" {
		return fmt.Errorf("input path is required (-i/--input)")
	}
	if flags.output == "" {
		return fmt.Errorf("output directory is required (-o/--output)")
	}

	level := logging.LevelInfo
	if flags.verbose {
		level = logging.LevelDebug
	}
	logging.Init(level, os.Stderr)
	defer logging.CloseGlobalQueue(context.Background())

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	if cfg.TmpDir == "" {
		cfg.TmpDir = filepath.Join(os.TempDir(), "qcodec")
		if err := util.EnsureDirectory(cfg.TmpDir); err != nil {
			return fmt.Errorf("failed to create tmp_dir: %w", err)
		}
	}

	inputPath, err := filepath.Abs(flags.input)
	if err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}
	outputPath, err := filepath.Abs(flags.output)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	cfg.OutputDir = outputPath

	inputInfo, err := os.Stat(inputPath)
	if err != nil {
		return fmt.Errorf("input path does not exist: %s", inputPath)
	}
	if inputInfo.IsDir() {
		cfg.InputDir = inputPath
	} else {
		cfg.InputDir = filepath.Dir(inputPath)
	}

	if err := util.EnsureDirectory(outputPath); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var rep reporter.Reporter
	if flags.jsonOutput {
		rep = reporter.NewJSONReporter()
	} else {
		rep = reporter.NewTerminalReporter()
	}
	rep.Hardware(reporter.HardwareSummary{Hostname: util.GetSystemInfo().Hostname})

	ctx, cancel := installSignalHandler(ctx)
	defer cancel()

	if inputInfo.IsDir() {
		_, err = dispatch.Run(ctx, cfg, rep)
		return err
	}

	singleOutput := util.ResolveOutputPath(inputPath, outputPath, cfg.OutputExt)
	return pipeline.Run(ctx, cfg, inputPath, singleOutput, rep)
}

func loadConfig(flags encodeFlags) (config.Config, error) {
	path := flags.configPath
	if path == "" {
		path = config.FindFile()
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config %s: %w", path, err)
		}
		cfg = loaded
	}

	if flags.vmafMin > 0 {
		cfg.VMAFMin = flags.vmafMin
	}
	if flags.vmafMax > 0 {
		cfg.VMAFMax = flags.vmafMax
	}
	if flags.chunkMode != "" {
		cfg.ChunkModeStr = flags.chunkMode
	}
	if flags.chunkSize > 0 {
		cfg.ChunkSize = flags.chunkSize
	}
	if flags.chunkLength > 0 {
		cfg.ChunkLengthSeconds = flags.chunkLength
	}
	if flags.fileWorkers > 0 {
		cfg.FileWorkers = flags.fileWorkers
	}
	if flags.chunkWorker > 0 {
		cfg.ChunkWorkers = flags.chunkWorker
	}
	if flags.keepTmp {
		cfg.KeepTmpFiles = true
	}
	return cfg, nil
}

// installSignalHandler tries to make the process its own process-group
// leader and arranges for the first SIGINT/SIGTERM to cancel ctx, which
// stops the ffmpeg children started with that context. A second signal is
// re-sent to the whole process group when the group was formed, and only
// to this process otherwise.
func installSignalHandler(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	haveGroup := unix.Setpgid(0, 0) == nil

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		cancel()
		<-sigCh
		if haveGroup {
			_ = unix.Kill(-os.Getpid(), sig.(syscall.Signal))
		} else {
			_ = unix.Kill(os.Getpid(), sig.(syscall.Signal))
		}
	}()

	return ctx, cancel
}
