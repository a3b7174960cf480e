package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/media-compress/internal/cli"
	"github.com/fpang/media-compress/internal/config"
	"github.com/fpang/media-compress/internal/logging"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

// CLI flags
var (
	inputFlag     string
	outputFlag    string
	qualityFlag   int
	threadsFlag   int
	overwriteFlag bool
	maxDepthFlag  int
	configFlag    string
	reportFlag    string
	metricsFlag   bool
	logLevelFlag  string
)

// rootCmd is the main Cobra command for the media-compress CLI.
var rootCmd = &cobra.Command{
	Use:   "media-compress",
	Short: "Batch-recompress images to size-adaptive JPEG",
	Long: `Media Compress walks a file or directory of images (JPEG, PNG, WebP, TIFF, BMP),
re-encodes every image as JPEG and mirrors the directory structure under the
output path. Larger files get a lower quality: -10 above 5 MiB and -20 above
20 MiB, never below 5.

Existing outputs are skipped unless --overwrite is given, so an interrupted
run can simply be started again.

Examples:
  media-compress -i ./photos -o ./photos-small
  media-compress -i ./photos -o ./out -q 50 -t 4 --overwrite
  media-compress -i scan.tiff -o scan.jpg
  media-compress --config media-compress.yaml --report run.json.zst
  media-compress  # Interactive mode - prompts for input and output`,
	SilenceUsage: true,
	Run:          runMain,
}

func init() {
	rootCmd.Version = version
	rootCmd.Flags().StringVarP(&inputFlag, "input", "i", "", "Input image file or directory")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output file (single input) or directory")
	rootCmd.Flags().IntVarP(&qualityFlag, "quality", "q", config.DefaultQuality, "Base JPEG quality (1-100), lowered for large files")
	rootCmd.Flags().IntVarP(&threadsFlag, "threads", "t", 0, "Number of parallel workers (0 = one per logical CPU)")
	rootCmd.Flags().BoolVar(&overwriteFlag, "overwrite", false, "Re-encode files whose output already exists")
	rootCmd.Flags().IntVar(&maxDepthFlag, "max-depth", 0, "Maximum recursion depth (0 = unlimited)")
	rootCmd.Flags().StringVar(&configFlag, "config", "", "YAML config file; explicit flags override its values")
	rootCmd.Flags().StringVar(&reportFlag, "report", "", "Write a JSON run report (.json, .json.gz or .json.zst)")
	rootCmd.Flags().BoolVar(&metricsFlag, "metrics", false, "Print an EMF metrics line when the run finishes")
	rootCmd.Flags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error (default from "+logging.LevelEnv+")")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) {
	config.LoadDotEnv()

	cfg, err := buildConfig(cmd)
	if err != nil {
		logging.Init(logLevelFlag)
		cli.HandleFatalError(err)
	}
	logging.Init(cfg.LogLevel)

	if cfg.Input == "" && cli.IsInteractive(os.Stdin) {
		cfg.Input = cli.PromptForPath(os.Stdin, os.Stdout, "Input path", "")
	}
	if cfg.Output == "" && cli.IsInteractive(os.Stdin) {
		cfg.Output = cli.PromptForPath(os.Stdin, os.Stdout, "Output path", "")
	}
	if err := cfg.Validate(); err != nil {
		cli.HandleFatalError(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout, cli.NewProgressPrinter(os.Stdout, cli.ResolvePath(cfg.Input))); err != nil {
		cli.HandleFatalError(err)
	}
	if ctx.Err() != nil {
		log.Warn().Msg("Run interrupted; unfinished files are listed as errors")
	}
}

// buildConfig layers defaults, the optional config file and explicitly set flags.
func buildConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.DefaultConfig()
	if configFlag != "" {
		loaded, err := config.LoadFile(configFlag)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input = inputFlag
	}
	if flags.Changed("output") {
		cfg.Output = outputFlag
	}
	if flags.Changed("quality") || configFlag == "" {
		cfg.Quality = qualityFlag
	}
	if flags.Changed("threads") {
		cfg.Workers = threadsFlag
	}
	if flags.Changed("overwrite") {
		cfg.Overwrite = overwriteFlag
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth = maxDepthFlag
	}
	if flags.Changed("report") {
		cfg.ReportPath = reportFlag
	}
	if flags.Changed("metrics") {
		cfg.Metrics = metricsFlag
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevelFlag
	}
	return cfg, nil
}
