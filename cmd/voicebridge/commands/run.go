package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	audioimpl "github.com/foxseedlab/voicebridge/external/audio"
	configloader "github.com/foxseedlab/voicebridge/external/config"
	consoleimpl "github.com/foxseedlab/voicebridge/external/console"
	repositoryimpl "github.com/foxseedlab/voicebridge/external/repository"
	synthesizerimpl "github.com/foxseedlab/voicebridge/external/synthesizer"
	transcodeimpl "github.com/foxseedlab/voicebridge/external/transcode"
	transcriberimpl "github.com/foxseedlab/voicebridge/external/transcriber"
	translatorimpl "github.com/foxseedlab/voicebridge/external/translator"
	webhookimpl "github.com/foxseedlab/voicebridge/external/webhook"
	"github.com/foxseedlab/voicebridge/internal/audio"
	"github.com/foxseedlab/voicebridge/internal/config"
	"github.com/foxseedlab/voicebridge/internal/metrics"
	"github.com/foxseedlab/voicebridge/internal/pipeline"
)

const metricsShutdownTimeout = 5 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interpreting pipeline",
	RunE:  runPipeline,
}

func init() {
	registerRunFlags(runCmd)
}

func registerRunFlags(cmd *cobra.Command) {
	cmd.Flags().Int("input-device", audio.DefaultDeviceID, "capture device index; -1 selects the system default")
	cmd.Flags().Int("output-device", audio.DefaultDeviceID, "playback device index; -1 selects the system default")
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	slog.Info("startup: loading configuration")
	cfg, err := configloader.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	applyDeviceFlags(cmd, cfg)
	initLogger(cfg)
	slog.Info("startup: configuration loaded",
		"env", cfg.Env,
		"transcriber", cfg.TranscriberProvider,
		"translator", cfg.TranslatorProvider,
		"source_language", cfg.SourceLanguage,
		"target_language", cfg.TargetLanguage)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	driver, err := do.Invoke[audio.Driver](injector)
	if err != nil {
		return fmt.Errorf("resolve audio driver: %w", err)
	}
	defer func() {
		if err := driver.Terminate(); err != nil {
			slog.Warn("audio driver terminate failed", "error", err)
		}
	}()

	controller, err := do.Invoke[*pipeline.Controller](injector)
	if err != nil {
		return fmt.Errorf("resolve pipeline controller: %w", err)
	}

	var metricsServer *metrics.Server
	if cfg.MetricsAddr != "" {
		metricsServer = metrics.NewServer(cfg.MetricsAddr)
		go metricsServer.Start()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("startup: entering pipeline run loop")
	runErr := controller.Run(ctx)

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Warn("metrics listener shutdown failed", "error", err)
		}
	}
	return runErr
}

func applyDeviceFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("input-device") {
		cfg.InputDeviceID, _ = cmd.Flags().GetInt("input-device")
	}
	if cmd.Flags().Changed("output-device") {
		cfg.OutputDeviceID, _ = cmd.Flags().GetInt("output-device")
	}
}

// initLogger routes structured logs to stderr. The console owns stdout while
// the pipeline runs.
func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	repositoryimpl.RegisterDI(injector)
	audioimpl.RegisterDI(injector)
	transcriberimpl.RegisterDI(injector)
	translatorimpl.RegisterDI(injector)
	synthesizerimpl.RegisterDI(injector)
	transcodeimpl.RegisterDI(injector)
	consoleimpl.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	pipeline.RegisterDI(injector)

	return injector
}
