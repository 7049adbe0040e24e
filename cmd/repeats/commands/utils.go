/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the Akaylee Repeats commands. Provides configuration
loading, logging setup, corpus loading and report output used by every command.
*/

package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/akaylee-repeats/pkg/core"
	"github.com/kleascm/akaylee-repeats/pkg/loader"
	"github.com/kleascm/akaylee-repeats/pkg/logging"
	"github.com/kleascm/akaylee-repeats/pkg/monitoring"
	"github.com/kleascm/akaylee-repeats/pkg/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// LoadConfig loads configuration from files and environment
// Environment variables use the REPEATS_ prefix, e.g. REPEATS_MINER_WORKERS.
func LoadConfig() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("REPEATS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	return nil
}

// BuildConfig decodes the run configuration and appends the positional corpus paths
func BuildConfig(args []string) (*core.Config, error) {
	cfg := core.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrConfiguration, err)
	}
	cfg.Loader.Paths = append(cfg.Loader.Paths, args...)
	if len(cfg.Loader.Paths) == 0 {
		return nil, fmt.Errorf("%w: no corpus paths given", core.ErrConfiguration)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetupLogging configures the logging system from the log.* settings
func SetupLogging() (*logging.Logger, error) {
	config := &logging.LoggerConfig{
		Level:     logging.LogLevel(viper.GetString("log.level")),
		Format:    logging.LogFormat(viper.GetString("log.format")),
		OutputDir: viper.GetString("log.output_dir"),
		MaxFiles:  viper.GetInt("log.max_files"),
		Timestamp: true,
		Colors:    isTerminal(os.Stderr),
	}
	logger, err := logging.NewLogger(config)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// isTerminal reports whether f is a character device
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// prepare is the common start of every command: config, logging and a cancellable context
func prepare(cmd *cobra.Command, args []string) (context.Context, context.CancelFunc, *core.Config, *logging.Logger, error) {
	if err := LoadConfig(); err != nil {
		return nil, nil, nil, nil, err
	}
	logger, err := SetupLogging()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	cfg, err := BuildConfig(args)
	if err != nil {
		logger.Close()
		return nil, nil, nil, nil, err
	}
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	return ctx, cancel, cfg, logger, nil
}

// loadCorpus loads the corpus, or only lists its files in dry-run mode
func loadCorpus(ctx context.Context, cfg *core.Config, logger logrus.FieldLogger) (*core.Corpus, bool, error) {
	l, err := loader.New(cfg.Loader, logger)
	if err != nil {
		return nil, false, err
	}

	if viper.GetBool("dry_run") {
		paths, err := l.Paths(ctx)
		if err != nil {
			return nil, false, err
		}
		usable := 0
		for _, p := range paths {
			if n, ok := l.Multiplicity(filepath.Base(p)); ok && n > 0 {
				usable++
			}
		}
		logger.WithFields(logrus.Fields{
			"files":  len(paths),
			"usable": usable,
		}).Info("Dry run: configuration is valid")
		return nil, true, nil
	}

	corpus, err := l.Load(ctx)
	if err != nil {
		return nil, false, err
	}
	return corpus, false, nil
}

// startMetrics starts a collector that samples the run until writeMetrics stops it
func startMetrics(ctx context.Context, logger logrus.FieldLogger) *monitoring.MetricsCollector {
	collector := monitoring.NewMetricsCollector(time.Second, logger)
	if err := collector.Start(ctx); err != nil {
		logger.WithError(err).Warn("Failed to start metrics collector")
	}
	return collector
}

// runSummary is the file written to the metrics directory
type runSummary struct {
	Report  interface{}            `json:"report"`
	Metrics *monitoring.RunMetrics `json:"metrics"`
}

// writeMetrics stops the collector and stores a run summary when --metrics-dir is set
func writeMetrics(kind string, runID uuid.UUID, report interface{}, collector *monitoring.MetricsCollector, logger logrus.FieldLogger) {
	collector.Stop()
	dir := viper.GetString("metrics_dir")
	if dir == "" {
		return
	}
	collector.SetMetadata("run_id", runID.String())
	collector.SetMetadata("command", kind)
	summary := runSummary{Report: report, Metrics: collector.Snapshot()}
	path, err := utils.WriteMetricsResult(dir, kind, runID, summary)
	if err != nil {
		logger.WithError(err).Warn("Failed to write metrics")
		return
	}
	logger.WithField("path", path).Info("Metrics written")
}

type renderer interface {
	Render(w io.Writer, format string) error
}

// printReport renders to the command's stdout in the configured format
func printReport(cmd *cobra.Command, r renderer) error {
	return r.Render(cmd.OutOrStdout(), viper.GetString("output"))
}
