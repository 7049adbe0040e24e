/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: mine.go
Description: The mine command. Loads the corpus, runs the inference pipeline and prints
the report, optionally dumping the word archive and assembling gapped patterns.
*/

package commands

import (
	"fmt"

	"github.com/kleascm/akaylee-repeats/pkg/core"
	"github.com/kleascm/akaylee-repeats/pkg/inference"
	"github.com/kleascm/akaylee-repeats/pkg/reporting"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunMine executes the mine command
func RunMine(cmd *cobra.Command, args []string) error {
	ctx, cancel, cfg, logger, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	defer cancel()
	defer logger.Close()
	log := logger.GetLogger()

	assemble, _ := cmd.Flags().GetBool("assemble")
	archiveOut, _ := cmd.Flags().GetString("archive-out")

	corpus, dry, err := loadCorpus(ctx, cfg, log)
	if err != nil || dry {
		return err
	}

	collector := startMetrics(ctx, log)
	pipeline, err := inference.NewPipeline(cfg,
		inference.WithPipelineLogger(log),
		inference.WithPipelineReporter(core.MultiReporter{core.NewLoggerReporter(log), collector}),
	)
	if err != nil {
		return err
	}

	result, err := pipeline.Run(ctx, corpus, assemble)
	if err != nil {
		return fmt.Errorf("mining failed: %w", err)
	}

	if archiveOut != "" && result.Mine != nil {
		if err := reporting.WriteArchive(archiveOut, result.Mine.Archive.Words()); err != nil {
			return err
		}
		log.WithField("path", archiveOut).Info("Archive written")
	}

	report := reporting.NewReport(result, viper.GetInt("max_words"))
	patterns := 0
	if result.Assembly != nil {
		patterns = len(result.Assembly.Good)
	}
	logger.LogStats(corpus.Len(), report.WordCount, len(report.Exact), patterns, map[string]interface{}{
		"run_id": result.RunID,
	})
	writeMetrics("mine", result.RunID, report, collector, log)
	return printReport(cmd, report)
}
