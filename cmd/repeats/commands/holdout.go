/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: holdout.go
Description: The holdout command. Reruns mining with every combination of one or two
documents left out and reports which exclusions change the exact words.
*/

package commands

import (
	"github.com/google/uuid"
	"github.com/kleascm/akaylee-repeats/pkg/analysis"
	"github.com/kleascm/akaylee-repeats/pkg/inference"
	"github.com/kleascm/akaylee-repeats/pkg/reporting"
	"github.com/spf13/cobra"
)

// RunHoldout executes the holdout command
func RunHoldout(cmd *cobra.Command, args []string) error {
	ctx, cancel, cfg, logger, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	defer cancel()
	defer logger.Close()
	log := logger.GetLogger()

	if cmd.Flags().Changed("k") {
		cfg.Holdout.K, _ = cmd.Flags().GetInt("k")
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	corpus, dry, err := loadCorpus(ctx, cfg, log)
	if err != nil || dry {
		return err
	}

	runID := uuid.New()
	collector := startMetrics(ctx, log)
	pipeline, err := inference.NewPipeline(cfg,
		inference.WithPipelineLogger(log.WithField("run_id", runID)),
		inference.WithPipelineReporter(collector),
	)
	if err != nil {
		return err
	}

	result, err := analysis.NewHoldoutAnalyzer(pipeline, log).Run(ctx, corpus, cfg.Holdout.K)
	if err != nil {
		return err
	}

	report := reporting.NewHoldoutReport(runID, result)
	writeMetrics("holdout", runID, report, collector, log)
	return printReport(cmd, report)
}
