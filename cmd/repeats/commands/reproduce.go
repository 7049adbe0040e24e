/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reproduce.go
Description: The reproduce command. Reruns the pipeline under different parallel settings
and reports whether every run produced the same result.
*/

package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kleascm/akaylee-repeats/pkg/analysis"
	"github.com/kleascm/akaylee-repeats/pkg/reporting"
	"github.com/spf13/cobra"
)

// RunReproduce executes the reproduce command
func RunReproduce(cmd *cobra.Command, args []string) error {
	ctx, cancel, cfg, logger, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	defer cancel()
	defer logger.Close()
	log := logger.GetLogger()

	attempts, _ := cmd.Flags().GetInt("attempts")
	assemble, _ := cmd.Flags().GetBool("assemble")

	corpus, dry, err := loadCorpus(ctx, cfg, log)
	if err != nil || dry {
		return err
	}

	runID := uuid.New()
	collector := startMetrics(ctx, log)
	harness := analysis.NewReproducibilityHarness(cfg, log.WithField("run_id", runID))
	result, err := harness.Run(ctx, corpus, attempts, assemble)
	if err != nil {
		return err
	}

	report := reporting.NewReproducibilityReport(runID, result)
	writeMetrics("reproduce", runID, report, collector, log)
	if err := printReport(cmd, report); err != nil {
		return err
	}
	if !result.Reproducible {
		return fmt.Errorf("%d of %d attempts disagree with the first", result.Mismatches, len(result.Attempts))
	}
	return nil
}
