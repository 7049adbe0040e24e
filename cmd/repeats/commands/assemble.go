/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: assemble.go
Description: The assemble command. Searches gapped patterns over a vocabulary read from
a word archive, or mines the corpus first when no archive is given.
*/

package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kleascm/akaylee-repeats/pkg/core"
	"github.com/kleascm/akaylee-repeats/pkg/inference"
	"github.com/kleascm/akaylee-repeats/pkg/reporting"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunAssemble executes the assemble command
func RunAssemble(cmd *cobra.Command, args []string) error {
	ctx, cancel, cfg, logger, err := prepare(cmd, args)
	if err != nil {
		return err
	}
	defer cancel()
	defer logger.Close()
	log := logger.GetLogger()

	vocabPath, _ := cmd.Flags().GetString("vocabulary")
	var vocab [][]byte
	if vocabPath != "" {
		words, err := reporting.ReadArchive(vocabPath)
		if err != nil {
			return err
		}
		vocab = inference.Subwords(words, cfg.Assembler.MinLiteral)
		log.WithFields(logrus.Fields{
			"archive":    vocabPath,
			"words":      len(words),
			"vocabulary": len(vocab),
		}).Info("Vocabulary loaded")
	}

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

	var result *inference.Result
	if vocab == nil {
		result, err = pipeline.Run(ctx, corpus, true)
		if err != nil {
			return fmt.Errorf("assembly failed: %w", err)
		}
	} else {
		result = &inference.Result{RunID: uuid.New(), Corpus: corpus, Vocabulary: vocab}
		result.Assembly, err = pipeline.Assemble(ctx, corpus, vocab, log.WithField("run_id", result.RunID))
		if err != nil {
			return err
		}
	}

	if a := result.Assembly; a != nil {
		logger.LogCandidateSpace(a.VocabSize, a.MinGap, a.MaxGap, a.SpaceSize, a.Truncated)
		for _, m := range a.Good {
			logger.LogPattern(m.Pattern.String(), m.Class.String(), m.Counts)
		}
	}

	report := reporting.NewReport(result, viper.GetInt("max_words"))
	writeMetrics("assemble", result.RunID, report, collector, log)
	return printReport(cmd, report)
}
