/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Command-line interface for Akaylee Repeats. Mines repeating byte markers
from a corpus whose file names carry the expected repeat counts, assembles gapped
record-boundary patterns from them and runs leave-k-out robustness checks.
*/

package main

import (
	"fmt"
	"os"

	"github.com/kleascm/akaylee-repeats/cmd/repeats/commands"
	"github.com/kleascm/akaylee-repeats/pkg/core"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	defaults := core.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "akaylee-repeats",
		Short: "Akaylee Repeats - infer repeating byte markers from expected counts",
		Long: `Akaylee Repeats reverse-engineers an unknown repeating marker in a family of
documents. Each file name supplies the number of times the marker should occur (for
example pages x copies); the miner grows byte strings that occur at least that often in
every document, and the assembler stitches their fragments into gapped patterns.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()

	// Configuration and logging
	pf.String("config", "", "Configuration file path")
	pf.String("log-level", "info", "Logging level (debug, info, warn, error)")
	pf.String("log-format", "custom", "Log format (text, json, custom)")
	pf.String("log-dir", "", "Also write logs to a timestamped file in this directory")
	pf.Int("log-max-files", 10, "Maximum number of log files to keep")
	pf.String("output", "text", "Report format (text, json)")
	pf.String("metrics-dir", "", "Write a JSON run summary into this directory")
	pf.Bool("dry-run", false, "Validate configuration and corpus paths and exit")

	// Corpus loading
	pf.String("name-pattern", defaults.Loader.NamePattern, "File name regexp; integer groups are multiplied into the repeat count")
	pf.Int64("max-file-size", defaults.Loader.MaxFileSize, "Skip files larger than this many bytes (0 = no limit)")

	// Miner
	pf.Int("max-word-len", defaults.Miner.MaxWordLen, "Stop growing words at this length")
	pf.Int("workers", defaults.Miner.Workers, "Parallel candidate checks (0 = number of CPUs)")
	pf.Bool("entry-parallel", false, "Check the documents of one candidate or pattern concurrently")
	pf.Duration("budget", 0, "Wall-clock budget for mining (0 = none)")
	pf.StringSlice("denylist", nil, `Noise substrings to exclude (Go escapes like "\x00\x00" or hex:0000)`)
	pf.String("anchors", defaults.Anchors, "Words seeding the vocabulary (auto, exact, final)")
	pf.Int("max-words", 50, "Final words listed in the report (0 = all)")

	// Assembler
	pf.Int("min-literal", defaults.Assembler.MinLiteral, "Shortest subword used as a pattern literal")
	pf.Int("min-gap", defaults.Assembler.MinGap, "Smallest gap between literals")
	pf.Int("max-gap", defaults.Assembler.MaxGap, "Largest gap between literals")
	pf.Int("fuzz", defaults.Assembler.Fuzz, "Documents allowed to violate the counts")
	pf.Int64("max-candidates", defaults.Assembler.MaxCandidates, "Bound on the pattern candidate space")
	pf.Int64("max-evaluations", 0, "Stop after this many pattern evaluations (0 = all)")
	pf.Duration("assemble-budget", 0, "Wall-clock budget for assembly (0 = none)")
	pf.Int("limit", defaults.Assembler.Limit, "Patterns kept per list (0 = all)")
	pf.Bool("verify", false, "Recheck every retained pattern with the reference counter")

	for key, flag := range map[string]string{
		"config":                    "config",
		"log.level":                 "log-level",
		"log.format":                "log-format",
		"log.output_dir":            "log-dir",
		"log.max_files":             "log-max-files",
		"output":                    "output",
		"metrics_dir":               "metrics-dir",
		"dry_run":                   "dry-run",
		"loader.name_pattern":       "name-pattern",
		"loader.max_file_size":      "max-file-size",
		"miner.max_word_len":        "max-word-len",
		"miner.workers":             "workers",
		"miner.entry_parallel":      "entry-parallel",
		"miner.budget":              "budget",
		"miner.denylist":            "denylist",
		"anchors":                   "anchors",
		"max_words":                 "max-words",
		"assembler.min_literal":     "min-literal",
		"assembler.min_gap":         "min-gap",
		"assembler.max_gap":         "max-gap",
		"assembler.fuzz":            "fuzz",
		"assembler.max_candidates":  "max-candidates",
		"assembler.max_evaluations": "max-evaluations",
		"assembler.workers":         "workers",
		"assembler.entry_parallel":  "entry-parallel",
		"assembler.budget":          "assemble-budget",
		"assembler.limit":           "limit",
		"assembler.verify":          "verify",
	} {
		viper.BindPFlag(key, pf.Lookup(flag))
	}

	mineCmd := &cobra.Command{
		Use:   "mine [paths...]",
		Short: "Mine candidate marker words from a corpus",
		Long: `Load the corpus, grow candidate words until no longer word satisfies every
document's repeat count, and report the final, exact and archived words. With --assemble
the subwords of the anchors are also combined into gapped patterns.`,
		RunE: commands.RunMine,
	}
	mineCmd.Flags().Bool("assemble", false, "Also run the gapped sequence assembler")
	mineCmd.Flags().String("archive-out", "", "Write every archived word to this JSON file")

	assembleCmd := &cobra.Command{
		Use:   "assemble [paths...]",
		Short: "Assemble gapped patterns from a vocabulary",
		Long: `Search patterns of up to three literals separated by fixed gaps. The vocabulary
comes from a word archive written by 'mine --archive-out', or from mining the corpus first.`,
		RunE: commands.RunAssemble,
	}
	assembleCmd.Flags().String("vocabulary", "", "Word archive to use instead of mining first")

	holdoutCmd := &cobra.Command{
		Use:   "holdout [paths...]",
		Short: "Rerun mining with one or two documents left out",
		Long: `Mine the full corpus and then every subset with k documents left out, reporting
which exclusions change the exact words. Useful to find documents whose repeat count in
the file name is wrong.`,
		RunE: commands.RunHoldout,
	}
	holdoutCmd.Flags().Int("k", defaults.Holdout.K, "Documents left out per run (1 or 2)")

	reproduceCmd := &cobra.Command{
		Use:   "reproduce [paths...]",
		Short: "Check that results do not depend on parallelism",
		Long: `Run the pipeline several times, alternating sequential, parallel and per-document
parallel evaluation, and compare a fingerprint of the words and patterns of every run.
Budgets are ignored so that every run completes.`,
		RunE: commands.RunReproduce,
	}
	reproduceCmd.Flags().Int("attempts", 3, "Number of pipeline runs")
	reproduceCmd.Flags().Bool("assemble", false, "Include gapped patterns in the comparison")

	rootCmd.AddCommand(mineCmd, assembleCmd, holdoutCmd, reproduceCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
