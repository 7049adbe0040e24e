/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: config.go
Description: Configuration for marker inference runs. Groups the loader, miner, assembler
and holdout settings that the command line and config files feed into the engine, with
defaults and validation.
*/

package core

import (
	"fmt"
	"runtime"
	"time"
)

// Anchor sources select which words seed the subword vocabulary
const (
	AnchorsAuto  = "auto"  // Exact words if any, otherwise the final word set
	AnchorsExact = "exact" // Only words whose counts match exactly
	AnchorsFinal = "final" // The final word set of the miner
)

// DefaultMaxWordLen bounds word growth when the corpus never converges
const DefaultMaxWordLen = 100

// Config is the full configuration of a run
type Config struct {
	Loader    LoaderConfig    `json:"loader" mapstructure:"loader"`
	Miner     MinerConfig     `json:"miner" mapstructure:"miner"`
	Assembler AssemblerConfig `json:"assembler" mapstructure:"assembler"`
	Holdout   HoldoutConfig   `json:"holdout" mapstructure:"holdout"`
	Anchors   string          `json:"anchors" mapstructure:"anchors"` // auto, exact or final
}

// LoaderConfig controls corpus discovery
type LoaderConfig struct {
	Paths       []string `json:"paths" mapstructure:"paths"`                 // Files, directories or @list files
	NamePattern string   `json:"name_pattern" mapstructure:"name_pattern"`   // Regexp; integer groups are multiplied
	MaxFileSize int64    `json:"max_file_size" mapstructure:"max_file_size"` // Larger files are skipped (0 = no limit)
}

// MinerConfig controls the word growth miner
type MinerConfig struct {
	MaxWordLen    int           `json:"max_word_len" mapstructure:"max_word_len"`     // Safety bound on word length
	Workers       int           `json:"workers" mapstructure:"workers"`               // Parallel candidate checks (0 = NumCPU)
	EntryParallel bool          `json:"entry_parallel" mapstructure:"entry_parallel"` // Check entries of one candidate concurrently
	Budget        time.Duration `json:"budget" mapstructure:"budget"`                 // Wall-clock budget (0 = none)
	Denylist      []string      `json:"denylist" mapstructure:"denylist"`             // Noise substrings, Go escapes or hex:...
}

// AssemblerConfig controls the gapped sequence assembler
type AssemblerConfig struct {
	MinLiteral     int           `json:"min_literal" mapstructure:"min_literal"`         // Shortest subword used as a literal
	MinGap         int           `json:"min_gap" mapstructure:"min_gap"`                 // Smallest gap between literals
	MaxGap         int           `json:"max_gap" mapstructure:"max_gap"`                 // Largest gap between literals
	Fuzz           int           `json:"fuzz" mapstructure:"fuzz"`                       // Entries allowed to violate the counts
	MaxCandidates  int64         `json:"max_candidates" mapstructure:"max_candidates"`   // Bound on the candidate space
	MaxEvaluations int64         `json:"max_evaluations" mapstructure:"max_evaluations"` // Stop after this many evaluations (0 = all)
	Workers        int           `json:"workers" mapstructure:"workers"`                 // Parallel pattern evaluations (0 = NumCPU)
	EntryParallel  bool          `json:"entry_parallel" mapstructure:"entry_parallel"`   // Check entries of one pattern concurrently
	Budget         time.Duration `json:"budget" mapstructure:"budget"`                   // Wall-clock budget (0 = none)
	Limit          int           `json:"limit" mapstructure:"limit"`                     // Keep at most this many patterns per list (0 = all)
	Verify         bool          `json:"verify" mapstructure:"verify"`                   // Recheck every retained pattern with the reference counter
}

// HoldoutConfig controls leave-k-out evaluation
type HoldoutConfig struct {
	K int `json:"k" mapstructure:"k"` // Entries left out per run (1 or 2)
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Loader:    DefaultLoaderConfig(),
		Miner:     DefaultMinerConfig(),
		Assembler: DefaultAssemblerConfig(),
		Holdout:   HoldoutConfig{K: 1},
		Anchors:   AnchorsAuto,
	}
}

// DefaultLoaderConfig returns the loader defaults
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		NamePattern: `repeats=(\d+)`,
		MaxFileSize: 512 * 1024 * 1024,
	}
}

// DefaultMinerConfig returns the miner defaults
func DefaultMinerConfig() MinerConfig {
	return MinerConfig{
		MaxWordLen: DefaultMaxWordLen,
		Workers:    runtime.NumCPU(),
	}
}

// DefaultAssemblerConfig returns the assembler defaults
func DefaultAssemblerConfig() AssemblerConfig {
	return AssemblerConfig{
		MinLiteral:    1,
		MinGap:        1,
		MaxGap:        50,
		MaxCandidates: 2_000_000,
		Workers:       runtime.NumCPU(),
		Limit:         20,
	}
}

// Validate checks the whole configuration
func (c *Config) Validate() error {
	switch c.Anchors {
	case AnchorsAuto, AnchorsExact, AnchorsFinal:
	default:
		return fmt.Errorf("%w: unsupported anchor source %q", ErrConfiguration, c.Anchors)
	}
	if err := c.Miner.Validate(); err != nil {
		return err
	}
	if err := c.Assembler.Validate(); err != nil {
		return err
	}
	if c.Holdout.K < 1 || c.Holdout.K > 2 {
		return fmt.Errorf("%w: holdout k must be 1 or 2, got %d", ErrConfiguration, c.Holdout.K)
	}
	return nil
}

// Validate checks the miner settings
func (c *MinerConfig) Validate() error {
	if c.MaxWordLen < 1 {
		return fmt.Errorf("%w: max_word_len must be positive", ErrConfiguration)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrConfiguration)
	}
	if c.Budget < 0 {
		return fmt.Errorf("%w: budget must not be negative", ErrConfiguration)
	}
	return nil
}

// Validate checks the assembler settings
func (c *AssemblerConfig) Validate() error {
	if c.MinLiteral < 1 {
		return fmt.Errorf("%w: min_literal must be positive", ErrConfiguration)
	}
	if c.MinGap < 0 {
		return fmt.Errorf("%w: min_gap must not be negative", ErrConfiguration)
	}
	if c.MaxGap < c.MinGap {
		return fmt.Errorf("%w: max_gap %d is below min_gap %d", ErrConfiguration, c.MaxGap, c.MinGap)
	}
	if c.Fuzz < 0 {
		return fmt.Errorf("%w: fuzz must not be negative", ErrConfiguration)
	}
	if c.MaxCandidates < 1 {
		return fmt.Errorf("%w: max_candidates must be positive", ErrConfiguration)
	}
	if c.Workers < 0 || c.Limit < 0 || c.MaxEvaluations < 0 || c.Budget < 0 {
		return fmt.Errorf("%w: workers, limit, max_evaluations and budget must not be negative", ErrConfiguration)
	}
	return nil
}
