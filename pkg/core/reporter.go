/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reporter.go
Description: Reporter interface and implementations for live progress of marker inference.
Lets the miner and the assembler notify listeners of finished rounds and assembly progress.
*/

package core

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Reporter defines the interface for progress hooks
type Reporter interface {
	// OnRound is called after every growth round of the miner.
	OnRound(stats RoundStats)
	// OnAssembly is called periodically while patterns are evaluated.
	OnAssembly(stats AssemblyStats)
}

// LoggerReporter logs progress events
type LoggerReporter struct {
	logger logrus.FieldLogger
}

// NewLoggerReporter creates a new LoggerReporter
func NewLoggerReporter(logger logrus.FieldLogger) *LoggerReporter {
	return &LoggerReporter{logger: logger}
}

// OnRound logs a finished growth round
func (r *LoggerReporter) OnRound(stats RoundStats) {
	entry := r.logger.WithFields(logrus.Fields{
		"round":      stats.Round,
		"word_len":   stats.WordLen,
		"candidates": stats.Candidates,
		"survivors":  stats.Survivors,
		"archived":   stats.Archived,
		"elapsed":    stats.Elapsed,
	})
	if stats.Exhausted {
		entry.Warn("Growth round cut short by budget")
		return
	}
	entry.Info("Growth round finished")
}

// OnAssembly logs assembler progress
func (r *LoggerReporter) OnAssembly(stats AssemblyStats) {
	r.logger.WithFields(logrus.Fields{
		"evaluated": stats.Evaluated,
		"total":     stats.Total,
		"good":      stats.Good,
		"part":      stats.Part,
		"elapsed":   stats.Elapsed,
	}).Debug("Assembly progress")
}

// MultiReporter fans events out to several reporters in order
type MultiReporter []Reporter

// OnRound forwards the round to every reporter
func (m MultiReporter) OnRound(stats RoundStats) {
	for _, r := range m {
		r.OnRound(stats)
	}
}

// OnAssembly forwards the progress to every reporter
func (m MultiReporter) OnAssembly(stats AssemblyStats) {
	for _, r := range m {
		r.OnAssembly(stats)
	}
}

// NopReporter discards all events
type NopReporter struct{}

func (NopReporter) OnRound(RoundStats)       {}
func (NopReporter) OnAssembly(AssemblyStats) {}

// DiscardLogger returns a logger that drops everything
// Library defaults use it so callers opt in to log output
func DiscardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
