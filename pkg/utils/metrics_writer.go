/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics_writer.go
Description: Writes run summaries as JSON into a metrics directory, one subdirectory per
command, with file names carrying the timestamp and the run ID.
*/

package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// WriteMetricsResult writes result to <dir>/<kind>/<timestamp>_<kind>_<runID>.json
// and returns the file path
func WriteMetricsResult(dir string, kind string, runID uuid.UUID, result interface{}) (string, error) {
	if dir == "" {
		dir = "metrics"
	}
	metricsDir := filepath.Join(dir, kind)
	if err := os.MkdirAll(metricsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create metrics directory: %w", err)
	}

	// e.g. 2024-06-11_01-30-00_mine_6ba7b810-9dad-11d1-80b4-00c04fd430c8.json
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s_%s.json", timestamp, kind, runID)
	filePath := filepath.Join(metricsDir, filename)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write metrics file: %w", err)
	}
	return filePath, nil
}
