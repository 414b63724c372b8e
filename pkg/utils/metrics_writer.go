/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics_writer.go
Description: Utility for writing run summaries to a metrics directory. Handles
timestamped, versioned and kind-specific subdirectory naming, and writes JSON files
for later comparison across runs.
*/

package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// WriteRunSummary writes summary as JSON below dir/kind with a timestamped, versioned
// name such as 2024-06-11_01-30-00_batch_v1.0.0.json, and returns the file path
func WriteRunSummary(dir, kind, version string, summary interface{}) (string, error) {
	if dir == "" {
		dir = "metrics"
	}
	if kind == "" {
		return "", fmt.Errorf("summary kind must not be empty")
	}

	metricsDir := filepath.Join(dir, kind)
	if err := os.MkdirAll(metricsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create metrics directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s_v%s.json", timestamp, kind, version)
	filePath := filepath.Join(metricsDir, filename)

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal summary: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write metrics file: %w", err)
	}

	return filePath, nil
}
