package engine

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafePathChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizePathSegment turns a configuration or policy name into a single folder name.
func sanitizePathSegment(name string) string {
	cleaned := strings.Trim(unsafePathChars.ReplaceAllString(name, "_"), "_.")
	if cleaned == "" {
		return "unnamed"
	}

	return cleaned
}

func getResultFolder(b *BacktestEngineV1, policyName string, configName string, dataName string) string {
	// Create base folders for policy and config
	policyFolder := filepath.Join(b.resultsFolder, sanitizePathSegment(policyName))
	configFolder := filepath.Join(policyFolder, sanitizePathSegment(configName))

	// Create data folder with time range if specified
	var dataFolder string

	if b.config.StartTime.IsSome() || b.config.EndTime.IsSome() {
		startTimeStr := "all"
		endTimeStr := "all"

		if b.config.StartTime.IsSome() {
			startTimeStr = b.config.StartTime.Unwrap().Format("20060102")
		}

		if b.config.EndTime.IsSome() {
			endTimeStr = b.config.EndTime.Unwrap().Format("20060102")
		}

		timeRange := fmt.Sprintf("%s_%s", startTimeStr, endTimeStr)
		dataFolder = filepath.Join(configFolder, timeRange)
	} else {
		dataFolder = configFolder
	}

	if dataName == "" {
		return dataFolder
	}

	// Add data name as the final folder
	return filepath.Join(dataFolder, sanitizePathSegment(dataName))
}
