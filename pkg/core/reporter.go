/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reporter.go
Description: Reporter interface and implementations for batch telemetry. Lets the
batch runner notify listeners as each binary is analyzed or fails.
*/

package core

// Reporter defines the interface for batch progress hooks.
// Implementations must be safe for concurrent use; workers call them in parallel.
type Reporter interface {
	// OnFileAnalyzed is called after a result has been produced and written.
	OnFileAnalyzed(result *Result, reportPath string)
	// OnFileFailed is called when a file could not be analyzed or written.
	OnFileFailed(path string, err error)
}

// EventLogger receives per-file batch events. *logging.Logger implements it with a
// queue drained by a single writer goroutine, so workers never wait on log I/O.
type EventLogger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// LoggerReporter logs batch events.
type LoggerReporter struct {
	log EventLogger
}

// NewLoggerReporter creates a new LoggerReporter.
func NewLoggerReporter(log EventLogger) *LoggerReporter {
	return &LoggerReporter{log: log}
}

// OnFileAnalyzed logs the analysis summary.
func (r *LoggerReporter) OnFileAnalyzed(result *Result, reportPath string) {
	r.log.Info("Binary analyzed", map[string]interface{}{
		"file":     result.Source,
		"report":   reportPath,
		"entities": result.Summary.Entities,
		"classes":  result.Summary.ByType["CLASS"],
		"methods":  result.Summary.ByType["METHOD"],
		"cached":   result.Cached,
		"duration": result.Duration,
		"run_id":   result.RunID,
	})
}

// OnFileFailed logs the failure.
func (r *LoggerReporter) OnFileFailed(path string, err error) {
	r.log.Error("Analysis failed", map[string]interface{}{"file": path, "error": err})
}
