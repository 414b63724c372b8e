/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: formatter.go
Description: Custom log formatter for cyskel. Provides readable console output with
colors, stable field ordering and short event tags for the analysis pipeline.
*/

package logging

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// CustomFormatter provides structured, human-friendly logging output
type CustomFormatter struct {
	Timestamp bool
	Caller    bool
	Colors    bool
}

// Format formats a log entry
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var output strings.Builder

	if f.Timestamp {
		timestamp := entry.Time.Format("2006-01-02 15:04:05.000")
		f.write(&output, 36, timestamp, "%s ") // Cyan
	}

	level := strings.ToUpper(entry.Level.String())
	f.write(&output, f.getLevelColor(entry.Level), level, "%s ")

	if tag := eventTag(entry.Message); tag != "" {
		f.write(&output, 35, tag, "[%s] ") // Magenta
	}

	if f.Caller && entry.HasCaller() {
		caller := fmt.Sprintf("%s:%d", entry.Caller.File, entry.Caller.Line)
		f.write(&output, 33, caller, "[%s] ") // Yellow
	}

	output.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		output.WriteString(" ")
		output.WriteString(f.formatFields(entry.Data))
	}

	output.WriteString("\n")
	return []byte(output.String()), nil
}

// write appends text using layout, wrapped in an ANSI color when enabled
func (f *CustomFormatter) write(b *strings.Builder, color int, text, layout string) {
	if f.Colors {
		text = fmt.Sprintf("\033[%dm%s\033[0m", color, text)
	}
	b.WriteString(fmt.Sprintf(layout, text))
}

// getLevelColor returns the ANSI color code for a log level
func (f *CustomFormatter) getLevelColor(level logrus.Level) int {
	switch level {
	case logrus.DebugLevel, logrus.TraceLevel:
		return 37 // White
	case logrus.InfoLevel:
		return 32 // Green
	case logrus.WarnLevel:
		return 33 // Yellow
	case logrus.ErrorLevel:
		return 31 // Red
	case logrus.FatalLevel, logrus.PanicLevel:
		return 35 // Magenta
	default:
		return 37
	}
}

// formatFields renders fields sorted by key
func (f *CustomFormatter) formatFields(fields logrus.Fields) string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		value := formatValue(key, fields[key])
		if f.Colors {
			parts = append(parts, fmt.Sprintf("\033[34m%s\033[0m=\033[32m%s\033[0m", key, value)) // Blue key, Green value
		} else {
			parts = append(parts, fmt.Sprintf("%s=%s", key, value))
		}
	}

	return strings.Join(parts, " ")
}

// eventTag returns a short tag for pipeline events
func eventTag(message string) string {
	switch {
	case strings.Contains(message, "Binary analyzed"):
		return "ANALYZE"
	case strings.Contains(message, "Analysis failed"):
		return "FAIL"
	case strings.Contains(message, "Batch"), strings.Contains(message, "batch"):
		return "BATCH"
	case strings.Contains(message, "cache"), strings.Contains(message, "Cache"):
		return "CACHE"
	case strings.Contains(message, "neo4j"):
		return "GRAPH"
	default:
		return ""
	}
}

// formatValue formats a field value appropriately
func formatValue(key string, value interface{}) string {
	switch v := value.(type) {
	case time.Duration:
		return v.String()
	case time.Time:
		return v.Format("15:04:05.000")
	case error:
		return v.Error()
	case string:
		// digests and run ids are shortened, paths are kept whole
		if (key == "digest" || key == "run_id") && len(v) > 12 {
			return v[:12] + "..."
		}
		if len(v) > 120 {
			return fmt.Sprintf("%s...", v[:120])
		}
		return v
	case []byte:
		if len(v) > 20 {
			return fmt.Sprintf("[%d bytes]", len(v))
		}
		return fmt.Sprintf("%x", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
