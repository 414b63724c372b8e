/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logging_test.go
Description: Tests for the logging system. Covers logger creation, formats, file
output, the async queue, the custom formatter and log file management.
*/

package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plainConfig(console *bytes.Buffer) *LoggerConfig {
	config := DefaultLoggerConfig()
	config.Timestamp = false
	config.Colors = false
	config.Console = console
	return config
}

// TestLoggerCreation tests logger creation with different configurations
func TestLoggerCreation(t *testing.T) {
	logger, err := NewLogger(nil)
	require.NoError(t, err)
	assert.Empty(t, logger.FilePath())
	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close(), "Close must be idempotent")

	_, err = NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "xml", MaxFiles: 1, MaxSize: 1})
	assert.Error(t, err)
}

func TestLoggerConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*LoggerConfig)
	}{
		{"max files", func(c *LoggerConfig) { c.MaxFiles = 0 }},
		{"max size", func(c *LoggerConfig) { c.MaxSize = 0 }},
		{"format", func(c *LoggerConfig) { c.Format = "xml" }},
		{"level", func(c *LoggerConfig) { c.Level = "verbose" }},
		{"syslog", func(c *LoggerConfig) { c.SyslogEnabled, c.SyslogNetwork = true, "udp" }},
	}

	assert.NoError(t, DefaultLoggerConfig().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultLoggerConfig()
			tt.mutate(config)
			assert.Error(t, config.Validate())
		})
	}
}

// TestLogFormats tests different log formats
func TestLogFormats(t *testing.T) {
	for _, format := range []LogFormat{LogFormatText, LogFormatJSON, LogFormatCustom} {
		t.Run(string(format), func(t *testing.T) {
			var console bytes.Buffer
			config := plainConfig(&console)
			config.Format = format

			logger, err := NewLogger(config)
			require.NoError(t, err)

			logger.GetLogger().WithField("file", "mod.so").Info("Test message")
			require.NoError(t, logger.Close())

			assert.Contains(t, console.String(), "Test message")
			assert.Contains(t, console.String(), "mod.so")
		})
	}
}

func TestLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	config := plainConfig(&console)
	config.OutputDir = dir

	logger, err := NewLogger(config)
	require.NoError(t, err)
	path := logger.FilePath()
	assert.True(t, strings.HasPrefix(filepath.Base(path), "cyskel_"))

	logger.Info("queued message", map[string]interface{}{"key": "value"})
	logger.Debug("hidden message", nil)
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "queued message key=value")
	assert.NotContains(t, string(data), "hidden message")
	assert.Contains(t, console.String(), "queued message")
}

func TestAsyncQueueDrainsOnClose(t *testing.T) {
	var console bytes.Buffer
	logger, err := NewLogger(plainConfig(&console))
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		logger.Warning("entry", map[string]interface{}{"i": i})
	}
	logger.Error("last entry", nil)
	require.NoError(t, logger.Close())

	assert.Equal(t, 101, strings.Count(console.String(), "\n"))
	assert.Contains(t, console.String(), "ERROR last entry")
}

func TestQueuedLoggingAfterClose(t *testing.T) {
	var console bytes.Buffer
	logger, err := NewLogger(plainConfig(&console))
	require.NoError(t, err)
	require.NoError(t, logger.Close())

	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info("late entry", map[string]interface{}{"file": "late.so"})
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Info blocked after Close")
	}
	assert.Contains(t, console.String(), "INFO late entry file=late.so")
}

func TestSyslogSink(t *testing.T) {
	var console bytes.Buffer
	config := plainConfig(&console)
	config.SyslogEnabled = true
	config.SyslogNetwork = "udp"
	config.SyslogAddress = "127.0.0.1:514"

	logger, err := NewLogger(config)
	require.NoError(t, err)
	logger.Info("sent to syslog", nil)
	require.NoError(t, logger.Close())
	assert.Contains(t, console.String(), "sent to syslog")

	config = plainConfig(&console)
	config.SyslogEnabled = true
	config.SyslogNetwork = "tcp"
	config.SyslogAddress = "127.0.0.1:1"
	_, err = NewLogger(config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syslog")
}

func TestAnalysisLogging(t *testing.T) {
	var console bytes.Buffer
	logger, err := NewLogger(plainConfig(&console))
	require.NoError(t, err)
	defer logger.Close()

	logger.LogAnalysis("mod.so", 3, 1500*time.Millisecond, nil)
	logger.LogFailure("bad.so", errors.New("permission denied"), map[string]interface{}{"stage": "read"})
	logger.LogBatch(4, 1, 1, 2*time.Second, nil)

	out := console.String()
	assert.Contains(t, out, "INFO [ANALYZE] Binary analyzed duration=1.5s entities=3 file=mod.so\n")
	assert.Contains(t, out, "ERROR [FAIL] Analysis failed error=permission denied file=bad.so stage=read\n")
	assert.Contains(t, out, "INFO [BATCH] Batch finished analyzed=4 cached=1 duration=2s failed=1 uptime=")
}

func TestCustomFormatter(t *testing.T) {
	f := &CustomFormatter{}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "Cache lookup failed",
		Data: logrus.Fields{
			"digest": strings.Repeat("a", 64),
			"file":   "mod.so",
		},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "WARNING [CACHE] Cache lookup failed digest=aaaaaaaaaaaa... file=mod.so\n", string(out))

	f.Timestamp = true
	f.Colors = true
	out, err = f.Format(entry)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "\033[36m2024-05-01 10:00:00.000\033[0m "))
	assert.Contains(t, string(out), "\033[33mWARNING\033[0m")
}

func TestEventTag(t *testing.T) {
	assert.Equal(t, "ANALYZE", eventTag("Binary analyzed"))
	assert.Equal(t, "BATCH", eventTag("Starting batch analysis"))
	assert.Equal(t, "GRAPH", eventTag("Skeleton exported to neo4j"))
	assert.Equal(t, "", eventTag("Pipeline completed"))
}

// touchLogs creates log files whose modification times increase in order
func touchLogs(t *testing.T, dir string, names ...string) {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	for i, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("line\n"), 0644))
		mod := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, mod, mod))
	}
}

// TestLogManager tests log management functionality
func TestLogManager(t *testing.T) {
	dir := t.TempDir()
	touchLogs(t, dir,
		"cyskel_2024-01-01_10-00-00.log",
		"cyskel_2024-01-01_11-00-00.log",
		"cyskel_2024-01-01_12-00-00.log",
		"cyskel_2024-01-01_13-00-00.log",
	)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.log"), nil, 0644))

	manager := NewLogManager(dir, 3, 1024, false)
	require.NoError(t, manager.CleanupOldLogs())

	files, err := filepath.Glob(filepath.Join(dir, "cyskel_*.log"))
	require.NoError(t, err)
	assert.Len(t, files, 3)
	assert.NotContains(t, files, filepath.Join(dir, "cyskel_2024-01-01_10-00-00.log"))

	_, err = os.Stat(filepath.Join(dir, "other.log"))
	assert.NoError(t, err, "unrelated files are left alone")

	stats, err := manager.GetLogStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalFiles)
	assert.Equal(t, 3, stats.UncompressedFiles)
	assert.Equal(t, int64(15), stats.TotalSize)
	assert.True(t, stats.OldestFile.Before(stats.NewestFile))
}

func TestLogManagerRotatesAndCompresses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cyskel_2024-01-01_10-00-00.log")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("x"), 2048), 0644))
	touchLogs(t, dir, "cyskel_2024-01-01_11-00-00.log")

	manager := NewLogManager(dir, 10, 1024, true)
	require.NoError(t, manager.RotateLogs())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	compressed, err := filepath.Glob(filepath.Join(dir, "cyskel_2024-01-01_10-00-00.log.*.gz"))
	require.NoError(t, err)
	assert.Len(t, compressed, 1)

	stats, err := manager.GetLogStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalFiles)
	assert.Equal(t, 1, stats.CompressedFiles)
	assert.Contains(t, stats.String(), "2 files (1 compressed)")
}
