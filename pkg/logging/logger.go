/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger.go
Description: Logging system for cyskel. Provides structured logging with timestamped
files, multiple output formats and an async queue for batch workers. Supports JSON,
text, and custom formats with rotation of old log files.
*/

package logging

import (
	"fmt"
	"io"
	"log/syslog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug   LogLevel = "debug"
	LogLevelInfo    LogLevel = "info"
	LogLevelWarning LogLevel = "warn"
	LogLevelError   LogLevel = "error"
	LogLevelFatal   LogLevel = "fatal"
)

// LogFormat represents the logging format
type LogFormat string

const (
	LogFormatJSON   LogFormat = "json"
	LogFormatText   LogFormat = "text"
	LogFormatCustom LogFormat = "custom"
)

// filePrefix names every log file written by the logger
const filePrefix = "cyskel_"

// LoggerConfig holds the configuration for the logger
type LoggerConfig struct {
	Level     LogLevel  `json:"level"`
	Format    LogFormat `json:"format"`
	OutputDir string    `json:"output_dir"` // empty = console only
	MaxFiles  int       `json:"max_files"`
	MaxSize   int64     `json:"max_size"` // in bytes
	Timestamp bool      `json:"timestamp"`
	Caller    bool      `json:"caller"`
	Colors    bool      `json:"colors"`
	Compress  bool      `json:"compress"`

	SyslogEnabled bool   `json:"syslog_enabled"`
	SyslogNetwork string `json:"syslog_network"`
	SyslogAddress string `json:"syslog_address"`

	Console io.Writer `json:"-"` // defaults to stderr so reports on stdout stay clean
}

// DefaultLoggerConfig returns console-only info logging in the custom format
func DefaultLoggerConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:     LogLevelInfo,
		Format:    LogFormatCustom,
		MaxFiles:  10,
		MaxSize:   100 * 1024 * 1024, // 100MB
		Timestamp: true,
		Colors:    true,
	}
}

// Validate checks the LoggerConfig for invalid or missing values.
// Returns an error if the config is invalid, or nil if valid.
func (c *LoggerConfig) Validate() error {
	if c.MaxFiles <= 0 {
		return fmt.Errorf("max_files must be positive")
	}
	if c.MaxSize <= 0 {
		return fmt.Errorf("max_size must be positive")
	}
	switch c.Format {
	case LogFormatJSON, LogFormatText, LogFormatCustom:
		// ok
	default:
		return fmt.Errorf("unsupported log format: %s", c.Format)
	}
	switch c.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError, LogLevelFatal:
		// ok
	default:
		return fmt.Errorf("unsupported log level: %s", c.Level)
	}
	if c.SyslogEnabled && c.SyslogAddress == "" && c.SyslogNetwork != "" {
		return fmt.Errorf("syslog_address is required when syslog_network is set")
	}
	return nil
}

type logEntry struct {
	level  logrus.Level
	msg    string
	fields logrus.Fields
}

// Logger provides logging for the CLI and the batch workers.
// Queued entries are written by a background goroutine so workers never block on I/O.
type Logger struct {
	config     *LoggerConfig
	logger     *logrus.Logger
	console    io.Writer
	fileHandle *os.File
	filePath   string
	syslog     *syslog.Writer
	startTime  time.Time

	logQueue  chan logEntry
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewLogger creates a new logger instance
func NewLogger(config *LoggerConfig) (*Logger, error) {
	if config == nil {
		config = DefaultLoggerConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logger config: %w", err)
	}

	l := &Logger{
		config:    config,
		logger:    logrus.New(),
		startTime: time.Now(),
		logQueue:  make(chan logEntry, 1024),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	if err := l.setup(); err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}

	go l.runLogQueue()

	return l, nil
}

// setup configures the logger with the given configuration
func (l *Logger) setup() error {
	level, err := logrus.ParseLevel(string(l.config.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.logger.SetLevel(level)
	l.logger.SetReportCaller(l.config.Caller)

	if err := l.setFormatter(); err != nil {
		return err
	}

	l.console = l.config.Console
	if l.console == nil {
		l.console = os.Stderr
	}
	l.logger.SetOutput(l.console)

	if err := l.setupFileOutput(); err != nil {
		return err
	}

	if l.config.SyslogEnabled {
		writer, err := syslog.Dial(l.config.SyslogNetwork, l.config.SyslogAddress, syslog.LOG_INFO|syslog.LOG_USER, "cyskel")
		if err != nil {
			return fmt.Errorf("failed to connect to syslog: %w", err)
		}
		l.syslog = writer
		l.logger.SetOutput(io.MultiWriter(l.logger.Out, writer))
	}

	return nil
}

// setFormatter configures the log formatter
func (l *Logger) setFormatter() error {
	switch l.config.Format {
	case LogFormatJSON:
		l.logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				filename := filepath.Base(f.File)
				return "", fmt.Sprintf("%s:%d", filename, f.Line)
			},
		})

	case LogFormatText:
		l.logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   l.config.Timestamp,
			TimestampFormat: time.RFC3339,
			ForceColors:     l.config.Colors,
			DisableColors:   !l.config.Colors,
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				filename := filepath.Base(f.File)
				return "", fmt.Sprintf("%s:%d", filename, f.Line)
			},
		})

	case LogFormatCustom:
		l.logger.SetFormatter(&CustomFormatter{
			Timestamp: l.config.Timestamp,
			Caller:    l.config.Caller,
			Colors:    l.config.Colors,
		})

	default:
		return fmt.Errorf("unsupported log format: %s", l.config.Format)
	}

	return nil
}

// setupFileOutput adds a timestamped log file next to the console output
func (l *Logger) setupFileOutput() error {
	if l.config.OutputDir == "" {
		return nil
	}

	if err := os.MkdirAll(l.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	// older runs are rotated before the new file joins the glob
	manager := l.manager()
	if err := manager.RotateLogs(); err != nil {
		return err
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(l.config.OutputDir, fmt.Sprintf("%s%s.log", filePrefix, timestamp))

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.fileHandle = file
	l.filePath = path
	l.logger.SetOutput(io.MultiWriter(l.console, file))

	l.logger.WithFields(logrus.Fields{
		"start_time": l.startTime.Format(time.RFC3339),
		"log_file":   path,
		"level":      l.config.Level,
		"format":     l.config.Format,
	}).Debug("cyskel logging initialized")

	return nil
}

func (l *Logger) manager() *LogManager {
	return NewLogManager(l.config.OutputDir, l.config.MaxFiles, l.config.MaxSize, l.config.Compress)
}

// runLogQueue flushes log entries from the queue until Close, then drains what is left
func (l *Logger) runLogQueue() {
	defer close(l.done)
	for {
		select {
		case entry := <-l.logQueue:
			l.write(entry)
		case <-l.quit:
			for {
				select {
				case entry := <-l.logQueue:
					l.write(entry)
				default:
					return
				}
			}
		}
	}
}

func (l *Logger) write(entry logEntry) {
	l.logger.WithFields(entry.fields).Log(entry.level, entry.msg)
}

// Analysis-specific logging methods

// LogAnalysis logs a reconstructed binary
func (l *Logger) LogAnalysis(source string, entities int, duration time.Duration, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["file"] = source
	fields["entities"] = entities
	fields["duration"] = duration

	l.logger.WithFields(fields).Info("Binary analyzed")
}

// LogFailure logs a binary that could not be analyzed
func (l *Logger) LogFailure(source string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["file"] = source
	fields["error"] = err

	l.logger.WithFields(fields).Error("Analysis failed")
}

// LogBatch logs the outcome of a batch run
func (l *Logger) LogBatch(analyzed, cached, failed int64, duration time.Duration, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["analyzed"] = analyzed
	fields["cached"] = cached
	fields["failed"] = failed
	fields["duration"] = duration
	fields["uptime"] = time.Since(l.startTime)

	l.logger.WithFields(fields).Info("Batch finished")
}

// Close drains the queue, closes the syslog and file sinks and removes log files beyond MaxFiles
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.quit)
		<-l.done

		l.logger.SetOutput(l.console)
		if l.syslog != nil {
			if cerr := l.syslog.Close(); cerr != nil {
				err = fmt.Errorf("failed to close syslog writer: %w", cerr)
			}
		}
		if l.fileHandle != nil {
			if cerr := l.fileHandle.Close(); cerr != nil {
				err = fmt.Errorf("failed to close log file: %w", cerr)
				return
			}
			if cerr := l.manager().CleanupOldLogs(); cerr != nil {
				err = fmt.Errorf("failed to cleanup log files: %w", cerr)
			}
		}
	})
	return err
}

// GetLogger returns the underlying logrus logger
func (l *Logger) GetLogger() *logrus.Logger {
	return l.logger
}

// FilePath returns the active log file, or "" for console-only logging
func (l *Logger) FilePath() string {
	return l.filePath
}

// enqueue hands entry to the writer goroutine, or writes it directly once Close has begun
func (l *Logger) enqueue(entry logEntry) {
	select {
	case <-l.quit:
		l.write(entry)
		return
	default:
	}
	select {
	case l.logQueue <- entry:
	case <-l.quit:
		l.write(entry)
	}
}

// Debug logs a debug message (async)
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.enqueue(logEntry{level: logrus.DebugLevel, msg: msg, fields: fields})
}

// Info logs an info message (async)
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.enqueue(logEntry{level: logrus.InfoLevel, msg: msg, fields: fields})
}

// Warning logs a warning message (async)
func (l *Logger) Warning(msg string, fields map[string]interface{}) {
	l.enqueue(logEntry{level: logrus.WarnLevel, msg: msg, fields: fields})
}

// Error logs an error message (async)
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.enqueue(logEntry{level: logrus.ErrorLevel, msg: msg, fields: fields})
}
