// Package logger provides the bot's leveled logger. Records go through logrus
// and are fanned out by hooks to the console, the log files and Discord webhooks.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	LevelCritical LogLevel = iota
	LevelError
	LevelWarn
	LevelSuccess
	LevelInfo
	LevelDebug
	LevelSystem
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelCritical:
		return "CRITICAL"
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelSuccess:
		return "SUCCESS"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelSystem:
		return "SYSTEM"
	default:
		return "UNKNOWN"
	}
}

// Color returns the ANSI color code for the log level
func (l LogLevel) Color() string {
	switch l {
	case LevelCritical:
		return "\033[1;31m"
	case LevelError:
		return "\033[31m"
	case LevelWarn:
		return "\033[33m"
	case LevelSuccess:
		return "\033[32m"
	case LevelInfo:
		return "\033[36m"
	case LevelDebug:
		return "\033[35m"
	case LevelSystem:
		return "\033[34m"
	default:
		return colorReset
	}
}

// DiscordColor returns the Discord embed color for the log level
func (l LogLevel) DiscordColor() int {
	switch l {
	case LevelCritical, LevelError:
		return 0xFF0000
	case LevelWarn:
		return 0xFFFF00
	case LevelSuccess:
		return 0x00FF00
	case LevelInfo:
		return 0x0000FF
	case LevelDebug:
		return 0x800080
	case LevelSystem:
		return 0x808080
	default:
		return 0xFFFFFF
	}
}

// logrusLevel maps our levels onto logrus so level filtering keeps working.
// Success and System are informational.
func (l LogLevel) logrusLevel() logrus.Level {
	switch l {
	case LevelCritical:
		return logrus.FatalLevel
	case LevelError:
		return logrus.ErrorLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelDebug:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

const colorReset = "\033[0m"

// Data keys reserved by the logger
const (
	fieldLevel  = "_level"
	fieldPrefix = "_prefix"
)

// Fields are structured key/values attached to a record
type Fields = logrus.Fields

// Options configures a Logger
type Options struct {
	// Dir holds combined.log and error.log. Empty means ./logs.
	Dir             string
	ErrorWebhookURL string
	LogsWebhookURL  string
	// Console receives colored output. Nil means stdout.
	Console io.Writer
	Debug   bool
}

// Logger is the main logging structure
type Logger struct {
	logrus    *logrus.Logger
	logFile   *os.File
	errorFile *os.File
	webhook   *webhookHook
	closeOnce sync.Once
}

var (
	logger *Logger
	once   sync.Once
)

// Init initializes the global logger instance
func Init(opts Options) *Logger {
	once.Do(func() {
		logger = NewLogger(opts)
	})
	return logger
}

// Get returns the global logger, creating a default one if Init wasn't called
func Get() *Logger {
	once.Do(func() {
		logger = NewLogger(Options{})
	})
	return logger
}

// NewLogger creates a new Logger instance
func NewLogger(opts Options) *Logger {
	l := &Logger{logrus: logrus.New()}

	l.logrus.SetOutput(io.Discard)
	l.logrus.SetLevel(logrus.InfoLevel)
	if opts.Debug {
		l.logrus.SetLevel(logrus.DebugLevel)
	}

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	l.logrus.AddHook(&writerHook{out: console, colored: true, levels: logrus.AllLevels})

	dir := opts.Dir
	if dir == "" {
		dir = filepath.Join(".", "logs")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		l.logrus.WithError(err).Warn("could not create logs directory")
	}

	var err error
	l.logFile, err = os.OpenFile(filepath.Join(dir, "combined.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		l.logrus.AddHook(&writerHook{out: l.logFile, levels: logrus.AllLevels})
	}

	l.errorFile, err = os.OpenFile(filepath.Join(dir, "error.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		l.logrus.AddHook(&writerHook{out: l.errorFile, levels: []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}})
	}

	if opts.ErrorWebhookURL != "" || opts.LogsWebhookURL != "" {
		l.webhook = newWebhookHook(opts.ErrorWebhookURL, opts.LogsWebhookURL)
		l.logrus.AddHook(l.webhook)
	}

	return l
}

// Close flushes pending webhooks and closes the log files
func (l *Logger) Close() {
	l.closeOnce.Do(func() {
		if l.webhook != nil {
			l.webhook.Wait()
		}
		if l.logFile != nil {
			l.logFile.Close()
		}
		if l.errorFile != nil {
			l.errorFile.Close()
		}
	})
}

func (l *Logger) log(entry *logrus.Entry, level LogLevel, message, prefix string) {
	entry.WithFields(logrus.Fields{fieldLevel: level, fieldPrefix: prefix}).Log(level.logrusLevel(), message)
}

// Entry is a record builder carrying structured fields
type Entry struct {
	l     *Logger
	entry *logrus.Entry
}

// WithFields returns an Entry that attaches fields to every message
func (l *Logger) WithFields(fields Fields) *Entry {
	return &Entry{l: l, entry: l.logrus.WithFields(fields)}
}

// WithFields returns an Entry on the global logger
func WithFields(fields Fields) *Entry {
	return Get().WithFields(fields)
}

// Critical logs a critical message
func (e *Entry) Critical(message, prefix string) { e.l.log(e.entry, LevelCritical, message, prefix) }

// Error logs an error message
func (e *Entry) Error(message, prefix string) { e.l.log(e.entry, LevelError, message, prefix) }

// Warn logs a warning message
func (e *Entry) Warn(message, prefix string) { e.l.log(e.entry, LevelWarn, message, prefix) }

// Success logs a success message
func (e *Entry) Success(message, prefix string) { e.l.log(e.entry, LevelSuccess, message, prefix) }

// Info logs an info message
func (e *Entry) Info(message, prefix string) { e.l.log(e.entry, LevelInfo, message, prefix) }

// Debug logs a debug message
func (e *Entry) Debug(message, prefix string) { e.l.log(e.entry, LevelDebug, message, prefix) }

// Critical logs a critical message
func (l *Logger) Critical(message, prefix string) {
	l.log(logrus.NewEntry(l.logrus), LevelCritical, message, prefix)
}

// Error logs an error message
func (l *Logger) Error(message, prefix string) {
	l.log(logrus.NewEntry(l.logrus), LevelError, message, prefix)
}

// Warn logs a warning message
func (l *Logger) Warn(message, prefix string) {
	l.log(logrus.NewEntry(l.logrus), LevelWarn, message, prefix)
}

// Success logs a success message
func (l *Logger) Success(message, prefix string) {
	l.log(logrus.NewEntry(l.logrus), LevelSuccess, message, prefix)
}

// Info logs an info message
func (l *Logger) Info(message, prefix string) {
	l.log(logrus.NewEntry(l.logrus), LevelInfo, message, prefix)
}

// Debug logs a debug message
func (l *Logger) Debug(message, prefix string) {
	l.log(logrus.NewEntry(l.logrus), LevelDebug, message, prefix)
}

// System logs a system message
func (l *Logger) System(message, prefix string) {
	l.log(logrus.NewEntry(l.logrus), LevelSystem, message, prefix)
}

// Package-level functions for convenience

// Critical logs a critical message using the global logger
func Critical(message, prefix string) { Get().Critical(message, prefix) }

// Error logs an error message using the global logger
func Error(message, prefix string) { Get().Error(message, prefix) }

// Warn logs a warning message using the global logger
func Warn(message, prefix string) { Get().Warn(message, prefix) }

// Success logs a success message using the global logger
func Success(message, prefix string) { Get().Success(message, prefix) }

// Info logs an info message using the global logger
func Info(message, prefix string) { Get().Info(message, prefix) }

// Debug logs a debug message using the global logger
func Debug(message, prefix string) { Get().Debug(message, prefix) }

// System logs a system message using the global logger
func System(message, prefix string) { Get().System(message, prefix) }
