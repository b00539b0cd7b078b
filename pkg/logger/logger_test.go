package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestNewLogger(t *testing.T) {
	var console bytes.Buffer
	l := NewLogger(Options{Dir: t.TempDir(), Console: &console})
	defer l.Close()

	l.Info("Test info message", "TEST")
	l.Warn("Test warning message", "TEST")
	l.Debug("Test debug message", "TEST")
	l.System("Test system message", "TEST")
	l.Success("Test success message", "TEST")

	out := console.String()
	for _, want := range []string{"Test info message", "Test warning message", "Test system message", "Test success message"} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q", want)
		}
	}
	if strings.Contains(out, "Test debug message") {
		t.Error("debug messages should be filtered when Debug is off")
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelCritical, "CRITICAL"},
		{LevelError, "ERROR"},
		{LevelWarn, "WARN"},
		{LevelSuccess, "SUCCESS"},
		{LevelInfo, "INFO"},
		{LevelDebug, "DEBUG"},
		{LevelSystem, "SYSTEM"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLogLevelDiscordColor(t *testing.T) {
	tests := []struct {
		level LogLevel
		color int
	}{
		{LevelCritical, 0xFF0000},
		{LevelError, 0xFF0000},
		{LevelWarn, 0xFFFF00},
		{LevelSuccess, 0x00FF00},
		{LevelInfo, 0x0000FF},
		{LevelDebug, 0x800080},
		{LevelSystem, 0x808080},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := tt.level.DiscordColor(); got != tt.color {
				t.Errorf("LogLevel.DiscordColor() = %v, want %v", got, tt.color)
			}
		})
	}
}

func TestLogFiles(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger(Options{Dir: dir, Console: &bytes.Buffer{}})

	l.Info("combined only", "TEST")
	l.Error("goes to both", "TEST")
	l.Close()

	combined, err := os.ReadFile(filepath.Join(dir, "combined.log"))
	if err != nil {
		t.Fatalf("reading combined.log: %v", err)
	}
	errorsLog, err := os.ReadFile(filepath.Join(dir, "error.log"))
	if err != nil {
		t.Fatalf("reading error.log: %v", err)
	}

	if !strings.Contains(string(combined), "combined only") || !strings.Contains(string(combined), "goes to both") {
		t.Errorf("combined.log = %q, want both messages", combined)
	}
	if strings.Contains(string(errorsLog), "combined only") {
		t.Error("error.log should not contain info messages")
	}
	if !strings.Contains(string(errorsLog), "[ERROR] [TEST]: goes to both") {
		t.Errorf("error.log = %q, want the error line", errorsLog)
	}
	if strings.Contains(string(combined), "\033[") {
		t.Error("file output should not contain color codes")
	}
}

func TestWithFields(t *testing.T) {
	var console bytes.Buffer
	l := NewLogger(Options{Dir: t.TempDir(), Console: &console})
	defer l.Close()

	l.WithFields(Fields{"guild": "123", "user": "456"}).Warn("spam detected", "Spam")

	out := console.String()
	if !strings.Contains(out, "spam detected guild=123 user=456") {
		t.Errorf("console = %q, want sorted fields after the message", out)
	}
}

func TestGlobalLoggerInit(t *testing.T) {
	logger = nil
	once = sync.Once{}

	l := Init(Options{Dir: t.TempDir(), Console: &bytes.Buffer{}})
	if l == nil {
		t.Fatal("Expected Init to return a logger")
	}

	l2 := Init(Options{ErrorWebhookURL: "different"})
	if l != l2 {
		t.Error("Expected Init to return the same logger on subsequent calls")
	}

	if Get() != l {
		t.Error("Expected Get to return the same logger")
	}

	l.Close()
}
