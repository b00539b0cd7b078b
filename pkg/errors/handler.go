// Package errors provides error handling and recovery mechanisms for the bot.
// It implements an error counter with automatic shutdown on excessive errors
// and the user-facing error taxonomy shared by every command.
package errors

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"
)

// ErrorHandler manages error counting and reporting
type ErrorHandler struct {
	errorCount    atomic.Int32
	webhookURL    string
	stopChan      chan struct{}
	stopOnce      sync.Once
	shutdownFunc  func()
	exitFunc      func(code int)
	maxErrors     int32
	resetInterval time.Duration
	checkInterval time.Duration
	client        *retryablehttp.Client
}

// ReportErrorOptions contains options for reporting an error
type ReportErrorOptions struct {
	Error   string
	Message string
}

var (
	handler *ErrorHandler
	once    sync.Once
)

// Init initializes the global error handler
func Init(webhookURL string, shutdownFunc func()) *ErrorHandler {
	once.Do(func() {
		handler = NewErrorHandler(webhookURL, shutdownFunc)
		handler.start()
	})
	return handler
}

// Get returns the global error handler instance
func Get() *ErrorHandler {
	return handler
}

// NewErrorHandler creates a new ErrorHandler. Monitoring starts with Init.
func NewErrorHandler(webhookURL string, shutdownFunc func()) *ErrorHandler {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = nil

	return &ErrorHandler{
		webhookURL:    webhookURL,
		stopChan:      make(chan struct{}),
		shutdownFunc:  shutdownFunc,
		exitFunc:      os.Exit,
		maxErrors:     15,
		resetInterval: 5 * time.Second,
		checkInterval: 1 * time.Second,
		client:        client,
	}
}

// start begins the error monitoring goroutine. The counter is reset every
// resetInterval; crossing maxErrors inside one window shuts the bot down.
func (h *ErrorHandler) start() {
	go func() {
		reset := time.NewTicker(h.resetInterval)
		check := time.NewTicker(h.checkInterval)
		defer reset.Stop()
		defer check.Stop()

		for {
			select {
			case <-reset.C:
				h.errorCount.Store(0)
			case <-check.C:
				if h.errorCount.Load() > h.maxErrors {
					h.shutdown()
					return
				}
			case <-h.stopChan:
				return
			}
		}
	}()
}

func (h *ErrorHandler) shutdown() {
	start := time.Now()
	logger.Warn("Se detectó un número demasiado alto de errores", "CRITICAL")
	logger.Warn("Apagando...", "CRITICAL")

	h.Report(ReportErrorOptions{
		Error:   "Critical Error",
		Message: "Número inusual de errores. Apagando...",
	})

	if h.shutdownFunc != nil {
		h.shutdownFunc()
	}

	logger.Warn(fmt.Sprintf("Finalizando proceso... Tiempo total: %v", time.Since(start)), "CRITICAL")
	h.exitFunc(1)
}

// Stop stops the error monitoring goroutine
func (h *ErrorHandler) Stop() {
	h.stopOnce.Do(func() { close(h.stopChan) })
}

// IncrementError increments the error count
func (h *ErrorHandler) IncrementError() {
	count := h.errorCount.Add(1)
	logger.Debug(fmt.Sprintf("Error count: %d", count), "AntiCrash")
}

// Count returns the errors seen in the current window
func (h *ErrorHandler) Count() int32 {
	return h.errorCount.Load()
}

// HandlePanic handles a recovered panic
func (h *ErrorHandler) HandlePanic(recovered interface{}) {
	h.IncrementError()
	logger.Error(fmt.Sprintf("Unhandled panic: %v", recovered), "AntiCrash")
}

// Report sends an error report to the Discord webhook
func (h *ErrorHandler) Report(data ReportErrorOptions) {
	if h.webhookURL == "" {
		return
	}

	payload := map[string]interface{}{
		"embeds": []interface{}{
			map[string]interface{}{
				"author":      map[string]string{"name": fmt.Sprintf("Error %s", data.Error)},
				"description": data.Message,
				"color":       0xFF0000,
				"footer":      map[string]string{"text": "ArcaneBot Go"},
				"timestamp":   time.Now().Format(time.RFC3339),
			},
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to marshal error report: %v", err), "AntiCrash")
		return
	}

	resp, err := h.client.Post(h.webhookURL, "application/json", bytes.NewReader(jsonData))
	if err != nil {
		logger.Error(fmt.Sprintf("Failed to send error report: %v", err), "AntiCrash")
		return
	}
	defer resp.Body.Close()

	logger.Warn(fmt.Sprintf("Sent ErrorReport to Webhook, Status: %d", resp.StatusCode), "AntiCrash")
}

// RecoverMiddleware returns a recovery function for use in deferred calls
func RecoverMiddleware() func() {
	return func() {
		if r := recover(); r != nil {
			if handler != nil {
				handler.HandlePanic(r)
			} else {
				logger.Error(fmt.Sprintf("Panic recovered (no handler): %v", r), "AntiCrash")
			}
		}
	}
}

// Track counts a failed operation against the anti-crash budget
func Track(err error) {
	if err == nil || handler == nil {
		return
	}
	handler.IncrementError()
}
