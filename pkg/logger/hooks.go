package logger

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02 15:04:05"

// levelOf recovers our level from a logrus entry
func levelOf(entry *logrus.Entry) LogLevel {
	if lvl, ok := entry.Data[fieldLevel].(LogLevel); ok {
		return lvl
	}
	switch entry.Level {
	case logrus.PanicLevel, logrus.FatalLevel:
		return LevelCritical
	case logrus.ErrorLevel:
		return LevelError
	case logrus.WarnLevel:
		return LevelWarn
	case logrus.DebugLevel, logrus.TraceLevel:
		return LevelDebug
	default:
		return LevelInfo
	}
}

func prefixOf(entry *logrus.Entry) string {
	if p, ok := entry.Data[fieldPrefix].(string); ok && p != "" {
		return p
	}
	return "App"
}

// userFields renders the structured fields, sorted, without the reserved keys
func userFields(entry *logrus.Entry) string {
	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k == fieldLevel || k == fieldPrefix {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	return b.String()
}

// formatLine renders "[ts] [LEVEL] [prefix]: message k=v"
func formatLine(entry *logrus.Entry, colored bool) string {
	level := levelOf(entry)
	name := level.String()
	if colored {
		name = level.Color() + name + colorReset
	}
	return fmt.Sprintf("[%s] [%s] [%s]: %s%s\n",
		entry.Time.Format(timestampFormat),
		name,
		prefixOf(entry),
		entry.Message,
		userFields(entry),
	)
}

// writerHook writes formatted lines to an io.Writer
type writerHook struct {
	out     io.Writer
	colored bool
	levels  []logrus.Level
	mu      sync.Mutex
}

func (h *writerHook) Levels() []logrus.Level {
	return h.levels
}

func (h *writerHook) Fire(entry *logrus.Entry) error {
	line := formatLine(entry, h.colored)
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, line)
	return err
}

// webhookHook mirrors records to Discord webhooks without blocking the caller.
// Errors go to errorURL, everything else to logsURL.
type webhookHook struct {
	errorURL string
	logsURL  string
	client   *retryablehttp.Client
	wg       sync.WaitGroup
}

func newWebhookHook(errorURL, logsURL string) *webhookHook {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = 5 * time.Second
	client.Logger = nil

	return &webhookHook{errorURL: errorURL, logsURL: logsURL, client: client}
}

func (h *webhookHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *webhookHook) Fire(entry *logrus.Entry) error {
	level := levelOf(entry)
	url := h.logsURL
	if level <= LevelError {
		url = h.errorURL
	}
	if url == "" {
		return nil
	}

	body, err := json.Marshal(webhookPayload(level, prefixOf(entry), entry.Message+userFields(entry)))
	if err != nil {
		return err
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		resp, err := h.client.Post(url, "application/json", bytes.NewReader(body))
		if err != nil {
			return
		}
		resp.Body.Close()
	}()
	return nil
}

// Wait blocks until in-flight webhook posts finish
func (h *webhookHook) Wait() {
	h.wg.Wait()
}

func webhookPayload(level LogLevel, prefix, message string) map[string]interface{} {
	return map[string]interface{}{
		"embeds": []interface{}{
			map[string]interface{}{
				"title":       fmt.Sprintf("[%s] %s", level.String(), prefix),
				"description": fmt.Sprintf("```%s```", message),
				"color":       level.DiscordColor(),
				"timestamp":   time.Now().Format(time.RFC3339),
				"footer": map[string]string{
					"text": "💫 Developed by PancyStudio | ArcaneBot Go",
				},
			},
		},
	}
}
