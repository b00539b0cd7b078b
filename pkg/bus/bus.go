// Package bus fans domain events out to the sinks that care about them
// (MQTT, the live leaderboard websocket). Delivery is asynchronous and
// best-effort: a slow or failing sink never blocks the engine publishing.
package bus

import (
	"sync"
	"time"

	"github.com/PancyStudios/ArcaneBotGo/pkg/errors"
)

// EventType names an event
type EventType string

const (
	LevelUp    EventType = "level_up"
	XPChanged  EventType = "xp_changed"
	Warn       EventType = "warn"
	Moderation EventType = "moderation"
)

// Event is a domain event
type Event struct {
	Type    EventType              `json:"type"`
	GuildID string                 `json:"guildId"`
	UserID  string                 `json:"userId"`
	Data    map[string]interface{} `json:"data,omitempty"`
	At      time.Time              `json:"at"`
}

// Handler consumes events
type Handler func(Event)

// Publisher is what the engines depend on
type Publisher interface {
	Publish(Event)
}

// Bus is an in-process publisher
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	wg       sync.WaitGroup
}

// New creates an empty Bus
func New() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for every event
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	b.handlers = append(b.handlers, h)
	b.mu.Unlock()
}

// Publish delivers e to every handler on its own goroutine
func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		b.wg.Add(1)
		go func(h Handler) {
			defer b.wg.Done()
			defer errors.RecoverMiddleware()()
			h(e)
		}(h)
	}
}

// Wait blocks until every published event has been handled
func (b *Bus) Wait() {
	b.wg.Wait()
}
