// Package discord provides the event handler for managing Discord events.
package discord

import (
	"sync"

	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// EventHandler keeps track of the gateway handlers added to the session
type EventHandler struct {
	client *ExtendedClient
	events []interface{}
	mu     sync.RWMutex
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(client *ExtendedClient) *EventHandler {
	return &EventHandler{
		client: client,
		events: make([]interface{}, 0),
	}
}

// RegisterEvent adds an event handler to the Discord session
func (eh *EventHandler) RegisterEvent(handler interface{}) {
	eh.client.Session.AddHandler(handler)
	eh.mu.Lock()
	eh.events = append(eh.events, handler)
	eh.mu.Unlock()
}

// Count returns how many handlers were registered
func (eh *EventHandler) Count() int {
	eh.mu.RLock()
	defer eh.mu.RUnlock()
	return len(eh.events)
}

// On* helpers take plain func types; discordgo ignores named func types.

// OnReady registers a ready event handler
func (eh *EventHandler) OnReady(handler func(s *discordgo.Session, r *discordgo.Ready)) {
	eh.RegisterEvent(handler)
	logger.Debug("Evento 'Ready' registrado", "EventHandler")
}

// OnGuildCreate registers a guild create event handler
func (eh *EventHandler) OnGuildCreate(handler func(s *discordgo.Session, g *discordgo.GuildCreate)) {
	eh.RegisterEvent(handler)
	logger.Debug("Evento 'GuildCreate' registrado", "EventHandler")
}

// OnGuildDelete registers a guild delete event handler
func (eh *EventHandler) OnGuildDelete(handler func(s *discordgo.Session, g *discordgo.GuildDelete)) {
	eh.RegisterEvent(handler)
	logger.Debug("Evento 'GuildDelete' registrado", "EventHandler")
}

// OnMessageCreate registers a message create event handler
func (eh *EventHandler) OnMessageCreate(handler func(s *discordgo.Session, m *discordgo.MessageCreate)) {
	eh.RegisterEvent(handler)
	logger.Debug("Evento 'MessageCreate' registrado", "EventHandler")
}

// OnGuildMemberAdd registers a guild member add event handler
func (eh *EventHandler) OnGuildMemberAdd(handler func(s *discordgo.Session, m *discordgo.GuildMemberAdd)) {
	eh.RegisterEvent(handler)
	logger.Debug("Evento 'GuildMemberAdd' registrado", "EventHandler")
}

// OnGuildMemberRemove registers a guild member remove event handler
func (eh *EventHandler) OnGuildMemberRemove(handler func(s *discordgo.Session, m *discordgo.GuildMemberRemove)) {
	eh.RegisterEvent(handler)
	logger.Debug("Evento 'GuildMemberRemove' registrado", "EventHandler")
}

// OnDisconnect registers a disconnect event handler
func (eh *EventHandler) OnDisconnect(handler func(s *discordgo.Session, d *discordgo.Disconnect)) {
	eh.RegisterEvent(handler)
	logger.Debug("Evento 'Disconnect' registrado", "EventHandler")
}

// OnResumed registers a resumed event handler
func (eh *EventHandler) OnResumed(handler func(s *discordgo.Session, r *discordgo.Resumed)) {
	eh.RegisterEvent(handler)
	logger.Debug("Evento 'Resumed' registrado", "EventHandler")
}
