// Package events provides a registry for organizing bot events.
// Events are organized by category (ready, guild, member, message, shard).
package events

import (
	"sync"
	"time"

	"github.com/PancyStudios/ArcaneBotGo/internal/moderation"
	"github.com/PancyStudios/ArcaneBotGo/internal/progression"
	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
)

// eventTimeout bounds the work done for a single gateway event
const eventTimeout = 15 * time.Second

// Handlers holds the services the gateway events feed
type Handlers struct {
	Progression *progression.Engine
	Spam        *moderation.SpamDetector
	Scheduler   *moderation.Scheduler
	Prefix      string

	startOnce sync.Once
}

// RegisterAll registers all events with the Discord client
func RegisterAll(client *discord.ExtendedClient, h *Handlers) {
	logger.System("📋 Registrando eventos del bot...", "Events")

	// Ready event (bot startup)
	client.EventHandler.OnReady(h.onReady)

	// Guild events (server join/leave)
	client.EventHandler.OnGuildCreate(onGuildCreate)
	client.EventHandler.OnGuildDelete(onGuildDelete)

	// Member events (join/leave)
	client.EventHandler.OnGuildMemberAdd(h.onGuildMemberAdd)
	client.EventHandler.OnGuildMemberRemove(onGuildMemberRemove)

	// Messages feed XP and the spam detector
	client.EventHandler.OnMessageCreate(h.onMessageCreate)

	// Gateway connection
	client.EventHandler.OnDisconnect(onShardDisconnect)
	client.EventHandler.OnResumed(onShardResumed)

	logger.Success("✅ Todos los eventos registrados correctamente", "Events")
}
