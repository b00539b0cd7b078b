package events

import (
	"fmt"
	"time"

	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// onGuildCreate is called for every guild on connect and when the bot joins
// a new one. Only fresh joins are logged.
func onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if g.JoinedAt.Before(time.Now().Add(-10 * time.Second)) {
		return
	}

	logger.Info(fmt.Sprintf("➕ Bot agregado a servidor: %s (ID: %s)", g.Name, g.ID), "Guild")
	logger.Debug(fmt.Sprintf("   Miembros: %d | Canales: %d", g.MemberCount, len(g.Channels)), "Guild")
}

// onGuildDelete is called when the bot is removed from a server
func onGuildDelete(s *discordgo.Session, g *discordgo.GuildDelete) {
	if g.Unavailable {
		logger.Warn(fmt.Sprintf("Servidor no disponible: %s", g.ID), "Guild")
		return
	}
	logger.Info(fmt.Sprintf("➖ Bot removido del servidor ID: %s", g.ID), "Guild")
}
