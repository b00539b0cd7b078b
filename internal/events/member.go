package events

import (
	"context"
	"fmt"

	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// onGuildMemberAdd puts the muted role back on members who left and came
// back while their mute was still running.
func (h *Handlers) onGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	logger.Debug(fmt.Sprintf("👋 Nuevo miembro: %s en servidor %s", m.User.Username, m.GuildID), "Member")

	if h.Scheduler == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	reapplied, err := h.Scheduler.Reapply(ctx, m.GuildID, m.User.ID)
	if err != nil {
		logger.WithFields(logger.Fields{"guild": m.GuildID, "user": m.User.ID}).
			Warn("No se pudo reaplicar el mute: "+err.Error(), "Member")
		return
	}
	if !reapplied {
		return
	}
	logger.Info(fmt.Sprintf("🔇 Mute reaplicado a %s", m.User.ID), "Member")
}

// onGuildMemberRemove is called when a member leaves the server
func onGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	logger.Debug(fmt.Sprintf("👋 %s salió del servidor %s", m.User.Username, m.GuildID), "Member")
}
