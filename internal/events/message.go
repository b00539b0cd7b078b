package events

import (
	"context"

	"github.com/PancyStudios/ArcaneBotGo/internal/progression"
	apperrors "github.com/PancyStudios/ArcaneBotGo/pkg/errors"
	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// qualifies reports whether a message feeds XP and spam tracking
func qualifies(m *discordgo.MessageCreate) bool {
	return m.Author != nil && !m.Author.Bot && m.GuildID != ""
}

// onMessageCreate awards XP and runs spam detection. Prefix commands are
// dispatched by the client itself.
func (h *Handlers) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if !qualifies(m) {
		return
	}
	defer apperrors.RecoverMiddleware()()

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	fields := logger.Fields{"guild": m.GuildID, "user": m.Author.ID}

	if h.Progression != nil {
		_, err := h.Progression.HandleMessage(ctx, progression.Message{
			GuildID:   m.GuildID,
			ChannelID: m.ChannelID,
			UserID:    m.Author.ID,
		})
		if err != nil {
			logger.WithFields(fields).Error("Error otorgando XP: "+err.Error(), "Message")
		}
	}

	if h.Spam != nil {
		if _, err := h.Spam.HandleMessage(ctx, m.GuildID, m.ChannelID, m.Author.ID, m.Content); err != nil {
			logger.WithFields(fields).Warn("Error en anti-spam: "+err.Error(), "Message")
		}
	}
}
