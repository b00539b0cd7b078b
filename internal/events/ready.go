package events

import (
	"context"
	"fmt"

	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// onReady is called on every (re)connection. Pending mutes are restored
// each time; the sweep loop starts once.
func (h *Handlers) onReady(s *discordgo.Session, r *discordgo.Ready) {
	logger.Success(fmt.Sprintf("✅ Bot conectado: %s", r.User.Username), "Ready")
	logger.Info(fmt.Sprintf("📊 Conectado a %d servidores", len(r.Guilds)), "Ready")

	if err := s.UpdateWatchStatus(0, h.Prefix+"help"); err != nil {
		logger.Error(fmt.Sprintf("Error estableciendo estado: %v", err), "Ready")
	}

	if h.Scheduler == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	restored, err := h.Scheduler.Restore(ctx)
	if err != nil {
		logger.Error("Error restaurando mutes pendientes: "+err.Error(), "Ready")
	} else {
		logger.Info(fmt.Sprintf("🔇 %d mutes pendientes restaurados", restored), "Ready")
	}

	h.startOnce.Do(h.Scheduler.Start)
}
