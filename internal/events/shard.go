package events

import (
	"fmt"

	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

func onShardDisconnect(s *discordgo.Session, event *discordgo.Disconnect) {
	logger.Warn(fmt.Sprintf("🔌 Shard %d desconectado.", s.ShardID), "Shard")
}

func onShardResumed(s *discordgo.Session, event *discordgo.Resumed) {
	logger.Success(fmt.Sprintf("✅ Shard %d reanudado.", s.ShardID), "Shard")
}
