package progression

import (
	"context"
	"fmt"

	"github.com/PancyStudios/ArcaneBotGo/internal/platform"
	"github.com/bwmarrin/discordgo"
)

// ColorGold is the level up embed color
const ColorGold = 0xFFD700

// PlatformAnnouncer posts level ups as an embed in the channel of the message
type PlatformAnnouncer struct {
	Platform platform.Platform
}

// AnnounceLevelUp implements Announcer
func (a PlatformAnnouncer) AnnounceLevelUp(ctx context.Context, guildID, channelID, userID string, level int) error {
	embed := LevelUpEmbed(userID, level)

	if member, err := a.Platform.Member(ctx, guildID, userID); err == nil && member != nil && member.User != nil {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: member.User.AvatarURL("256")}
	}
	return a.Platform.SendEmbed(ctx, channelID, embed)
}

// LevelUpEmbed builds the level up announcement
func LevelUpEmbed(userID string, level int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🎉 Level Up!",
		Description: fmt.Sprintf("GG <@%s>, you leveled up to **level %d**!", userID, level),
		Color:       ColorGold,
	}
}
