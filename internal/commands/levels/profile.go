package levels

import (
	"bytes"
	"fmt"
	"image"

	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/PancyStudios/ArcaneBotGo/pkg/render"
	"github.com/bwmarrin/discordgo"
)

// createProfileCommand creates the /profile command
func (h *Handlers) createProfileCommand() *discord.Command {
	return discord.NewCommand(
		"profile",
		"Show a user's profile card",
		"levels",
		h.profileHandler,
	).WithOptions(
		discord.UserOption("user", "User to look up", false),
	)
}

// profileHandler handles the /profile command. When the card cannot be
// drawn the same data is sent as text.
func (h *Handlers) profileHandler(ctx *discord.CommandContext) error {
	if err := ctx.Defer(); err != nil {
		logger.Debug("No se pudo diferir /profile: "+err.Error(), "Levels")
	}

	user := ctx.TargetUser("user")
	standing, err := h.Engine.Standing(ctx.Context(), ctx.GuildID(), user.ID)
	if err != nil {
		return err
	}

	member := lookupMember(ctx, user.ID)
	data := render.ProfileData{
		Username:    displayName(member, user),
		Level:       standing.Level,
		Rank:        standing.Rank,
		XP:          standing.XP,
		NextLevelXP: standing.NextLevelXP,
		Progress:    standing.Progress,
	}
	if guild := ctx.Guild(); guild != nil {
		data.GuildName = guild.Name
	}
	if member != nil {
		data.JoinedAt = member.JoinedAt
	}
	data.Avatar = h.avatar(ctx, user)

	card, err := render.ProfileCard(data)
	if err != nil {
		logger.Warn("Error generando tarjeta de perfil: "+err.Error(), "Levels")
		return ctx.Reply(profileText(data))
	}

	return ctx.ReplyFile("", &discordgo.File{
		Name:        "profile.png",
		ContentType: "image/png",
		Reader:      bytes.NewReader(card),
	})
}

// avatar downloads the user's avatar, nil when it is unavailable
func (h *Handlers) avatar(ctx *discord.CommandContext, user *discordgo.User) image.Image {
	if h.Avatars == nil {
		return nil
	}
	img, err := h.Avatars.Fetch(ctx.Context(), user.AvatarURL("256"))
	if err != nil {
		logger.Debug("Avatar no disponible para "+user.ID+": "+err.Error(), "Levels")
		return nil
	}
	return img
}

func profileText(d render.ProfileData) string {
	return fmt.Sprintf("**%s**\nLevel: %d | Rank: #%d | XP: %d/%d (%d%%)",
		d.Username, d.Level, d.Rank, d.XP, d.NextLevelXP, int(d.Progress*100))
}
