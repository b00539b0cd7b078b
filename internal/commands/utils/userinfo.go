package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/ArcaneBotGo/internal/progression"
	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// maxListedRoles is how many role mentions fit before only the count is shown
const maxListedRoles = 5

// createUserInfoCommand creates the /userinfo command
func (h *Handlers) createUserInfoCommand() *discord.Command {
	return discord.NewCommand(
		"userinfo",
		"Show info about a user",
		"info",
		h.userInfoHandler,
	).WithOptions(
		discord.UserOption("user", "User to show", false),
	).WithAliases("ui")
}

// userInfoHandler handles the /userinfo command
func (h *Handlers) userInfoHandler(ctx *discord.CommandContext) error {
	user := ctx.TargetUser("user")

	standing, err := h.Progression.Standing(ctx.Context(), ctx.GuildID(), user.ID)
	if err != nil {
		return err
	}
	warns, err := h.Moderation.ListWarns(ctx.Context(), ctx.GuildID(), user.ID)
	if err != nil {
		return err
	}

	member, _ := ctx.Session.GuildMember(ctx.GuildID(), user.ID, discordgo.WithContext(ctx.Context()))
	return ctx.ReplyEmbed(UserInfoEmbed(user, member, standing, warns, time.Now()))
}

// UserInfoEmbed builds the /userinfo embed. member is nil for users that
// are not in the guild.
func UserInfoEmbed(user *discordgo.User, member *discordgo.Member, s progression.Standing, warns int64, now time.Time) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "ID", Value: user.ID, Inline: true},
		{Name: "Level", Value: fmt.Sprintf("%d", s.Level), Inline: true},
		{Name: "Rank", Value: fmt.Sprintf("#%d", s.Rank), Inline: true},
		{Name: "XP", Value: fmt.Sprintf("%d", s.XP), Inline: true},
		{Name: "Warns", Value: fmt.Sprintf("%d", warns), Inline: true},
	}
	if created, err := discordgo.SnowflakeTimestamp(user.ID); err == nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Account Created", Value: created.Format(dateLayout), Inline: true})
	}

	if member != nil {
		if !member.JoinedAt.IsZero() {
			fields = append(fields,
				&discordgo.MessageEmbedField{Name: "Joined Server", Value: member.JoinedAt.Format(dateLayout), Inline: true},
				&discordgo.MessageEmbedField{Name: "Days in Server", Value: fmt.Sprintf("%d", int(now.Sub(member.JoinedAt).Hours()/24)), Inline: true},
			)
		}
		if member.PremiumSince != nil {
			days := int(now.Sub(*member.PremiumSince).Hours() / 24)
			fields = append(fields, &discordgo.MessageEmbedField{Name: "Boosting Since", Value: fmt.Sprintf("%d days", days), Inline: true})
		}
		if n := len(member.Roles); n > 0 {
			value := fmt.Sprintf("%d roles", n)
			if n < maxListedRoles {
				mentions := make([]string, n)
				for i, id := range member.Roles {
					mentions[i] = "<@&" + id + ">"
				}
				value = strings.Join(mentions, " ")
			}
			fields = append(fields, &discordgo.MessageEmbedField{Name: fmt.Sprintf("Roles (%d)", n), Value: value})
		}
	}

	return &discordgo.MessageEmbed{
		Title:     user.String(),
		Color:     ColorGreen,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: user.AvatarURL("256")},
		Fields:    fields,
	}
}
