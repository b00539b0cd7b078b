package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/PancyStudios/ArcaneBotGo/internal/progression"
	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldValues(embed *discordgo.MessageEmbed) map[string]string {
	values := make(map[string]string, len(embed.Fields))
	for _, f := range embed.Fields {
		values[f.Name] = f.Value
	}
	return values
}

func TestUserInfoEmbed(t *testing.T) {
	now := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
	joined := now.Add(-10 * 24 * time.Hour)
	boost := now.Add(-3 * 24 * time.Hour)

	user := &discordgo.User{ID: "175928847299117063", Username: "ana"}
	member := &discordgo.Member{User: user, JoinedAt: joined, PremiumSince: &boost, Roles: []string{"1", "2"}}

	embed := UserInfoEmbed(user, member, progression.Standing{XP: 400, Level: 3, Rank: 2}, 4, now)
	values := fieldValues(embed)

	assert.Equal(t, "175928847299117063", values["ID"])
	assert.Equal(t, "3", values["Level"])
	assert.Equal(t, "#2", values["Rank"])
	assert.Equal(t, "400", values["XP"])
	assert.Equal(t, "4", values["Warns"])
	assert.Equal(t, "2016-04-30", values["Account Created"])
	assert.Equal(t, "2024-06-01", values["Joined Server"])
	assert.Equal(t, "10", values["Days in Server"])
	assert.Equal(t, "3 days", values["Boosting Since"])
	assert.Equal(t, "<@&1> <@&2>", values["Roles (2)"])
}

func TestUserInfoEmbedManyRoles(t *testing.T) {
	user := &discordgo.User{ID: "175928847299117063", Username: "ana"}
	member := &discordgo.Member{User: user, Roles: []string{"1", "2", "3", "4", "5", "6"}}

	values := fieldValues(UserInfoEmbed(user, member, progression.Standing{Level: 1, Rank: 1}, 0, time.Now()))
	assert.Equal(t, "6 roles", values["Roles (6)"])
	_, joined := values["Joined Server"]
	assert.False(t, joined)
}

func TestServerInfoEmbed(t *testing.T) {
	g := &discordgo.Guild{
		ID:          "175928847299117063",
		Name:        "Arcane",
		OwnerID:     "42",
		MemberCount: 3,
		Members: []*discordgo.Member{
			{User: &discordgo.User{ID: "1"}},
			{User: &discordgo.User{ID: "2", Bot: true}},
		},
		Channels: []*discordgo.Channel{
			{Type: discordgo.ChannelTypeGuildText},
			{Type: discordgo.ChannelTypeGuildText},
			{Type: discordgo.ChannelTypeGuildVoice},
			{Type: discordgo.ChannelTypeGuildCategory},
		},
		Roles:                    []*discordgo.Role{{ID: "a"}, {ID: "b"}},
		PremiumSubscriptionCount: 7,
		PremiumTier:              discordgo.PremiumTier2,
	}

	embed := ServerInfoEmbed(g)
	values := fieldValues(embed)

	assert.Equal(t, "Arcane", embed.Title)
	assert.Equal(t, "<@42>", values["Owner"])
	assert.Equal(t, "3", values["Members"])
	assert.Equal(t, "1", values["Bots"])
	assert.Equal(t, "2 Text | 1 Voice", values["Channels"])
	assert.Equal(t, "2", values["Roles"])
	assert.Equal(t, "0", values["Emojis"])
	assert.Equal(t, "7", values["Boosts"])
	assert.Equal(t, "2", values["Boost Level"])
	assert.Equal(t, "2016-04-30", values["Created"])
	assert.Nil(t, embed.Thumbnail)
}

func TestHelpEmbed(t *testing.T) {
	noop := func(*discord.CommandContext) error { return nil }
	commands := map[string]*discord.Command{
		"warn":   discord.NewCommand("warn", "Warn a member", "mod", noop).WithOptions(discord.UserOption("user", "Member", true), discord.StringOption("reason", "Reason", false)),
		"xp.add": discord.NewCommand("add", "Add XP", "levels", noop).WithOptions(discord.UserOption("user", "User", true)),
		"ping":   discord.NewCommand("ping", "Check latency", "info", noop),
	}

	embed := HelpEmbed(".", commands)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "🎮 Level Commands", embed.Fields[0].Name)
	assert.Equal(t, "`.xp add <user>` - Add XP", embed.Fields[0].Value)
	assert.Equal(t, "`.warn <user> [reason]` - Warn a member", embed.Fields[1].Value)
	assert.True(t, strings.HasPrefix(embed.Fields[2].Value, "`.ping`"))
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{90 * time.Second, "1m, 30s"},
		{26*time.Hour + 5*time.Second, "1d, 2h, 5s"},
	}
	for _, tt := range tests {
		if got := formatUptime(tt.in); got != tt.want {
			t.Errorf("formatUptime(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
