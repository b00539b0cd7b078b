package events

import (
	"testing"

	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

func TestQualifies(t *testing.T) {
	tests := []struct {
		name string
		msg  *discordgo.Message
		want bool
	}{
		{"guild message", &discordgo.Message{GuildID: "G", Author: &discordgo.User{ID: "U"}}, true},
		{"bot", &discordgo.Message{GuildID: "G", Author: &discordgo.User{ID: "B", Bot: true}}, false},
		{"direct message", &discordgo.Message{Author: &discordgo.User{ID: "U"}}, false},
		{"no author", &discordgo.Message{GuildID: "G"}, false},
	}

	for _, tt := range tests {
		if got := qualifies(&discordgo.MessageCreate{Message: tt.msg}); got != tt.want {
			t.Errorf("qualifies(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRegisterAll(t *testing.T) {
	client, err := discord.NewClient("token", ".")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	RegisterAll(client, &Handlers{Prefix: "."})

	if got := client.EventHandler.Count(); got != 8 {
		t.Errorf("registered events = %v, want %v", got, 8)
	}
}

func TestMessageWithoutServicesIsIgnored(t *testing.T) {
	h := &Handlers{}
	// nil engines must not panic
	h.onMessageCreate(nil, &discordgo.MessageCreate{Message: &discordgo.Message{
		GuildID: "G", ChannelID: "C", Content: "hi", Author: &discordgo.User{ID: "U"},
	}})
}
