package mod

import (
	"testing"

	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

func TestRegisterModCommands(t *testing.T) {
	client, err := discord.NewClient("token", ".")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	RegisterModCommands(client, &Handlers{})

	tests := []struct {
		word  string
		name  string
		perms int64
	}{
		{"warn", "warn", discordgo.PermissionModerateMembers},
		{"listwarns", "listwarns", discordgo.PermissionModerateMembers},
		{"warns", "listwarns", discordgo.PermissionModerateMembers},
		{"clearwarns", "clearwarns", discordgo.PermissionModerateMembers},
		{"mute", "mute", discordgo.PermissionModerateMembers},
		{"unmute", "unmute", discordgo.PermissionModerateMembers},
		{"kick", "kick", discordgo.PermissionKickMembers},
		{"ban", "ban", discordgo.PermissionBanMembers},
		{"purge", "purge", discordgo.PermissionManageMessages},
		{"clear", "purge", discordgo.PermissionManageMessages},
	}

	for _, tt := range tests {
		cmd, name, ok := client.Commands.Resolve(tt.word)
		if !ok {
			t.Errorf("Resolve(%q) not found", tt.word)
			continue
		}
		if name != tt.name {
			t.Errorf("Resolve(%q) name = %v, want %v", tt.word, name, tt.name)
		}
		if cmd.UserPermissions != tt.perms {
			t.Errorf("%s permissions = %v, want %v", tt.name, cmd.UserPermissions, tt.perms)
		}
	}
}

func TestBanArguments(t *testing.T) {
	h := &Handlers{}
	cmd := h.createBanCommand()

	args, err := discord.ParseArgs(cmd.Options, "<@123456789012345678> spamming links")
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}
	if _, ok := args["days"]; ok {
		t.Errorf("days should be skipped when the token is not a number")
	}
	if got := args["reason"].Value; got != "spamming links" {
		t.Errorf("reason = %q, want %q", got, "spamming links")
	}

	args, err = discord.ParseArgs(cmd.Options, "123456789012345678 3 raid")
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}
	if got := args["days"].Int; got != 3 {
		t.Errorf("days = %v, want %v", got, 3)
	}
}

func TestMuteRequiresDuration(t *testing.T) {
	h := &Handlers{}
	cmd := h.createMuteCommand()

	if _, err := discord.ParseArgs(cmd.Options, "<@123456789012345678>"); err == nil {
		t.Error("ParseArgs() without duration should fail")
	}
}
