package platform

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

func member(id string, roles ...string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: id}, Roles: roles}
}

func TestOutranks(t *testing.T) {
	guild := &discordgo.Guild{
		OwnerID: "owner",
		Roles: []*discordgo.Role{
			{ID: "admin", Position: 10},
			{ID: "bot", Position: 5},
			{ID: "mod", Position: 5},
			{ID: "member", Position: 1},
		},
	}

	tests := []struct {
		name   string
		actor  *discordgo.Member
		target *discordgo.Member
		want   bool
	}{
		{"higher role", member("b", "bot"), member("u", "member"), true},
		{"equal role", member("b", "bot"), member("m", "mod"), false},
		{"lower role", member("b", "bot"), member("a", "admin"), false},
		{"target has no roles", member("b", "bot"), member("u"), true},
		{"target is owner", member("b", "admin"), member("owner"), false},
		{"actor is owner", member("owner"), member("a", "admin"), true},
		{"nil target", member("b", "bot"), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Outranks(guild, tt.actor, tt.target); got != tt.want {
				t.Errorf("Outranks() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHighestPositionUsesBestRole(t *testing.T) {
	roles := []*discordgo.Role{{ID: "a", Position: 3}, {ID: "b", Position: 7}}

	if got := HighestPosition(roles, member("u", "a", "b", "deleted-role")); got != 7 {
		t.Errorf("HighestPosition() = %v, want %v", got, 7)
	}
}

func TestIsTimedOut(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	if !IsTimedOut(&discordgo.Member{CommunicationDisabledUntil: &future}, now) {
		t.Error("member with a future timeout should be timed out")
	}
	if IsTimedOut(&discordgo.Member{CommunicationDisabledUntil: &past}, now) {
		t.Error("expired timeout should not count")
	}
	if IsTimedOut(&discordgo.Member{}, now) {
		t.Error("member without timeout should not be timed out")
	}
}

func TestHasRole(t *testing.T) {
	if !HasRole(member("u", "x", "muted"), "muted") {
		t.Error("HasRole() should find the role")
	}
	if HasRole(nil, "muted") {
		t.Error("HasRole(nil) should be false")
	}
}
