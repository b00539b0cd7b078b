package moderation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/PancyStudios/ArcaneBotGo/internal/platform"
	apperrors "github.com/PancyStudios/ArcaneBotGo/pkg/errors"
	"github.com/PancyStudios/ArcaneBotGo/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionFor(t *testing.T) {
	tests := []struct {
		count    int64
		kind     ActionKind
		duration time.Duration
	}{
		{1, ActionNotify, 0},
		{2, ActionNotify, 0},
		{3, ActionMute, time.Hour},
		{4, ActionMute, 24 * time.Hour},
		{5, ActionKick, 0},
		{6, ActionBan, 0},
		{7, ActionBan, 0},
		{42, ActionBan, 0},
	}

	for _, tt := range tests {
		got := ActionFor(tt.count)
		if got.Kind != tt.kind || got.Duration != tt.duration {
			t.Errorf("ActionFor(%d) = %v/%v, want %v/%v", tt.count, got.Kind, got.Duration, tt.kind, tt.duration)
		}
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"30s", 30 * time.Second, false},
		{"10m", 10 * time.Minute, false},
		{"2h", 2 * time.Hour, false},
		{"1d", 24 * time.Hour, false},
		{"15", 15 * time.Minute, false},
		{" 3H ", 3 * time.Hour, false},
		{"", 0, true},
		{"m", 0, true},
		{"abc", 0, true},
		{"10w", 0, true},
		{"0m", 0, true},
		{"-5m", 0, true},
		{"99999999999999d", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDuration(%q) = %v, want error", tt.in, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}

	_, err := ParseDuration("soon")
	assert.Equal(t, "❌ Invalid duration. Use e.g. `10m`, `2h`, `1d`.", apperrors.UserMessage(err))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1d", FormatDuration(24*time.Hour))
	assert.Equal(t, "2h", FormatDuration(2*time.Hour))
	assert.Equal(t, "90m", FormatDuration(90*time.Minute))
	assert.Equal(t, "45s", FormatDuration(45*time.Second))
}

func TestClamps(t *testing.T) {
	assert.Equal(t, 1, ClampPurge(0))
	assert.Equal(t, 50, ClampPurge(50))
	assert.Equal(t, MaxPurge, ClampPurge(1000))
	assert.Equal(t, 0, ClampBanDays(-3))
	assert.Equal(t, MaxBanDays, ClampBanDays(30))
}

func TestWarnEscalation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ModeTimeout, "U")
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	f.engine.now = func() time.Time { return now }

	warn := func() WarnResult {
		res, err := f.engine.Warn(ctx, WarnRequest{GuildID: "G", UserID: "U", Reason: "rude"})
		require.NoError(t, err)
		require.NoError(t, res.ActionErr)
		return res
	}

	for i := int64(1); i <= 2; i++ {
		res := warn()
		assert.Equal(t, i, res.Count)
		assert.Equal(t, ActionNotify, res.Action.Kind)
	}
	assert.Empty(t, f.platform.ops("timeout"))
	assert.Empty(t, f.platform.ops("kick"))
	assert.Empty(t, f.platform.ops("ban"))

	res := warn()
	assert.Equal(t, int64(3), res.Count)
	assert.Equal(t, "⚠️ <@U> has been warned. Reason: rude (Warn 3)", res.Notice)
	timeouts := f.platform.ops("timeout")
	require.Len(t, timeouts, 1)
	assert.Equal(t, time.Hour, timeouts[0].until.Sub(now))
	assert.Equal(t, "3rd warning - auto mute 1 hour", timeouts[0].reason)

	warn()
	timeouts = f.platform.ops("timeout")
	require.Len(t, timeouts, 2)
	assert.Equal(t, 24*time.Hour, timeouts[1].until.Sub(now))

	warn()
	assert.Len(t, f.platform.ops("kick"), 1)
	assert.Len(t, f.platform.ops("timeout"), 2, "count 5 must not mute")

	warn()
	warn()
	bans := f.platform.ops("ban")
	assert.Len(t, bans, 2)
	assert.Len(t, f.platform.ops("kick"), 1)

	count, err := f.engine.ListWarns(ctx, "G", "U")
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestClearWarnsRestartsEscalation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ModeTimeout, "U")

	for i := 0; i < 3; i++ {
		_, err := f.engine.Warn(ctx, WarnRequest{GuildID: "G", UserID: "U"})
		require.NoError(t, err)
	}
	require.NoError(t, f.engine.ClearWarns(ctx, "G", "U"))

	res, err := f.engine.Warn(ctx, WarnRequest{GuildID: "G", UserID: "U"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Count)
	assert.Equal(t, ActionNotify, res.Action.Kind)
	assert.Contains(t, res.Notice, "Reason: No reason provided")
	assert.Len(t, f.platform.ops("timeout"), 1)
}

func TestWarnSwallowsClosedDMs(t *testing.T) {
	f := newFixture(ModeTimeout, "U")
	f.platform.dmErr = platform.ErrCannotDM

	res, err := f.engine.Warn(context.Background(), WarnRequest{GuildID: "G", UserID: "U", Reason: "x"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Count)
}

func TestWarnSendsDirectNotice(t *testing.T) {
	f := newFixture(ModeTimeout, "U")

	_, err := f.engine.Warn(context.Background(), WarnRequest{GuildID: "G", UserID: "U", Reason: "flood"})
	require.NoError(t, err)
	require.Len(t, f.platform.dms, 1)
	assert.Equal(t, "⚠️ You received a warning in Test Guild. Reason: flood (Warn 1)", f.platform.dms[0])
}

func TestWarnActionFailureKeepsCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ModeTimeout, "U")
	f.platform.kickErr = platform.ErrMissingPermissions
	f.store.warns[key("G", "U")] = 4

	res, err := f.engine.Warn(ctx, WarnRequest{GuildID: "G", UserID: "U"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.Count)
	require.Error(t, res.ActionErr)
	assert.Equal(t, apperrors.KindPermission, apperrors.KindOf(res.ActionErr))
	assert.Equal(t, "❌ I don't have permission to kick this user.", apperrors.UserMessage(res.ActionErr))
}

func TestHierarchyGuard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ModeRole, "U")
	f.platform.outranked["U"] = true

	_, err := f.engine.Warn(ctx, WarnRequest{GuildID: "G", UserID: "U"})
	assert.ErrorIs(t, err, ErrHierarchy)
	_, err = f.engine.Mute(ctx, "G", "U", time.Hour, "")
	assert.ErrorIs(t, err, ErrHierarchy)
	assert.ErrorIs(t, f.engine.Kick(ctx, "G", "U", ""), ErrHierarchy)
	assert.ErrorIs(t, f.engine.Ban(ctx, "G", "U", "", 0), ErrHierarchy)

	count, err := f.engine.ListWarns(ctx, "G", "U")
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, f.platform.calls)
	assert.Equal(t, apperrors.KindPermission, apperrors.KindOf(ErrHierarchy))
}

func TestUnknownMember(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ModeTimeout)

	assert.ErrorIs(t, f.engine.Kick(ctx, "G", "ghost", ""), ErrNotMember)
	_, err := f.engine.Warn(ctx, WarnRequest{GuildID: "G", UserID: "ghost"})
	assert.ErrorIs(t, err, ErrNotMember)

	// bans work on users that already left
	require.NoError(t, f.engine.Ban(ctx, "G", "ghost", "raid", 1))
	assert.Len(t, f.platform.ops("ban"), 1)
}

func TestMuteTimeoutNeverShortens(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ModeTimeout, "U")
	now := time.Now()
	f.engine.now = func() time.Time { return now }

	res, err := f.engine.Mute(ctx, "G", "U", 24*time.Hour, "")
	require.NoError(t, err)
	assert.False(t, res.Kept)

	res, err = f.engine.Mute(ctx, "G", "U", time.Hour, "")
	require.NoError(t, err)
	assert.True(t, res.Kept)
	assert.Equal(t, now.Add(24*time.Hour), res.Until)
	assert.Len(t, f.platform.ops("timeout"), 1)
}

func TestMuteTimeoutPermissionError(t *testing.T) {
	f := newFixture(ModeTimeout, "U")
	f.platform.timeoutErr = platform.ErrMissingPermissions

	_, err := f.engine.Mute(context.Background(), "G", "U", time.Hour, "")
	require.Error(t, err)
	assert.Equal(t, "❌ I don't have permission to timeout this user.", apperrors.UserMessage(err))
}

func TestMuteLongerThanTimeoutUsesRole(t *testing.T) {
	f := newFixture(ModeTimeout, "U")
	defer f.scheduler.Stop()

	res, err := f.engine.Mute(context.Background(), "G", "U", 30*24*time.Hour, "")
	require.NoError(t, err)
	assert.Equal(t, ModeRole, res.Mode)
	assert.Empty(t, f.platform.ops("timeout"))
	assert.Len(t, f.platform.ops("addRole"), 1)
	assert.Equal(t, 1, f.store.jobCount())
}

func TestMuteRoleMode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ModeRole, "U")
	defer f.scheduler.Stop()

	res, err := f.engine.Mute(ctx, "G", "U", time.Hour, "noise")
	require.NoError(t, err)
	assert.Equal(t, ModeRole, res.Mode)

	creates := f.platform.ops("createRole")
	require.Len(t, creates, 1)
	assert.Equal(t, MutedRoleReason, creates[0].reason)
	assert.Len(t, f.platform.ops("deny"), 1)

	job, err := f.scheduler.Lookup(ctx, "G", "U")
	require.NoError(t, err)
	j, ok := job.Get()
	require.True(t, ok)
	assert.Equal(t, "role-1", j.RoleID)
	assert.NotEmpty(t, j.ID)
	assert.Equal(t, 1, f.scheduler.Armed())

	// shorter mute keeps the longer one
	res, err = f.engine.Mute(ctx, "G", "U", time.Minute, "")
	require.NoError(t, err)
	assert.True(t, res.Kept)
	again, _ := f.scheduler.Lookup(ctx, "G", "U")
	j2, _ := again.Get()
	assert.Equal(t, j.ID, j2.ID)
}

func TestMuteRoleCreatedOnceConcurrently(t *testing.T) {
	users := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	f := newFixture(ModeRole, users...)
	defer f.scheduler.Stop()

	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			_, err := f.engine.Mute(context.Background(), "G", u, time.Hour, "")
			assert.NoError(t, err)
		}(u)
	}
	wg.Wait()

	assert.Equal(t, 1, f.platform.createRoleCalls)
	assert.Len(t, f.platform.ops("addRole"), len(users))
}

func TestMuteRoleExpires(t *testing.T) {
	f := newFixture(ModeRole, "U")
	defer f.scheduler.Stop()

	_, err := f.engine.Mute(context.Background(), "G", "U", 30*time.Millisecond, "")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(f.platform.ops("removeRole")) == 1 && f.store.jobCount() == 0
	}, 2*time.Second, 10*time.Millisecond)

	removes := f.platform.ops("removeRole")
	assert.Equal(t, ExpiredReason, removes[0].reason)
	assert.Eventually(t, func() bool { return f.scheduler.Armed() == 0 }, time.Second, 10*time.Millisecond)
}

func TestDueJobsLeaveNoTimerBehind(t *testing.T) {
	ctx := context.Background()
	users := make([]string, 50)
	for i := range users {
		users[i] = fmt.Sprintf("u%d", i)
	}
	f := newFixture(ModeRole, users...)
	defer f.scheduler.Stop()

	for _, u := range users {
		f.platform.members[u].Roles = []string{"muted"}
	}
	for _, u := range users {
		_, err := f.scheduler.Schedule(ctx, models.MuteJob{GuildID: "G", UserID: u, RoleID: "muted", ExpiresAt: time.Now().Add(-time.Second)})
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		return f.store.jobCount() == 0 && f.scheduler.Armed() == 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, f.platform.ops("removeRole"), len(users))
}

func TestUnmute(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ModeRole, "U")
	defer f.scheduler.Stop()

	_, err := f.engine.Mute(ctx, "G", "U", time.Hour, "")
	require.NoError(t, err)

	cleared, err := f.engine.Unmute(ctx, "G", "U")
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.Len(t, f.platform.ops("removeRole"), 1)
	assert.Equal(t, 0, f.store.jobCount())
	assert.Equal(t, 0, f.scheduler.Armed())

	cleared, err = f.engine.Unmute(ctx, "G", "U")
	require.NoError(t, err)
	assert.False(t, cleared)
}

func TestUnmuteTimeout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ModeTimeout, "U")

	_, err := f.engine.Mute(ctx, "G", "U", time.Hour, "")
	require.NoError(t, err)

	cleared, err := f.engine.Unmute(ctx, "G", "U")
	require.NoError(t, err)
	assert.True(t, cleared)

	timeouts := f.platform.ops("timeout")
	require.Len(t, timeouts, 2)
	assert.Nil(t, timeouts[1].until)
}

func TestReleaseAfterManualUnmuteIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ModeRole, "U")
	defer f.scheduler.Stop()

	_, err := f.engine.Mute(ctx, "G", "U", time.Hour, "")
	require.NoError(t, err)
	pending, _ := f.scheduler.Lookup(ctx, "G", "U")
	job, _ := pending.Get()

	_, err = f.engine.Unmute(ctx, "G", "U")
	require.NoError(t, err)

	require.NoError(t, f.scheduler.release(ctx, job))
	assert.Len(t, f.platform.ops("removeRole"), 1)
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ModeRole, "expired", "pending")
	defer f.scheduler.Stop()

	f.platform.members["expired"].Roles = []string{"muted"}
	f.platform.members["pending"].Roles = []string{"muted"}
	require.NoError(t, f.store.SaveMuteJob(ctx, models.MuteJob{ID: "1", GuildID: "G", UserID: "expired", RoleID: "muted", ExpiresAt: time.Now().Add(-time.Minute)}))
	require.NoError(t, f.store.SaveMuteJob(ctx, models.MuteJob{ID: "2", GuildID: "G", UserID: "pending", RoleID: "muted", ExpiresAt: time.Now().Add(time.Hour)}))

	restored, err := f.scheduler.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, restored)
	assert.Equal(t, 1, f.scheduler.Armed())

	removes := f.platform.ops("removeRole")
	require.Len(t, removes, 1)
	assert.Equal(t, "expired", removes[0].userID)
	assert.Equal(t, 1, f.store.jobCount())
}

func TestSweepReleasesUnarmedJobs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ModeRole, "U")
	f.platform.members["U"].Roles = []string{"muted"}
	require.NoError(t, f.store.SaveMuteJob(ctx, models.MuteJob{ID: "1", GuildID: "G", UserID: "U", RoleID: "muted", ExpiresAt: time.Now().Add(-time.Second)}))

	f.scheduler.Sweep(ctx)
	assert.Len(t, f.platform.ops("removeRole"), 1)
	assert.Equal(t, 0, f.store.jobCount())

	// member left: the job is dropped without a platform call
	require.NoError(t, f.store.SaveMuteJob(ctx, models.MuteJob{ID: "2", GuildID: "G", UserID: "gone", RoleID: "muted", ExpiresAt: time.Now().Add(-time.Second)}))
	f.scheduler.Sweep(ctx)
	assert.Len(t, f.platform.ops("removeRole"), 1)
	assert.Equal(t, 0, f.store.jobCount())
}

func TestReapplyOnRejoin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(ModeRole, "U", "V")
	require.NoError(t, f.store.SaveMuteJob(ctx, models.MuteJob{ID: "1", GuildID: "G", UserID: "U", RoleID: "muted", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, f.store.SaveMuteJob(ctx, models.MuteJob{ID: "2", GuildID: "G", UserID: "V", RoleID: "muted", ExpiresAt: time.Now().Add(-time.Minute)}))

	ok, err := f.scheduler.Reapply(ctx, "G", "U")
	require.NoError(t, err)
	assert.True(t, ok)
	adds := f.platform.ops("addRole")
	require.Len(t, adds, 1)
	assert.Equal(t, RejoinReason, adds[0].reason)
	assert.Contains(t, f.platform.members["U"].Roles, "muted")

	// expired and absent jobs leave the member alone
	ok, err = f.scheduler.Reapply(ctx, "G", "V")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = f.scheduler.Reapply(ctx, "G", "nobody")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, f.platform.ops("addRole"), 1)
}

func TestPurge(t *testing.T) {
	f := newFixture(ModeTimeout)

	n, err := f.engine.Purge(context.Background(), "c", "", 500)
	require.NoError(t, err)
	assert.Equal(t, MaxPurge, n)
}

func TestPurgeBeforeInvocationKeepsFullAmount(t *testing.T) {
	f := newFixture(ModeTimeout)

	n, err := f.engine.Purge(context.Background(), "c", "cmd-msg", MaxPurge)
	require.NoError(t, err)
	assert.Equal(t, MaxPurge, n)

	purges := f.platform.ops("purge")
	require.Len(t, purges, 1)
	assert.Equal(t, "cmd-msg", purges[0].reason)
}
