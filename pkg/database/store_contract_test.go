package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/PancyStudios/ArcaneBotGo/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCounterStoreSuite checks the behaviour every Store backend must share
func runCounterStoreSuite(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("missing records are None", func(t *testing.T) {
		xp, err := s.GetXP(ctx, "g-none", "u")
		require.NoError(t, err)
		assert.False(t, xp.IsSome())

		warns, err := s.GetWarns(ctx, "g-none", "u")
		require.NoError(t, err)
		assert.False(t, warns.IsSome())
	})

	t.Run("addXP accumulates", func(t *testing.T) {
		total, err := s.AddXP(ctx, "g-add", "u", 10)
		require.NoError(t, err)
		assert.Equal(t, int64(10), total)

		total, err = s.AddXP(ctx, "g-add", "u", 5)
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)

		rec, err := s.GetXP(ctx, "g-add", "u")
		require.NoError(t, err)
		assert.Equal(t, int64(15), XPOf(rec))
	})

	t.Run("records are scoped per guild", func(t *testing.T) {
		_, err := s.AddXP(ctx, "g-scope-1", "u", 30)
		require.NoError(t, err)

		rec, err := s.GetXP(ctx, "g-scope-2", "u")
		require.NoError(t, err)
		assert.False(t, rec.IsSome())
	})

	t.Run("concurrent addXP loses no update", func(t *testing.T) {
		const workers = 25
		var wg sync.WaitGroup
		errs := make(chan error, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.AddXP(ctx, "g-race", "u", 10); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		rec, err := s.GetXP(ctx, "g-race", "u")
		require.NoError(t, err)
		assert.Equal(t, int64(workers*10), XPOf(rec))
	})

	t.Run("subtractXP floors at zero in one write", func(t *testing.T) {
		_, err := s.AddXP(ctx, "g-sub", "u", 20)
		require.NoError(t, err)

		total, err := s.SubtractXP(ctx, "g-sub", "u", 5)
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)

		total, err = s.SubtractXP(ctx, "g-sub", "u", 50)
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)

		total, err = s.SubtractXP(ctx, "g-sub", "fresh", 10)
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
		rec, err := s.GetXP(ctx, "g-sub", "fresh")
		require.NoError(t, err)
		assert.True(t, rec.IsSome())

		_, err = s.SubtractXP(ctx, "g-sub", "u", -1)
		assert.ErrorIs(t, err, ErrNegativeValue)
	})

	t.Run("concurrent add and subtract never go negative", func(t *testing.T) {
		_, err := s.AddXP(ctx, "g-mix", "u", 40)
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make(chan error, 20)
		for i := 0; i < 10; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				if _, err := s.AddXP(ctx, "g-mix", "u", 10); err != nil {
					errs <- err
				}
			}()
			go func() {
				defer wg.Done()
				total, err := s.SubtractXP(ctx, "g-mix", "u", 3)
				if err != nil {
					errs <- err
					return
				}
				assert.GreaterOrEqual(t, total, int64(0))
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		// 40 + 100 - 30, no subtraction can hit the floor
		rec, err := s.GetXP(ctx, "g-mix", "u")
		require.NoError(t, err)
		assert.Equal(t, int64(110), XPOf(rec))
	})

	t.Run("setXP and deleteXP", func(t *testing.T) {
		require.NoError(t, s.SetXP(ctx, "g-set", "u", 400))
		rec, err := s.GetXP(ctx, "g-set", "u")
		require.NoError(t, err)
		assert.Equal(t, int64(400), XPOf(rec))

		require.NoError(t, s.SetXP(ctx, "g-set", "u", 0))
		rec, err = s.GetXP(ctx, "g-set", "u")
		require.NoError(t, err)
		assert.True(t, rec.IsSome())
		assert.Equal(t, int64(0), XPOf(rec))

		assert.ErrorIs(t, s.SetXP(ctx, "g-set", "u", -1), ErrNegativeValue)

		require.NoError(t, s.DeleteXP(ctx, "g-set", "u"))
		rec, err = s.GetXP(ctx, "g-set", "u")
		require.NoError(t, err)
		assert.False(t, rec.IsSome())
	})

	t.Run("topXP orders by xp then insertion", func(t *testing.T) {
		for _, u := range []struct {
			id string
			xp int64
		}{{"first", 50}, {"top", 90}, {"second", 50}, {"low", 5}, {"third", 50}} {
			_, err := s.AddXP(ctx, "g-top", u.id, u.xp)
			require.NoError(t, err)
		}

		entries, err := s.TopXP(ctx, "g-top", 4)
		require.NoError(t, err)
		require.Len(t, entries, 4)
		assert.Equal(t, []string{"top", "first", "second", "third"}, userIDs(entries))

		all, err := s.TopXP(ctx, "g-top", 0)
		require.NoError(t, err)
		assert.Len(t, all, 5)

		n, err := s.CountXP(ctx, "g-top")
		require.NoError(t, err)
		assert.Equal(t, int64(5), n)
	})

	t.Run("warns increment and reset", func(t *testing.T) {
		for want := int64(1); want <= 3; want++ {
			got, err := s.AddWarn(ctx, "g-warn", "u")
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}

		require.NoError(t, s.ResetWarns(ctx, "g-warn", "u"))
		rec, err := s.GetWarns(ctx, "g-warn", "u")
		require.NoError(t, err)
		assert.Equal(t, int64(0), WarnsOf(rec))

		got, err := s.AddWarn(ctx, "g-warn", "u")
		require.NoError(t, err)
		assert.Equal(t, int64(1), got)
	})

	t.Run("mute jobs", func(t *testing.T) {
		runMuteJobSuite(t, s)
	})
}

func runMuteJobSuite(t *testing.T, s MuteJobStore) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	later := models.MuteJob{ID: uuid.NewString(), GuildID: "g-jobs", UserID: "later", RoleID: "r", ExpiresAt: now.Add(2 * time.Hour), CreatedAt: now}
	sooner := models.MuteJob{ID: uuid.NewString(), GuildID: "g-jobs", UserID: "sooner", RoleID: "r", ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	require.NoError(t, s.SaveMuteJob(ctx, later))
	require.NoError(t, s.SaveMuteJob(ctx, sooner))

	jobs, err := s.ListMuteJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "sooner", jobs[0].UserID)

	// replacing keeps a single job per user
	later.ExpiresAt = now.Add(3 * time.Hour)
	require.NoError(t, s.SaveMuteJob(ctx, later))
	got, err := s.GetMuteJob(ctx, "g-jobs", "later")
	require.NoError(t, err)
	job, ok := got.Get()
	require.True(t, ok)
	assert.True(t, job.ExpiresAt.Equal(later.ExpiresAt))

	require.NoError(t, s.DeleteMuteJob(ctx, "g-jobs", "later"))
	got, err = s.GetMuteJob(ctx, "g-jobs", "later")
	require.NoError(t, err)
	assert.False(t, got.IsSome())

	jobs, err = s.ListMuteJobs(ctx)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func userIDs(entries []models.LeaderboardEntry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.UserID
	}
	return ids
}
