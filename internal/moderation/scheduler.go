package moderation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/ArcaneBotGo/internal/platform"
	"github.com/PancyStudios/ArcaneBotGo/pkg/database"
	apperrors "github.com/PancyStudios/ArcaneBotGo/pkg/errors"
	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/PancyStudios/ArcaneBotGo/pkg/models"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
)

// ExpiredReason is the audit log reason for an automatic unmute
const ExpiredReason = "Temporary mute expired"

// RejoinReason is the audit log reason when a mute is put back on rejoin
const RejoinReason = "Rejoined while muted"

const (
	defaultSweepInterval = time.Minute
	releaseTimeout       = 30 * time.Second
)

type armed struct {
	jobID string
	timer *time.Timer
}

// Scheduler removes the muted role when a mute job expires. Jobs are
// persisted first and then armed as timers, so a restart can re-arm them
// with Restore and the sweep catches anything whose timer was lost.
type Scheduler struct {
	jobs     database.MuteJobStore
	platform platform.Platform
	timers   *xsync.MapOf[string, armed]
	interval time.Duration
	now      func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler. Call Restore and Start once the
// platform is connected.
func NewScheduler(jobs database.MuteJobStore, plat platform.Platform) *Scheduler {
	return &Scheduler{
		jobs:     jobs,
		platform: plat,
		timers:   xsync.NewMapOf[string, armed](),
		interval: defaultSweepInterval,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

// Lookup returns the pending job of a user
func (s *Scheduler) Lookup(ctx context.Context, guildID, userID string) (models.Option[models.MuteJob], error) {
	job, err := s.jobs.GetMuteJob(ctx, guildID, userID)
	if err != nil {
		return job, apperrors.Persistence(fmt.Errorf("get mute job: %w", err))
	}
	return job, nil
}

// Reapply puts the muted role back on a member who rejoined before their
// mute ran out. It reports whether a pending mute was found.
func (s *Scheduler) Reapply(ctx context.Context, guildID, userID string) (bool, error) {
	found, err := s.Lookup(ctx, guildID, userID)
	if err != nil {
		return false, err
	}
	job, ok := found.Get()
	if !ok || job.Due(s.now()) {
		return false, nil
	}

	if err := s.platform.AddRole(ctx, guildID, userID, job.RoleID, RejoinReason); err != nil {
		return true, fmt.Errorf("add role: %w", err)
	}
	return true, nil
}

// Schedule persists the job, replacing any previous one of the user, and arms it
func (s *Scheduler) Schedule(ctx context.Context, job models.MuteJob) (models.MuteJob, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = s.now()
	}

	if prev, err := s.jobs.GetMuteJob(ctx, job.GuildID, job.UserID); err == nil {
		if p, ok := prev.Get(); ok && p.Key() != job.Key() {
			s.disarm(p.Key())
		}
	}

	if err := s.jobs.SaveMuteJob(ctx, job); err != nil {
		return job, apperrors.Persistence(fmt.Errorf("save mute job: %w", err))
	}
	s.arm(job)

	logger.WithFields(logger.Fields{"guild": job.GuildID, "user": job.UserID, "expires": job.ExpiresAt.Format(time.RFC3339)}).
		Debug("Mute programado", "Scheduler")
	return job, nil
}

// Cancel drops the pending job of a user, if any
func (s *Scheduler) Cancel(ctx context.Context, guildID, userID string) error {
	prev, err := s.jobs.GetMuteJob(ctx, guildID, userID)
	if err != nil {
		return apperrors.Persistence(fmt.Errorf("get mute job: %w", err))
	}
	job, ok := prev.Get()
	if !ok {
		return nil
	}

	s.disarm(job.Key())
	if err := s.jobs.DeleteMuteJob(ctx, guildID, userID); err != nil {
		return apperrors.Persistence(fmt.Errorf("delete mute job: %w", err))
	}
	return nil
}

func (s *Scheduler) arm(job models.MuteJob) {
	delay := job.ExpiresAt.Sub(s.now())
	if delay < 0 {
		delay = 0
	}

	// the timer starts under the key's lock so expire always sees the entry
	s.timers.Compute(job.Key(), func(old armed, loaded bool) (armed, bool) {
		if loaded {
			old.timer.Stop()
		}
		return armed{jobID: job.ID, timer: time.AfterFunc(delay, func() { s.expire(job) })}, false
	})
}

func (s *Scheduler) disarm(key string) {
	if old, ok := s.timers.LoadAndDelete(key); ok {
		old.timer.Stop()
	}
}

// Armed reports how many timers are pending
func (s *Scheduler) Armed() int {
	return s.timers.Size()
}

func (s *Scheduler) expire(job models.MuteJob) {
	defer apperrors.RecoverMiddleware()()

	s.timers.Compute(job.Key(), func(old armed, loaded bool) (armed, bool) {
		return old, !loaded || old.jobID == job.ID
	})

	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	if err := s.release(ctx, job); err != nil {
		logger.WithFields(logger.Fields{"guild": job.GuildID, "user": job.UserID}).
			Error("No se pudo quitar el mute: "+err.Error(), "Scheduler")
	}
}

// release reverses a due job. It is a no-op when the job was cancelled or
// replaced, or when the member no longer has the role.
func (s *Scheduler) release(ctx context.Context, job models.MuteJob) error {
	current, err := s.jobs.GetMuteJob(ctx, job.GuildID, job.UserID)
	if err != nil {
		return fmt.Errorf("get mute job: %w", err)
	}
	if cur, ok := current.Get(); !ok || cur.ID != job.ID {
		return nil
	}

	member, err := s.platform.Member(ctx, job.GuildID, job.UserID)
	switch {
	case errors.Is(err, platform.ErrUnknownMember):
		// left the guild, nothing to remove
	case err != nil:
		return fmt.Errorf("get member: %w", err)
	case platform.HasRole(member, job.RoleID):
		err := s.platform.RemoveRole(ctx, job.GuildID, job.UserID, job.RoleID, ExpiredReason)
		if err != nil && !errors.Is(err, platform.ErrUnknownMember) {
			if !errors.Is(err, platform.ErrMissingPermissions) {
				return fmt.Errorf("remove role: %w", err)
			}
			logger.WithFields(logger.Fields{"guild": job.GuildID, "user": job.UserID}).
				Warn("Sin permisos para quitar el rol de mute, se descarta el job", "Scheduler")
		}
	}

	if err := s.jobs.DeleteMuteJob(ctx, job.GuildID, job.UserID); err != nil {
		return fmt.Errorf("delete mute job: %w", err)
	}

	logger.WithFields(logger.Fields{"guild": job.GuildID, "user": job.UserID}).Info("Mute expirado", "Scheduler")
	return nil
}

// Restore loads persisted jobs after a restart: due jobs are reversed now,
// the others are armed again. It returns how many jobs were armed.
func (s *Scheduler) Restore(ctx context.Context) (int, error) {
	jobs, err := s.jobs.ListMuteJobs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list mute jobs: %w", err)
	}

	now := s.now()
	restored := 0
	for _, job := range jobs {
		if job.Due(now) {
			if err := s.release(ctx, job); err != nil {
				logger.WithFields(logger.Fields{"guild": job.GuildID, "user": job.UserID}).
					Error("No se pudo quitar un mute vencido: "+err.Error(), "Scheduler")
			}
			continue
		}
		s.arm(job)
		restored++
	}

	logger.Info(fmt.Sprintf("%d mutes restaurados, %d revisados", restored, len(jobs)), "Scheduler")
	return restored, nil
}

// Sweep reverses every due job whose timer is gone
func (s *Scheduler) Sweep(ctx context.Context) {
	jobs, err := s.jobs.ListMuteJobs(ctx)
	if err != nil {
		logger.Error("Error al listar mutes pendientes: "+err.Error(), "Scheduler")
		return
	}

	now := s.now()
	for _, job := range jobs {
		if !job.Due(now) {
			continue
		}
		if _, ok := s.timers.Load(job.Key()); ok {
			continue
		}
		if err := s.release(ctx, job); err != nil {
			logger.WithFields(logger.Fields{"guild": job.GuildID, "user": job.UserID}).
				Warn("Sweep: "+err.Error(), "Scheduler")
		}
	}
}

// Start runs the periodic sweep until Stop
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				func() {
					defer apperrors.RecoverMiddleware()()
					ctx, cancel := context.WithTimeout(context.Background(), s.interval)
					defer cancel()
					s.Sweep(ctx)
				}()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop ends the sweep and disarms every timer. Persisted jobs are kept.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.wg.Wait()
		s.timers.Range(func(key string, a armed) bool {
			a.timer.Stop()
			s.timers.Delete(key)
			return true
		})
	})
}
