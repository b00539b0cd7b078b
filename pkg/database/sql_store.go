package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/PancyStudios/ArcaneBotGo/pkg/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLStore is the gorm backed Store used for SQLite and Postgres
type SQLStore struct {
	db      *gorm.DB
	backend string
}

var keyColumns = []clause.Column{{Name: "guild_id"}, {Name: "user_id"}}

// OpenSQLite opens (or creates) the embedded database file in WAL mode
func OpenSQLite(path string) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, err
		}
	}

	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// A single writer connection serializes transactions instead of
	// surfacing SQLITE_BUSY under concurrent increments.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return newSQLStore(db, BackendSQLite)
}

// OpenPostgres connects to a Postgres database
func OpenPostgres(dsn string) (*SQLStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	return newSQLStore(db, BackendPostgres)
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: newGormLogger(200 * time.Millisecond),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func newSQLStore(db *gorm.DB, backend string) (*SQLStore, error) {
	if err := db.AutoMigrate(&models.XPRecord{}, &models.WarnRecord{}, &models.MuteJob{}); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", backend, err)
	}
	logger.Success(fmt.Sprintf("Base de datos %s lista.", backend), "DB")
	return &SQLStore{db: db, backend: backend}, nil
}

// Backend returns "sqlite" or "postgres"
func (s *SQLStore) Backend() string {
	return s.backend
}

// GetXP returns the xp record, None when the user never earned xp
func (s *SQLStore) GetXP(ctx context.Context, guildID, userID string) (models.Option[models.XPRecord], error) {
	var rec models.XPRecord
	err := s.db.WithContext(ctx).Where("guild_id = ? AND user_id = ?", guildID, userID).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.None[models.XPRecord](), nil
	}
	if err != nil {
		return models.None[models.XPRecord](), err
	}
	return models.Some(rec), nil
}

// AddXP atomically adds amount and returns the new total
func (s *SQLStore) AddXP(ctx context.Context, guildID, userID string, amount int64) (int64, error) {
	return s.upsertXP(ctx, guildID, userID, amount, gorm.Expr("xp.xp + ?", amount))
}

// SubtractXP atomically lowers xp by amount, never below zero
func (s *SQLStore) SubtractXP(ctx context.Context, guildID, userID string, amount int64) (int64, error) {
	if amount < 0 {
		return 0, ErrNegativeValue
	}
	return s.upsertXP(ctx, guildID, userID, 0,
		gorm.Expr("CASE WHEN xp.xp > ? THEN xp.xp - ? ELSE 0 END", amount, amount))
}

// upsertXP inserts initial or applies update to an existing row, then reads
// the stored total back in the same transaction
func (s *SQLStore) upsertXP(ctx context.Context, guildID, userID string, initial int64, update clause.Expr) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := models.XPRecord{GuildID: guildID, UserID: userID, XP: initial}
		err := tx.Clauses(clause.OnConflict{
			Columns:   keyColumns,
			DoUpdates: clause.Assignments(map[string]interface{}{"xp": update}),
		}).Create(&rec).Error
		if err != nil {
			return err
		}

		var current models.XPRecord
		if err := tx.Where("guild_id = ? AND user_id = ?", guildID, userID).Take(&current).Error; err != nil {
			return err
		}
		total = current.XP
		return nil
	})
	return total, err
}

// SetXP overwrites the xp of a user, creating the record if needed
func (s *SQLStore) SetXP(ctx context.Context, guildID, userID string, xp int64) error {
	if xp < 0 {
		return ErrNegativeValue
	}
	rec := models.XPRecord{GuildID: guildID, UserID: userID, XP: xp}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   keyColumns,
		DoUpdates: clause.AssignmentColumns([]string{"xp"}),
	}).Create(&rec).Error
}

// DeleteXP removes the record entirely
func (s *SQLStore) DeleteXP(ctx context.Context, guildID, userID string) error {
	return s.db.WithContext(ctx).
		Where("guild_id = ? AND user_id = ?", guildID, userID).
		Delete(&models.XPRecord{}).Error
}

// TopXP returns the guild leaderboard
func (s *SQLStore) TopXP(ctx context.Context, guildID string, limit int) ([]models.LeaderboardEntry, error) {
	q := s.db.WithContext(ctx).
		Where("guild_id = ?", guildID).
		Order("xp DESC").
		Order("created_at ASC").
		Order("user_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var recs []models.XPRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(recs))
	for _, r := range recs {
		entries = append(entries, models.LeaderboardEntry{UserID: r.UserID, XP: r.XP})
	}
	return entries, nil
}

// CountXP returns how many users of the guild hold a record
func (s *SQLStore) CountXP(ctx context.Context, guildID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.XPRecord{}).Where("guild_id = ?", guildID).Count(&n).Error
	return n, err
}

// GetWarns returns the warn record, None when the user was never warned
func (s *SQLStore) GetWarns(ctx context.Context, guildID, userID string) (models.Option[models.WarnRecord], error) {
	var rec models.WarnRecord
	err := s.db.WithContext(ctx).Where("guild_id = ? AND user_id = ?", guildID, userID).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.None[models.WarnRecord](), nil
	}
	if err != nil {
		return models.None[models.WarnRecord](), err
	}
	return models.Some(rec), nil
}

// AddWarn atomically increments the warn counter and returns the new count
func (s *SQLStore) AddWarn(ctx context.Context, guildID, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec := models.WarnRecord{GuildID: guildID, UserID: userID, Warns: 1}
		err := tx.Clauses(clause.OnConflict{
			Columns:   keyColumns,
			DoUpdates: clause.Assignments(map[string]interface{}{"warns": gorm.Expr("warns.warns + 1")}),
		}).Create(&rec).Error
		if err != nil {
			return err
		}

		var current models.WarnRecord
		if err := tx.Where("guild_id = ? AND user_id = ?", guildID, userID).Take(&current).Error; err != nil {
			return err
		}
		count = current.Warns
		return nil
	})
	return count, err
}

// ResetWarns sets the warn counter back to zero
func (s *SQLStore) ResetWarns(ctx context.Context, guildID, userID string) error {
	return s.db.WithContext(ctx).Model(&models.WarnRecord{}).
		Where("guild_id = ? AND user_id = ?", guildID, userID).
		Update("warns", 0).Error
}

// SaveMuteJob inserts or replaces the pending removal of a user
func (s *SQLStore) SaveMuteJob(ctx context.Context, job models.MuteJob) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   keyColumns,
		DoUpdates: clause.AssignmentColumns([]string{"id", "role_id", "reason", "expires_at", "created_at"}),
	}).Create(&job).Error
}

// GetMuteJob returns the pending removal of a user
func (s *SQLStore) GetMuteJob(ctx context.Context, guildID, userID string) (models.Option[models.MuteJob], error) {
	var job models.MuteJob
	err := s.db.WithContext(ctx).Where("guild_id = ? AND user_id = ?", guildID, userID).Take(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.None[models.MuteJob](), nil
	}
	if err != nil {
		return models.None[models.MuteJob](), err
	}
	return models.Some(job), nil
}

// DeleteMuteJob drops the pending removal of a user
func (s *SQLStore) DeleteMuteJob(ctx context.Context, guildID, userID string) error {
	return s.db.WithContext(ctx).
		Where("guild_id = ? AND user_id = ?", guildID, userID).
		Delete(&models.MuteJob{}).Error
}

// ListMuteJobs returns every pending removal ordered by expiry
func (s *SQLStore) ListMuteJobs(ctx context.Context) ([]models.MuteJob, error) {
	var jobs []models.MuteJob
	err := s.db.WithContext(ctx).Order("expires_at ASC").Find(&jobs).Error
	return jobs, err
}

// Ping checks the connection
func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Status returns the connection state for the status endpoint
func (s *SQLStore) Status() (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.Ping(ctx); err != nil {
		return "🔴 | Desconectado", false
	}
	return "🟢 | En linea", true
}

// Close releases the connection pool
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
