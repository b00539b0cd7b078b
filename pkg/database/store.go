// Package database provides the persistence layer: the counter store that
// keeps XP and warnings per (guild, user) and the store of pending mute
// removals. SQLite, Postgres and MongoDB are supported and selected from
// the DATABASE_URL connection string.
package database

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/PancyStudios/ArcaneBotGo/pkg/models"
)

// ErrNegativeValue is returned when a counter would be set below zero
var ErrNegativeValue = errors.New("counter values cannot be negative")

// CounterStore keeps the per (guild, user) counters. AddXP, SubtractXP and
// AddWarn are atomic at the storage layer: concurrent callers never lose an update.
type CounterStore interface {
	GetXP(ctx context.Context, guildID, userID string) (models.Option[models.XPRecord], error)
	AddXP(ctx context.Context, guildID, userID string, amount int64) (int64, error)
	// SubtractXP lowers xp by amount in one write, flooring at zero
	SubtractXP(ctx context.Context, guildID, userID string, amount int64) (int64, error)
	SetXP(ctx context.Context, guildID, userID string, xp int64) error
	DeleteXP(ctx context.Context, guildID, userID string) error
	// TopXP returns records by xp descending, ties in insertion order.
	// limit <= 0 returns every record of the guild.
	TopXP(ctx context.Context, guildID string, limit int) ([]models.LeaderboardEntry, error)
	CountXP(ctx context.Context, guildID string) (int64, error)

	GetWarns(ctx context.Context, guildID, userID string) (models.Option[models.WarnRecord], error)
	AddWarn(ctx context.Context, guildID, userID string) (int64, error)
	ResetWarns(ctx context.Context, guildID, userID string) error
}

// MuteJobStore persists pending mute removals so they survive restarts
type MuteJobStore interface {
	SaveMuteJob(ctx context.Context, job models.MuteJob) error
	GetMuteJob(ctx context.Context, guildID, userID string) (models.Option[models.MuteJob], error)
	DeleteMuteJob(ctx context.Context, guildID, userID string) error
	ListMuteJobs(ctx context.Context) ([]models.MuteJob, error)
}

// Store is a full backend
type Store interface {
	CounterStore
	MuteJobStore
	Ping(ctx context.Context) error
	// Status returns a human readable state and whether the backend answers
	Status() (string, bool)
	Backend() string
	Close() error
}

// Backend names
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMongo    = "mongodb"
)

// Options selects and configures the backend
type Options struct {
	URL        string
	SQLitePath string
	MongoDB    string
}

// Detect returns the backend for a connection string. Empty or unknown
// strings use the embedded SQLite file.
func Detect(url string) string {
	lower := strings.ToLower(strings.TrimSpace(url))
	switch {
	case strings.HasPrefix(lower, "postgres"):
		return BackendPostgres
	case strings.HasPrefix(lower, "mongodb"):
		return BackendMongo
	default:
		return BackendSQLite
	}
}

// Open connects to the backend chosen by opts.URL
func Open(ctx context.Context, opts Options) (Store, error) {
	switch Detect(opts.URL) {
	case BackendPostgres:
		return OpenPostgres(opts.URL)
	case BackendMongo:
		return OpenMongo(ctx, opts.URL, opts.MongoDB)
	default:
		path := opts.SQLitePath
		if path == "" {
			path = "levels.db"
		}
		return OpenSQLite(path)
	}
}

var (
	store   Store
	storeMu sync.RWMutex
)

// Init opens the global store
func Init(ctx context.Context, opts Options) (Store, error) {
	s, err := Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	storeMu.Lock()
	store = s
	storeMu.Unlock()
	return s, nil
}

// Get returns the global store, nil before Init
func Get() Store {
	storeMu.RLock()
	defer storeMu.RUnlock()
	return store
}

// XPOf returns the xp held by an optional record, 0 when absent
func XPOf(rec models.Option[models.XPRecord]) int64 {
	if r, ok := rec.Get(); ok {
		return r.XP
	}
	return 0
}

// WarnsOf returns the warn count held by an optional record, 0 when absent
func WarnsOf(rec models.Option[models.WarnRecord]) int64 {
	if r, ok := rec.Get(); ok {
		return r.Warns
	}
	return 0
}
