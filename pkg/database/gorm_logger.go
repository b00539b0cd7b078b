package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// gormLogger routes gorm's messages to the bot logger. Only failed and slow
// queries are reported from Trace.
type gormLogger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(slowThreshold time.Duration) *gormLogger {
	return &gormLogger{level: gormlogger.Warn, slowThreshold: slowThreshold}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		logger.Debug(fmt.Sprintf(msg, args...), "GORM")
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		logger.Warn(fmt.Sprintf(msg, args...), "GORM")
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		logger.Error(fmt.Sprintf(msg, args...), "GORM")
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= gormlogger.Error:
		sql, rows := fc()
		logger.WithFields(logger.Fields{"elapsed": elapsed, "rows": rows}).Error(fmt.Sprintf("%v: %s", err, sql), "GORM")
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		logger.WithFields(logger.Fields{"elapsed": elapsed, "rows": rows}).Warn("slow query: "+sql, "GORM")
	}
}
