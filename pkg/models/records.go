// Package models contains the records persisted by the counter and mute job stores.
package models

import "time"

// XPRecord is the experience counter of a user inside a guild
type XPRecord struct {
	GuildID string `gorm:"primaryKey;column:guild_id;size:32" bson:"guildId" json:"guildId"`
	UserID  string `gorm:"primaryKey;column:user_id;size:32" bson:"userId" json:"userId"`
	XP      int64  `gorm:"column:xp;not null;default:0" bson:"xp" json:"xp"`
	// CreatedAt is set once on insert (unix nanos) and breaks leaderboard ties.
	CreatedAt int64 `gorm:"column:created_at;autoCreateTime:nano;index" bson:"createdAt" json:"-"`
}

// TableName overrides the gorm table name
func (XPRecord) TableName() string {
	return "xp"
}

// WarnRecord is the warning counter of a user inside a guild
type WarnRecord struct {
	GuildID string `gorm:"primaryKey;column:guild_id;size:32" bson:"guildId" json:"guildId"`
	UserID  string `gorm:"primaryKey;column:user_id;size:32" bson:"userId" json:"userId"`
	Warns   int64  `gorm:"column:warns;not null;default:0" bson:"warns" json:"warns"`
}

// TableName overrides the gorm table name
func (WarnRecord) TableName() string {
	return "warns"
}

// MuteJob is a pending removal of the muted role. A user has at most one.
type MuteJob struct {
	ID        string    `gorm:"column:id;size:36;uniqueIndex" bson:"jobId" json:"id"`
	GuildID   string    `gorm:"primaryKey;column:guild_id;size:32" bson:"guildId" json:"guildId"`
	UserID    string    `gorm:"primaryKey;column:user_id;size:32" bson:"userId" json:"userId"`
	RoleID    string    `gorm:"column:role_id;size:32" bson:"roleId" json:"roleId"`
	Reason    string    `gorm:"column:reason" bson:"reason" json:"reason"`
	ExpiresAt time.Time `gorm:"column:expires_at;index" bson:"expiresAt" json:"expiresAt"`
	CreatedAt time.Time `gorm:"column:created_at" bson:"createdAt" json:"createdAt"`
}

// TableName overrides the gorm table name
func (MuteJob) TableName() string {
	return "mute_jobs"
}

// Key identifies the job for timers and logs
func (j MuteJob) Key() string {
	return j.GuildID + ":" + j.UserID + ":" + j.RoleID
}

// Due reports whether the job should already have run
func (j MuteJob) Due(now time.Time) bool {
	return !now.Before(j.ExpiresAt)
}

// LeaderboardEntry is one row of a guild leaderboard
type LeaderboardEntry struct {
	UserID string `json:"userId"`
	XP     int64  `json:"xp"`
}
