package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/PancyStudios/ArcaneBotGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names
const (
	xpCollection    = "xp"
	warnsCollection = "warns"
	jobsCollection  = "mute_jobs"
)

// MongoStore keeps the counters in MongoDB. Increments use $inc upserts,
// which are atomic per document.
type MongoStore struct {
	client      *mongo.Client
	db          *mongo.Database
	collections map[string]*mongo.Collection
	mu          sync.RWMutex
	now         func() time.Time
}

// OpenMongo connects, verifies the connection and creates the indexes
func OpenMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	logger.System("Intentando conectar a la base de datos...", "DB")

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		logger.Critical("Fallo al conectar con la base de datos.", "DB")
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Critical("Fallo al verificar conexión con la base de datos.", "DB")
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	s := &MongoStore{
		client:      client,
		db:          client.Database(dbName),
		collections: make(map[string]*mongo.Collection),
		now:         time.Now,
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}

	logger.Success("Conectado exitosamente a la base de datos.", "DB")
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	key := bson.D{{Key: "guildId", Value: 1}, {Key: "userId", Value: 1}}

	for _, name := range []string{xpCollection, warnsCollection, jobsCollection} {
		if _, err := s.collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: key, Options: unique}); err != nil {
			return err
		}
	}

	_, err := s.collection(xpCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "guildId", Value: 1}, {Key: "xp", Value: -1}, {Key: "createdAt", Value: 1}},
	})
	return err
}

// collection returns a cached collection handle
func (s *MongoStore) collection(name string) *mongo.Collection {
	s.mu.RLock()
	if col, exists := s.collections[name]; exists {
		s.mu.RUnlock()
		return col
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if col, exists := s.collections[name]; exists {
		return col
	}
	col := s.db.Collection(name)
	s.collections[name] = col
	return col
}

func byUser(guildID, userID string) bson.M {
	return bson.M{"guildId": guildID, "userId": userID}
}

// Backend returns "mongodb"
func (s *MongoStore) Backend() string {
	return BackendMongo
}

// GetXP returns the xp record, None when absent
func (s *MongoStore) GetXP(ctx context.Context, guildID, userID string) (models.Option[models.XPRecord], error) {
	var rec models.XPRecord
	err := s.collection(xpCollection).FindOne(ctx, byUser(guildID, userID)).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.None[models.XPRecord](), nil
	}
	if err != nil {
		return models.None[models.XPRecord](), err
	}
	return models.Some(rec), nil
}

// AddXP atomically increments xp and returns the new total
func (s *MongoStore) AddXP(ctx context.Context, guildID, userID string, amount int64) (int64, error) {
	update := bson.M{
		"$inc":         bson.M{"xp": amount},
		"$setOnInsert": bson.M{"createdAt": s.now().UnixNano()},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var rec models.XPRecord
	if err := s.collection(xpCollection).FindOneAndUpdate(ctx, byUser(guildID, userID), update, opts).Decode(&rec); err != nil {
		return 0, err
	}
	return rec.XP, nil
}

// SubtractXP lowers xp by amount with a single pipeline update, never below zero
func (s *MongoStore) SubtractXP(ctx context.Context, guildID, userID string, amount int64) (int64, error) {
	if amount < 0 {
		return 0, ErrNegativeValue
	}
	update := bson.A{
		bson.M{"$set": bson.M{
			"xp": bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{bson.M{"$ifNull": bson.A{"$xp", 0}}, amount}}}},
			"createdAt": bson.M{"$ifNull": bson.A{"$createdAt", s.now().UnixNano()}},
		}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var rec models.XPRecord
	if err := s.collection(xpCollection).FindOneAndUpdate(ctx, byUser(guildID, userID), update, opts).Decode(&rec); err != nil {
		return 0, err
	}
	return rec.XP, nil
}

// SetXP overwrites the xp of a user
func (s *MongoStore) SetXP(ctx context.Context, guildID, userID string, xp int64) error {
	if xp < 0 {
		return ErrNegativeValue
	}
	update := bson.M{
		"$set":         bson.M{"xp": xp},
		"$setOnInsert": bson.M{"createdAt": s.now().UnixNano()},
	}
	_, err := s.collection(xpCollection).UpdateOne(ctx, byUser(guildID, userID), update, options.Update().SetUpsert(true))
	return err
}

// DeleteXP removes the record
func (s *MongoStore) DeleteXP(ctx context.Context, guildID, userID string) error {
	_, err := s.collection(xpCollection).DeleteOne(ctx, byUser(guildID, userID))
	return err
}

// TopXP returns the guild leaderboard
func (s *MongoStore) TopXP(ctx context.Context, guildID string, limit int) ([]models.LeaderboardEntry, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "xp", Value: -1},
		{Key: "createdAt", Value: 1},
		{Key: "userId", Value: 1},
	})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.collection(xpCollection).Find(ctx, bson.M{"guildId": guildID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var recs []models.XPRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(recs))
	for _, r := range recs {
		entries = append(entries, models.LeaderboardEntry{UserID: r.UserID, XP: r.XP})
	}
	return entries, nil
}

// CountXP returns how many users of the guild hold a record
func (s *MongoStore) CountXP(ctx context.Context, guildID string) (int64, error) {
	return s.collection(xpCollection).CountDocuments(ctx, bson.M{"guildId": guildID})
}

// GetWarns returns the warn record, None when absent
func (s *MongoStore) GetWarns(ctx context.Context, guildID, userID string) (models.Option[models.WarnRecord], error) {
	var rec models.WarnRecord
	err := s.collection(warnsCollection).FindOne(ctx, byUser(guildID, userID)).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.None[models.WarnRecord](), nil
	}
	if err != nil {
		return models.None[models.WarnRecord](), err
	}
	return models.Some(rec), nil
}

// AddWarn atomically increments the warn counter
func (s *MongoStore) AddWarn(ctx context.Context, guildID, userID string) (int64, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var rec models.WarnRecord
	err := s.collection(warnsCollection).FindOneAndUpdate(ctx, byUser(guildID, userID), bson.M{"$inc": bson.M{"warns": 1}}, opts).Decode(&rec)
	if err != nil {
		return 0, err
	}
	return rec.Warns, nil
}

// ResetWarns sets the counter back to zero
func (s *MongoStore) ResetWarns(ctx context.Context, guildID, userID string) error {
	_, err := s.collection(warnsCollection).UpdateOne(ctx, byUser(guildID, userID), bson.M{"$set": bson.M{"warns": 0}})
	return err
}

// SaveMuteJob inserts or replaces the pending removal of a user
func (s *MongoStore) SaveMuteJob(ctx context.Context, job models.MuteJob) error {
	_, err := s.collection(jobsCollection).ReplaceOne(ctx, byUser(job.GuildID, job.UserID), job, options.Replace().SetUpsert(true))
	return err
}

// GetMuteJob returns the pending removal of a user
func (s *MongoStore) GetMuteJob(ctx context.Context, guildID, userID string) (models.Option[models.MuteJob], error) {
	var job models.MuteJob
	err := s.collection(jobsCollection).FindOne(ctx, byUser(guildID, userID)).Decode(&job)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.None[models.MuteJob](), nil
	}
	if err != nil {
		return models.None[models.MuteJob](), err
	}
	return models.Some(job), nil
}

// DeleteMuteJob drops the pending removal of a user
func (s *MongoStore) DeleteMuteJob(ctx context.Context, guildID, userID string) error {
	_, err := s.collection(jobsCollection).DeleteOne(ctx, byUser(guildID, userID))
	return err
}

// ListMuteJobs returns every pending removal ordered by expiry
func (s *MongoStore) ListMuteJobs(ctx context.Context) ([]models.MuteJob, error) {
	cursor, err := s.collection(jobsCollection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "expiresAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var jobs []models.MuteJob
	if err := cursor.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// Ping checks the connection
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Status returns the connection state for the status endpoint
func (s *MongoStore) Status() (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.Ping(ctx); err != nil {
		return "🔴 | Desconectado", false
	}
	return "🟢 | En linea", true
}

// Close disconnects the client
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.client.Disconnect(ctx); err != nil {
		return err
	}
	logger.Warn("La base de datos ha sido desconectada", "DB")
	return nil
}
