package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"hoyhub/backend/internal/config"
)

// IConfigService exposes runtime-tunable configuration (plan limits, rate
// limits) stored in the configuration collection, cached in-process and
// invalidated over Redis pub/sub.
type IConfigService interface {
	Get(ctx context.Context, key string) (interface{}, error)
	GetInt(ctx context.Context, key string, defaultValue int) int
	GetString(ctx context.Context, key string, defaultValue string) string
	GetAllPublic(ctx context.Context) (map[string]interface{}, error)
	Load(ctx context.Context) error
	SubscribeToChanges(ctx context.Context) error
	SetConfigValue(ctx context.Context, key string, value interface{}, isPublic bool) error
}

const (
	configCollection    = "configuration"
	configUpdateChannel = "config_updates"
)

// configService implements IConfigService.
type configService struct {
	db    *mongo.Database
	cfg   *config.Config // env defaults
	rdb   *redis.Client
	cache map[string]configEntry
	mutex sync.RWMutex
}

type configEntry struct {
	Key    string      `bson:"key"`
	Value  interface{} `bson:"value"`
	Public bool        `bson:"public"`
}

// NewConfigService creates a ConfigService, loads the cache and starts the
// pub/sub listener.
func NewConfigService(database *mongo.Database, initialCfg *config.Config, rdb *redis.Client) IConfigService {
	s := &configService{
		db:    database,
		cfg:   initialCfg,
		rdb:   rdb,
		cache: make(map[string]configEntry),
	}
	if err := s.Load(context.Background()); err != nil {
		log.Printf("WARNING: Failed to load initial config from DB: %v. Using defaults from .env", err)
	}
	go func() {
		if err := s.SubscribeToChanges(context.Background()); err != nil {
			log.Printf("CRITICAL: Config pub/sub listener stopped: %v", err)
		}
	}()
	return s
}

// Load fetches all config entries from DB and repopulates the cache.
func (s *configService) Load(ctx context.Context) error {
	cursor, err := s.db.Collection(configCollection).Find(ctx, bson.M{}, options.Find())
	if err != nil {
		return fmt.Errorf("failed to query configuration collection: %w", err)
	}
	defer cursor.Close(ctx)

	fresh := make(map[string]configEntry)
	for cursor.Next(ctx) {
		var entry configEntry
		if err := cursor.Decode(&entry); err != nil {
			log.Printf("WARNING: Skipping undecodable config entry: %v", err)
			continue
		}
		fresh[entry.Key] = entry
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("cursor error loading configuration: %w", err)
	}

	s.mutex.Lock()
	s.cache = fresh
	s.mutex.Unlock()
	return nil
}

// SubscribeToChanges reloads the cache whenever a config update is published.
// Blocks until the context is cancelled.
func (s *configService) SubscribeToChanges(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}
	pubsub := s.rdb.Subscribe(ctx, configUpdateChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("config pub/sub channel closed")
			}
			log.Printf("Config update notification received (key: %s), reloading cache", msg.Payload)
			if err := s.Load(ctx); err != nil {
				log.Printf("WARNING: Failed to reload config after update: %v", err)
			}
		}
	}
}

// SetConfigValue upserts a config entry and notifies other instances.
func (s *configService) SetConfigValue(ctx context.Context, key string, value interface{}, isPublic bool) error {
	filter := bson.M{"key": key}
	update := bson.M{"$set": bson.M{"key": key, "value": value, "public": isPublic}}
	opts := options.Update().SetUpsert(true)

	if _, err := s.db.Collection(configCollection).UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to set config value %s: %w", key, err)
	}

	s.mutex.Lock()
	s.cache[key] = configEntry{Key: key, Value: value, Public: isPublic}
	s.mutex.Unlock()

	if s.rdb != nil {
		if err := s.rdb.Publish(ctx, configUpdateChannel, key).Err(); err != nil {
			log.Printf("WARNING: Failed to publish config update for %s: %v", key, err)
		}
	}
	return nil
}

// Get returns the raw cached value for key, or an error if absent.
func (s *configService) Get(ctx context.Context, key string) (interface{}, error) {
	s.mutex.RLock()
	entry, ok := s.cache[key]
	s.mutex.RUnlock()
	if !ok {
		return nil, fmt.Errorf("config key %s not found", key)
	}
	return entry.Value, nil
}

// GetInt returns the cached value as an int, or defaultValue.
func (s *configService) GetInt(ctx context.Context, key string, defaultValue int) int {
	val, err := s.Get(ctx, key)
	if err != nil {
		return defaultValue
	}
	switch v := val.(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		log.Printf("Warning: Config key '%s' is not numeric (%T), using default.", key, val)
		return defaultValue
	}
}

// GetString returns the cached value as a string, or defaultValue.
func (s *configService) GetString(ctx context.Context, key string, defaultValue string) string {
	val, err := s.Get(ctx, key)
	if err != nil {
		return defaultValue
	}
	if str, ok := val.(string); ok {
		return str
	}
	return defaultValue
}

// GetAllPublic returns every public config entry, for the public config endpoint.
func (s *configService) GetAllPublic(ctx context.Context) (map[string]interface{}, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	public := make(map[string]interface{})
	for key, entry := range s.cache {
		if entry.Public {
			public[key] = entry.Value
		}
	}
	return public, nil
}
