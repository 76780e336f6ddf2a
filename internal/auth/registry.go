package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

var ErrSessionNotFound = errors.New("session not found")

// Registry is the server-side session store: one Redis key per live session,
// keyed by the raw token, expiring with the record TTL. A token whose key is
// gone is dead no matter what its signature says.
type Registry struct {
	rdb *redis.Client
}

type RegistryConfig struct {
	Addr     string
	Password string
	DB       int
}

type sessionRecord struct {
	UserID int64 `json:"userId"`
}

func NewRegistry(cfg RegistryConfig) *Registry {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Registry{rdb: rdb}
}

func (r *Registry) Put(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	payload, err := json.Marshal(sessionRecord{UserID: userID})

	if err != nil {
		return err
	}

	return r.rdb.Set(ctx, sessionKeyPrefix+token, payload, ttl).Err()
}

func (r *Registry) Get(ctx context.Context, token string) (int64, error) {
	raw, err := r.rdb.Get(ctx, sessionKeyPrefix+token).Bytes()

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrSessionNotFound
		}

		return 0, err
	}

	var rec sessionRecord

	if err := json.Unmarshal(raw, &rec); err != nil {
		return 0, err
	}

	return rec.UserID, nil
}

// Delete is idempotent: removing an absent session is not an error.
func (r *Registry) Delete(ctx context.Context, token string) error {
	return r.rdb.Del(ctx, sessionKeyPrefix+token).Err()
}

// Ping checks registry connectivity, used by readiness probes.
func (r *Registry) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *Registry) Close() error {
	return r.rdb.Close()
}
