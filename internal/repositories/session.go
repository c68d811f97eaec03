package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-todo-web/internal/logger"
	"github.com/sbilibin2017/gw-todo-web/internal/models"
)

// SessionRepository keeps authenticated sessions in Redis until they expire
type SessionRepository struct {
	client *redis.Client
	exp    time.Duration
}

// NewSessionRepository creates a new repository; exp is the session lifetime
func NewSessionRepository(client *redis.Client, expiration time.Duration) *SessionRepository {
	return &SessionRepository{
		client: client,
		exp:    expiration,
	}
}

func sessionKey(id string) string {
	return "session:" + id
}

// Save stores the session with the configured expiration
func (r *SessionRepository) Save(ctx context.Context, session models.Session) error {
	key := sessionKey(session.ID)

	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	err = r.client.Set(ctx, key, data, r.exp).Err()

	logger.Log.Infow("cache",
		"op", "set",
		"key", key,
		"user_id", session.UserID,
		"ttl", r.exp,
		"error", err,
	)

	return err
}

// Get returns the session, or nil if it does not exist or has expired
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	key := sessionKey(id)

	val, err := r.client.Get(ctx, key).Bytes()

	logger.Log.Infow("cache",
		"op", "get",
		"key", key,
		"found", err == nil,
		"error", err,
	)

	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session models.Session
	if err := json.Unmarshal(val, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete removes the session. Deleting a missing session is not an error
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	key := sessionKey(id)

	n, err := r.client.Del(ctx, key).Result()

	logger.Log.Infow("cache",
		"op", "del",
		"key", key,
		"result", n,
		"error", err,
	)

	return err
}
