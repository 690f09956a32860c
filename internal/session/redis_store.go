package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"https-examples/internal/auth"
	"https-examples/internal/logger"

	"github.com/redis/go-redis/v9"
)

// Session is the record kept in Redis for one login.
type Session struct {
	SessionID string        `json:"session_id"`
	Profile   *auth.Profile `json:"profile"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// RedisStore keeps profiles server-side. The client only holds a signed
// cookie with the session ID.
type RedisStore struct {
	client *redis.Client
	prefix string
	cookie *signedCookie
	now    func() time.Time
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client, keys [][]byte, opts CookieOptions) (*RedisStore, error) {
	c, err := newSignedCookie(DefaultCookieName, keys, DefaultMaxAge, opts)
	if err != nil {
		return nil, err
	}
	return &RedisStore{
		client: client,
		prefix: "session:",
		cookie: c,
		now:    time.Now,
	}, nil
}

func (r *RedisStore) key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *RedisStore) Save(w http.ResponseWriter, req *http.Request, p *auth.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	sessionID, err := GenerateID()
	if err != nil {
		return err
	}

	now := r.now()
	s := Session{
		SessionID: sessionID,
		Profile:   p,
		CreatedAt: now,
		ExpiresAt: now.Add(r.cookie.maxAge),
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	if err := r.client.Set(req.Context(), r.key(sessionID), data, r.cookie.maxAge).Err(); err != nil {
		return fmt.Errorf("session: failed to persist: %w", err)
	}

	return r.cookie.write(w, sessionID)
}

func (r *RedisStore) Load(req *http.Request) (*auth.Profile, error) {
	var sessionID string
	if !r.cookie.read(req, &sessionID) || sessionID == "" {
		return nil, nil
	}

	s, err := r.get(req, sessionID)
	if err != nil {
		logger.Error("session lookup failed", map[string]any{
			"error": err.Error(),
		})
		return nil, nil
	}
	if s == nil {
		return nil, nil
	}

	if r.now().After(s.ExpiresAt) {
		if err := r.client.Del(req.Context(), r.key(sessionID)).Err(); err != nil {
			logger.Error("expired session delete failed", map[string]any{
				"error": err.Error(),
			})
		}
		return nil, nil
	}

	if err := s.Profile.Validate(); err != nil {
		logger.Warn("stored session carried invalid profile", map[string]any{
			"error": err.Error(),
		})
		return nil, nil
	}

	return s.Profile, nil
}

func (r *RedisStore) get(req *http.Request, sessionID string) (*Session, error) {
	val, err := r.client.Get(req.Context(), r.key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}
	return &s, nil
}

// Clear deletes the stored session (best-effort) and expires the cookie.
func (r *RedisStore) Clear(w http.ResponseWriter, req *http.Request) error {
	var sessionID string
	if r.cookie.read(req, &sessionID) && sessionID != "" {
		if err := r.client.Del(req.Context(), r.key(sessionID)).Err(); err != nil {
			logger.Error("session delete failed", map[string]any{
				"error": err.Error(),
			})
		}
	}
	r.cookie.clear(w)
	return nil
}
