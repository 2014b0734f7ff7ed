package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"invoiceflow/internal/authgate"
	"invoiceflow/internal/logger"
	"invoiceflow/internal/models"
	"invoiceflow/internal/reports"
	"invoiceflow/internal/workspace"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "invoiceflow:"

// SessionChannel carries session sign-in and sign-out events.
const SessionChannel = keyPrefix + "session-events"

// SessionEvent is published whenever a session starts or ends. Session is
// nil on sign-out.
type SessionEvent struct {
	SessionID string          `json:"sessionId"`
	Session   *models.Session `json:"session"`
}

type CacheService interface {
	// Workspace snapshot (the local store)
	LoadWorkspace(ctx context.Context) (*workspace.Snapshot, error)
	SaveWorkspace(ctx context.Context, snap *workspace.Snapshot) error

	// Session management
	SetSession(ctx context.Context, session *models.Session, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
	PublishSession(ctx context.Context, event SessionEvent) error
	SubscribeSessions(ctx context.Context) (<-chan SessionEvent, func() error)

	// Notices
	AccessDeniedTracker() authgate.NoticeTracker

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	ResetRateLimit(ctx context.Context, key string) error

	// Report caching
	GetReport(ctx context.Context, key string) (*reports.Report, error)
	SetReport(ctx context.Context, key string, report *reports.Report, ttl time.Duration) error
	InvalidateReports(ctx context.Context) error

	// Generic string operations for token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

// RedisAddr strips a redis:// or rediss:// scheme, leaving host:port.
func RedisAddr(addr string) string {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		return strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")
	}
	return addr
}

// NewRedisClient builds a client, accepting either host:port or a redis:// URL.
func NewRedisClient(addr, password string, db int) *redis.Client {
	parsedAddr := RedisAddr(addr)

	log := logger.WithComponent("redis")
	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Warn().Err(pingErr).Str("addr", parsedAddr).Msg("redis ping failed on initialization")
	} else {
		log.Debug().Str("addr", parsedAddr).Msg("redis connection established")
	}
	return client
}

func NewRedisCacheService(client *redis.Client) CacheService {
	return &redisCacheService{client: client}
}

func (r *redisCacheService) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil // cache miss
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (r *redisCacheService) setJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

const workspaceKey = keyPrefix + "workspace"

// LoadWorkspace returns nil on a miss.
func (r *redisCacheService) LoadWorkspace(ctx context.Context) (*workspace.Snapshot, error) {
	var snap workspace.Snapshot
	ok, err := r.getJSON(ctx, workspaceKey, &snap)
	if err != nil || !ok {
		return nil, err
	}
	return &snap, nil
}

// SaveWorkspace keeps the snapshot without expiry.
func (r *redisCacheService) SaveWorkspace(ctx context.Context, snap *workspace.Snapshot) error {
	return r.setJSON(ctx, workspaceKey, snap, 0)
}

func sessionKey(id string) string {
	return keyPrefix + "session:" + id
}

func (r *redisCacheService) SetSession(ctx context.Context, session *models.Session, ttl time.Duration) error {
	return r.setJSON(ctx, sessionKey(session.ID), session, ttl)
}

// GetSession returns nil when the session does not exist or expired.
func (r *redisCacheService) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	var s models.Session
	ok, err := r.getJSON(ctx, sessionKey(sessionID), &s)
	if err != nil || !ok {
		return nil, err
	}
	return &s, nil
}

func (r *redisCacheService) DeleteSession(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, sessionKey(sessionID)).Err()
}

func (r *redisCacheService) PublishSession(ctx context.Context, event SessionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, SessionChannel, data).Err()
}

// SubscribeSessions streams session events until ctx ends or the returned
// close function is called. Undecodable messages are dropped.
func (r *redisCacheService) SubscribeSessions(ctx context.Context) (<-chan SessionEvent, func() error) {
	sub := r.client.Subscribe(ctx, SessionChannel)
	out := make(chan SessionEvent)
	log := logger.WithComponent("session-events")

	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var ev SessionEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Warn().Err(err).Msg("dropping malformed session event")
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, sub.Close
}

type noticeTracker struct {
	client *redis.Client
	ttl    time.Duration
}

// First sets the marker only if absent, so exactly one caller per session sees true.
func (t *noticeTracker) First(ctx context.Context, sessionID string) (bool, error) {
	return t.client.SetNX(ctx, keyPrefix+"notice:access-denied:"+sessionID, 1, t.ttl).Result()
}

func (r *redisCacheService) AccessDeniedTracker() authgate.NoticeTracker {
	return &noticeTracker{client: r.client, ttl: 7 * 24 * time.Hour}
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := keyPrefix + "ratelimit:" + key
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) ResetRateLimit(ctx context.Context, key string) error {
	return r.client.Del(ctx, keyPrefix+"ratelimit:"+key).Err()
}

func reportKey(key string) string {
	return keyPrefix + "report:" + key
}

func (r *redisCacheService) GetReport(ctx context.Context, key string) (*reports.Report, error) {
	var rep reports.Report
	ok, err := r.getJSON(ctx, reportKey(key), &rep)
	if err != nil || !ok {
		return nil, err
	}
	return &rep, nil
}

func (r *redisCacheService) SetReport(ctx context.Context, key string, report *reports.Report, ttl time.Duration) error {
	return r.setJSON(ctx, reportKey(key), report, ttl)
}

// InvalidateReports drops every cached report, e.g. after a finalize.
func (r *redisCacheService) InvalidateReports(ctx context.Context) error {
	var keys []string
	iter := r.client.Scan(ctx, 0, reportKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, keyPrefix+key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, keyPrefix+key).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
