package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"transportadoras-server-go/internal/platform/logging"
)

// CachedVerifier caches positive portal verdicts in redis for a short TTL so
// a busy tab polling every few seconds doesn't hammer the portal. Misses,
// negative verdicts and redis failures all fall through to the inner
// verifier; only valid sessions are ever cached.
type CachedVerifier struct {
	inner  Verifier
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *logging.Logger
}

// CacheOptions configures a CachedVerifier.
type CacheOptions struct {
	Inner    Verifier
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
	Logger   *logging.Logger
}

func NewCachedVerifier(opts CacheOptions) (*CachedVerifier, error) {
	if opts.Inner == nil {
		return nil, fmt.Errorf("inner verifier is required")
	}
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis address required")
	}
	if opts.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "session:verified:"
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = time.Minute
	}

	return &CachedVerifier{
		inner:  opts.Inner,
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: opts.Logger,
	}, nil
}

func (v *CachedVerifier) key(token string) string {
	return v.prefix + token
}

func (v *CachedVerifier) Verify(ctx context.Context, token string) (*Session, error) {
	raw, err := v.client.Get(ctx, v.key(token)).Bytes()
	if err == nil {
		var sess Session
		if jsonErr := json.Unmarshal(raw, &sess); jsonErr == nil {
			return &sess, nil
		}
		// Corrupt entry, drop it and re-verify.
		_ = v.client.Del(ctx, v.key(token)).Err()
	} else if err != redis.Nil {
		v.logger.WarnTag("sessão", "session cache read failed: %v", err)
	}

	sess, err := v.inner.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(sess); jsonErr == nil {
		if setErr := v.client.Set(ctx, v.key(token), data, v.ttl).Err(); setErr != nil {
			v.logger.WarnTag("sessão", "session cache write failed: %v", setErr)
		}
	}
	return sess, nil
}

// Invalidate drops a cached verdict, used when a downstream 401 proves the
// cached session stale.
func (v *CachedVerifier) Invalidate(ctx context.Context, token string) error {
	return v.client.Del(ctx, v.key(token)).Err()
}

func (v *CachedVerifier) Close() error {
	return v.client.Close()
}
