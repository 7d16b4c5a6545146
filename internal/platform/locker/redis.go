package locker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/continuity-backend/internal/platform/logger"
)

const (
	defaultLockTTL   = 30 * time.Second
	defaultLockWait  = 30 * time.Second
	defaultRetryStep = 50 * time.Millisecond
	keyPrefix        = "continuity:lock:"
)

// Deletes the key only while it still carries our token.
var unlockScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Wait     time.Duration
}

// Redis is a best-effort distributed lock using SET NX PX with a per-holder token.
type Redis struct {
	log  *logger.Logger
	rdb  *goredis.Client
	ttl  time.Duration
	wait time.Duration
}

func NewRedis(log *logger.Logger, opts RedisOptions) (*Redis, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return newRedisWithClient(log, rdb, opts), nil
}

func newRedisWithClient(log *logger.Logger, rdb *goredis.Client, opts RedisOptions) *Redis {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	wait := opts.Wait
	if wait <= 0 {
		wait = defaultLockWait
	}
	return &Redis{
		log:  log.With("service", "RedisLocker"),
		rdb:  rdb,
		ttl:  ttl,
		wait: wait,
	}
}

func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	if r == nil || r.rdb == nil {
		return nil, fmt.Errorf("redis locker not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.wait)
		defer cancel()
	}

	fullKey := keyPrefix + key
	token := uuid.NewString()
	step := defaultRetryStep

	for {
		ok, err := r.rdb.SetNX(ctx, fullKey, token, r.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
			}
			return nil, fmt.Errorf("redis setnx: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		case <-time.After(step):
		}
		if step < 500*time.Millisecond {
			step *= 2
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := unlockScript.Run(rctx, r.rdb, []string{fullKey}, token).Err(); err != nil {
				r.log.Warn("Redis unlock failed", "key", key, "error", err)
			}
		})
	}, nil
}

func (r *Redis) Close() error {
	if r == nil || r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}
