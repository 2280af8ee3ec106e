package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token, so an expired
// lease can never release a lock taken over by another holder.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

const releaseTimeout = 5 * time.Second

type redisClient interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// Redis is a cluster wide lock on a single redis key. The key expires after ttl,
// which bounds how long a crashed holder can wedge other writers.
type Redis struct {
	client  redisClient
	key     string
	ttl     time.Duration
	timeout time.Duration
}

func NewRedis(client redisClient, key string, ttl, timeout time.Duration) *Redis {
	return &Redis{
		client:  client,
		key:     key,
		ttl:     ttl,
		timeout: timeout,
	}
}

func newRedisClient(c Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	})
}

func (l *Redis) Acquire(ctx context.Context) (Lease, error) {
	token := uuid.NewString()
	ctx, cancel := withTimeout(ctx, l.timeout)
	defer cancel()
	err := poll(ctx, func() (bool, error) {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return false, nil
			}
			return false, errors.Wrapf(err, "redis lock %q", l.key)
		}
		return ok, nil
	})
	if err != nil {
		return nil, err
	}
	return &redisLease{l: l, token: token}, nil
}

type redisLease struct {
	once  sync.Once
	l     *Redis
	token string
}

func (r *redisLease) Release() (err error) {
	r.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()
		if rerr := releaseScript.Run(ctx, r.l.client, []string{r.l.key}, r.token).Err(); rerr != nil {
			err = errors.Wrapf(rerr, "release redis lock %q", r.l.key)
		}
	})
	return
}
