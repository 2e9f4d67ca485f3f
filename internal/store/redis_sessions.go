package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/lingoquiz/internal/quiz"
)

const (
	redisSessionPrefix = "lingoquiz:session:"
	redisIdentitySet   = "lingoquiz:session_ids"
)

// RedisSessionStore keeps in-flight sessions in Redis as JSON blobs. A set
// of identities makes the store listable for expiry sweeps.
type RedisSessionStore struct {
	client *redis.Client
	// grace is how long a session outlives its deadline. It only bounds
	// storage; expiry itself is decided by the engine.
	grace time.Duration
}

// OpenRedis connects to Redis and verifies the connection.
func OpenRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return rdb, nil
}

// NewRedisSessionStore returns a session store on client. grace <= 0 keeps
// sessions until they are deleted.
func NewRedisSessionStore(client *redis.Client, grace time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, grace: grace}
}

func sessionKey(identity string) string {
	return redisSessionPrefix + identity
}

// Get returns identity's session, or nil if there is none.
func (r *RedisSessionStore) Get(ctx context.Context, identity string) (*quiz.Session, error) {
	b, err := r.client.Get(ctx, sessionKey(identity)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", identity, err)
	}
	sess, err := quiz.DecodeSession(b)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", identity, err)
	}
	return sess, nil
}

// Put writes the session and registers its owner in the identity set.
func (r *RedisSessionStore) Put(ctx context.Context, sess *quiz.Session) error {
	payload, err := quiz.EncodeSession(sess)
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.Owner, err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(sess.Owner), payload, r.expiration(sess.Deadline))
		pipe.SAdd(ctx, redisIdentitySet, sess.Owner)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.Owner, err)
	}
	return nil
}

func (r *RedisSessionStore) expiration(deadline time.Time) time.Duration {
	if r.grace <= 0 {
		return 0
	}
	d := time.Until(deadline)
	if d < 0 {
		d = 0
	}
	return d + r.grace
}

// Delete removes identity's session.
func (r *RedisSessionStore) Delete(ctx context.Context, identity string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(identity))
		pipe.SRem(ctx, redisIdentitySet, identity)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete session %s: %w", identity, err)
	}
	return nil
}

// Identities lists identities with a live session key, dropping set
// members whose key has expired.
func (r *RedisSessionStore) Identities(ctx context.Context) ([]string, error) {
	members, err := r.client.SMembers(ctx, redisIdentitySet).Result()
	if err != nil {
		return nil, fmt.Errorf("list session identities: %w", err)
	}

	pipe := r.client.Pipeline()
	exists := make([]*redis.IntCmd, len(members))
	for i, id := range members {
		exists[i] = pipe.Exists(ctx, sessionKey(id))
	}
	if len(members) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("list session identities: %w", err)
		}
	}

	var live, stale []string
	for i, id := range members {
		if exists[i].Val() > 0 {
			live = append(live, id)
		} else {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		args := make([]any, len(stale))
		for i, id := range stale {
			args[i] = id
		}
		if err := r.client.SRem(ctx, redisIdentitySet, args...).Err(); err != nil {
			return nil, fmt.Errorf("prune session identities: %w", err)
		}
	}
	sort.Strings(live)
	return live, nil
}
