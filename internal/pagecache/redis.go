package pagecache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var errStale = errors.New("pagecache: generation moved")

// Redis is a Store backed by a Redis server, shared between server replicas.
// Each target has a body key and a generation counter key.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedis wraps a go-redis client. ttl 0 keeps entries until invalidated.
func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Get reads the body and generation in one MGET; a nil body is a miss.
func (r *Redis) Get(ctx context.Context, userID string, t Target) (Lookup, error) {
	vals, err := r.client.MGet(ctx, key(userID, t), genKey(userID, t)).Result()
	if err != nil {
		return Lookup{}, err
	}
	gen, err := parseGen(vals[1])
	if err != nil {
		return Lookup{}, err
	}
	body, ok := vals[0].(string)
	if !ok {
		return Lookup{Gen: gen}, nil
	}
	return Lookup{Body: []byte(body), Hit: true, Gen: gen}, nil
}

func parseGen(v any) (uint64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	gen, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("pagecache: bad generation %q: %w", s, err)
	}
	return gen, nil
}

// Set writes the body inside WATCH/MULTI on the generation key, so a concurrent
// Invalidate aborts the write.
func (r *Redis) Set(ctx context.Context, userID string, t Target, gen uint64, body []byte) (bool, error) {
	gk := genKey(userID, t)
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, gk).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStale
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key(userID, t), body, r.ttl)
			return nil
		})
		return err
	}, gk)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errStale), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, err
	}
}

// Invalidate bumps generations and deletes bodies in one transaction.
func (r *Redis) Invalidate(ctx context.Context, userID string, targets ...Target) error {
	if len(targets) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for _, t := range targets {
			p.Incr(ctx, genKey(userID, t))
			p.Del(ctx, key(userID, t))
		}
		return nil
	})
	return err
}
