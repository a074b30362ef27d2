package kv

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	c *redis.Client
}

// NewRedisStore wraps an existing client. Close closes the client.
func NewRedisStore(c *redis.Client) Store {
	return &redisStore{c: c}
}

// DialRedis connects to host:port/db and verifies the connection with PING.
func DialRedis(ctx context.Context, host string, port, db int) (Store, error) {
	c := redis.NewClient(&redis.Options{
		Addr: net.JoinHostPort(host, strconv.Itoa(port)),
		DB:   db,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping %s:%d: %w", host, port, err)
	}
	return NewRedisStore(c), nil
}

func (r *redisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := r.c.Get(ctx, key).Result()
	return v, mapRedisErr(err)
}

func (r *redisStore) Set(ctx context.Context, key, value string) error {
	return r.c.Set(ctx, key, value, 0).Err()
}

func (r *redisStore) Incr(ctx context.Context, key string) (int64, error) {
	n, err := r.c.Incr(ctx, key).Result()
	if err != nil {
		var rerr redis.Error
		if errors.As(err, &rerr) {
			return 0, ErrNotInteger
		}
		return 0, err
	}
	return n, nil
}

func (r *redisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.c.Del(ctx, keys...).Err()
}

func (r *redisStore) HGet(ctx context.Context, key, field string) (string, error) {
	v, err := r.c.HGet(ctx, key, field).Result()
	return v, mapRedisErr(err)
}

func (r *redisStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	args := make([]interface{}, 0, 2*len(fields))
	for f, v := range fields {
		args = append(args, f, v)
	}
	return r.c.HSet(ctx, key, args...).Err()
}

func (r *redisStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return r.c.HGetAll(ctx, key).Result()
}

func (r *redisStore) HDel(ctx context.Context, key string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return r.c.HDel(ctx, key, fields...).Err()
}

func (r *redisStore) Close() error { return r.c.Close() }

func mapRedisErr(err error) error {
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	return err
}
