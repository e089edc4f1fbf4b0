// Package cache keeps scored results in Redis so repeated symptom sets skip scoring.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Skufu/GoSymptom/internal/encoder"
	"github.com/Skufu/GoSymptom/internal/scoring"
)

const keyPrefix = "symptomdx:scored:"

// Key identifies a scoring input for one model version.
func Key(scorer, version string, e encoder.Encoded) string {
	var b strings.Builder
	b.WriteString(scorer)
	b.WriteByte('|')
	b.WriteString(version)
	b.WriteByte('|')
	for i, idx := range e.Indices {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(idx))
	}
	b.WriteByte('|')
	b.WriteString(e.BagOfWords)

	sum := sha256.Sum256([]byte(b.String()))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Client is the subset of redis.Cmdable the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

type Redis struct {
	client Client
	ttl    time.Duration
	log    *logrus.Entry
}

func NewRedis(client Client, ttl time.Duration) *Redis {
	return &Redis{
		client: client,
		ttl:    ttl,
		log:    logrus.WithField("component", "cache"),
	}
}

// Dial connects to addr and checks the connection.
func Dial(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

func (r *Redis) Get(ctx context.Context, key string) (*scoring.Scored, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		r.log.WithError(err).Warn("cache read failed")
		return nil, false
	}

	var v scoring.Scored
	if err := json.Unmarshal(data, &v); err != nil {
		r.log.WithError(err).Warn("cache entry is corrupt")
		return nil, false
	}
	return &v, true
}

func (r *Redis) Set(ctx context.Context, key string, v *scoring.Scored) {
	data, err := json.Marshal(v)
	if err != nil {
		r.log.WithError(err).Warn("cache encode failed")
		return
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		r.log.WithError(err).Warn("cache write failed")
	}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
