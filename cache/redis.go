package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"water-quality-monitor/forecast"
	"water-quality-monitor/models"
)

type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// ForecastCache stores single-parameter forecast results in Redis.
// Keys embed the snapshot generation, so a reload orphans old entries
// and the TTL reaps them.
type ForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewForecastCache(ctx context.Context, opts Options) (*ForecastCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     50,
		MinIdleConns: 10,
		MaxRetries:   3,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return NewForecastCacheWithClient(rdb, opts.TTL), nil
}

func NewForecastCacheWithClient(client *redis.Client, ttl time.Duration) *ForecastCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ForecastCache{client: client, ttl: ttl}
}

func (c *ForecastCache) Close() error {
	return c.client.Close()
}

// Key identifies one forecast request against one snapshot.
type Key struct {
	Generation uint64
	Parameter  models.ParameterID
	Model      forecast.ModelKind
	Hours      int
}

func (k Key) String() string {
	return fmt.Sprintf("forecast:%d:%s:%s:%d", k.Generation, k.Parameter, k.Model, k.Hours)
}

func (c *ForecastCache) SaveForecast(ctx context.Context, key Key, result *forecast.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key.String(), data, c.ttl).Err()
}

// GetForecast returns nil, nil on a miss.
func (c *ForecastCache) GetForecast(ctx context.Context, key Key) (*forecast.Result, error) {
	val, err := c.client.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var result forecast.Result
	if err := json.Unmarshal(val, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
