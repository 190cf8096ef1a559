package config

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var (
	rdb    *redis.Client
	locker *redislock.Client
)

func GetRedisDB() *redis.Client {
	return rdb
}

func GetRedisLock() *redislock.Client {
	return locker
}

// SetRedisDB swaps the shared client; nil disables caching and locking.
func SetRedisDB(client *redis.Client) {
	rdb = client
	if client == nil {
		locker = nil
		return
	}
	locker = redislock.New(client)
}

// RedisSettings reads REDIS_ADDRESS (localhost:6379), REDIS_PASSWORD, REDIS_DB (0)
// and REDIS_POOL_SIZE (100).
type RedisSettings struct {
	Address  string
	Password string
	DB       int
	PoolSize int
}

func GetRedisSettings() RedisSettings {
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		addr = "localhost:6379"
	}
	return RedisSettings{
		Address:  addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       intFromEnv("REDIS_DB", 0),
		PoolSize: intFromEnv("REDIS_POOL_SIZE", 100),
	}
}

// The cache helpers report a miss and skip writes while redis is down,
// so callers always fall through to MySQL.

func GetRedisObject(key string, dest any) (bool, error) {
	val, ok, err := GetRedisValue(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

func GetRedisValue(key string) (string, bool, error) {
	if rdb == nil {
		return "", false, nil
	}
	val, err := rdb.Get(context.Background(), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func SetRedisObject(key string, obj any, exp time.Duration) error {
	if rdb == nil {
		return nil
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	return rdb.Set(context.Background(), key, raw, exp).Err()
}

func SetRedisValue(key string, value string, exp time.Duration) error {
	if rdb == nil {
		return nil
	}
	return rdb.Set(context.Background(), key, value, exp).Err()
}

func RemoveRedisKey(keys ...string) error {
	if rdb == nil || len(keys) == 0 {
		return nil
	}
	return rdb.Del(context.Background(), keys...).Err()
}

// ConnectRedisWithRetry blocks until redis answers PING, then installs the client and locker.
func ConnectRedisWithRetry() {
	settings := GetRedisSettings()
	fields := logrus.Fields{"field": "redis", "addr": settings.Address}

	for attempt := 1; ; attempt++ {
		client := redis.NewClient(&redis.Options{
			Addr:     settings.Address,
			Password: settings.Password,
			DB:       settings.DB,
			PoolSize: settings.PoolSize,
		})
		err := client.Ping(context.Background()).Err()
		if err == nil {
			SetRedisDB(client)
			logg.WithFields(fields).WithField("attempt", attempt).Info("connected to redis")
			return
		}
		_ = client.Close()
		sleep := backoff(attempt)
		logg.WithFields(fields).WithField("attempt", attempt).
			Errorf("redis connection failed: %v; retrying in %s", err, sleep)
		time.Sleep(sleep)
	}
}
