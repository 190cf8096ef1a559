package utils

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"sync"
	"time"

	"github.com/mmdatafocus/pos_backend/config"
)

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

/* generic functions */

func GetTypeName[T any]() string {
	var v T
	return reflect.TypeOf(v).Name()
}

// store instance under Type:$id
func StoreRedis[T any](obj *T, id int) error {
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	return config.SetRedisObject(key, obj, GetCacheLifespan())
}

// get from redis
// returns nil if does not exist
func RetrieveRedis[T any](id int) (*T, error) {
	var result *T
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	exists, err := config.GetRedisObject(key, &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return result, nil
}

// remove an instance, Type:$id
func RemoveRedisItem[T any](id int) error {
	key := GetTypeName[T]() + ":" + fmt.Sprint(id)
	return config.RemoveRedisKey(key)
}

// used when redis is not connected
var localRevoked sync.Map

func revokedTokenKey(tokenId string) string {
	return "RevokedToken:" + tokenId
}

// RevokeToken blocks the token id until its natural expiry.
func RevokeToken(tokenId string, remaining time.Duration) error {
	if remaining <= 0 {
		return nil
	}
	if config.GetRedisDB() == nil {
		localRevoked.Store(tokenId, time.Now().Add(remaining))
		return nil
	}
	return config.SetRedisValue(revokedTokenKey(tokenId), "1", remaining)
}

func IsTokenRevoked(tokenId string) (bool, error) {
	if config.GetRedisDB() == nil {
		v, ok := localRevoked.Load(tokenId)
		if !ok {
			return false, nil
		}
		if time.Now().After(v.(time.Time)) {
			localRevoked.Delete(tokenId)
			return false, nil
		}
		return true, nil
	}
	_, exists, err := config.GetRedisValue(revokedTokenKey(tokenId))
	return exists, err
}
