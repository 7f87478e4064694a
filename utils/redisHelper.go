package utils

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/hostpilotpro/hostpilot_backend/config"
)

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

func GetTypeName[T any]() string {
	var v T
	return reflect.TypeOf(v).Name()
}

// Type:$organization_id:$id
func redisKey[T any](organizationId string, id int) string {
	return GetTypeName[T]() + ":" + organizationId + ":" + fmt.Sprint(id)
}

// store instance
func StoreRedis[T any](obj *T, organizationId string, id int) error {
	return config.SetRedisObject(redisKey[T](organizationId, id), obj, GetCacheLifespan())
}

// get from redis
// returns nil if does not exist
func RetrieveRedis[T any](organizationId string, id int) (*T, error) {
	var result T
	exists, err := config.GetRedisObject(redisKey[T](organizationId, id), &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return &result, nil
}

// remove an instance
func RemoveRedisItem[T any](organizationId string, id int) error {
	return config.RemoveRedisKey(redisKey[T](organizationId, id))
}
