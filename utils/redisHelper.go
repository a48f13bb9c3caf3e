package utils

import (
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/guildroster/roster_backend/config"
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
	typeOfT := reflect.TypeOf(v)
	return typeOfT.Name()
}

/* Redis */

func listKey[T any](guildId string) string {
	if guildId == "" {
		return GetTypeName[T]() + "List"
	}
	return GetTypeName[T]() + "List:" + guildId
}

// store list, TypeList:$guild_id
func StoreRedisList[T any](obj any, guildId string) error {
	return config.SetRedisObject(listKey[T](guildId), &obj, GetCacheLifespan())
}

// retrieve a list.
// returns nil if does not exist
func RetrieveRedisList[T any](guildId string) ([]*T, error) {
	var result []*T
	exists, err := config.GetRedisObject(listKey[T](guildId), &result)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return result, nil
}

// clear list, TypeList:$guild_id
func RemoveRedisList[T any](guildId string) error {
	return config.RemoveRedisKey(listKey[T](guildId))
}
