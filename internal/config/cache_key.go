package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key holding a user's active token ID.
func (r *CacheKeyStruct) UserSessionKey(username string) string {
	return fmt.Sprintf("login:%s", username)
}

var CacheKey = NewCacheKeyStruct()
