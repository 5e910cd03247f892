package errx

import (
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// WrapRedis maps Redis errors to AppError. A missing key is not an error
// for callers of the cache, so redis.Nil is returned unchanged.
func WrapRedis(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}
	return New(err, http.StatusBadGateway, RedisErrorMessage)
}
