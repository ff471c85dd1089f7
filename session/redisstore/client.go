package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Connect creates a client and pings the server, retrying up to maxAttempts times
func Connect(ctx context.Context, addr, password string, db, maxAttempts int) (client *redis.Client, err error) {
	err = doWithTries(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		client = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		})

		if err := client.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", addr).Msg("Redis ping failed")
			client.Close()
			return err
		}
		return nil
	}, maxAttempts, time.Second)

	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis after %d attempts: %w", maxAttempts, err)
	}
	return client, nil
}

func doWithTries(fn func() error, attempts int, delay time.Duration) (err error) {
	for attempts > 0 {
		if err = fn(); err != nil {
			attempts--
			if attempts > 0 {
				time.Sleep(delay)
			}
			continue
		}
		return nil
	}
	return
}
