package cli

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-rental-session/internal/config"
	"github.com/jrsteele09/go-rental-session/session"
	"github.com/jrsteele09/go-rental-session/session/filestore"
	"github.com/jrsteele09/go-rental-session/session/memstore"
	"github.com/jrsteele09/go-rental-session/session/redisstore"
	"github.com/rs/zerolog/log"
)

const redisConnectAttempts = 3

func noClose() error { return nil }

// openStore builds the session store named by SESSION_STORE
func openStore(ctx context.Context, cfg config.StoreConfig) (session.Store, func() error, error) {
	switch cfg.GetStoreType() {
	case config.StoreMemory:
		log.Debug().Msg("Using in-memory session store")
		return memstore.New(), noClose, nil
	case config.StoreRedis:
		client, err := redisstore.Connect(ctx, cfg.GetRedisAddr(), cfg.GetRedisPassword(), cfg.GetRedisDB(), redisConnectAttempts)
		if err != nil {
			return nil, nil, fmt.Errorf("[cli openStore] redis %s: %w", cfg.GetRedisAddr(), err)
		}
		log.Debug().Str("addr", cfg.GetRedisAddr()).Str("key", cfg.GetRedisKey()).Msg("Using redis session store")
		return redisstore.New(client, cfg.GetRedisKey()), client.Close, nil
	default:
		var opts []filestore.Option
		if passphrase := cfg.GetSessionPassphrase(); passphrase != "" {
			opts = append(opts, filestore.WithPassphrase(passphrase))
		}
		log.Debug().Str("path", cfg.GetSessionFile()).Bool("encrypted", len(opts) > 0).Msg("Using file session store")
		return filestore.New(cfg.GetSessionFile(), opts...), noClose, nil
	}
}
