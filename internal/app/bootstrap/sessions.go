package bootstrap

import (
	"context"

	appconfig "github.com/wonpyo/jeju-chatpi/internal/config"
	"github.com/wonpyo/jeju-chatpi/internal/dialogue"
	"github.com/wonpyo/jeju-chatpi/pkg/logging"
)

// BuildSessionStore selects the session backend. An unreachable Redis
// degrades to the in-memory store so the webhook keeps answering.
func BuildSessionStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) dialogue.SessionStore {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		return dialogue.NewMemorySessionStore(0)
	}

	if cfg.SessionBackend == "redis" {
		if client := BuildRedisClient(ctx, cfg, logger, true); client != nil {
			logger.Info("session store", "backend", "redis", "addr", cfg.RedisAddr)
			return dialogue.NewRedisSessionStore(client, cfg.SessionTTL)
		}
		logger.Warn("redis session backend unavailable, falling back to memory")
	}

	logger.Info("session store", "backend", "memory", "ttl", cfg.SessionTTL.String())
	return dialogue.NewMemorySessionStore(cfg.SessionTTL)
}
