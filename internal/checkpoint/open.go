package checkpoint

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Open initializes the configured store. An empty driver means "memory".
func Open(cfg Config) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = "memory"
	}

	log.Debug().Str("driver", driver).Str("path", cfg.Path).Msg("Opening checkpoint store")

	switch driver {
	case "memory":
		return NewMemory(), nil
	case "file":
		return openFile(cfg)
	case "sqlite", "sqlite3":
		return openSQLite(cfg)
	case "valkey", "redis":
		return openValkey(cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
