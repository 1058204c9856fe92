package results

import (
	"fmt"

	"github.com/searchroi/search-roi/internal/config"
	"github.com/searchroi/search-roi/internal/pkg/errors"
)

// NewStore creates a store from configuration.
func NewStore(cfg config.ResultsConfig) (Store, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.Dir), nil
	case "redis":
		return NewRedisStore(cfg.RedisURL)
	default:
		return nil, errors.ValidationError(fmt.Sprintf("unknown results store type: %s", cfg.Type))
	}
}
