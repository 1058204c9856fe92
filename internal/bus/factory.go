package bus

import (
	"fmt"
	"strings"

	"github.com/searchroi/search-roi/internal/config"
	"github.com/searchroi/search-roi/internal/pkg/errors"
)

// New creates a bus from configuration.
func New(cfg config.BusConfig) (Bus, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryBus(), nil
	case "kafka":
		return NewKafkaBus(KafkaConfig{
			Brokers: strings.Split(cfg.KafkaBrokers, ","),
		})
	case "none", "":
		return NewNoopBus(), nil
	default:
		return nil, errors.ValidationError(fmt.Sprintf("unknown bus type: %s", cfg.Type))
	}
}
