package e2e

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
	// E2E_DEBUG_JSON dumps every websocket packet the suite reads
	DebugJSON       bool          `envconfig:"E2E_DEBUG_JSON" default:"false"`
	QueueSize       int           `envconfig:"E2E_QUEUE_SIZE" default:"64"`
	SessionDuration time.Duration `envconfig:"E2E_SESSION_DURATION" default:"1h"`
	ReadTimeout     time.Duration `envconfig:"E2E_READ_TIMEOUT" default:"5s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
