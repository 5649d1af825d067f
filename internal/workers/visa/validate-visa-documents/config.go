// internal/workers/visa/validate-visa-documents/config.go
package validatevisadocuments

import (
	"time"

	"visa-workers/internal/common/config"
)

// Document checks are in-memory; the timeout only bounds Execute.
type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}

// NewConfig takes the execution timeout from the worker's job timeout.
func NewConfig(wcfg config.WorkerConfig) *Config {
	cfg := LoadConfig()
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	return cfg
}
