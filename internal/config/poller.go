package config

import (
	"sync"
	"time"
)

type PollerConfig struct {
	APIURL      string
	Interval    time.Duration
	MaxAttempts int
}

var (
	pollerConfig *PollerConfig
	pollerOnce   sync.Once
)

func LoadPollerConfig() *PollerConfig {
	pollerOnce.Do(func() {
		pollerConfig = &PollerConfig{
			APIURL:      getEnv("API_URL", "http://localhost:8800"),
			Interval:    getEnvDuration("POLL_INTERVAL", 2*time.Second),
			MaxAttempts: getEnvInt("POLL_MAX_ATTEMPTS", 30),
		}
	})
	return pollerConfig
}
