package config

import (
	"sync"
)

type LoggerConfig struct {
	Level  string
	Format string
}

var (
	loggerConfig *LoggerConfig
	loggerOnce   sync.Once
)

func LoadLoggerConfig() *LoggerConfig {
	loggerOnce.Do(func() {
		loggerConfig = &LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		}
	})
	return loggerConfig
}
