package config

import (
	"sync"
	"time"
)

type WebhookConfig struct {
	URL     string
	Timeout time.Duration
}

var (
	webhookConfig *WebhookConfig
	webhookOnce   sync.Once
)

func LoadWebhookConfig() *WebhookConfig {
	webhookOnce.Do(func() {
		webhookConfig = &WebhookConfig{
			URL:     getEnv("WEBHOOK_URL", ""),
			Timeout: getEnvDuration("WEBHOOK_TIMEOUT", 30*time.Second),
		}
	})
	return webhookConfig
}
