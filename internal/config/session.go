package config

import (
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type SessionConfig struct {
	IdleTimeout   time.Duration `envconfig:"SESSION_IDLE_TIMEOUT" default:"30m"`
	SweepInterval time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"1m"`
	// chat sends allowed per session per minute
	ChatRateLimit int `envconfig:"CHAT_RATE_LIMIT" default:"20"`
}

var (
	sessionConfig *SessionConfig
	sessionOnce   sync.Once
)

func LoadSessionConfig() *SessionConfig {
	sessionOnce.Do(func() {
		sessionConfig = &SessionConfig{}
		if err := envconfig.Process("", sessionConfig); err != nil {
			log.Printf("Warning: invalid session config, using defaults: %v", err)
			sessionConfig = &SessionConfig{
				IdleTimeout:   30 * time.Minute,
				SweepInterval: time.Minute,
				ChatRateLimit: 20,
			}
		}
	})
	return sessionConfig
}
