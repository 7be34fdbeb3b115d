package config

import (
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AdvisorConfig points at the remote advisory API. BaseURL is the host root; the client
// appends /api itself.
type AdvisorConfig struct {
	BaseURL string        `envconfig:"ADVISOR_API_URL" default:"http://localhost:8001"`
	Timeout time.Duration `envconfig:"ADVISOR_TIMEOUT" default:"60s"`
}

var (
	advisorConfig *AdvisorConfig
	advisorOnce   sync.Once
)

func LoadAdvisorConfig() *AdvisorConfig {
	advisorOnce.Do(func() {
		advisorConfig = &AdvisorConfig{}
		if err := envconfig.Process("", advisorConfig); err != nil {
			log.Printf("Warning: invalid advisor config, using defaults: %v", err)
			advisorConfig = &AdvisorConfig{BaseURL: "http://localhost:8001", Timeout: 60 * time.Second}
		}
	})
	return advisorConfig
}
