package config

import (
	"log"
	"sync"

	"github.com/kelseyhightower/envconfig"
)

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`    // debug, info, warn, error
	Encoding   string `envconfig:"LOG_ENCODING" default:"json"` // json or console
	OutputPath string `envconfig:"LOG_OUTPUT" default:"stdout"`
}

var (
	logConfig *LogConfig
	logOnce   sync.Once
)

func LoadLogConfig() *LogConfig {
	logOnce.Do(func() {
		logConfig = &LogConfig{}
		if err := envconfig.Process("", logConfig); err != nil {
			log.Printf("Warning: invalid log config, using defaults: %v", err)
			logConfig = &LogConfig{Level: "info", Encoding: "json", OutputPath: "stdout"}
		}
	})
	return logConfig
}
