package config

import (
	"log"
	"sync"

	"github.com/kelseyhightower/envconfig"
)

type AppConfig struct {
	Name    string `envconfig:"APP_NAME" default:"StudyPath"`
	Env     string `envconfig:"APP_ENV" default:"development"`
	Port    string `envconfig:"APP_PORT" default:":8080"`
	BaseURL string `envconfig:"APP_URL"`
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		appConfig = &AppConfig{}
		if err := envconfig.Process("", appConfig); err != nil {
			log.Printf("Warning: invalid app config, using defaults: %v", err)
			appConfig = &AppConfig{Name: "StudyPath", Env: "development", Port: ":8080"}
		}
	})
	return appConfig
}
