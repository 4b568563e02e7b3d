package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration
var Config AppConfig

// LoadAppConfig loads and validates the application configuration from
// config.yml. A .env file, when present, supplies connection strings
// (LOGBOOK_POSTGRES_URL, LOGBOOK_NATS_URL) without putting credentials in
// the yaml.
func LoadAppConfig() error {
	_ = godotenv.Load()

	paths := []string{"config.yml", "./config/config.yml"}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}
	applyEnvOverrides(&cfg)
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return err
	}
	Config = cfg
	if Config.NATS.SubjectPrefix == "" {
		Config.NATS.SubjectPrefix = "logbook"
	}
	return nil
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("LOGBOOK_POSTGRES_URL"); v != "" {
		cfg.Export.PostgresURL = v
	}
	if v := os.Getenv("LOGBOOK_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
}
