package config

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Mongo  MongoConfig  `yaml:"mongo"`
	Auth   AuthConfig   `yaml:"auth"`
}

type ServerConfig struct {
	Port    string        `yaml:"port" env:"SERVER_PORT" env-default:"3000"`
	Timeout time.Duration `yaml:"timeout" env:"SERVER_TIMEOUT" env-default:"5s"`
}

type MongoConfig struct {
	URI      string        `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	Database string        `yaml:"database" env:"MONGO_DATABASE" env-default:"daily-report-system"`
	Timeout  time.Duration `yaml:"timeout" env:"MONGO_TIMEOUT" env-default:"30s"`
}

type AuthConfig struct {
	AllowedDomain string `yaml:"allowed_domain" env:"AUTH_ALLOWED_DOMAIN" env-default:"@ivislabs.com"`
}

func MustLoad() Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	var config Config
	if err := cleanenv.ReadConfig(configPath, &config); err != nil {
		// no config file, environment variables only
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			if err := cleanenv.ReadEnv(&config); err != nil {
				log.Fatalf("config not read: %v", err)
			}
			return config
		}
		log.Fatalf("config not read: %v", err)
	}
	return config
}
