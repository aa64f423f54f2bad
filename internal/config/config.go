package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env          string         `yaml:"env" env:"APP_ENV" env-default:"local" json:"-"`
	DatabaseDSN  string         `yaml:"database_dsn" env:"DATABASE_URL" env-required:"true" json:"-"`
	HTTPServer   HTTPServer     `yaml:"http_server" json:"-"`
	App          AppConfig      `yaml:"app" json:"app"`
	ContentStore ContentStore   `yaml:"content_store" json:"-"`
	Realtime     RealtimeConfig `yaml:"realtime" json:"-"`
	Avatars      AvatarsConfig  `yaml:"avatars" json:"-"`
}

type AppConfig struct {
	BaseURL           string `yaml:"base_url" json:"base_url"`
	PlaceholderAvatar string `yaml:"placeholder_avatar" json:"placeholder_avatar"`
}

// ContentStore points at the headless CMS that owns member profiles and
// listing documents. This service only reads it over HTTP/JSON.
type ContentStore struct {
	BaseURL string        `yaml:"base_url" env:"CONTENT_STORE_URL"`
	Token   string        `yaml:"token" env:"CONTENT_STORE_TOKEN"`
	Timeout time.Duration `yaml:"timeout" env-default:"5s"`
}

type RealtimeConfig struct {
	Channel        string        `yaml:"channel" env-default:"nestswap_messaging"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay" env-default:"3s"`
}

type AvatarsConfig struct {
	Bucket     string        `yaml:"bucket" env:"S3_BUCKET"`
	PresignTTL time.Duration `yaml:"presign_ttl" env-default:"15m"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env-default:"localhost:8082" json:"-"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s" json:"-"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s" json:"-"`
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config %s", err)
	}

	return &cfg
}
