package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

type Config struct {
	Commands struct {
		Prefix string `yaml:"prefix" validate:"required"`
	} `yaml:"commands"`
	Storage struct {
		Backend        string `yaml:"backend" validate:"oneof=file redis surreal"`
		Dir            string `yaml:"dir"`
		PrefixFile     string `yaml:"prefix_file" validate:"required"`
		EmoteFile      string `yaml:"emote_file" validate:"required,nefield=PrefixFile"`
		RedisKeyPrefix string `yaml:"redis_key_prefix"`
		SurrealTable   string `yaml:"surreal_table" validate:"required_if=Backend surreal"`
	} `yaml:"storage"`
	SlashCommands struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"slash_commands"`
}

func defaults() *Config {
	config := &Config{}
	config.Commands.Prefix = "!"
	config.Storage.Backend = "file"
	config.Storage.Dir = "."
	config.Storage.PrefixFile = "prefixes.json"
	config.Storage.EmoteFile = "emotes.json"
	config.Storage.RedisKeyPrefix = "emotebot"
	config.Storage.SurrealTable = "snapshots"
	config.SlashCommands.Enabled = true
	return config
}

// LoadConfig reads path over the defaults. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := defaults()

	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return config, nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	err = yaml.Unmarshal(file, config)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Secrets come from the environment, optionally seeded from a .env file.
type Secrets struct {
	DiscordToken    string `envconfig:"DISCORD_TOKEN" required:"true"`
	DiscordGuildID  string `envconfig:"DISCORD_GUILD_ID"`
	RedisURL        string `envconfig:"REDIS_URL"`
	SurrealHost     string `envconfig:"SURREAL_DB_HOST"`
	SurrealUser     string `envconfig:"SURREAL_DB_USER"`
	SurrealPass     string `envconfig:"SURREAL_DB_PASS"`
	SurrealNS       string `envconfig:"SURREAL_DB_NAMESPACE" default:"emotebot"`
	SurrealDatabase string `envconfig:"SURREAL_DB_DATABASE" default:"emotes"`
}

// LoadSecrets loads envFiles (if any exist) and then reads the environment.
// Variables already set in the environment win over .env entries.
func LoadSecrets(envFiles ...string) (*Secrets, error) {
	if err := godotenv.Load(envFiles...); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	secrets := &Secrets{}
	if err := envconfig.Process("", secrets); err != nil {
		return nil, err
	}
	return secrets, nil
}

// RequireBackend checks that the secrets needed by backend are present.
func (s *Secrets) RequireBackend(backend string) error {
	switch backend {
	case "redis":
		if s.RedisURL == "" {
			return fmt.Errorf("missing required environment variable: REDIS_URL")
		}
	case "surreal":
		if s.SurrealHost == "" {
			return fmt.Errorf("missing required environment variable: SURREAL_DB_HOST")
		}
		if s.SurrealUser == "" {
			return fmt.Errorf("missing required environment variable: SURREAL_DB_USER")
		}
		if s.SurrealPass == "" {
			return fmt.Errorf("missing required environment variable: SURREAL_DB_PASS")
		}
	}
	return nil
}

// SurrealURL returns the host as a websocket RPC URL, adding the scheme and
// path when only a hostname was given.
func (s *Secrets) SurrealURL() string {
	host := s.SurrealHost
	if host == "" || strings.HasPrefix(host, "ws://") || strings.HasPrefix(host, "wss://") ||
		strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host
	}
	return "wss://" + host + "/rpc"
}
