package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultBaseURL = "https://api.momentflow.io"

type Config struct {
	APIKey       string        `env:"MOMENTFLOW_API_KEY"`
	BaseURL      string        `env:"MOMENTFLOW_BASE_URL" envDefault:"https://api.momentflow.io"`
	PollInterval time.Duration `env:"MOMENTFLOW_POLL_INTERVAL" envDefault:"2s"`
	Timeout      time.Duration `env:"MOMENTFLOW_TIMEOUT" envDefault:"60s"`
	HTTPTimeout  time.Duration `env:"MOMENTFLOW_HTTP_TIMEOUT" envDefault:"30s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"` // json or console

	ProfileConfigPath string `env:"PROFILE_CONFIG_PATH" envDefault:"profiles.yaml"`

	// S3 payload source
	S3Region     string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint   string `env:"S3_ENDPOINT"`
	AWSAccessKey string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey string `env:"AWS_SECRET_ACCESS_KEY"`

	// Outcome events, disabled when RabbitMQURL is empty
	RabbitMQURL      string `env:"RABBITMQ_URL"`
	RabbitMQExchange string `env:"RABBITMQ_EXCHANGE" envDefault:"moment_ingest"`

	// Metrics push, disabled when PushgatewayURL is empty
	PushgatewayURL string `env:"PUSHGATEWAY_URL"`
}

// Load reads an optional .env file and then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return Parse()
}

// Parse builds a Config from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("MOMENTFLOW_POLL_INTERVAL must be positive, got %s", c.PollInterval)
	}
	if c.Timeout < c.PollInterval {
		return fmt.Errorf("MOMENTFLOW_TIMEOUT (%s) must not be shorter than MOMENTFLOW_POLL_INTERVAL (%s)", c.Timeout, c.PollInterval)
	}
	return nil
}

// RequireAPIKey is checked by commands that talk to the media service.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return errors.New("MOMENTFLOW_API_KEY is not set")
	}
	return nil
}

type Profile struct {
	AllowedMimes []string `yaml:"allowed_mimes"`
	SizeMaxBytes int64    `yaml:"size_max_bytes"`
	MaxWidth     int      `yaml:"max_width"`
	ConvertTo    string   `yaml:"convert_to"`
	Quality      int      `yaml:"quality"`
}

type ProfileConfig struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// LoadProfileConfig reads the profile file. A missing file is not an error:
// the built-in default profile applies.
func LoadProfileConfig(path string) (*ProfileConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &ProfileConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile config: %w", err)
	}

	var config ProfileConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse profile config: %w", err)
	}

	return &config, nil
}

func (pc *ProfileConfig) GetProfile(name string) *Profile {
	if pc != nil {
		if profile, exists := pc.Profiles[name]; exists {
			return &profile
		}

		// Return default if name not found
		if defaultProfile, exists := pc.Profiles["default"]; exists {
			return &defaultProfile
		}
	}

	// Fallback to hardcoded default
	return DefaultProfile()
}

func DefaultProfile() *Profile {
	return &Profile{
		AllowedMimes: []string{"image/jpeg", "image/png", "image/webp", "image/heic", "video/mp4", "video/quicktime"},
		SizeMaxBytes: 100 * 1024 * 1024,
		Quality:      90,
	}
}
