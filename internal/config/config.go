package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ============================================================================
// Defaults
// ============================================================================
const (
	defaultAddr            = ":3000"
	defaultRoomIDLength    = 6
	defaultCardsPerPlayer  = 6
	defaultQRSize          = 256
	defaultShutdownTimeout = 10 * time.Second
	defaultServiceName     = "liarbar"
	defaultConsulAddr      = "127.0.0.1:8500"
	defaultSubjectPrefix   = "liarbar"
)

type Config struct {
	Addr string `yaml:"addr"`
	// PublicURL is the externally visible base for join links. When empty
	// it is derived from each create-room request.
	PublicURL       string        `yaml:"publicUrl"`
	RoomIDLength    int           `yaml:"roomIdLength"`
	CardsPerPlayer  int           `yaml:"cardsPerPlayer"`
	QRSize          int           `yaml:"qrSize"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`

	Log    Log    `yaml:"log"`
	Consul Consul `yaml:"consul"`
	NATS   NATS   `yaml:"nats"`
}

type Log struct {
	Level      string `yaml:"level"`
	JSON       bool   `yaml:"json"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMb"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
}

type Consul struct {
	Enabled     bool   `yaml:"enabled"`
	Addr        string `yaml:"addr"`
	ServiceName string `yaml:"serviceName"`
	// ServiceHost is the address Consul uses to reach /health.
	ServiceHost string `yaml:"serviceHost"`
}

type NATS struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subjectPrefix"`
}

func Default() *Config {
	return &Config{
		Addr:            defaultAddr,
		RoomIDLength:    defaultRoomIDLength,
		CardsPerPlayer:  defaultCardsPerPlayer,
		QRSize:          defaultQRSize,
		ShutdownTimeout: defaultShutdownTimeout,
		Log: Log{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 7,
			MaxAgeDays: 7,
			Compress:   true,
		},
		Consul: Consul{
			Addr:        defaultConsulAddr,
			ServiceName: defaultServiceName,
		},
		NATS: NATS{
			SubjectPrefix: defaultSubjectPrefix,
		},
	}
}

// Load applies, in order: defaults, the YAML file at path (or
// $LIARBAR_CONFIG), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("LIARBAR_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Addr, "LIARBAR_ADDR")
	setString(&c.PublicURL, "LIARBAR_PUBLIC_URL")
	setString(&c.Log.Level, "LIARBAR_LOG_LEVEL")
	setString(&c.Log.File, "LIARBAR_LOG_FILE")
	setString(&c.Consul.Addr, "CONSUL_HTTP_ADDR")
	setString(&c.Consul.ServiceName, "LIARBAR_SERVICE_NAME")
	setString(&c.Consul.ServiceHost, "LIARBAR_SERVICE_HOST")
	setString(&c.NATS.URL, "NATS_URL")

	if port := os.Getenv("PORT"); port != "" && os.Getenv("LIARBAR_ADDR") == "" {
		if _, err := strconv.Atoi(port); err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		c.Addr = ":" + port
	}

	var errs []error
	errs = append(errs, setInt(&c.CardsPerPlayer, "LIARBAR_CARDS_PER_PLAYER"))
	errs = append(errs, setBool(&c.Log.JSON, "LIARBAR_LOG_JSON"))
	errs = append(errs, setBool(&c.Consul.Enabled, "LIARBAR_CONSUL_ENABLED"))
	return errors.Join(errs...)
}

func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("config: addr is required")
	}
	if c.RoomIDLength < 4 || c.RoomIDLength > 32 {
		return fmt.Errorf("config: roomIdLength %d out of range 4-32", c.RoomIDLength)
	}
	if c.CardsPerPlayer < 1 || c.CardsPerPlayer > 52 {
		return fmt.Errorf("config: cardsPerPlayer %d out of range 1-52", c.CardsPerPlayer)
	}
	if c.QRSize < 64 || c.QRSize > 1024 {
		return fmt.Errorf("config: qrSize %d out of range 64-1024", c.QRSize)
	}
	if c.PublicURL != "" {
		u, err := url.Parse(c.PublicURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config: publicUrl %q must be an absolute URL", c.PublicURL)
		}
	}
	if c.Consul.Enabled && c.Consul.ServiceName == "" {
		return errors.New("config: consul.serviceName is required when consul is enabled")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = b
	return nil
}
