package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mcdev12/wheelspin/go/internal/audio"
	"github.com/mcdev12/wheelspin/go/internal/models"
	"github.com/mcdev12/wheelspin/go/internal/wheel"
	"gopkg.in/yaml.v3"
)

// Config is the wheel server configuration. Durations are written as Go
// duration strings ("6s", "200ms") in YAML.
type Config struct {
	Server struct {
		Port      string `yaml:"port"`
		MaxWheels int    `yaml:"max_wheels"`
	} `yaml:"server"`

	LogLevel string `yaml:"log_level"`

	Timing wheel.Timing       `yaml:"timing"`
	Cues   CueSet             `yaml:"cues"`
	Roster []models.SeedEntry `yaml:"roster"`

	NATS struct {
		URL        string        `yaml:"url"`
		StreamName string        `yaml:"stream_name"`
		MaxAge     time.Duration `yaml:"max_age"`
	} `yaml:"nats"`

	History struct {
		DatabaseEnabled bool          `yaml:"database_enabled"`
		MemoryCapacity  int           `yaml:"memory_capacity"`
		Retention       time.Duration `yaml:"retention"`
	} `yaml:"history"`

	Database Database `yaml:"database"`
}

// Database holds Postgres connection settings for spin history.
type Database struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// DefaultDatabase returns settings for a local Postgres.
func DefaultDatabase() Database {
	return Database{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Name:     "wheelspin",
		SSLMode:  "disable",
	}
}

// DSN returns the Postgres connection URL.
func (d Database) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// Validate checks the connection settings.
func (d Database) Validate() error {
	var errs []error
	if strings.TrimSpace(d.Host) == "" {
		errs = append(errs, errors.New("database.host is required"))
	}
	if d.Port <= 0 || d.Port > 65535 {
		errs = append(errs, fmt.Errorf("database.port %d is out of range", d.Port))
	}
	if strings.TrimSpace(d.User) == "" {
		errs = append(errs, errors.New("database.user is required"))
	}
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, errors.New("database.name is required"))
	}
	switch d.SSLMode {
	case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
	default:
		errs = append(errs, fmt.Errorf("database.sslmode %q is not supported", d.SSLMode))
	}
	return errors.Join(errs...)
}

// CueSet maps cues to their playback settings. A cue given in YAML is decoded
// over its current settings, so a partial block keeps the remaining fields.
type CueSet map[wheel.Cue]audio.CueConfig

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *CueSet) UnmarshalYAML(node *yaml.Node) error {
	var raw map[wheel.Cue]yaml.Node
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if *s == nil {
		*s = CueSet{}
	}
	for cue, n := range raw {
		cc := (*s)[cue]
		if err := n.Decode(&cc); err != nil {
			return fmt.Errorf("cues.%s: %w", cue, err)
		}
		(*s)[cue] = cc
	}
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	var c Config
	c.Server.Port = "8080"
	c.Server.MaxWheels = 128
	c.LogLevel = "info"
	c.Timing = wheel.DefaultTiming()
	c.Cues = audio.DefaultCues()
	c.Roster = DefaultRoster()
	c.NATS.StreamName = "WHEEL_EVENTS"
	c.NATS.MaxAge = 24 * time.Hour
	c.History.MemoryCapacity = 100
	c.History.Retention = 30 * 24 * time.Hour
	c.Database = DefaultDatabase()
	return c
}

// DefaultRoster is the team a seeded wheel starts with.
func DefaultRoster() []models.SeedEntry {
	names := []struct{ name, background string }{
		{"Rachel", "6e3ff3"},
		{"Matt", "5931c2"},
		{"Davon", "9171f8"},
		{"Rob", "4a2a94"},
		{"Racheal", "b299ff"},
		{"Bobby", "6e3ff3"},
	}
	roster := make([]models.SeedEntry, len(names))
	for i, n := range names {
		roster[i] = models.SeedEntry{
			Name:     n.name,
			ImageRef: fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=%s&color=fff&size=200&bold=true", n.name, n.background),
		}
	}
	return roster
}

// Load reads the YAML file at path over the defaults and then applies
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.NATS.URL = getEnv("NATS_URL", c.NATS.URL)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)

	var err error
	if c.Server.MaxWheels, err = getEnvAsInt("MAX_WHEELS", c.Server.MaxWheels); err != nil {
		return err
	}
	if c.Database.Port, err = getEnvAsInt("DB_PORT", c.Database.Port); err != nil {
		return err
	}
	if c.History.DatabaseEnabled, err = getEnvAsBool("HISTORY_DB_ENABLED", c.History.DatabaseEnabled); err != nil {
		return err
	}
	return nil
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Port) == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if c.Server.MaxWheels <= 0 {
		errs = append(errs, errors.New("server.max_wheels must be positive"))
	}
	if err := c.Timing.Validate(); err != nil {
		errs = append(errs, err)
	}
	for _, cue := range []wheel.Cue{wheel.CueSpinStart, wheel.CueTicking, wheel.CueCelebration} {
		cc, ok := c.Cues[cue]
		if !ok || cc.Src == "" {
			errs = append(errs, fmt.Errorf("cues.%s needs a src", cue))
			continue
		}
		if cc.Volume < 0 || cc.Volume > 1 {
			errs = append(errs, fmt.Errorf("cues.%s volume must be within [0, 1]", cue))
		}
	}
	if c.History.DatabaseEnabled {
		if err := c.Database.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	for i, e := range c.Roster {
		if strings.TrimSpace(e.Name) == "" {
			errs = append(errs, fmt.Errorf("roster[%d] has no name", i))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}
