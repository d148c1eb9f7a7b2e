// Package config loads the deployment configuration: defaults first, then
// an optional YAML file, then CC_* environment variables, each layer
// overriding the one before it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/taaha-0548/Coders-Cup-Problems/internal/watch"
)

// DefaultPath is the config file consulted when none is named.
const DefaultPath = "coderscup.yaml"

// Mode selects the persistence variant.
type Mode string

const (
	// ModeAPI backs the pages with the contest REST API.
	ModeAPI Mode = "api"
	// ModeStatic backs them with local JSON files; there is no contest
	// state and content shows as soon as the gate unlocks.
	ModeStatic Mode = "static"
)

// Duration unmarshals from "30s"-style strings in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("failed to parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the full deployment configuration.
type Config struct {
	// Mode selects the API or the static deployment.
	Mode Mode `yaml:"mode"`
	// BaseURL is the contest API root (api mode).
	BaseURL string `yaml:"base_url"`
	// ProblemsDir holds the per-problem JSON files (static mode).
	ProblemsDir string `yaml:"problems_dir"`
	// StateDir is the shared state directory standing in for the browser's
	// localStorage: the broadcast slot and the problem cache live there.
	StateDir string `yaml:"state_dir"`

	// NATSURL switches the broadcast bus from the shared-file transport to
	// NATS when set.
	NATSURL string `yaml:"nats_url"`
	// Subject is the NATS subject broadcast events ride on.
	Subject string `yaml:"subject"`

	// GatePasswordHash is the bcrypt hash unlocking the landing page in
	// static mode; api mode asks the server instead.
	GatePasswordHash string `yaml:"gate_password_hash"`
	// AdminPasswordHash is the bcrypt hash for static-mode admin login.
	AdminPasswordHash string `yaml:"admin_password_hash"`

	// Watcher cadence overrides; zero keeps the built-in defaults.
	PollInterval     Duration `yaml:"poll_interval"`
	FastPollInterval Duration `yaml:"fast_poll_interval"`
	FastThreshold    Duration `yaml:"fast_threshold"`
	TickInterval     Duration `yaml:"tick_interval"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Mode:        ModeAPI,
		BaseURL:     "http://localhost:5000",
		ProblemsDir: "problems",
		StateDir:    defaultStateDir(),
		Subject:     "coderscup.broadcast",
	}
}

// Load layers the configuration. An empty path consults DefaultPath but
// tolerates its absence; a named path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	required := path != ""
	if path == "" {
		path = DefaultPath
	}
	if err := cfg.loadFile(path, required); err != nil {
		return Config{}, err
	}
	cfg.loadEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// HasContest reports whether this deployment carries live contest state.
func (c Config) HasContest() bool {
	return c.Mode == ModeAPI
}

// WatchConfig converts the cadence overrides into a watcher config; zero
// fields keep the watcher's defaults.
func (c Config) WatchConfig() watch.Config {
	return watch.Config{
		PollInterval:     time.Duration(c.PollInterval),
		FastPollInterval: time.Duration(c.FastPollInterval),
		FastThreshold:    time.Duration(c.FastThreshold),
		TickInterval:     time.Duration(c.TickInterval),
	}
}

// Validate checks mode-specific requirements.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeAPI:
		if c.BaseURL == "" {
			return fmt.Errorf("api mode requires a base URL")
		}
	case ModeStatic:
		if c.ProblemsDir == "" {
			return fmt.Errorf("static mode requires a problems directory")
		}
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.StateDir == "" {
		return fmt.Errorf("state directory must be set")
	}
	return nil
}

func (c *Config) loadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func (c *Config) loadEnv() {
	c.Mode = Mode(getEnv("CC_MODE", string(c.Mode)))
	c.BaseURL = getEnv("CC_BASE_URL", c.BaseURL)
	c.ProblemsDir = getEnv("CC_PROBLEMS_DIR", c.ProblemsDir)
	c.StateDir = getEnv("CC_STATE_DIR", c.StateDir)
	c.NATSURL = getEnv("CC_NATS_URL", c.NATSURL)
	c.Subject = getEnv("CC_SUBJECT", c.Subject)
	c.GatePasswordHash = getEnv("CC_GATE_PASSWORD_HASH", c.GatePasswordHash)
	c.AdminPasswordHash = getEnv("CC_ADMIN_PASSWORD_HASH", c.AdminPasswordHash)
	c.PollInterval = getEnvAsDuration("CC_POLL_INTERVAL", c.PollInterval)
	c.FastPollInterval = getEnvAsDuration("CC_FAST_POLL_INTERVAL", c.FastPollInterval)
	c.FastThreshold = getEnvAsDuration("CC_FAST_THRESHOLD", c.FastThreshold)
	c.TickInterval = getEnvAsDuration("CC_TICK_INTERVAL", c.TickInterval)
}

func defaultStateDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "coderscup")
	}
	return ".coderscup"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsDuration(key string, fallback Duration) Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return Duration(d)
		}
	}
	return fallback
}
