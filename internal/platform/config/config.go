package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL = "https://backendmunicipalidadawstid-production.up.railway.app/api/v1"

	EnvBaseURL  = "VECINO_API_URL"
	EnvLogLevel = "VECINO_LOG_LEVEL"

	StoreFile   = "file"
	StoreSQLite = "sqlite"

	ProviderNone   = "none"
	ProviderStatic = "static"
	ProviderPlugin = "plugin"
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

type Config struct {
	Home            string `yaml:"-"`
	ConfigPath      string `yaml:"-"`
	DBPath          string `yaml:"-"`
	CredentialsPath string `yaml:"-"`

	API      API      `yaml:"api"`
	Store    Store    `yaml:"store"`
	Location Location `yaml:"location"`
	Evidence Evidence `yaml:"evidence"`
	Log      Log      `yaml:"log"`
}

type API struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type Store struct {
	Backend string `yaml:"backend"`
}

type Location struct {
	Provider     string        `yaml:"provider"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxAge       time.Duration `yaml:"max_age"`
	Seed         *uint64       `yaml:"seed,omitempty"`
	Plugin       string        `yaml:"plugin"`
	PluginSHA256 string        `yaml:"plugin_sha256"`
	Fixed        *Point        `yaml:"fixed,omitempty"`
	Bounds       Bounds        `yaml:"bounds"`
}

// Point is the fix reported by the static provider. Without it the static
// provider reports the centre of Bounds.
type Point struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// Bounds is the rectangular service area used for fallback coordinates.
type Bounds struct {
	MinLat float64 `yaml:"min_lat"`
	MaxLat float64 `yaml:"max_lat"`
	MinLon float64 `yaml:"min_lon"`
	MaxLon float64 `yaml:"max_lon"`
}

type Evidence struct {
	Concurrency int `yaml:"concurrency"`
}

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// DefaultHome is $HOME/.vecino.
func DefaultHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(home, ".vecino"), nil
}

func New(home string) (Config, error) {
	if home == "" {
		return Config{}, fmt.Errorf("home path is required")
	}
	return Config{
		Home:            home,
		ConfigPath:      filepath.Join(home, "config.yaml"),
		DBPath:          filepath.Join(home, "vecino.db"),
		CredentialsPath: filepath.Join(home, "credentials.json"),
		API: API{
			BaseURL: DefaultBaseURL,
			Timeout: 30 * time.Second,
		},
		Store: Store{Backend: StoreFile},
		Location: Location{
			Provider: ProviderNone,
			Timeout:  15 * time.Second,
			MaxAge:   10 * time.Second,
			Bounds: Bounds{
				MinLat: -22.48,
				MaxLat: -22.40,
				MinLon: -68.95,
				MaxLon: -68.85,
			},
		},
		Evidence: Evidence{Concurrency: 1},
		Log:      Log{Level: "warn"},
	}, nil
}

// Load builds the defaults for home, overlays the YAML file (configPath, or
// <home>/config.yaml when empty; a missing file is not an error) and finally
// the environment.
func Load(home, configPath string) (Config, error) {
	cfg, err := New(home)
	if err != nil {
		return Config{}, err
	}
	if configPath != "" {
		cfg.ConfigPath = configPath
	}
	raw, err := os.ReadFile(cfg.ConfigPath)
	switch {
	case err == nil:
		if err := cfg.decode(raw); err != nil {
			return Config{}, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decode(raw []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config %s: %w", c.ConfigPath, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvBaseURL)); v != "" {
		c.API.BaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	switch c.Store.Backend {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("unsupported store.backend %q", c.Store.Backend)
	}
	switch c.Location.Provider {
	case ProviderNone, ProviderStatic:
	case ProviderPlugin:
		if strings.TrimSpace(c.Location.Plugin) == "" {
			return fmt.Errorf("location.plugin is required for the plugin provider")
		}
		if c.Location.PluginSHA256 != "" && !sha256Pattern.MatchString(c.Location.PluginSHA256) {
			return fmt.Errorf("location.plugin_sha256 must be lowercase 64-char hex")
		}
	default:
		return fmt.Errorf("unsupported location.provider %q", c.Location.Provider)
	}
	if c.Location.Timeout <= 0 {
		return fmt.Errorf("location.timeout must be positive")
	}
	if c.Location.MaxAge < 0 {
		return fmt.Errorf("location.max_age must not be negative")
	}
	b := c.Location.Bounds
	if b.MinLat > b.MaxLat || b.MinLon > b.MaxLon {
		return fmt.Errorf("location.bounds are inverted")
	}
	if b.MinLat < -90 || b.MaxLat > 90 || b.MinLon < -180 || b.MaxLon > 180 {
		return fmt.Errorf("location.bounds are outside valid coordinates")
	}
	if f := c.Location.Fixed; f != nil && (f.Latitude < -90 || f.Latitude > 90 || f.Longitude < -180 || f.Longitude > 180) {
		return fmt.Errorf("location.fixed is outside valid coordinates")
	}
	if c.Evidence.Concurrency < 1 {
		return fmt.Errorf("evidence.concurrency must be at least 1")
	}
	return nil
}
