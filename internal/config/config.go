package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvPath names the config file when no -config flag is given.
const EnvPath = "COMPOSE_CONFIG"

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Host    HostConfig    `toml:"host"`
	Logging LoggingConfig `toml:"logging"`
	Catalog CatalogConfig `toml:"catalog"`
	Inspect InspectConfig `toml:"inspect"`
}

type HostConfig struct {
	TickRate      time.Duration `toml:"tick_rate"`
	FixedTickRate time.Duration `toml:"fixed_tick_rate"`
	Workers       int           `toml:"workers"` // 0 ticks sequentially
	Spawn         []SpawnConfig `toml:"spawn"`
}

// SpawnConfig creates Count entities from a catalog template at startup.
type SpawnConfig struct {
	Template string `toml:"template"`
	Count    int    `toml:"count"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type CatalogConfig struct {
	Path  string `toml:"path"` // .yaml, .yml or .json
	Watch bool   `toml:"watch"`
}

type InspectConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// Load reads a TOML file on top of the defaults. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Path resolves the config file from the -config flag of args, falling back
// to $COMPOSE_CONFIG.
func Path(args []string) (string, error) {
	fs := flag.NewFlagSet("compose", flag.ContinueOnError)
	path := fs.String("config", "", "path to the TOML config file")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if *path != "" {
		return *path, nil
	}
	return os.Getenv(EnvPath), nil
}

func (c *Config) Validate() error {
	switch {
	case c.Host.TickRate <= 0:
		return fmt.Errorf("%w: host.tick_rate must be positive", ErrInvalid)
	case c.Host.FixedTickRate <= 0:
		return fmt.Errorf("%w: host.fixed_tick_rate must be positive", ErrInvalid)
	case c.Host.Workers < 0:
		return fmt.Errorf("%w: host.workers must not be negative", ErrInvalid)
	case c.Inspect.Enabled && c.Inspect.Addr == "":
		return fmt.Errorf("%w: inspect.addr is required when enabled", ErrInvalid)
	case c.Catalog.Watch && c.Catalog.Path == "":
		return fmt.Errorf("%w: catalog.watch needs catalog.path", ErrInvalid)
	}
	for i, s := range c.Host.Spawn {
		if s.Template == "" {
			return fmt.Errorf("%w: host.spawn[%d] has no template", ErrInvalid, i)
		}
		if s.Count < 0 {
			return fmt.Errorf("%w: host.spawn[%d] count %d", ErrInvalid, i, s.Count)
		}
	}
	return nil
}

func Default() *Config {
	return &Config{
		Host: HostConfig{
			TickRate:      16 * time.Millisecond,
			FixedTickRate: 20 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Inspect: InspectConfig{
			Addr: ":8089",
		},
	}
}
