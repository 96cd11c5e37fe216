package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/HendryAvila/storybook/internal/agent"
	"github.com/HendryAvila/storybook/internal/projects"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "STORYBOOK"

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"root":      "root",
	"log-level": "log_level",
	"addr":      "http.addr",
	"model":     "agent.model",
	"max-turns": "agent.max_turns",
}

// userHomeDir is swapped in tests.
var userHomeDir = os.UserHomeDir

// DefaultPath returns ~/.storybook/config.yaml, or "" if there is no home.
func DefaultPath() string {
	home, err := userHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".storybook", "config.yaml")
}

// Load builds the configuration. An explicit path must exist; with an empty
// path the default file is read when present. flags may be nil; only flags
// the user actually set override the lower layers.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := loadConfigFile(v, path); err != nil {
		return nil, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding flag --%s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	// Env values for list keys arrive comma-separated.
	cfg.HTTP.CORSOrigins = splitList(strings.Join(cfg.HTTP.CORSOrigins, ","))

	root, err := projects.ResolveRoot(cfg.Root)
	if err != nil {
		return nil, err
	}
	cfg.Root = root

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func loadConfigFile(v *viper.Viper, path string) error {
	optional := path == ""
	if optional {
		path = DefaultPath()
		if path == "" {
			return nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	defer f.Close()

	if err := v.ReadConfig(f); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("root", projects.DefaultRoot)
	v.SetDefault("log_level", "info")

	v.SetDefault("agent.binary", "claude")
	v.SetDefault("agent.model", agent.DefaultModel)
	v.SetDefault("agent.max_turns", 0)
	v.SetDefault("agent.permission_mode", agent.PermissionDefault)

	v.SetDefault("http.addr", "127.0.0.1:8787")
	v.SetDefault("http.cors_origins", []string{"http://localhost:5173", "http://localhost:3000"})

	v.SetDefault("journal.enabled", true)
}
