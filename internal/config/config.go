package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Environment variables understood at startup, besides PGEXPLORER_* settings:
//
//	POSTGRES_CONNECTION_STRING  one DSN, or several separated by commas
//	POSTGRES_DB_<NAME>          a named DSN; <NAME> is lowercased
const (
	connectionListVar = "POSTGRES_CONNECTION_STRING"
	namedPrefix       = "POSTGRES_DB_"
	settingsPrefix    = "PGEXPLORER_"
)

// NamedDSN is one POSTGRES_DB_<NAME> entry.
type NamedDSN struct {
	Name string
	DSN  string
}

// Config is the resolved startup configuration. The three connection sources
// keep their priority order: PrimaryDSN wins the primary slot, then the
// comma-separated list, then named entries.
type Config struct {
	PrimaryDSN     string
	ConnectionList []string
	Named          []NamedDSN

	LogLevel     string
	LogFile      string
	LogMaxSizeMB int64
	HTTPAddr     string
}

// Load resolves configuration from a .env file (if present), PGEXPLORER_*
// environment variables, POSTGRES_* connection variables, and command line
// flags. Flags take priority over environment settings.
func Load(flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	// PGEXPLORER_LOG_LEVEL -> log_level
	if err := k.Load(env.Provider(settingsPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, settingsPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	cfg := &Config{
		PrimaryDSN:     k.String("conn"),
		LogLevel:       k.String("log_level"),
		LogFile:        k.String("log_file"),
		LogMaxSizeMB:   k.Int64("log_max_size"),
		HTTPAddr:       k.String("addr"),
		ConnectionList: splitConnectionList(os.Getenv(connectionListVar)),
		Named:          namedConnections(),
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = "localhost:8000"
	}

	return cfg, nil
}

func splitConnectionList(value string) []string {
	if value == "" {
		return nil
	}
	var list []string
	for _, dsn := range strings.Split(value, ",") {
		list = append(list, strings.TrimSpace(dsn))
	}
	return list
}

func namedConnections() []NamedDSN {
	k := koanf.New(".")
	if err := k.Load(env.Provider(namedPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, namedPrefix))
	}), nil); err != nil {
		return nil
	}

	keys := k.Keys()
	sort.Strings(keys)

	var named []NamedDSN
	for _, key := range keys {
		named = append(named, NamedDSN{Name: key, DSN: k.String(key)})
	}
	return named
}
