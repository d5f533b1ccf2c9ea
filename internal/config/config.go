// Package config loads inferschema settings from a file, the environment
// and an optional .env file, and reloads them when the file changes.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/inferschema/pkg/schema"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides, e.g. INFERSCHEMA_HTTP_PORT.
const EnvPrefix = "INFERSCHEMA_"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverLoam   = "loam"
)

// Config is the full application configuration.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Decode DecodeConfig `mapstructure:"decode"`
	Store  StoreConfig  `mapstructure:"store"`
	HTTP   HTTPConfig   `mapstructure:"http"`
	MCP    MCPConfig    `mapstructure:"mcp"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DecodeConfig holds the catalog's default decode options. Both fields can
// change without a restart.
type DecodeConfig struct {
	UnknownFields schema.UnknownFieldPolicy `mapstructure:"unknown_fields"`
	MaxDepth      int                       `mapstructure:"max_depth"`
}

type StoreConfig struct {
	Driver   string      `mapstructure:"driver"`
	ReadOnly bool        `mapstructure:"read_only"`
	Redis    RedisConfig `mapstructure:"redis"`
	Loam     LoamConfig  `mapstructure:"loam"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type LoamConfig struct {
	Dir   string `mapstructure:"dir"`
	Watch bool   `mapstructure:"watch"`
}

type HTTPConfig struct {
	Port int `mapstructure:"port"`
}

type MCPConfig struct {
	Transport string `mapstructure:"transport"`
	Port      int    `mapstructure:"port"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info"},
		Decode: DecodeConfig{UnknownFields: schema.DropUnknown, MaxDepth: schema.DefaultMaxDepth},
		Store: StoreConfig{
			Driver: DriverMemory,
			Redis:  RedisConfig{Addr: "localhost:6379", Prefix: "inferschema:definition:"},
			Loam:   LoamConfig{Dir: "./definitions"},
		},
		HTTP: HTTPConfig{Port: 8080},
		MCP:  MCPConfig{Transport: "stdio", Port: 8081},
	}
}

// keys lists every setting that can be overridden from the environment.
// INFERSCHEMA_STORE_REDIS_ADDR overrides store.redis.addr.
var keys = []string{
	"log.level",
	"decode.unknown_fields",
	"decode.max_depth",
	"store.driver",
	"store.read_only",
	"store.redis.addr",
	"store.redis.password",
	"store.redis.db",
	"store.redis.prefix",
	"store.redis.ttl",
	"store.loam.dir",
	"store.loam.watch",
	"http.port",
	"mcp.transport",
	"mcp.port",
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Load builds a Config from defaults, the file at path (YAML or JSON by
// extension, skipped when path is empty) and INFERSCHEMA_* variables.
// A .env file in the working directory is read first if present; variables
// already set in the process win over it.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	raw := map[string]any{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := unmarshal(path, data, &raw); err != nil {
			return nil, err
		}
	}
	applyEnv(raw, os.LookupEnv)

	cfg := Default()
	if err := decode(raw, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func unmarshal(path string, data []byte, out *map[string]any) error {
	var err error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, out)
	} else {
		err = yaml.Unmarshal(data, out)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", filepath.Base(path), err)
	}
	if *out == nil {
		*out = map[string]any{}
	}
	return nil
}

func applyEnv(raw map[string]any, lookup func(string) (string, bool)) {
	for _, key := range keys {
		val, ok := lookup(EnvName(key))
		if !ok {
			continue
		}
		parts := strings.Split(key, ".")
		m := raw
		for _, p := range parts[:len(parts)-1] {
			next, ok := m[p].(map[string]any)
			if !ok {
				next = map[string]any{}
				m[p] = next
			}
			m = next
		}
		m[parts[len(parts)-1]] = val
	}
}

func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverRedis:
	case DriverLoam:
		if c.Store.Loam.Dir == "" {
			return errors.New("store.loam.dir is required for the loam driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q (want memory, redis or loam)", c.Store.Driver)
	}
	switch c.MCP.Transport {
	case "stdio", "sse":
	default:
		return fmt.Errorf("unknown mcp transport %q (want stdio or sse)", c.MCP.Transport)
	}
	if c.Decode.MaxDepth < 1 {
		return fmt.Errorf("decode.max_depth must be positive, got %d", c.Decode.MaxDepth)
	}
	return nil
}
