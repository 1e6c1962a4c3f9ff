package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable prefixes and the variables naming a config file.
const (
	EnvPrefix        = "FANTASY11_"
	EnvConfigFile    = "FANTASY11_CONFIG"
	DevEnvPrefix     = "FANTASY11_DEV_"
	DevEnvConfigFile = "FANTASY11_DEV_CONFIG"
)

// Load builds the client Config by layering, low to high precedence:
//  1. defaults (New)
//  2. YAML file: path, or FANTASY11_CONFIG when path is empty
//  3. env (prefix FANTASY11_, e.g. FANTASY11_SERVER_URL)
//
// Command line flags are applied by the caller on top of the result.
func Load(ctx context.Context, path string) (*Config, error) {
	cfg := New()
	if err := load(ctx, cfg, path, EnvConfigFile, EnvPrefix, DevEnvPrefix); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDevServer builds the dev server configuration the same way, with the
// FANTASY11_DEV_ prefix and FANTASY11_DEV_CONFIG file variable.
func LoadDevServer(ctx context.Context, path string) (*DevServer, error) {
	cfg := NewDevServer()
	if err := load(ctx, cfg, path, DevEnvConfigFile, DevEnvPrefix, ""); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dev server config: %w", err)
	}
	return cfg, nil
}

// load накладывает файл и переменные окружения поверх значений в out.
// Переменные с префиксом skipPrefix пропускаются: FANTASY11_DEV_* не должны
// попадать в конфиг клиента.
func load(_ context.Context, out any, path, fileEnv, prefix, skipPrefix string) error {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(fileEnv)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// FANTASY11_SERVER_URL -> server_url; подчёркивания сохраняются под теги koanf
	envProvider := env.Provider(prefix, ".", func(s string) string {
		if skipPrefix != "" && strings.HasPrefix(s, skipPrefix) {
			return ""
		}
		if s == fileEnv {
			return ""
		}
		return strings.ToLower(strings.TrimPrefix(s, prefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}

	if err := k.UnmarshalWithConf("", out, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}
