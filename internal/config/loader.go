package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables read by Load.
const (
	EnvPrefix  = "PREDICTOR_"
	EnvConfig  = "PREDICTOR_CONFIG"
	EnvDotFile = "PREDICTOR_ENV_FILE"
)

const datasetsKey = "datasets_"

// Load builds a Config by layering defaults, an optional .env file, an
// optional YAML file and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. .env (PREDICTOR_ENV_FILE, default ".env"), never overriding the real env
//  3. file (YAML) if PREDICTOR_CONFIG is set
//  4. env (prefix PREDICTOR_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	dotenv := os.Getenv(EnvDotFile)
	if dotenv == "" {
		dotenv = ".env"
	}
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, dotenv, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
		if err := foldDatasets(k); err != nil {
			return nil, err
		}
	}

	// PREDICTOR_ADDR -> addr, PREDICTOR_DATASETS_MLB -> datasets.MLB
	envProvider := env.Provider(EnvPrefix, ".", envKey)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	cfg.Datasets = map[string]string{}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// foldDatasets rewrites the file's datasets keys to upper case so the env
// layer, which produces upper-case sport keys, overwrites them.
func foldDatasets(k *koanf.Koanf) error {
	raw, ok := k.Get("datasets").(map[string]any)
	if !ok {
		return nil
	}
	folded := make(map[string]any, len(raw))
	for key, v := range raw {
		up := strings.ToUpper(strings.TrimSpace(key))
		if _, dup := folded[up]; dup {
			return fmt.Errorf("%w: datasets: sport %s is listed more than once", ErrInvalidConfig, up)
		}
		folded[up] = v
	}
	k.Delete("datasets")
	for key, v := range folded {
		if err := k.Set("datasets."+key, v); err != nil {
			return fmt.Errorf("%w: datasets: %v", ErrLoadConfig, err)
		}
	}
	return nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, datasetsKey) {
		return "datasets." + strings.ToUpper(s[len(datasetsKey):])
	}
	return lower
}
