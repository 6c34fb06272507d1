package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ConfigFileEnv points to an optional YAML file using the same keys as the
// environment, lowercased (smtp_host, manychat_token, ...).
const ConfigFileEnv = "ASTRO_CONFIG"

// list keys arrive from the environment as comma separated strings.
var listKeys = map[string]bool{
	"delivery_channels": true,
	"cors_origins":      true,
	"smtp_bcc":          true,
}

var knownKeys = map[string]bool{
	"port":                 true,
	"log_level":            true,
	"app_env":              true,
	"webhook_secret":       true,
	"webhook_rate_limit":   true,
	"delivery_channels":    true,
	"cors_origins":         true,
	"smtp_host":            true,
	"smtp_port":            true,
	"smtp_user":            true,
	"smtp_pass":            true,
	"smtp_from":            true,
	"smtp_bcc":             true,
	"smtp_tls":             true,
	"smtp_subject":         true,
	"smtp_timeout":         true,
	"smtp_required":        true,
	"manychat_token":       true,
	"manychat_send_url":    true,
	"manychat_payload":     true,
	"manychat_message_tag": true,
	"manychat_timeout":     true,
}

// Load builds a Config by layering, low -> high precedence:
//  1. defaults (New)
//  2. .env in the working directory, if present
//  3. YAML file named by ASTRO_CONFIG
//  4. environment variables
func Load() (*Config, error) {
	// .env é opcional; em produção as variáveis vêm do ambiente.
	_ = godotenv.Load()
	return LoadFile(os.Getenv(ConfigFileEnv))
}

// LoadFile is Load without the .env step. path may be empty.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(key)
		if !knownKeys[key] {
			return "", nil
		}
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, strings.TrimSpace(value)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
