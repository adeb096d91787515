package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Supabase SupabaseConfig
	AI       AIConfig
	Database DatabaseConfig
	UI       UIConfig
}

// SupabaseConfig holds the hosted platform settings. Both values may be
// empty; the app then runs with platform calls disabled rather than
// failing at startup.
type SupabaseConfig struct {
	URL     string
	AnonKey string `mapstructure:"anon_key"`
}

// AIConfig holds chat-completion endpoint settings. A missing key is a
// valid state: profile generation falls back to defaults.
type AIConfig struct {
	APIKeyEnv string `mapstructure:"api_key_env"`
	APIKey    string `mapstructure:"api_key"`
	Model     string
	BaseURL   string `mapstructure:"base_url"`
}

// DatabaseConfig holds the local sqlite cache settings.
type DatabaseConfig struct {
	Path string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	DateFormat string `mapstructure:"date_format"`
}

// Load reads configuration from file and env. Env var overrides use prefix
// PALPAL_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.anon_key", "")
	v.SetDefault("ai.api_key_env", "OPENROUTER_API_KEY")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "openrouter/auto")
	v.SetDefault("ai.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "palpal", "palpal.db"))
	v.SetDefault("ui.date_format", "02 Jan 2006")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("PALPAL_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "palpal"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("PALPAL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory
// if needed. Used by the settings view for non-sensitive preferences; API
// keys belong in env vars or the secrets store.
func Save(cfg Config) error {
	path := os.Getenv("PALPAL_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "palpal", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("supabase.url", cfg.Supabase.URL)
	v.Set("supabase.anon_key", cfg.Supabase.AnonKey)
	v.Set("ai.api_key_env", cfg.AI.APIKeyEnv)
	v.Set("ai.api_key", cfg.AI.APIKey)
	v.Set("ai.model", cfg.AI.Model)
	v.Set("ai.base_url", cfg.AI.BaseURL)
	v.Set("database.path", cfg.Database.Path)
	v.Set("ui.date_format", cfg.UI.DateFormat)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
