package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all bookself configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	AI     AIConfig     `toml:"ai"`
	Decay  DecayConfig  `toml:"decay"`
	Setup  SetupConfig  `toml:"setup"`
}

type ServerConfig struct {
	Bind           string   `toml:"bind"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

type AIConfig struct {
	Provider     string `toml:"provider"`      // "gemini", "anthropic", "mock"
	Model        string `toml:"model"`         // text generation model
	ImageModel   string `toml:"image_model"`   // cover/avatar generation model
	GeminiKey    string `toml:"gemini_key"`
	AnthropicKey string `toml:"anthropic_key"`
	QuizLength   int    `toml:"quiz_length"` // questions per generated quiz
}

type DecayConfig struct {
	IntervalSeconds int `toml:"interval_seconds"`
}

type SetupConfig struct {
	UsernameDebounceMS int `toml:"username_debounce_ms"`
	HintDebounceMS     int `toml:"hint_debounce_ms"`
}

// Default returns a Config with the design values.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind:           "127.0.0.1",
			Port:           8787,
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		AI: AIConfig{
			Provider:   "gemini",
			Model:      "gemini-3-flash-preview",
			ImageModel: "gemini-2.5-flash-image",
			QuizLength: 10,
		},
		Decay: DecayConfig{
			IntervalSeconds: 10,
		},
		Setup: SetupConfig{
			UsernameDebounceMS: 500,
			HintDebounceMS:     1000,
		},
	}
}

// Load reads a TOML config file over the defaults. A missing file is
// not an error; the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// DecayInterval returns the decay cadence as a duration.
func (c *Config) DecayInterval() time.Duration {
	return time.Duration(c.Decay.IntervalSeconds) * time.Second
}

// UsernameDebounce returns the username-check debounce window.
func (c *Config) UsernameDebounce() time.Duration {
	return time.Duration(c.Setup.UsernameDebounceMS) * time.Millisecond
}

// HintDebounce returns the roadmap hint debounce window.
func (c *Config) HintDebounce() time.Duration {
	return time.Duration(c.Setup.HintDebounceMS) * time.Millisecond
}
