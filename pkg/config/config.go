// Package config loads the service configuration once at startup. Values
// come from an optional TOML file and are overridden by environment
// variables, which may themselves be populated from a .env file. The
// resulting Config is treated as immutable and handed to each component's
// constructor.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the full set of settings used by the service.
type Config struct {
	Spotify Spotify `toml:"spotify"`
	Weather Weather `toml:"weather"`
	OpenAI  OpenAI  `toml:"openai"`
	Server  Server  `toml:"server"`
}

// Spotify holds the OAuth client registration.
type Spotify struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	AuthURL      string `toml:"auth_url"`
	TokenURL     string `toml:"token_url"`
}

// Weather configures the OpenWeatherMap client.
type Weather struct {
	APIKey string `toml:"api_key"`
	URL    string `toml:"url"`
}

// OpenAI configures the mood classifier.
type OpenAI struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

// Server holds the HTTP surface settings.
type Server struct {
	Addr          string `toml:"addr"`
	AllowedOrigin string `toml:"allowed_origin"`
	// FrontendURL receives the access token after login. Defaults to
	// AllowedOrigin.
	FrontendURL     string   `toml:"frontend_url"`
	UpstreamTimeout Duration `toml:"upstream_timeout"`
	LogLevel        string   `toml:"log_level"`
}

// Duration is a time.Duration that decodes from a TOML string such as "10s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns a Config with every optional value populated.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8000",
			AllowedOrigin:   "http://localhost:5173",
			UpstreamTimeout: Duration{10 * time.Second},
			LogLevel:        "info",
		},
	}
}

// LoadDotEnv populates the environment from the given .env files. Files
// that do not exist are skipped; variables already set are not replaced.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads path when it is non-empty and exists, then applies
// environment overrides. The result is not validated; call Validate.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if cfg.Server.FrontendURL == "" {
		cfg.Server.FrontendURL = cfg.Server.AllowedOrigin
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"SPOTIFY_CLIENT_ID":      &c.Spotify.ClientID,
		"SPOTIFY_CLIENT_SECRET":  &c.Spotify.ClientSecret,
		"SPOTIFY_REDIRECT_URI":   &c.Spotify.RedirectURI,
		"SPOTIFY_AUTH_URL":       &c.Spotify.AuthURL,
		"SPOTIFY_TOKEN_URL":      &c.Spotify.TokenURL,
		"OPENWEATHERMAP_API_KEY": &c.Weather.APIKey,
		"OPENWEATHERMAP_URL":     &c.Weather.URL,
		"OPENAI_API_KEY":         &c.OpenAI.APIKey,
		"OPENAI_MODEL":           &c.OpenAI.Model,
		"OPENAI_BASE_URL":        &c.OpenAI.BaseURL,
		"ADDR":                   &c.Server.Addr,
		"ALLOWED_ORIGIN":         &c.Server.AllowedOrigin,
		"FRONTEND_URL":           &c.Server.FrontendURL,
		"LOG_LEVEL":              &c.Server.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	if v, ok := lookup("UPSTREAM_TIMEOUT"); ok && v != "" {
		if err := c.Server.UpstreamTimeout.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("UPSTREAM_TIMEOUT: %w", err)
		}
	}
	return nil
}

// Validate reports every required value that is missing.
func (c Config) Validate() error {
	var errs []error
	required := []struct {
		name, value string
	}{
		{"SPOTIFY_CLIENT_ID", c.Spotify.ClientID},
		{"SPOTIFY_CLIENT_SECRET", c.Spotify.ClientSecret},
		{"SPOTIFY_REDIRECT_URI", c.Spotify.RedirectURI},
		{"OPENWEATHERMAP_API_KEY", c.Weather.APIKey},
		{"OPENAI_API_KEY", c.OpenAI.APIKey},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%s must be set", r.name))
		}
	}
	return errors.Join(errs...)
}
