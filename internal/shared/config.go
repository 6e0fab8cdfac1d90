package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Secrets may additionally be supplied through the environment (see [ApplyEnv]),
// which takes precedence over the file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Redis       RedisConfig       `toml:"redis"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials for the authorization-code flow.
type SpotifyConfig struct {
	ClientID    string `toml:"client_id"`
	RedirectURI string `toml:"redirect_uri"`
}

// DatabaseConfig contains SQLite connection settings for the token store.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// RedisConfig contains optional Redis settings for the PKCE challenge cache.
// When Addr is empty the in-process store is used instead.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`

	// AppURL is where the callback handler redirects after a completed login.
	AppURL string `toml:"app_url"`

	// Production toggles the Secure attribute on session cookies.
	Production bool `toml:"production"`

	// RequestTimeoutSeconds bounds every outbound call to Spotify and to the
	// identity provider's token endpoint.
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`
}

// envOverrides mirrors the subset of Config that can be supplied via the
// environment, so deployments never have to write secrets to disk.
type envOverrides struct {
	SpotifyClientID    string `envconfig:"SPOTIFY_CLIENT_ID"`
	SpotifyRedirectURI string `envconfig:"SPOTIFY_REDIRECT_URI"`
	RedisAddr          string `envconfig:"REDIS_ADDR"`
	RedisPassword      string `envconfig:"REDIS_PASSWORD"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path,
// then applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := ApplyEnv(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// ApplyEnv overlays environment-provided credentials onto config.
func ApplyEnv(config *Config) error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	if env.SpotifyClientID != "" {
		config.Credentials.Spotify.ClientID = env.SpotifyClientID
	}
	if env.SpotifyRedirectURI != "" {
		config.Credentials.Spotify.RedirectURI = env.SpotifyRedirectURI
	}
	if env.RedisAddr != "" {
		config.Redis.Addr = env.RedisAddr
	}
	if env.RedisPassword != "" {
		config.Redis.Password = env.RedisPassword
	}

	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
