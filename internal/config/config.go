package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

type SummaryConfig struct {
	MaxSentences int `json:"maxSentences"`
}

type NotificationsConfig struct {
	Enabled bool   `json:"enabled"`
	Webhook string `json:"webhook"`
	NtfyURL string `json:"ntfy"`
}

type TLSConfig struct {
	Mode     string `json:"mode"`     // "self-signed", "manual", or "" (disabled)
	CertFile string `json:"certFile"` // required for manual
	KeyFile  string `json:"keyFile"`  // required for manual
	CacheDir string `json:"cacheDir"` // for self-signed; defaults to ~/.briefdesk/certs
}

type AuthConfig struct {
	JWTSecret       string `json:"jwtSecret"`
	RefreshTokenTTL string `json:"refreshTokenTTL"`
}

type WebserverConfig struct {
	Enabled bool       `json:"enabled"`
	Port    int        `json:"port"`
	Host    string     `json:"host"`
	TLS     TLSConfig  `json:"tls"`
	Auth    AuthConfig `json:"auth"`
}

type UIConfig struct {
	Enabled bool `json:"enabled"`
}

type Config struct {
	InboxDir      string              `json:"inboxDir"`
	LogDir        string              `json:"logDir"`
	LogLevel      string              `json:"logLevel"`
	Summary       SummaryConfig       `json:"summary"`
	Notifications NotificationsConfig `json:"notifications"`
	Webserver     WebserverConfig     `json:"webserver"`
	UI            UIConfig            `json:"ui"`
}

func Defaults() Config {
	home, _ := os.UserHomeDir()
	return Config{
		InboxDir: filepath.Join(home, ".briefdesk", "inbox"),
		LogDir:   filepath.Join(home, ".briefdesk", "logs"),
		LogLevel: "info",
		Summary:  SummaryConfig{MaxSentences: 3},
		Webserver: WebserverConfig{
			Enabled: true,
			Port:    8080,
			Host:    "127.0.0.1",
			Auth:    AuthConfig{RefreshTokenTTL: "168h"},
		},
		UI: UIConfig{Enabled: true},
	}
}

func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".briefdesk", "config.json")
}

func DBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".briefdesk", "state.db")
}

func CertsDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".briefdesk", "certs")
}

func Load(path string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg as indented JSON to path, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// EnsureJWTSecret generates and persists a random secret the first time the
// webserver runs with auth and no configured secret.
func EnsureJWTSecret(path string, cfg *Config) error {
	if !cfg.Webserver.Enabled || cfg.Webserver.Auth.JWTSecret != "" {
		return nil
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return err
	}
	cfg.Webserver.Auth.JWTSecret = hex.EncodeToString(b)
	return Save(path, *cfg)
}
