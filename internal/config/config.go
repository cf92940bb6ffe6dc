/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted as YAML in the user
// config directory. Environment variables are read-only overrides applied at
// load time. The backend DSN carries credentials and lives in the OS keychain.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Library       LibraryConfig `yaml:"library"`
	Backend       BackendConfig `yaml:"backend"`
	Logging       LoggingConfig `yaml:"logging"`
}

type GeneralConfig struct {
	TelemetryOptIn   bool   `yaml:"telemetry_opt_in"`
	Theme            string `yaml:"theme"`      // "system" | "light" | "dark"
	Background       string `yaml:"background"` // dots | grid | pixels | clear
	DefaultEdgeColor string `yaml:"default_edge_color"`
}

type LibraryConfig struct {
	// Path of the SQLite library; empty means the default location.
	Path string `yaml:"path"`
}

type BackendConfig struct {
	Enabled    bool   `yaml:"enabled"`
	BaseURL    string `yaml:"base_url"`
	ListenAddr string `yaml:"listen_addr"`
	TimeoutMs  int    `yaml:"timeout_ms"`
	// DSN is never written to disk; see Save.
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// CurrentVersion is the config_version written by this build.
const CurrentVersion = 1

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: CurrentVersion,
		General:       GeneralConfig{Theme: "system", Background: "dots", DefaultEdgeColor: "#64748b"},
		Backend:       BackendConfig{BaseURL: "http://localhost:8080", ListenAddr: ":8080", TimeoutMs: 10000},
		Logging:       LoggingConfig{Level: "info", Format: "text"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath     = "TDW_CONFIG"
	EnvTheme          = "TDW_THEME"
	EnvLibrary        = "TDW_LIBRARY"
	EnvTelemetryOptIn = "TDW_TELEMETRY_OPT_IN"
	EnvBackendEnabled = "TDW_BACKEND_ENABLED"
	EnvBackendURL     = "TDW_BACKEND_URL"
	EnvBackendListen  = "TDW_BACKEND_LISTEN"
	EnvBackendTimeout = "TDW_BACKEND_TIMEOUT_MS"
	EnvBackendDSN     = "TDW_BACKEND_DSN"
	EnvLogLevel       = "TDW_LOG_LEVEL"
	EnvLogFormat      = "TDW_LOG_FORMAT"
	EnvLogSource      = "TDW_LOG_SOURCE"
	EnvLogFile        = "TDW_LOG_FILE"
)

// envKeys maps dotted setting keys to their override variables.
var envKeys = map[string]string{
	"general.theme":            EnvTheme,
	"general.telemetry_opt_in": EnvTelemetryOptIn,
	"library.path":             EnvLibrary,
	"backend.enabled":          EnvBackendEnabled,
	"backend.base_url":         EnvBackendURL,
	"backend.listen_addr":      EnvBackendListen,
	"backend.timeout_ms":       EnvBackendTimeout,
	"backend.dsn":              EnvBackendDSN,
	"logging.level":            EnvLogLevel,
	"logging.format":           EnvLogFormat,
	"logging.source":           EnvLogSource,
	"logging.file":             EnvLogFile,
}

// ErrNoDSN reports that no backend DSN is configured in env or keychain.
var ErrNoDSN = errors.New("no backend dsn configured")

const (
	keyringService = "topodraw"
	keyringDSN     = "backend_dsn"
)

// SecretStore abstracts the keychain so tests can stub it.
type SecretStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements SecretStore with the OS keychain.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

var secrets SecretStore = osKeyring{}

// ConfigPath returns the per-user config file path, honouring TDW_CONFIG.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot resolve config directory: %w", err)
	}
	return filepath.Join(base, "topodraw", "config.yaml"), nil
}

// Load reads the config file (if present) over the defaults, then applies
// environment overrides. The DSN comes from TDW_BACKEND_DSN or the keychain
// and is returned separately; it may be empty.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, "", fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	} else if !errors.Is(err, os.ErrNotExist) {
		return cfg, "", fmt.Errorf("read %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	dsn, _ := DSN()
	return cfg, dsn, nil
}

// DSN returns the backend DSN from env or keychain, or ErrNoDSN.
func DSN() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvBackendDSN)); v != "" {
		return v, nil
	}
	v, err := secrets.Get(keyringService, keyringDSN)
	if err != nil || v == "" {
		return "", ErrNoDSN
	}
	return v, nil
}

// Save writes the YAML atomically and stores a non-empty dsn in the keychain.
func Save(cfg AppConfig, dsn string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	tmp := fmt.Sprintf("%s.tmp-%d-%d", path, os.Getpid(), rand.Int())
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace config: %w", err)
	}
	if dsn != "" {
		if err := secrets.Set(keyringService, keyringDSN, dsn); err != nil {
			return fmt.Errorf("store dsn in keychain: %w", err)
		}
	}
	return nil
}

// ForgetDSN removes the stored DSN from the keychain.
func ForgetDSN() error {
	if err := secrets.Delete(keyringService, keyringDSN); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	if src.General.Background != "" {
		dst.General.Background = src.General.Background
	}
	if src.General.DefaultEdgeColor != "" {
		dst.General.DefaultEdgeColor = src.General.DefaultEdgeColor
	}
	// booleans: copy directly from the file so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	dst.Backend.Enabled = src.Backend.Enabled
	if src.Library.Path != "" {
		dst.Library.Path = strings.TrimSpace(src.Library.Path)
	}
	if src.Backend.BaseURL != "" {
		dst.Backend.BaseURL = src.Backend.BaseURL
	}
	if src.Backend.ListenAddr != "" {
		dst.Backend.ListenAddr = src.Backend.ListenAddr
	}
	if src.Backend.TimeoutMs != 0 {
		dst.Backend.TimeoutMs = src.Backend.TimeoutMs
	}
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	env := func(k string) string { return strings.TrimSpace(os.Getenv(k)) }
	if v := env(EnvTheme); v != "" {
		cfg.General.Theme = strings.ToLower(v)
	}
	if v := env(EnvTelemetryOptIn); v != "" {
		cfg.General.TelemetryOptIn = parseBool(v)
	}
	if v := env(EnvLibrary); v != "" {
		cfg.Library.Path = v
	}
	if v := env(EnvBackendEnabled); v != "" {
		cfg.Backend.Enabled = parseBool(v)
	}
	if v := env(EnvBackendURL); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := env(EnvBackendListen); v != "" {
		cfg.Backend.ListenAddr = v
	}
	if v := env(EnvBackendTimeout); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Backend.TimeoutMs = n
		}
	}
	if v := env(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := env(EnvLogFormat); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := env(EnvLogSource); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := env(EnvLogFile); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the setting (dotted key, e.g.
// "backend.base_url") is currently controlled by the environment.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}
