package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the main configuration carrier for the rotation enforcer.
type Config struct {
	App      AppConfig      `toml:"app"`
	Crcon    CrconConfig    `toml:"crcon"`
	Rcon     RconConfig     `toml:"rcon"`
	Rotation RotationConfig `toml:"rotation"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	LogPath  string `toml:"log_path"`
	HTTPAddr string `toml:"http_addr"`
	Timezone string `toml:"timezone"`
}

// Location resolves the configured time zone identifier.
func (a AppConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(a.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, &ConfigError{Key: "app.timezone", Reason: fmt.Sprintf("unknown time zone %q", name)}
	}
	return loc, nil
}

// CrconConfig describes the structured HTTP administration transport.
// Exactly one auth mode is used: bearer_token when set, otherwise a
// username+password login session.
type CrconConfig struct {
	Enabled            bool   `toml:"enabled"`
	BaseURL            string `toml:"base_url"`
	APIPrefix          string `toml:"api_prefix"`
	Username           string `toml:"username"`
	Password           string `toml:"password"`
	BearerToken        string `toml:"bearer_token"`
	TimeoutSeconds     int    `toml:"timeout_seconds"`
	InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
}

// RconConfig describes the raw-socket fallback transport.
type RconConfig struct {
	Enabled        bool   `toml:"enabled"`
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	Password       string `toml:"password"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// RotationConfig points at the weekly schedule document and carries the
// enforcement tunables.
type RotationConfig struct {
	SchedulePath string          `toml:"schedule_path"`
	NameOverride string          `toml:"name_override"`
	CycleAnchor  string          `toml:"cycle_anchor"`
	Rejection    RejectionConfig `toml:"rejection"`
}

// RejectionConfig extends the built-in rejection-text classification; the
// remote server's error wording is not a stable contract.
type RejectionConfig struct {
	NotApplicablePatterns []string `toml:"not_applicable_patterns"`
	InvalidNamePatterns   []string `toml:"invalid_name_patterns"`
}

// ConfigError marks a required setting as absent or unusable. It is
// raised at startup and never recovered.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Key, e.Reason)
}

type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

// fieldDefault describes one field's default-value rule.
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
