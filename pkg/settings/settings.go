// Package settings manages persistent user settings for the newtverify CLI.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// Defaults applied when a setting is unset.
const (
	DefaultRedisAddr = "localhost:6379"
	DefaultSSHPort   = 22
)

// Settings holds persistent user preferences
type Settings struct {
	// RedisAddr is the state database used when --redis is given without a value
	RedisAddr string `json:"redis_addr,omitempty"`

	// RedisDB selects the Redis database holding reported state
	RedisDB int `json:"redis_db,omitempty"`

	SSHUser string `json:"ssh_user,omitempty"`
	SSHPort int    `json:"ssh_port,omitempty"`

	// LabDir is searched for lab definitions referenced by id
	LabDir string `json:"lab_dir,omitempty"`

	// AuditLog overrides the audit log location
	AuditLog string `json:"audit_log,omitempty"`
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "newtverify_settings.json"
	}
	return filepath.Join(home, ".newtverify", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path. A missing file yields empty
// settings.
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetRedisAddr returns the Redis address (with fallback)
func (s *Settings) GetRedisAddr() string {
	if s.RedisAddr != "" {
		return s.RedisAddr
	}
	return DefaultRedisAddr
}

// GetSSHUser returns the SSH user, falling back to $USER.
func (s *Settings) GetSSHUser() string {
	if s.SSHUser != "" {
		return s.SSHUser
	}
	return os.Getenv("USER")
}

// GetSSHPort returns the SSH port (with fallback)
func (s *Settings) GetSSHPort() int {
	if s.SSHPort > 0 {
		return s.SSHPort
	}
	return DefaultSSHPort
}

// GetLabDir returns the lab directory, or "." when unset.
func (s *Settings) GetLabDir() string {
	if s.LabDir != "" {
		return s.LabDir
	}
	return "."
}

// GetAuditLog returns the audit log path. The default lives next to the
// settings file.
func (s *Settings) GetAuditLog() string {
	if s.AuditLog != "" {
		return s.AuditLog
	}
	return filepath.Join(filepath.Dir(DefaultSettingsPath()), "audit.log")
}

// Keys returns the settable keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var setters = map[string]func(s *Settings, v string) error{
	"redis_addr": func(s *Settings, v string) error { s.RedisAddr = v; return nil },
	"redis_db": func(s *Settings, v string) error {
		n, err := parseNonNegative(v)
		s.RedisDB = n
		return err
	},
	"ssh_user": func(s *Settings, v string) error { s.SSHUser = v; return nil },
	"ssh_port": func(s *Settings, v string) error {
		n, err := parseNonNegative(v)
		if err == nil && n > 65535 {
			err = fmt.Errorf("port %d out of range", n)
		}
		s.SSHPort = n
		return err
	},
	"lab_dir":   func(s *Settings, v string) error { s.LabDir = v; return nil },
	"audit_log": func(s *Settings, v string) error { s.AuditLog = v; return nil },
}

// Set assigns value to the named key. An empty value resets the key.
func (s *Settings) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	next := *s
	if err := set(&next, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*s = next
	return nil
}

func parseNonNegative(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", v)
	}
	if n < 0 {
		return 0, fmt.Errorf("%d must not be negative", n)
	}
	return n, nil
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
