// Package config loads the optional stateview.yaml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-drift/stateview/internal/randomuser"
	sverrors "github.com/go-drift/stateview/pkg/errors"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the project directory.
const FileName = "stateview.yaml"

// Defaults applied by Resolve.
const (
	DefaultMicrointeraction = 200 * time.Millisecond
	DefaultAddr             = "127.0.0.1:8080"
	DefaultAvatarSize       = 128

	minAvatarSize = 16
	maxAvatarSize = 1024
)

// Config represents the optional stateview.yaml configuration.
type Config struct {
	API    APIConfig    `yaml:"api"`
	UI     UIConfig     `yaml:"ui"`
	Server ServerConfig `yaml:"server"`
	Avatar AvatarConfig `yaml:"avatar"`
}

// APIConfig configures the upstream profile API.
type APIConfig struct {
	URL     string `yaml:"url,omitempty"`
	Timeout string `yaml:"timeout,omitempty"`
}

// UIConfig configures the card page.
type UIConfig struct {
	Microinteraction string `yaml:"microinteraction,omitempty"`
	Gender           string `yaml:"gender,omitempty"`
}

// ServerConfig configures `stateview serve`.
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// AvatarConfig configures embedded profile pictures.
type AvatarConfig struct {
	Size    int   `yaml:"size,omitempty"`
	Enabled *bool `yaml:"enabled,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root             string
	APIURL           string
	APITimeout       time.Duration
	Microinteraction time.Duration
	Gender           randomuser.Gender
	Addr             string
	AvatarSize       int
	AvatarEnabled    bool
}

// LoadOptional reads stateview.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, configError(fmt.Errorf("failed to read %s: %w", FileName, err))
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, configError(fmt.Errorf("failed to parse %s: %w", FileName, err))
	}

	return &cfg, nil
}

// Resolve loads stateview.yaml (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	apiURL := strings.TrimSpace(cfg.API.URL)
	if apiURL == "" {
		apiURL = randomuser.DefaultURL
	}

	timeout, err := duration("api.timeout", cfg.API.Timeout, randomuser.DefaultTimeout)
	if err != nil {
		return nil, err
	}

	micro, err := duration("ui.microinteraction", cfg.UI.Microinteraction, DefaultMicrointeraction)
	if err != nil {
		return nil, err
	}

	gender, err := randomuser.ParseGender(cfg.UI.Gender)
	if err != nil {
		return nil, configError(fmt.Errorf("ui.gender: %w", err))
	}

	addr := strings.TrimSpace(cfg.Server.Addr)
	if addr == "" {
		addr = DefaultAddr
	}

	size := cfg.Avatar.Size
	if size == 0 {
		size = DefaultAvatarSize
	}
	if size < minAvatarSize || size > maxAvatarSize {
		return nil, configError(fmt.Errorf("avatar.size must be between %d and %d (got %d)", minAvatarSize, maxAvatarSize, size))
	}

	enabled := true
	if cfg.Avatar.Enabled != nil {
		enabled = *cfg.Avatar.Enabled
	}

	return &Resolved{
		Root:             dir,
		APIURL:           apiURL,
		APITimeout:       timeout,
		Microinteraction: micro,
		Gender:           gender,
		Addr:             addr,
		AvatarSize:       size,
		AvatarEnabled:    enabled,
	}, nil
}

func duration(key, raw string, def time.Duration) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, configError(fmt.Errorf("%s: %w", key, err))
	}
	if d <= 0 {
		return 0, configError(fmt.Errorf("%s must be positive (got %s)", key, raw))
	}
	return d, nil
}

func configError(err error) error {
	return &sverrors.ViewError{
		Op:        "config.Resolve",
		Kind:      sverrors.KindConfig,
		Err:       err,
		Timestamp: time.Now(),
	}
}
