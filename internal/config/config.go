// Package config loads todostudio settings.
//
// Values are layered in priority order:
//  1. Defaults
//  2. The TOML config file ($XDG_CONFIG_HOME/todostudio/config.toml)
//  3. TODOSTUDIO_* environment variables
//  4. Command line flags, applied by the caller
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"

	"github.com/todostudio/todostudio/common"
	"github.com/todostudio/todostudio/internal/notify"
	"github.com/todostudio/todostudio/pkg/logger"
)

const (
	// AppName names the config directory and the keyring service.
	AppName = "todostudio"

	// FileName is the config file name inside the config directory.
	FileName = "config.toml"

	BackendDBus = "dbus"
	BackendNone = "none"
)

var ErrUnknownKeys = errors.New("unknown config keys")

// Config holds the effective settings.
type Config struct {
	Listen        string              `toml:"listen"`
	RPCSecret     string              `toml:"rpc_secret"`
	LogLevel      string              `toml:"log_level"`
	Notifications NotificationsConfig `toml:"notifications"`
	Tasks         TasksConfig         `toml:"tasks"`

	// Path is the file the config was read from, empty when none existed.
	Path string `toml:"-"`
	// Dir holds the config file and the token fallback file.
	Dir string `toml:"-"`
}

type NotificationsConfig struct {
	Backend           string        `toml:"backend"`
	Permission        string        `toml:"permission"`
	PermissionTimeout time.Duration `toml:"permission_timeout"`
}

type TasksConfig struct {
	SeedExamples bool `toml:"seed_examples"`
}

// getenv is swapped in tests.
var getenv = os.Getenv

// Default returns the built-in settings.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

func setDefaults(cfg *Config) {
	cfg.Listen = common.DefaultListenAddr
	cfg.LogLevel = "info"
	cfg.Notifications.Backend = BackendDBus
	cfg.Notifications.Permission = string(notify.PermissionDefault)
	cfg.Notifications.PermissionTimeout = notify.DefaultPermissionTimeout
	cfg.Tasks.SeedExamples = true
}

// DefaultDir returns the per-user config directory.
func DefaultDir() string {
	if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, AppName)
	}
	return filepath.Join(".", "."+AppName)
}

// Load reads the config file at path from fs and applies environment
// overrides. An empty path means $TODOSTUDIO_CONFIG or the default location;
// a missing default file is not an error, a missing explicit one is.
func Load(fs afero.Fs, path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p := getenv(common.ConfigPathEnv); p != "" {
			path, explicit = p, true
		} else {
			path = filepath.Join(DefaultDir(), FileName)
		}
	}
	cfg.Dir = filepath.Dir(path)

	data, err := afero.ReadFile(fs, path)
	switch {
	case err == nil:
		if err := decode(cfg, data); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
		cfg.Path = path
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(cfg *Config, data []byte) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("%w: %s", ErrUnknownKeys, strings.Join(keys, ", "))
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	if v := getenv(common.ListenEnv); v != "" {
		cfg.Listen = v
	}
	if v := getenv(common.SecretEnv); v != "" {
		cfg.RPCSecret = v
	}
	if v := getenv(common.NotifyBackendEnv); v != "" {
		cfg.Notifications.Backend = strings.ToLower(v)
	}
	if boolFromString(getenv(common.DebugEnv)) {
		cfg.LogLevel = "debug"
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	if strings.TrimSpace(c.Listen) == "" {
		result = multierror.Append(result, errors.New("listen: address is empty"))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warning", "warn", "error":
	default:
		result = multierror.Append(result, fmt.Errorf("log_level: unknown level %q", c.LogLevel))
	}
	switch c.Notifications.Backend {
	case BackendDBus, BackendNone:
	default:
		result = multierror.Append(result, fmt.Errorf("notifications.backend: unknown backend %q", c.Notifications.Backend))
	}
	if _, err := notify.ParsePermission(c.Notifications.Permission); err != nil {
		result = multierror.Append(result, fmt.Errorf("notifications.permission: %w", err))
	}
	if c.Notifications.PermissionTimeout < 0 {
		result = multierror.Append(result, errors.New("notifications.permission_timeout: must not be negative"))
	}
	return result.ErrorOrNil()
}

// Level returns the parsed log level.
func (c *Config) Level() logger.Level {
	return logger.ParseLevel(c.LogLevel)
}

// Permission returns the initial notification permission.
func (c *Config) Permission() notify.Permission {
	p, _ := notify.ParsePermission(c.Notifications.Permission)
	return p
}

// Encode renders the config as TOML. The RPC secret is masked unless
// showSecret is set.
func (c *Config) Encode(showSecret bool) (string, error) {
	out := *c
	if !showSecret && out.RPCSecret != "" {
		out.RPCSecret = "********"
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Save writes the config as TOML to path on fs, creating the directory.
func (c *Config) Save(fs afero.Fs, path string) error {
	data, err := c.Encode(true)
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return afero.WriteFile(fs, path, []byte(data), 0600)
}

func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
