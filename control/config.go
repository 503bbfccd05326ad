// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Daemon configuration file, validation, and a thread-safe store with reload
// propagation.

package control

import (
	"fmt"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/momentics/cndevent/api"
)

// Waiter backends understood by the daemon.
const (
	WaiterSelect = "select"
	WaiterEpoll  = "epoll"
)

// Config is the daemon configuration.
type Config struct {
	// MaxEvents is the fixed capacity of the watch table.
	MaxEvents int `yaml:"max_events"`
	// Waiter selects the readiness primitive, see WaiterSelect and WaiterEpoll.
	Waiter string `yaml:"waiter"`
	// LogLevel is the only setting applied on hot reload.
	LogLevel string `yaml:"log_level"`
	// Socket is the control socket path.
	Socket string `yaml:"socket"`
	// CPU pins the loop thread to one logical CPU; -1 leaves it unpinned.
	CPU int `yaml:"cpu"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		MaxEvents: 32,
		Waiter:    WaiterSelect,
		LogLevel:  "info",
		Socket:    "/tmp/cnd.sock",
		CPU:       -1,
	}
}

// LoadConfig reads path and overlays it on DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field ranges.
func (c Config) Validate() error {
	if c.MaxEvents <= 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "max_events must be positive").
			WithContext("max_events", c.MaxEvents).
			Wrap(api.ErrInvalidArgument)
	}
	switch c.Waiter {
	case WaiterSelect, WaiterEpoll:
	default:
		return api.NewError(api.ErrCodeInvalidArgument, "unknown waiter").
			WithContext("waiter", c.Waiter).
			Wrap(api.ErrInvalidArgument)
	}
	if c.CPU < -1 {
		return api.NewError(api.ErrCodeInvalidArgument, "cpu must be -1 or a cpu index").
			WithContext("cpu", c.CPU).
			Wrap(api.ErrInvalidArgument)
	}
	if c.Socket == "" {
		return api.NewError(api.ErrCodeInvalidArgument, "socket path is empty").
			Wrap(api.ErrInvalidArgument)
	}
	return nil
}

// ConfigStore holds the current configuration and notifies listeners on change.
type ConfigStore struct {
	mu        sync.RWMutex
	config    Config
	listeners []func(Config)
}

// NewConfigStore initializes a store with cfg.
func NewConfigStore(cfg Config) *ConfigStore {
	return &ConfigStore{config: cfg}
}

// GetSnapshot returns a copy of the current configuration.
func (cs *ConfigStore) GetSnapshot() Config {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.config
}

// SetConfig replaces the configuration and dispatches reload listeners.
// Listeners run synchronously, outside the store lock.
func (cs *ConfigStore) SetConfig(cfg Config) {
	cs.mu.Lock()
	cs.config = cfg
	listeners := slices.Clone(cs.listeners)
	cs.mu.Unlock()
	for _, fn := range listeners {
		fn(cfg)
	}
}

// OnReload registers a listener called on config changes.
func (cs *ConfigStore) OnReload(fn func(Config)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}
