package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/nandakumarbm26/Products-RestAPI/pkg/logger"
)

// ConfigWatcher reloads the config file when it changes on disk and hands the new
// configuration to subscribers. Only settings that are safe to change at runtime are
// applied by subscribers; everything else takes effect on restart.
type ConfigWatcher struct {
	path  string
	viper *viper.Viper
	log   *zap.Logger

	mu          sync.Mutex
	subscribers []func(*Config)
	closed      bool
}

// WatchConfig starts watching the file cfg was loaded from. searchPaths are the same paths
// given to LoadConfig so reloads resolve defaults identically.
func WatchConfig(cfg *Config, searchPaths ...string) (*ConfigWatcher, error) {
	if cfg == nil || cfg.Source() == "" {
		return nil, errors.New("config: no config file to watch")
	}

	path := filepath.Clean(cfg.Source())
	v := newViper(searchPaths...)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	w := &ConfigWatcher{
		path:  path,
		viper: v,
		log:   logger.WithModule("config"),
	}
	v.OnConfigChange(w.reload)
	v.WatchConfig()
	return w, nil
}

// OnChange registers fn to receive every successfully reloaded configuration.
func (w *ConfigWatcher) OnChange(fn func(*Config)) {
	if w == nil || fn == nil {
		return
	}
	w.mu.Lock()
	w.subscribers = append(w.subscribers, fn)
	w.mu.Unlock()
}

// Close detaches every subscriber. viper keeps its file watch for the life of the
// process, so later changes are read but no longer delivered.
func (w *ConfigWatcher) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	w.closed = true
	w.subscribers = nil
	w.mu.Unlock()
	return nil
}

func (w *ConfigWatcher) reload(event fsnotify.Event) {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}

	cfg, err := decodeConfig(w.viper)
	if err != nil {
		w.log.Warn("config reload rejected", zap.String("path", w.path), zap.Error(err))
		return
	}

	w.log.Info("config reloaded", zap.String("path", w.path), zap.String("op", event.Op.String()))

	w.mu.Lock()
	subscribers := append(([]func(*Config))(nil), w.subscribers...)
	w.mu.Unlock()

	for _, fn := range subscribers {
		fn(cfg)
	}
}

// ApplyLogLevel is a subscriber that keeps the running logger level in sync with server.log_level.
func ApplyLogLevel(cfg *Config) {
	if cfg == nil {
		return
	}
	previous := logger.Level()
	level := logger.SetLevel(cfg.Server.LogLevel)
	if level != previous {
		logger.WithModule("config").Info("log level changed",
			zap.String("from", previous.String()),
			zap.String("to", level.String()),
		)
	}
}
