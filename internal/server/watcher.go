package server

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thelogbook/logbook/internal/config"
	"github.com/thelogbook/logbook/internal/modules"
)

// ConfigWatcher monitors the config file and hot-reloads module
// toggles. Other settings require a restart.
type ConfigWatcher struct {
	configPath   string
	registry     *modules.Registry
	watcher      *fsnotify.Watcher
	stopChan     chan struct{}
	reloadChan   chan struct{}
	debounceTime time.Duration
}

// NewConfigWatcher creates a watcher for configPath.
func NewConfigWatcher(configPath string, registry *modules.Registry) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	return &ConfigWatcher{
		configPath:   absPath,
		registry:     registry,
		watcher:      watcher,
		stopChan:     make(chan struct{}),
		reloadChan:   make(chan struct{}, 1),
		debounceTime: 2 * time.Second,
	}, nil
}

// Start begins monitoring. Watching the directory rather than the file
// survives editors that replace the file on save.
func (cw *ConfigWatcher) Start(ctx context.Context) error {
	if err := cw.watcher.Add(filepath.Dir(cw.configPath)); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}
	slog.Info("Starting configuration watcher", "config_path", cw.configPath)
	go cw.watchLoop(ctx)
	go cw.reloadLoop(ctx)
	return nil
}

// Stop stops the watcher.
func (cw *ConfigWatcher) Stop() {
	close(cw.stopChan)
	_ = cw.watcher.Close()
}

func (cw *ConfigWatcher) watchLoop(ctx context.Context) {
	configFile := filepath.Base(cw.configPath)
	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stopChan:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != configFile {
				continue
			}
			switch {
			case event.Op&fsnotify.Write == fsnotify.Write,
				event.Op&fsnotify.Create == fsnotify.Create,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				slog.Debug("Config file change detected", "file", event.Name)
				cw.triggerReload()
			case event.Op&fsnotify.Remove == fsnotify.Remove:
				slog.Warn("Config file removed", "file", event.Name)
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Config watcher error", "error", err)
		}
	}
}

func (cw *ConfigWatcher) triggerReload() {
	select {
	case cw.reloadChan <- struct{}{}:
	default:
	}
}

func (cw *ConfigWatcher) reloadLoop(ctx context.Context) {
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-cw.stopChan:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-cw.reloadChan:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(cw.debounceTime, cw.reload)
		}
	}
}

// reload re-reads the config file and applies the module toggles.
func (cw *ConfigWatcher) reload() {
	cfg, err := config.Load(cw.configPath)
	if err != nil {
		slog.Error("Config reload failed", "error", err)
		return
	}
	cw.ApplyModules(cfg)
	slog.Info("Module toggles reloaded", "enabled", cfg.Modules.Enabled)
}

// ApplyModules reconciles the registry with the config's enabled list.
func (cw *ConfigWatcher) ApplyModules(cfg *config.Config) {
	enabled := make(map[modules.Kind]bool, len(cfg.Modules.Enabled))
	for _, name := range cfg.Modules.Enabled {
		kind, err := modules.Parse(name)
		if err != nil {
			slog.Warn("Ignoring unknown module in config", "module", name)
			continue
		}
		enabled[kind] = true
	}
	for _, kind := range modules.All() {
		cw.registry.SetEnabled(kind, enabled[kind])
	}
}
