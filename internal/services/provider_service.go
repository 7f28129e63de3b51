package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"

	"dayflow/internal/models"
)

// ProviderService loads model providers from providers.json and hot-reloads
// the file on change, so API keys and model choices can rotate without a
// restart.
type ProviderService struct {
	path      string
	mu        sync.RWMutex
	providers []models.Provider
	watcher   *fsnotify.Watcher
}

// NewProviderService loads the provider file and starts watching it.
func NewProviderService(path string) (*ProviderService, error) {
	s := &ProviderService{path: path}
	if err := s.reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("⚠️ [PROVIDERS] file watching unavailable: %v", err)
		return s, nil
	}
	if err := watcher.Add(path); err != nil {
		log.Printf("⚠️ [PROVIDERS] cannot watch %s: %v", path, err)
		watcher.Close()
		return s, nil
	}
	s.watcher = watcher
	go s.watch()
	return s, nil
}

func (s *ProviderService) watch() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if err := s.reload(); err != nil {
					log.Printf("❌ [PROVIDERS] reload failed: %v", err)
				} else {
					log.Printf("🔄 [PROVIDERS] reloaded %s", s.path)
				}
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️ [PROVIDERS] watch error: %v", err)
		}
	}
}

func (s *ProviderService) reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read providers file: %w", err)
	}
	var cfg models.ProvidersConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse providers file: %w", err)
	}
	enabled := make([]models.Provider, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		if p.Enabled {
			enabled = append(enabled, p)
		}
	}
	if len(enabled) == 0 {
		return fmt.Errorf("no enabled providers in %s", s.path)
	}

	s.mu.Lock()
	s.providers = enabled
	s.mu.Unlock()
	log.Printf("✅ [PROVIDERS] %d provider(s) active", len(enabled))
	return nil
}

// Default returns the provider marked default, or the first enabled one.
func (s *ProviderService) Default() (models.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.providers {
		if p.Default {
			return p, nil
		}
	}
	if len(s.providers) > 0 {
		return s.providers[0], nil
	}
	return models.Provider{}, fmt.Errorf("no providers configured")
}

// ByName returns the named provider.
func (s *ProviderService) ByName(name string) (models.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.providers {
		if p.Name == name {
			return p, nil
		}
	}
	return models.Provider{}, fmt.Errorf("provider %q not found", name)
}

// All returns the enabled providers.
func (s *ProviderService) All() []models.Provider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Provider, len(s.providers))
	copy(out, s.providers)
	return out
}

// Close stops the file watcher.
func (s *ProviderService) Close() error {
	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
