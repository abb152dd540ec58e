package tenant

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"
)

type AppConfig struct {
	AppID   string `json:"app_id"`
	AppName string `json:"app_name"`
}

type AppsFile struct {
	Apps []AppConfig `json:"apps"`
}

// Registry lists the tenants allowed to name themselves via X-App-ID. An
// empty registry accepts any tenant id.
type Registry struct {
	mu   sync.RWMutex
	apps map[string]*AppConfig
}

func NewRegistry() *Registry {
	return &Registry{
		apps: make(map[string]*AppConfig),
	}
}

func LoadFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read apps config: %w", err)
	}

	var file AppsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse apps config: %w", err)
	}

	registry := NewRegistry()
	for i := range file.Apps {
		if file.Apps[i].AppID == "" {
			return nil, fmt.Errorf("apps config entry %d has no app_id", i)
		}
		registry.Register(&file.Apps[i])
	}
	return registry, nil
}

// LoadOptional is LoadFromFile, except that a missing file yields an empty
// registry.
func LoadOptional(path string) (*Registry, error) {
	reg, err := LoadFromFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewRegistry(), nil
	}
	return reg, err
}

func (r *Registry) Register(cfg *AppConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[cfg.AppID] = cfg
}

func (r *Registry) Get(appID string) *AppConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.apps[appID]
}

// Allows reports whether appID may be used as a tenant.
func (r *Registry) Allows(appID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.apps) == 0 {
		return true
	}
	_, ok := r.apps[appID]
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.apps)
}

// IDs returns the registered app ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.apps))
	for id := range r.apps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
