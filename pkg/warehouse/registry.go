package warehouse

import (
	"context"
	"slices"
	"sync"
)

// AdapterInfo describes a registered warehouse adapter.
type AdapterInfo struct {
	Type        string `json:"type" yaml:"type"`                 // "redshift", "postgres"
	DisplayName string `json:"display_name" yaml:"display_name"` // "Amazon Redshift"
	DefaultPort int    `json:"default_port" yaml:"default_port"`
}

// AdapterRegistration pairs adapter info with the function that opens connections.
type AdapterRegistration struct {
	Info    AdapterInfo
	Factory func(ctx context.Context, cfg *Config) (Conn, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]AdapterRegistration)
)

// Register is called by each adapter's init() function.
func Register(reg AdapterRegistration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[reg.Info.Type] = reg
}

// RegisteredAdapters returns info for all registered adapters, sorted by type.
func RegisteredAdapters() []AdapterInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]AdapterInfo, 0, len(registry))
	for _, reg := range registry {
		result = append(result, reg.Info)
	}
	slices.SortFunc(result, func(a, b AdapterInfo) int {
		if a.Type < b.Type {
			return -1
		}
		if a.Type > b.Type {
			return 1
		}
		return 0
	})
	return result
}

// GetRegistration returns the registration for a warehouse type.
func GetRegistration(whType string) (AdapterRegistration, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	reg, ok := registry[whType]
	return reg, ok
}
