package warehouse

import (
	"context"
	"fmt"

	"github.com/ekaya-inc/songplay-etl/pkg/apperrors"
)

// Resolve looks up the adapter for cfg.Type and returns a copy of cfg with a
// zero port replaced by the adapter's default.
func Resolve(cfg *Config) (*Config, AdapterRegistration, error) {
	reg, ok := GetRegistration(cfg.Type)
	if !ok {
		return nil, AdapterRegistration{}, fmt.Errorf("%w: %s (not compiled in)", apperrors.ErrUnsupportedWarehouse, cfg.Type)
	}

	resolved := *cfg
	if resolved.Port == 0 {
		resolved.Port = reg.Info.DefaultPort
	}
	return &resolved, reg, nil
}

// Open connects to the warehouse of cfg.Type using its registered adapter.
func Open(ctx context.Context, cfg *Config) (Conn, error) {
	resolved, reg, err := Resolve(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := reg.Factory(ctx, resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", reg.Info.DisplayName, err)
	}
	return conn, nil
}
