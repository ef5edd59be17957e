package redshift

import (
	"context"

	"github.com/ekaya-inc/songplay-etl/pkg/warehouse"
)

// DefaultPort is the Redshift cluster port.
const DefaultPort = 5439

func init() {
	open := func(ctx context.Context, cfg *warehouse.Config) (warehouse.Conn, error) {
		return NewAdapter(ctx, cfg)
	}

	warehouse.Register(warehouse.AdapterRegistration{
		Info: warehouse.AdapterInfo{
			Type:        "redshift",
			DisplayName: "Amazon Redshift",
			DefaultPort: DefaultPort,
		},
		Factory: open,
	})
	warehouse.Register(warehouse.AdapterRegistration{
		Info: warehouse.AdapterInfo{
			Type:        "postgres",
			DisplayName: "PostgreSQL",
			DefaultPort: 5432,
		},
		Factory: open,
	})
}
