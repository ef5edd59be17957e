// load-report prints row counts for every warehouse table after a run,
// plus the number of staged song plays that found no catalog match and so
// never reached the songplays table.
//
// Usage: go run ./scripts/load-report [-config config.yaml]
//
// Connection settings come from the same configuration as songplay-etl.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/songplay-etl/pkg/catalog"
	"github.com/ekaya-inc/songplay-etl/pkg/config"
	"github.com/ekaya-inc/songplay-etl/pkg/logging"
	"github.com/ekaya-inc/songplay-etl/pkg/warehouse"
	"github.com/ekaya-inc/songplay-etl/pkg/warehouse/redshift"
)

// unmatchedPlays counts NextSong events the songplays join drops.
const unmatchedPlays = `
	SELECT COUNT(*)
	FROM stg_events e
	WHERE e.page = 'NextSong'
	  AND NOT EXISTS (
		SELECT 1 FROM stg_songs s
		WHERE e.artist_name = s.artist_name
		  AND e.song_length = s.duration
		  AND e.song_title = s.title
	  )`

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "Path to the YAML configuration file")
	flag.Parse()

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath, "load-report")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cat, err := catalog.New(cfg.CatalogConfig())
	if err != nil {
		return fmt.Errorf("failed to build catalog: %w", err)
	}

	whCfg, _, err := warehouse.Resolve(warehouse.FromClusterConfig(cfg.Cluster))
	if err != nil {
		return err
	}
	connConfig, err := redshift.ConnConfig(whCfg)
	if err != nil {
		return err
	}

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to warehouse: %w", err)
	}
	defer conn.Close(ctx)

	fmt.Printf("Warehouse: %s\n\n", logging.SanitizeConnectionString(whCfg.ConnectionString()))
	fmt.Printf("%-12s %-10s %12s\n", "TABLE", "KIND", "ROWS")
	for _, t := range cat.Tables() {
		var n int64
		if err := conn.QueryRow(ctx, "SELECT COUNT(*) FROM "+t.Name).Scan(&n); err != nil {
			fmt.Printf("%-12s %-10s %12s\n", t.Name, t.Kind, "error: "+err.Error())
			continue
		}
		fmt.Printf("%-12s %-10s %12d\n", t.Name, t.Kind, n)
	}

	var unmatched int64
	if err := conn.QueryRow(ctx, unmatchedPlays).Scan(&unmatched); err != nil {
		return fmt.Errorf("failed to count unmatched plays: %w", err)
	}
	fmt.Printf("\nNextSong events without a catalog match: %d\n", unmatched)
	return nil
}
