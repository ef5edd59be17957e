package redshift

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ekaya-inc/songplay-etl/pkg/warehouse"
)

// Adapter is a single pgx session to Redshift, or to PostgreSQL when used
// for local runs and tests. There is no pool: one run owns one connection.
type Adapter struct {
	config *warehouse.Config
	conn   *pgx.Conn
}

// ConnConfig parses cfg into a pgx connection config using the simple
// protocol.
func ConnConfig(cfg *warehouse.Config) (*pgx.ConnConfig, error) {
	connConfig, err := pgx.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}

	// Redshift does not support every extended-protocol feature pgx relies on
	// for statement caching. Statements here take no parameters anyway.
	connConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	return connConfig, nil
}

// NewAdapter connects to the warehouse described by cfg.
func NewAdapter(ctx context.Context, cfg *warehouse.Config) (*Adapter, error) {
	connConfig, err := ConnConfig(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Type, err)
	}

	return &Adapter{
		config: cfg,
		conn:   conn,
	}, nil
}

// TestConnection verifies the warehouse is reachable with valid credentials.
// It checks:
// 1. Server connectivity (ping)
// 2. Correct database name (to prevent loading into a default database)
func (a *Adapter) TestConnection(ctx context.Context) error {
	if err := a.conn.Ping(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var currentDB string
	if err := a.conn.QueryRow(ctx, "SELECT current_database()").Scan(&currentDB); err != nil {
		return fmt.Errorf("failed to get current database name: %w", err)
	}

	// Redshift folds database names to lower case.
	if !strings.EqualFold(currentDB, a.config.Database) {
		return fmt.Errorf("connected to wrong database: expected %q but connected to %q", a.config.Database, currentDB)
	}

	return nil
}

// Execute runs sqlStatement in its own transaction and commits it.
// On failure the transaction is rolled back; statements committed by earlier
// calls are unaffected.
func (a *Adapter) Execute(ctx context.Context, sqlStatement string) (*warehouse.ExecuteResult, error) {
	start := time.Now()

	tx, err := a.conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	tag, err := tx.Exec(ctx, sqlStatement)
	if err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("failed to execute statement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit statement: %w", err)
	}

	return &warehouse.ExecuteResult{
		CommandTag:   tag.String(),
		RowsAffected: tag.RowsAffected(),
		Duration:     time.Since(start),
	}, nil
}

// Close terminates the session.
func (a *Adapter) Close() error {
	if a.conn == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.conn.Close(ctx)
}

// Ensure Adapter implements Conn at compile time.
var _ warehouse.Conn = (*Adapter)(nil)
