package warehouse

import (
	"context"
	"time"
)

// ConnectionTester tests warehouse connectivity.
type ConnectionTester interface {
	// TestConnection verifies the warehouse is reachable with valid credentials
	// and that the session is attached to the configured database.
	TestConnection(ctx context.Context) error

	// Close releases the connection.
	Close() error
}

// StatementExecutor runs statements against a single warehouse session.
// Each Execute call is its own transaction: the statement is committed
// before Execute returns, or rolled back and reported as an error.
type StatementExecutor interface {
	// Execute runs one DDL/DML statement without modification and commits it.
	Execute(ctx context.Context, sqlStatement string) (*ExecuteResult, error)
}

// Conn is an open warehouse session owned by one pipeline run.
// Implementations are not safe for concurrent use.
type Conn interface {
	ConnectionTester
	StatementExecutor
}

// ExecuteResult holds the outcome of one committed statement.
type ExecuteResult struct {
	CommandTag   string        `json:"command_tag"`
	RowsAffected int64         `json:"rows_affected"`
	Duration     time.Duration `json:"duration"`
}
