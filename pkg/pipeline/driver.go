// Package pipeline runs the catalog's statement lists against one warehouse
// connection: COPY into staging, then INSERT into the star schema, with a
// commit after every statement and no compensation for earlier commits.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/songplay-etl/pkg/catalog"
	"github.com/ekaya-inc/songplay-etl/pkg/logging"
	"github.com/ekaya-inc/songplay-etl/pkg/warehouse"
)

// Connector opens the warehouse session a run exclusively owns.
type Connector func(ctx context.Context) (warehouse.Conn, error)

// Option configures a Driver.
type Option func(*Driver)

// WithStatementTimeout bounds every statement. Zero, the default, waits
// until the warehouse answers or ctx is cancelled.
func WithStatementTimeout(d time.Duration) Option {
	return func(drv *Driver) {
		drv.statementTimeout = d
	}
}

// WithRunID sets the identifier attached to every log line of the run.
func WithRunID(id uuid.UUID) Option {
	return func(drv *Driver) {
		drv.runID = id
	}
}

// Driver sequences the catalog's statements against a warehouse.
// It is not safe for concurrent use.
type Driver struct {
	catalog          *catalog.Catalog
	connect          Connector
	logger           *zap.Logger
	runID            uuid.UUID
	statementTimeout time.Duration
	state            State
}

// NewDriver creates a driver for cat. A fresh run id is generated unless
// WithRunID is given.
func NewDriver(cat *catalog.Catalog, connect Connector, logger *zap.Logger, opts ...Option) *Driver {
	d := &Driver{
		catalog: cat,
		connect: connect,
		logger:  logger.Named("pipeline"),
		runID:   uuid.New(),
		state:   StateDisconnected,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RunID identifies this driver's runs in the logs.
func (d *Driver) RunID() uuid.UUID {
	return d.runID
}

// State returns the last state the driver reached.
func (d *Driver) State() State {
	return d.state
}

// Run connects, loads the staging tables, fills the dimension and fact
// tables, and disconnects. The connection is closed on every path. The
// DROP statements are never issued here.
func (d *Driver) Run(ctx context.Context) (err error) {
	start := time.Now()

	conn, err := d.open(ctx)
	if err != nil {
		return err
	}
	defer d.close(conn, &err)

	r := d.runner()
	if err := r.run(ctx, PhaseLoadStaging, catalog.StatementKindCopy, d.catalog.CopyStatements(), conn); err != nil {
		return err
	}
	d.transition(StateStagingLoaded)

	if err := r.run(ctx, PhaseInsert, catalog.StatementKindInsert, d.catalog.InsertStatements(), conn); err != nil {
		return err
	}
	d.transition(StateDimensionsLoaded)

	d.logger.Info("ETL run complete",
		zap.String("run_id", d.runID.String()),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}

// CreateTables drops every table and recreates it. Dimension and fact data
// is lost.
func (d *Driver) CreateTables(ctx context.Context) (err error) {
	conn, err := d.open(ctx)
	if err != nil {
		return err
	}
	defer d.close(conn, &err)

	r := d.runner()
	if err := r.run(ctx, PhaseDrop, catalog.StatementKindDrop, d.catalog.DropStatements(), conn); err != nil {
		return err
	}
	return r.run(ctx, PhaseCreate, catalog.StatementKindCreate, d.catalog.CreateStatements(), conn)
}

func (d *Driver) runner() *runner {
	return &runner{
		logger:  d.logger,
		runID:   d.runID,
		timeout: d.statementTimeout,
	}
}

func (d *Driver) open(ctx context.Context) (warehouse.Conn, error) {
	conn, err := d.connect(ctx)
	if err != nil {
		d.logger.Error("Failed to connect to warehouse",
			zap.String("run_id", d.runID.String()),
			zap.String("error", logging.SanitizeError(err)))
		return nil, fmt.Errorf("failed to connect to warehouse: %w", err)
	}

	if err := conn.TestConnection(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("warehouse connection check failed: %w", err)
	}

	d.transition(StateConnected)
	return conn, nil
}

// close releases conn. A close failure is reported only when nothing else failed.
func (d *Driver) close(conn warehouse.Conn, errp *error) {
	closeErr := conn.Close()
	d.transition(StateDisconnected)
	if closeErr == nil {
		return
	}

	d.logger.Warn("Failed to close warehouse connection",
		zap.String("run_id", d.runID.String()),
		zap.Error(closeErr))
	if *errp == nil {
		*errp = fmt.Errorf("failed to close warehouse connection: %w", closeErr)
	} else {
		*errp = errors.Join(*errp, closeErr)
	}
}

func (d *Driver) transition(to State) {
	from := d.state
	d.state = to
	d.logger.Info("State transition",
		zap.String("run_id", d.runID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
}
