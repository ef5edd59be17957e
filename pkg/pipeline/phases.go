package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/songplay-etl/pkg/apperrors"
	"github.com/ekaya-inc/songplay-etl/pkg/catalog"
	"github.com/ekaya-inc/songplay-etl/pkg/logging"
	"github.com/ekaya-inc/songplay-etl/pkg/warehouse"
)

// Executor runs one statement and commits it before returning.
type Executor = warehouse.StatementExecutor

// LoadStagingTables executes the COPY statements in order, committing each.
// It stops at the first failure and returns a *StatementError; staging
// tables are not truncated first, so loading twice duplicates rows.
func LoadStagingTables(ctx context.Context, stmts []catalog.Statement, exec Executor) error {
	return defaultRunner().run(ctx, PhaseLoadStaging, catalog.StatementKindCopy, stmts, exec)
}

// InsertTables executes the INSERT statements in order, committing each.
// It stops at the first failure and returns a *StatementError.
func InsertTables(ctx context.Context, stmts []catalog.Statement, exec Executor) error {
	return defaultRunner().run(ctx, PhaseInsert, catalog.StatementKindInsert, stmts, exec)
}

// runner executes statement lists with shared logging and timeout settings.
type runner struct {
	logger  *zap.Logger
	runID   uuid.UUID
	timeout time.Duration
}

func defaultRunner() *runner {
	return &runner{logger: zap.NewNop()}
}

func (r *runner) run(ctx context.Context, phase Phase, kind catalog.StatementKind, stmts []catalog.Statement, exec Executor) error {
	for i, s := range stmts {
		if s.Kind != kind {
			return fmt.Errorf("%w: %s position %d is a %s statement, expected %s",
				apperrors.ErrStatementOrder, phase, i, s.Kind, kind)
		}
	}

	phaseStart := time.Now()
	r.logger.Info("Starting phase",
		zap.String("run_id", r.runID.String()),
		zap.String("phase", string(phase)),
		zap.Int("statements", len(stmts)))

	for i, s := range stmts {
		if err := r.execute(ctx, phase, i, s, exec); err != nil {
			return err
		}
	}

	r.logger.Info("Phase complete",
		zap.String("run_id", r.runID.String()),
		zap.String("phase", string(phase)),
		zap.Int64("duration_ms", time.Since(phaseStart).Milliseconds()))
	return nil
}

func (r *runner) execute(ctx context.Context, phase Phase, position int, s catalog.Statement, exec Executor) error {
	fields := []zap.Field{
		zap.String("run_id", r.runID.String()),
		zap.String("phase", string(phase)),
		zap.String("kind", string(s.Kind)),
		zap.String("table", s.Table),
		zap.Int("position", position),
	}
	r.logger.Debug("Executing statement", append(fields, zap.String("sql", logging.SanitizeQuery(s.SQL)))...)

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	result, err := exec.Execute(ctx, s.SQL)
	if err != nil {
		r.logger.Error("Statement failed", append(fields, zap.String("error", logging.SanitizeError(err)))...)
		return &StatementError{
			Phase:    phase,
			Kind:     s.Kind,
			Table:    s.Table,
			Position: position,
			Err:      err,
		}
	}

	r.logger.Info("Statement committed", append(fields,
		zap.String("command_tag", result.CommandTag),
		zap.Int64("rows_affected", result.RowsAffected),
		zap.Int64("duration_ms", result.Duration.Milliseconds()))...)
	return nil
}
