package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/songplay-etl/pkg/apperrors"
	"github.com/ekaya-inc/songplay-etl/pkg/catalog"
)

func TestLoadStagingTables_ExecutesInOrder(t *testing.T) {
	cat := testCatalog()
	conn := &fakeConn{}

	err := LoadStagingTables(context.Background(), cat.CopyStatements(), conn)
	require.NoError(t, err)
	assert.Equal(t, sqlOf(cat.CopyStatements()), conn.executed)
}

func TestInsertTables_ExecutesInOrder(t *testing.T) {
	cat := testCatalog()
	conn := &fakeConn{}

	err := InsertTables(context.Background(), cat.InsertStatements(), conn)
	require.NoError(t, err)
	assert.Equal(t, sqlOf(cat.InsertStatements()), conn.executed)
}

func TestInsertTables_StopsAtFirstFailure(t *testing.T) {
	cat := testCatalog()
	pkViolation := errors.New(`duplicate key value violates unique constraint "songs_pkey"`)
	conn := &fakeConn{failOn: "INSERT INTO songs", failErr: pkViolation}

	err := InsertTables(context.Background(), cat.InsertStatements(), conn)
	require.Error(t, err)

	var stmtErr *StatementError
	require.ErrorAs(t, err, &stmtErr)
	assert.Equal(t, PhaseInsert, stmtErr.Phase)
	assert.Equal(t, catalog.StatementKindInsert, stmtErr.Kind)
	assert.Equal(t, catalog.TableSongs, stmtErr.Table)
	assert.Equal(t, 2, stmtErr.Position)
	assert.ErrorIs(t, err, pkViolation)
	assert.Contains(t, err.Error(), "insert_tables: insert songs failed at position 2")

	// songplays and users were committed before the failure; artists and time never ran
	inserts := cat.InsertStatements()
	assert.Equal(t, []string{inserts[0].SQL, inserts[1].SQL}, conn.executed)
}

func TestLoadStagingTables_FailureSkipsRemainingCopies(t *testing.T) {
	cat := testCatalog()
	conn := &fakeConn{failOn: "COPY stg_events"}

	err := LoadStagingTables(context.Background(), cat.CopyStatements(), conn)
	require.Error(t, err)

	var stmtErr *StatementError
	require.ErrorAs(t, err, &stmtErr)
	assert.Equal(t, catalog.TableStagingEvents, stmtErr.Table)
	assert.Equal(t, 0, stmtErr.Position)
	assert.Empty(t, conn.executed)
}

func TestPhases_RejectWrongStatementKind(t *testing.T) {
	cat := testCatalog()
	conn := &fakeConn{}

	err := LoadStagingTables(context.Background(), cat.InsertStatements(), conn)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrStatementOrder)
	assert.Empty(t, conn.executed, "nothing runs when the list is invalid")

	err = InsertTables(context.Background(), cat.CopyStatements(), conn)
	assert.ErrorIs(t, err, apperrors.ErrStatementOrder)
}

func TestPhases_EmptyList(t *testing.T) {
	conn := &fakeConn{}
	assert.NoError(t, InsertTables(context.Background(), nil, conn))
	assert.Empty(t, conn.executed)
}

func TestRunner_StatementTimeout(t *testing.T) {
	cat := testCatalog()

	conn := &fakeConn{}
	r := &runner{logger: defaultRunner().logger, timeout: time.Minute}
	require.NoError(t, r.run(context.Background(), PhaseInsert, catalog.StatementKindInsert, cat.InsertStatements(), conn))
	assert.Equal(t, []bool{true, true, true, true, true}, conn.deadlines)

	conn = &fakeConn{}
	require.NoError(t, InsertTables(context.Background(), cat.InsertStatements(), conn))
	assert.Equal(t, []bool{false, false, false, false, false}, conn.deadlines)
}
