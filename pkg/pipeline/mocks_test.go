package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ekaya-inc/songplay-etl/pkg/catalog"
	"github.com/ekaya-inc/songplay-etl/pkg/warehouse"
)

// fakeConn records executed statements and fails on the first one
// containing failOn.
type fakeConn struct {
	executed  []string
	failOn    string
	failErr   error
	testErr   error
	closeErr  error
	closed    int
	deadlines []bool
}

func (f *fakeConn) TestConnection(ctx context.Context) error {
	return f.testErr
}

func (f *fakeConn) Close() error {
	f.closed++
	return f.closeErr
}

func (f *fakeConn) Execute(ctx context.Context, sqlStatement string) (*warehouse.ExecuteResult, error) {
	_, hasDeadline := ctx.Deadline()
	f.deadlines = append(f.deadlines, hasDeadline)

	if f.failOn != "" && strings.Contains(sqlStatement, f.failOn) {
		err := f.failErr
		if err == nil {
			err = errors.New("statement rejected")
		}
		return nil, err
	}
	f.executed = append(f.executed, sqlStatement)
	return &warehouse.ExecuteResult{CommandTag: "INSERT 0 1", RowsAffected: 1, Duration: time.Millisecond}, nil
}

func (f *fakeConn) connector() Connector {
	return func(ctx context.Context) (warehouse.Conn, error) {
		return f, nil
	}
}

var _ warehouse.Conn = (*fakeConn)(nil)

func testCatalog() *catalog.Catalog {
	cat, err := catalog.New(catalog.Config{
		Dialect:      catalog.DialectRedshift,
		IAMRoleARN:   "arn:aws:iam::123456789012:role/dwhRole",
		LogDataPath:  "s3://udacity-dend/log_data",
		LogJSONPath:  "s3://udacity-dend/log_json_path.json",
		SongDataPath: "s3://udacity-dend/song_data",
	})
	if err != nil {
		panic(err)
	}
	return cat
}

func sqlOf(stmts []catalog.Statement) []string {
	out := make([]string, len(stmts))
	for i, s := range stmts {
		out[i] = s.SQL
	}
	return out
}
