package pipeline

import (
	"fmt"

	"github.com/ekaya-inc/songplay-etl/pkg/catalog"
)

// StatementError reports the statement that stopped a phase. Statements
// before Position were committed and stay applied.
type StatementError struct {
	Phase    Phase
	Kind     catalog.StatementKind
	Table    string
	Position int // zero-based index within the phase
	Err      error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("%s: %s %s failed at position %d: %v", e.Phase, e.Kind, e.Table, e.Position, e.Err)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}
