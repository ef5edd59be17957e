package catalog

import (
	"fmt"

	"github.com/ekaya-inc/songplay-etl/pkg/apperrors"
)

// ValidateOrder checks that stmts, all of the given kind, can run in the
// listed order:
//   - create: every referenced table is created earlier in the list
//   - drop: every referenced table is dropped later in the list
//   - copy: targets are staging tables
//   - insert: sources are staging tables and targets are not
//
// Each table may appear at most once. Violations wrap apperrors.ErrStatementOrder.
func (c *Catalog) ValidateOrder(kind StatementKind, stmts []Statement) error {
	position := make(map[string]int, len(stmts))
	for i, s := range stmts {
		if s.Kind != kind {
			return fmt.Errorf("%w: position %d is a %s statement in the %s list",
				apperrors.ErrStatementOrder, i, s.Kind, kind)
		}
		if c.byName[s.Table] == nil {
			return fmt.Errorf("%w: %s targets unknown table %q", apperrors.ErrStatementOrder, s, s.Table)
		}
		if _, dup := position[s.Table]; dup {
			return fmt.Errorf("%w: table %s listed twice", apperrors.ErrStatementOrder, s.Table)
		}
		position[s.Table] = i
	}

	for i, s := range stmts {
		target := c.byName[s.Table]
		switch kind {
		case StatementKindCreate:
			for _, dep := range s.DependsOn {
				p, ok := position[dep]
				if !ok || p > i {
					return fmt.Errorf("%w: %s references %s, which is not created before it",
						apperrors.ErrStatementOrder, s, dep)
				}
			}
		case StatementKindDrop:
			for _, dep := range s.DependsOn {
				p, ok := position[dep]
				if ok && p < i {
					return fmt.Errorf("%w: %s references %s, which is dropped before it",
						apperrors.ErrStatementOrder, s, dep)
				}
			}
		case StatementKindCopy:
			if target.Kind != TableKindStaging {
				return fmt.Errorf("%w: %s loads a %s table", apperrors.ErrStatementOrder, s, target.Kind)
			}
		case StatementKindInsert:
			if target.Kind == TableKindStaging {
				return fmt.Errorf("%w: %s writes a staging table", apperrors.ErrStatementOrder, s)
			}
			for _, dep := range s.DependsOn {
				src := c.byName[dep]
				if src == nil || src.Kind != TableKindStaging {
					return fmt.Errorf("%w: %s reads %s, which is not a staging table",
						apperrors.ErrStatementOrder, s, dep)
				}
			}
		}
	}
	return nil
}
