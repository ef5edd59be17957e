package catalog

import (
	"fmt"

	"github.com/ekaya-inc/songplay-etl/pkg/apperrors"
)

// ============================================================================
// Dialect
// ============================================================================

// Dialect selects how DDL and transforms are rendered.
type Dialect string

const (
	// DialectRedshift renders the production warehouse DDL, including
	// SORTKEY/DISTKEY/DISTSTYLE layout hints and IDENTITY columns.
	DialectRedshift Dialect = "redshift"
	// DialectPostgres renders the same table shapes without layout hints.
	// Used to exercise the schema and transforms against PostgreSQL.
	DialectPostgres Dialect = "postgres"
)

// ValidDialects contains all supported dialects.
var ValidDialects = []Dialect{
	DialectRedshift,
	DialectPostgres,
}

// ParseDialect returns the dialect for s. An empty string means Redshift.
func ParseDialect(s string) (Dialect, error) {
	if s == "" {
		return DialectRedshift, nil
	}
	for _, d := range ValidDialects {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", apperrors.ErrUnsupportedDialect, s)
}

// ============================================================================
// Tables
// ============================================================================

// TableKind classifies a table's role in the star schema.
type TableKind string

const (
	TableKindStaging   TableKind = "staging"
	TableKindDimension TableKind = "dimension"
	TableKindFact      TableKind = "fact"
)

// Table names.
const (
	TableStagingEvents = "stg_events"
	TableStagingSongs  = "stg_songs"
	TableSongplays     = "songplays"
	TableUsers         = "users"
	TableSongs         = "songs"
	TableArtists       = "artists"
	TableTime          = "time"
)

// ForeignKey points a column at another table's key column.
type ForeignKey struct {
	Table  string `yaml:"table"`
	Column string `yaml:"column"`
}

// Column describes one table column.
type Column struct {
	Name       string      `yaml:"name"`
	Type       string      `yaml:"type"`
	PrimaryKey bool        `yaml:"primary_key,omitempty"`
	NotNull    bool        `yaml:"not_null,omitempty"`
	Identity   bool        `yaml:"identity,omitempty"`
	References *ForeignKey `yaml:"references,omitempty"`

	// Redshift physical layout hints.
	SortKey bool `yaml:"sort_key,omitempty"`
	DistKey bool `yaml:"dist_key,omitempty"`
}

// Table describes a warehouse table.
type Table struct {
	Name    string    `yaml:"name"`
	Kind    TableKind `yaml:"kind"`
	Columns []Column  `yaml:"columns"`
	// DistStyle is a Redshift distribution style ("ALL", "EVEN", ...).
	DistStyle string `yaml:"dist_style,omitempty"`
}

// References returns the tables this table holds foreign keys to, in column order.
func (t *Table) References() []string {
	var refs []string
	seen := make(map[string]bool)
	for _, c := range t.Columns {
		if c.References == nil || seen[c.References.Table] {
			continue
		}
		seen[c.References.Table] = true
		refs = append(refs, c.References.Table)
	}
	return refs
}

// ColumnNames returns the table's column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ============================================================================
// Statements
// ============================================================================

// StatementKind is the statement family a Statement belongs to.
type StatementKind string

const (
	StatementKindDrop   StatementKind = "drop"
	StatementKindCreate StatementKind = "create"
	StatementKindCopy   StatementKind = "copy"
	StatementKindInsert StatementKind = "insert"
)

// Statement is one entry of the ordered statement registry.
type Statement struct {
	Kind  StatementKind `yaml:"kind"`
	Table string        `yaml:"table"`
	// DependsOn lists the tables this statement needs. For CREATE and DROP
	// these are the tables referenced by foreign keys; for INSERT they are
	// the tables the transform reads.
	DependsOn []string `yaml:"depends_on,omitempty"`
	SQL       string   `yaml:"sql"`
}

// String identifies the statement for logs and errors.
func (s Statement) String() string {
	return fmt.Sprintf("%s %s", s.Kind, s.Table)
}
