// Package catalog declares the warehouse tables and the four ordered
// statement families (DROP, CREATE, COPY, INSERT) the pipeline executes.
//
// The catalog is built from an explicit Config and performs no I/O.
// Statement lists carry their target table and dependencies, and New checks
// that every list respects them.
package catalog

import (
	"fmt"
	"slices"
)

// Config carries the values interpolated into COPY statements. They are
// used verbatim.
type Config struct {
	Dialect Dialect

	// Region of the S3 buckets (defaults to DefaultRegion).
	Region string
	// IAMRoleARN is the role the warehouse assumes to read from S3.
	IAMRoleARN string
	// LogDataPath is the S3 location of the event logs.
	LogDataPath string
	// LogJSONPath is the S3 location of the JSONPaths file mapping event fields.
	LogJSONPath string
	// SongDataPath is the S3 location of the song catalog.
	SongDataPath string
}

// Catalog is the statement registry.
type Catalog struct {
	dialect Dialect
	tables  []*Table
	byName  map[string]*Table

	drops   []Statement
	creates []Statement
	copies  []Statement
	inserts []Statement
}

// New builds the catalog for cfg and validates statement ordering.
func New(cfg Config) (*Catalog, error) {
	dialect, err := ParseDialect(string(cfg.Dialect))
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		dialect: dialect,
		tables:  tableDefinitions(),
		byName:  make(map[string]*Table),
	}
	for _, t := range c.tables {
		c.byName[t.Name] = t
	}

	for _, name := range dropOrder {
		c.drops = append(c.drops, Statement{
			Kind:      StatementKindDrop,
			Table:     name,
			DependsOn: c.byName[name].References(),
			SQL:       dropTableSQL(name),
		})
	}
	for _, t := range c.tables {
		c.creates = append(c.creates, Statement{
			Kind:      StatementKindCreate,
			Table:     t.Name,
			DependsOn: t.References(),
			SQL:       createTableSQL(t, dialect),
		})
	}
	c.copies = copyStatements(cfg)
	c.inserts = insertStatements(dialect)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Dialect returns the dialect the catalog was rendered for.
func (c *Catalog) Dialect() Dialect {
	return c.dialect
}

// Tables returns the table definitions in creation order.
func (c *Catalog) Tables() []*Table {
	return slices.Clone(c.tables)
}

// Table returns the named table definition, or nil.
func (c *Catalog) Table(name string) *Table {
	return c.byName[name]
}

// DropStatements returns DROP TABLE IF EXISTS for all seven tables, staging
// first. The ETL run never issues these; only an explicit table reset does.
func (c *Catalog) DropStatements() []Statement {
	return slices.Clone(c.drops)
}

// CreateStatements returns CREATE TABLE IF NOT EXISTS for all seven tables,
// with every referenced table created before the table referencing it.
func (c *Catalog) CreateStatements() []Statement {
	return slices.Clone(c.creates)
}

// CopyStatements returns the two bulk loads into the staging tables.
func (c *Catalog) CopyStatements() []Statement {
	return slices.Clone(c.copies)
}

// InsertStatements returns the five staging-to-model transforms, fact table first.
func (c *Catalog) InsertStatements() []Statement {
	return slices.Clone(c.inserts)
}

// Validate checks every statement list against ValidateOrder.
func (c *Catalog) Validate() error {
	lists := []struct {
		kind  StatementKind
		stmts []Statement
	}{
		{StatementKindDrop, c.drops},
		{StatementKindCreate, c.creates},
		{StatementKindCopy, c.copies},
		{StatementKindInsert, c.inserts},
	}
	for _, l := range lists {
		if err := c.ValidateOrder(l.kind, l.stmts); err != nil {
			return fmt.Errorf("invalid %s statements: %w", l.kind, err)
		}
	}
	return nil
}
