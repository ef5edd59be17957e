package catalog

import (
	"fmt"

	"github.com/huandu/go-sqlbuilder"
)

// postgresIdentity mirrors Redshift's IDENTITY(0,1): first value 0, step 1.
const postgresIdentity = "GENERATED BY DEFAULT AS IDENTITY (START WITH 0 MINVALUE 0)"

func dropTableSQL(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", table)
}

func createTableSQL(t *Table, dialect Dialect) string {
	ctb := sqlbuilder.PostgreSQL.NewCreateTableBuilder()
	ctb.CreateTable(t.Name).IfNotExists()
	for _, c := range t.Columns {
		ctb.Define(columnDefinition(c, dialect)...)
	}
	if dialect == DialectRedshift && t.DistStyle != "" {
		ctb.Option("DISTSTYLE", t.DistStyle)
	}

	sql, _ := ctb.Build()
	return sql
}

// columnDefinition renders a column as name, type, then constraints in the
// order Redshift expects them: identity, key, nullability, reference and
// finally the layout hints.
func columnDefinition(c Column, dialect Dialect) []string {
	def := []string{c.Name, c.Type}

	if c.Identity {
		switch dialect {
		case DialectRedshift:
			def = append(def, "IDENTITY(0,1)")
		case DialectPostgres:
			def = append(def, postgresIdentity)
		}
	}
	if c.PrimaryKey {
		def = append(def, "PRIMARY KEY")
	}
	if c.NotNull {
		def = append(def, "NOT NULL")
	}
	if c.References != nil {
		def = append(def, fmt.Sprintf("REFERENCES %s(%s)", c.References.Table, c.References.Column))
		if dialect == DialectPostgres {
			// Redshift never enforces foreign keys. PostgreSQL 18 can be
			// told the same, which keeps the fact-first insert order valid.
			def = append(def, "NOT ENFORCED")
		}
	}
	if dialect == DialectRedshift {
		if c.SortKey {
			def = append(def, "SORTKEY")
		}
		if c.DistKey {
			def = append(def, "DISTKEY")
		}
	}
	return def
}
