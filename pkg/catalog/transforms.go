package catalog

import (
	"fmt"
	"strings"

	"github.com/huandu/go-sqlbuilder"
)

// transform is a set-based INSERT ... SELECT from staging into one table.
type transform struct {
	target  string
	columns []string
	sources []string
	query   *sqlbuilder.SelectBuilder
}

func (t transform) statement() Statement {
	selectSQL, _ := t.query.Build()
	return Statement{
		Kind:      StatementKindInsert,
		Table:     t.target,
		DependsOn: t.sources,
		SQL:       fmt.Sprintf("INSERT INTO %s (%s) %s", t.target, strings.Join(t.columns, ", "), selectSQL),
	}
}

// insertStatements returns the transforms with the fact table first. None of
// them reads another's output, only staging.
func insertStatements(dialect Dialect) []Statement {
	transforms := []transform{
		songplayTransform(),
		userTransform(),
		songTransform(),
		artistTransform(),
		timeTransform(dialect),
	}

	stmts := make([]Statement, len(transforms))
	for i, t := range transforms {
		stmts[i] = t.statement()
	}
	return stmts
}

// songplayTransform keeps only events whose artist name, song length and
// title all equal a staging song's artist name, duration and title.
// Events without such a match are dropped.
func songplayTransform() transform {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(
		"e.ts",
		"e.user_id",
		"e.level",
		"s.song_id",
		"s.artist_id",
		"e.sessionid",
		"e.location",
		"e.user_agent",
	)
	sb.From(sb.As(TableStagingEvents, "e"))
	sb.Join(sb.As(TableStagingSongs, "s"), "e.artist_name = s.artist_name")
	sb.Where(
		"e.song_length = s.duration",
		"e.song_title = s.title",
	)

	return transform{
		target:  TableSongplays,
		columns: []string{"start_time", "user_id", "level", "song_id", "artist_id", "session_id", "location", "user_agent"},
		sources: []string{TableStagingEvents, TableStagingSongs},
		query:   sb,
	}
}

// userTransform keeps, per user_id, the event row with the latest ts.
func userTransform() transform {
	latest := sqlbuilder.PostgreSQL.NewSelectBuilder()
	latest.Select("user_id", latest.As("MAX(ts)", "max_ts"))
	latest.From(TableStagingEvents)
	latest.GroupBy("user_id")

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(
		"e.user_id",
		"e.user_first_name",
		"e.user_last_name",
		"e.user_gender",
		"e.level",
	)
	sb.From(sb.As(TableStagingEvents, "e"))
	sb.Where(sb.In("(e.user_id, e.ts)", latest))

	return transform{
		target:  TableUsers,
		columns: []string{"user_id", "first_name", "last_name", "gender", "level"},
		sources: []string{TableStagingEvents},
		query:   sb,
	}
}

// songTransform copies every staging song row. Duplicate song_ids are left
// for the primary key to reject.
func songTransform() transform {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(
		"s.song_id",
		"s.title",
		"s.artist_id",
		"s.year",
		"s.duration",
	)
	sb.From(sb.As(TableStagingSongs, "s"))

	return transform{
		target:  TableSongs,
		columns: []string{"song_id", "title", "artist_id", "year", "duration"},
		sources: []string{TableStagingSongs},
		query:   sb,
	}
}

// artistTransform keeps, per artist_id, the catalog row with the highest year.
func artistTransform() transform {
	latest := sqlbuilder.PostgreSQL.NewSelectBuilder()
	latest.Select("artist_id", latest.As("MAX(year)", "max_year"))
	latest.From(TableStagingSongs)
	latest.GroupBy("artist_id")

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(
		"s.artist_id",
		"s.artist_name",
		"s.artist_location",
		"s.artist_latitude",
		"s.artist_longitude",
	)
	sb.From(sb.As(TableStagingSongs, "s"))
	sb.Where(sb.In("(s.artist_id, s.year)", latest))

	return transform{
		target:  TableArtists,
		columns: []string{"artist_id", "name", "location", "latitude", "longitude"},
		sources: []string{TableStagingSongs},
		query:   sb,
	}
}

// extractUnits are the EXTRACT date parts for hour, day, week, month, year
// and weekday, per dialect.
var extractUnits = map[Dialect][]string{
	DialectRedshift: {"h", "d", "w", "mon", "y", "dow"},
	DialectPostgres: {"hour", "day", "week", "month", "year", "dow"},
}

// timeTransform decomposes each distinct event timestamp into calendar parts.
func timeTransform(dialect Dialect) transform {
	cols := []string{"e.ts"}
	for _, unit := range extractUnits[dialect] {
		cols = append(cols, fmt.Sprintf("EXTRACT(%s FROM ts)", unit))
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Distinct().Select(cols...)
	sb.From(sb.As(TableStagingEvents, "e"))

	return transform{
		target:  TableTime,
		columns: []string{"start_time", "hour", "day", "week", "month", "year", "weekday"},
		sources: []string{TableStagingEvents},
		query:   sb,
	}
}
