package catalog

import (
	"fmt"
	"strings"
)

// DefaultRegion is the S3 region of the source buckets.
const DefaultRegion = "us-west-2"

// JSONAuto tells COPY to infer the column mapping from JSON keys.
const JSONAuto = "auto"

// copySpec is the variable part of a Redshift COPY statement.
type copySpec struct {
	table      string
	location   string
	role       string
	region     string
	timeFormat string // empty to omit TIMEFORMAT
	jsonFormat string // JSONAuto or a JSONPaths file location
}

// sql renders:
//
//	COPY <table> FROM '<location>' CREDENTIALS 'aws_iam_role=<role>'
//	COMPUPDATE OFF REGION '<region>' [TIMEFORMAT '<format>']
//	TRUNCATECOLUMNS BLANKSASNULL EMPTYASNULL FORMAT AS JSON '<auto|jsonpaths>'
//
// on a single line.
func (s copySpec) sql() string {
	parts := []string{
		fmt.Sprintf("COPY %s FROM %s", s.table, quote(s.location)),
		fmt.Sprintf("CREDENTIALS %s", quote("aws_iam_role="+s.role)),
		"COMPUPDATE OFF",
		fmt.Sprintf("REGION %s", quote(s.region)),
	}
	if s.timeFormat != "" {
		parts = append(parts, fmt.Sprintf("TIMEFORMAT %s", quote(s.timeFormat)))
	}
	parts = append(parts,
		"TRUNCATECOLUMNS BLANKSASNULL EMPTYASNULL",
		fmt.Sprintf("FORMAT AS JSON %s", quote(s.jsonFormat)),
	)
	return strings.Join(parts, " ")
}

func copyStatements(cfg Config) []Statement {
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}

	events := copySpec{
		table:      TableStagingEvents,
		location:   cfg.LogDataPath,
		role:       cfg.IAMRoleARN,
		region:     region,
		timeFormat: "epochmillisecs",
		jsonFormat: cfg.LogJSONPath,
	}
	songs := copySpec{
		table:      TableStagingSongs,
		location:   cfg.SongDataPath,
		role:       cfg.IAMRoleARN,
		region:     region,
		jsonFormat: JSONAuto,
	}

	return []Statement{
		{Kind: StatementKindCopy, Table: events.table, SQL: events.sql()},
		{Kind: StatementKindCopy, Table: songs.table, SQL: songs.sql()},
	}
}

// quote wraps s in single quotes. Values are taken as given; screening
// them is the configuration layer's job.
func quote(s string) string {
	return "'" + s + "'"
}
