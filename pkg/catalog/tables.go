package catalog

// tableDefinitions returns the star schema in creation order: staging
// tables, the four dimensions, then the fact table that references them.
func tableDefinitions() []*Table {
	return []*Table{
		{
			Name: TableStagingEvents,
			Kind: TableKindStaging,
			Columns: []Column{
				{Name: "artist_name", Type: "VARCHAR(100)"},
				{Name: "auth", Type: "VARCHAR(25)"},
				{Name: "user_first_name", Type: "VARCHAR(50)"},
				{Name: "user_gender", Type: "CHAR(1)"},
				{Name: "iteminsession", Type: "INTEGER"},
				{Name: "user_last_name", Type: "VARCHAR(50)"},
				{Name: "song_length", Type: "REAL"},
				{Name: "level", Type: "VARCHAR(10)"},
				{Name: "location", Type: "TEXT"},
				{Name: "method", Type: "VARCHAR(10)"},
				{Name: "page", Type: "VARCHAR(10)"},
				{Name: "registration", Type: "REAL"},
				{Name: "sessionid", Type: "INTEGER"},
				{Name: "song_title", Type: "VARCHAR(100)"},
				{Name: "status", Type: "INTEGER"},
				{Name: "ts", Type: "TIMESTAMP"},
				{Name: "user_agent", Type: "TEXT"},
				{Name: "user_id", Type: "INTEGER"},
			},
		},
		{
			Name: TableStagingSongs,
			Kind: TableKindStaging,
			Columns: []Column{
				{Name: "num_songs", Type: "INTEGER"},
				{Name: "artist_id", Type: "VARCHAR(50)"},
				{Name: "artist_latitude", Type: "VARCHAR(10)"},
				{Name: "artist_longitude", Type: "VARCHAR(10)"},
				{Name: "artist_location", Type: "VARCHAR(50)"},
				{Name: "artist_name", Type: "VARCHAR(100)"},
				{Name: "song_id", Type: "VARCHAR(50)"},
				{Name: "title", Type: "VARCHAR(100)"},
				{Name: "duration", Type: "REAL"},
				{Name: "year", Type: "INTEGER"},
			},
		},
		{
			Name: TableUsers,
			Kind: TableKindDimension,
			Columns: []Column{
				{Name: "user_id", Type: "INTEGER", PrimaryKey: true, SortKey: true},
				{Name: "first_name", Type: "VARCHAR(50)"},
				{Name: "last_name", Type: "VARCHAR(50)"},
				{Name: "gender", Type: "CHAR(1)"},
				{Name: "level", Type: "VARCHAR(10)"},
			},
			DistStyle: "ALL",
		},
		{
			Name: TableSongs,
			Kind: TableKindDimension,
			Columns: []Column{
				{Name: "song_id", Type: "VARCHAR(50)", PrimaryKey: true, SortKey: true},
				{Name: "title", Type: "VARCHAR(100)"},
				{Name: "artist_id", Type: "VARCHAR(50)"},
				{Name: "year", Type: "INTEGER"},
				{Name: "duration", Type: "REAL"},
			},
			DistStyle: "ALL",
		},
		{
			Name: TableArtists,
			Kind: TableKindDimension,
			Columns: []Column{
				{Name: "artist_id", Type: "VARCHAR(50)", PrimaryKey: true, SortKey: true},
				{Name: "name", Type: "VARCHAR(100)"},
				{Name: "location", Type: "TEXT"},
				{Name: "latitude", Type: "VARCHAR(10)"},
				{Name: "longitude", Type: "VARCHAR(10)"},
			},
			DistStyle: "ALL",
		},
		{
			Name: TableTime,
			Kind: TableKindDimension,
			Columns: []Column{
				{Name: "start_time", Type: "TIMESTAMP", PrimaryKey: true, SortKey: true, DistKey: true},
				{Name: "hour", Type: "INTEGER"},
				{Name: "day", Type: "INTEGER"},
				{Name: "week", Type: "INTEGER"},
				{Name: "month", Type: "INTEGER"},
				{Name: "year", Type: "INTEGER"},
				{Name: "weekday", Type: "INTEGER"},
			},
		},
		{
			Name: TableSongplays,
			Kind: TableKindFact,
			Columns: []Column{
				{Name: "songplay_id", Type: "INTEGER", Identity: true, PrimaryKey: true},
				{Name: "start_time", Type: "TIMESTAMP", NotNull: true, References: &ForeignKey{Table: TableTime, Column: "start_time"}, DistKey: true},
				{Name: "user_id", Type: "INTEGER", NotNull: true, References: &ForeignKey{Table: TableUsers, Column: "user_id"}},
				{Name: "level", Type: "VARCHAR(10)"},
				{Name: "song_id", Type: "VARCHAR(50)", References: &ForeignKey{Table: TableSongs, Column: "song_id"}, SortKey: true},
				{Name: "artist_id", Type: "VARCHAR(50)", References: &ForeignKey{Table: TableArtists, Column: "artist_id"}},
				{Name: "session_id", Type: "INTEGER"},
				{Name: "location", Type: "TEXT"},
				{Name: "user_agent", Type: "TEXT"},
			},
		},
	}
}

// dropOrder is the order tables are dropped in. Staging goes first, then
// the fact table ahead of the dimensions it references.
var dropOrder = []string{
	TableStagingEvents,
	TableStagingSongs,
	TableSongplays,
	TableUsers,
	TableSongs,
	TableArtists,
	TableTime,
}
