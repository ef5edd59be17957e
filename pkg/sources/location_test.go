package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		uri    string
		bucket string
		key    string
	}{
		{"s3://udacity-dend/log_data", "udacity-dend", "log_data"},
		{"s3://udacity-dend/log_json_path.json", "udacity-dend", "log_json_path.json"},
		{"s3://udacity-dend/song_data/A/B/", "udacity-dend", "song_data/A/B/"},
		{"s3://udacity-dend", "udacity-dend", ""},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			loc, err := ParseLocation(tt.uri)
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, loc.Bucket)
			assert.Equal(t, tt.key, loc.Key)
		})
	}
}

func TestParseLocation_Invalid(t *testing.T) {
	for _, uri := range []string{
		"https://udacity-dend.s3.amazonaws.com/log_data",
		"s3:///log_data",
		"udacity-dend/log_data",
	} {
		_, err := ParseLocation(uri)
		assert.Error(t, err, uri)
	}
}

func TestLocation_String(t *testing.T) {
	assert.Equal(t, "s3://udacity-dend/song_data", Location{Bucket: "udacity-dend", Key: "song_data"}.String())
}
