package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/songplay-etl/pkg/catalog"
	"github.com/ekaya-inc/songplay-etl/pkg/config"
	"github.com/ekaya-inc/songplay-etl/pkg/pipeline"
)

const testConfig = `
cluster:
  type: "redshift"
  host: "dwhcluster.abc123.us-west-2.redshift.amazonaws.com"
  db_name: "dwh"
  db_user: "dwhuser"
iam_role:
  arn: "arn:aws:iam::123456789012:role/dwhRole"
s3:
  log_data: "s3://udacity-dend/log_data"
  log_jsonpath: "s3://udacity-dend/log_json_path.json"
  song_data: "s3://udacity-dend/song_data"
etl:
  log_level: "error"
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	for _, key := range []string{"DWH_TYPE", "DWH_HOST", "DWH_DB_NAME", "DWH_DB_USER", "DWH_IAM_ROLE_ARN",
		"S3_LOG_DATA", "S3_LOG_JSONPATH", "S3_SONG_DATA", "ETL_DIALECT", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPlanCommand(t *testing.T) {
	path := writeTestConfig(t, testConfig)

	out, err := execute(t, "plan", "--config", path)
	require.NoError(t, err)

	var got plan
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))

	assert.Equal(t, catalog.DialectRedshift, got.Dialect)
	require.Len(t, got.Phases, 4)
	assert.Equal(t, pipeline.PhaseDrop, got.Phases[0].Name)
	assert.Len(t, got.Phases[0].Statements, 7)
	assert.Len(t, got.Phases[1].Statements, 7)
	assert.Len(t, got.Phases[2].Statements, 2)
	assert.Len(t, got.Phases[3].Statements, 5)
	assert.Equal(t, "etl", got.Phases[3].Command)
	assert.Equal(t, catalog.TableSongplays, got.Phases[3].Statements[0].Table)

	var types []string
	for _, a := range got.Adapters {
		types = append(types, a.Type)
	}
	assert.Equal(t, []string{"postgres", "redshift"}, types)
}

func TestPlanCommand_PostgresDialect(t *testing.T) {
	path := writeTestConfig(t, testConfig)
	t.Setenv("ETL_DIALECT", "postgres")

	out, err := execute(t, "plan", "-c", path)
	require.NoError(t, err)
	assert.Contains(t, out, "dialect: postgres")
	assert.NotContains(t, out, "DISTSTYLE")
}

func TestCommands_ConfigError(t *testing.T) {
	path := writeTestConfig(t, "cluster:\n  host: \"localhost\"\n")

	for _, args := range [][]string{
		{"plan", "-c", path},
		{"etl", "-c", path},
		{"run", "-c", path},
		{"create-tables", "-c", path},
		{"-c", path},
	} {
		_, err := execute(t, args...)
		require.Error(t, err, args)
		assert.Contains(t, err.Error(), "failed to load config")
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"etl", "create-tables", "plan", "verify-sources"})
	assert.NotNil(t, root.RunE, "root runs the etl command")
}

func TestConnectionSummary_RedactsPassword(t *testing.T) {
	summary := connectionSummary(config.ClusterConfig{
		Type:     "redshift",
		Host:     "dwhcluster.abc123.us-west-2.redshift.amazonaws.com",
		Database: "dwh",
		User:     "dwhuser",
		Password: "s3cret",
		SSLMode:  "require",
	})

	assert.NotContains(t, summary, "s3cret")
	assert.Contains(t, summary, "[REDACTED]")
	assert.Contains(t, summary, "/dwh?sslmode=require")
}

func TestConnectionSummary_AppliesDefaultPort(t *testing.T) {
	summary := connectionSummary(config.ClusterConfig{
		Type:     "redshift",
		Host:     "dwhcluster.abc123.us-west-2.redshift.amazonaws.com",
		Database: "dwh",
		User:     "dwhuser",
		SSLMode:  "require",
	})

	assert.Contains(t, summary, "dwhcluster.abc123.us-west-2.redshift.amazonaws.com:5439")
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteYAML(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeYAML(&out, map[string]int{"rows": 3}))
	assert.Equal(t, "rows: 3\n", out.String())

	err := writeYAML(failingWriter{}, map[string]int{"rows": 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
