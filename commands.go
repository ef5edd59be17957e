package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/songplay-etl/pkg/catalog"
	"github.com/ekaya-inc/songplay-etl/pkg/config"
	"github.com/ekaya-inc/songplay-etl/pkg/logging"
	"github.com/ekaya-inc/songplay-etl/pkg/pipeline"
	"github.com/ekaya-inc/songplay-etl/pkg/sources"
	"github.com/ekaya-inc/songplay-etl/pkg/warehouse"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "songplay-etl",
		Short: "Load song play events from S3 into a Redshift star schema",
		Long: `songplay-etl copies the raw event logs and song catalog from S3 into
staging tables, then fills the songplays fact table and the users, songs,
artists and time dimensions.

Running without a subcommand is the same as "songplay-etl etl".`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultConfigPath, "Path to the YAML configuration file")

	etl := newETLCmd(opts)
	root.RunE = etl.RunE
	root.AddCommand(
		etl,
		newCreateTablesCmd(opts),
		newPlanCmd(opts),
		newVerifySourcesCmd(opts),
	)
	return root
}

func newETLCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "etl",
		Aliases: []string{"run"},
		Short:   "Load staging tables, then insert into the dimension and fact tables",
		Long: `Connects to the warehouse, runs every COPY statement, then every INSERT
statement, committing after each one. The first failure stops the run;
statements committed before it stay applied. Tables are never dropped.`,
		Example: `  # Run with config.yaml in the working directory
  songplay-etl etl

  # Bound every statement to 20 minutes
  ETL_STATEMENT_TIMEOUT=20m songplay-etl etl -c prod.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(opts)
			if err != nil {
				return err
			}
			defer app.logger.Sync() //nolint:errcheck

			return app.driver().Run(cmd.Context())
		},
	}
}

func newCreateTablesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create-tables",
		Short: "Drop and recreate all seven tables",
		Long: `Drops every staging, dimension and fact table, then creates them again
with dependencies first. All warehouse data loaded by earlier runs is lost.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(opts)
			if err != nil {
				return err
			}
			defer app.logger.Sync() //nolint:errcheck

			return app.driver().CreateTables(cmd.Context())
		},
	}
}

func newPlanCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Print the statement registry as YAML without connecting",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(opts)
			if err != nil {
				return err
			}
			defer app.logger.Sync() //nolint:errcheck

			if err := writeYAML(cmd.OutOrStdout(), buildPlan(app.catalog)); err != nil {
				return fmt.Errorf("failed to write plan: %w", err)
			}
			return nil
		},
	}
}

func newVerifySourcesCmd(opts *rootOptions) *cobra.Command {
	var anonymous bool

	cmd := &cobra.Command{
		Use:   "verify-sources",
		Short: "Check that the configured S3 sources exist",
		Long: `Lists the event and song prefixes and reads the JSONPaths object using
the local AWS credentials. The warehouse is not contacted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(opts)
			if err != nil {
				return err
			}
			defer app.logger.Sync() //nolint:errcheck

			client, err := sources.NewS3Client(app.cfg.S3.Region, anonymous)
			if err != nil {
				return err
			}

			reports, verifyErr := sources.NewChecker(client, app.logger).Verify(cmd.Context(), app.cfg.S3)
			if len(reports) > 0 {
				if err := writeYAML(cmd.OutOrStdout(), reports); err != nil {
					return fmt.Errorf("failed to write reports: %w", err)
				}
			}
			return verifyErr
		},
	}
	cmd.Flags().BoolVar(&anonymous, "anonymous", false, "Read public buckets without AWS credentials")
	return cmd
}

type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	catalog *catalog.Catalog
}

func setup(opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath, Version)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.ETL.LogLevel, cfg.ETL.LogFormat)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.New(cfg.CatalogConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to build statement catalog: %w", err)
	}

	logger.Info("Configuration loaded",
		zap.String("version", cfg.Version),
		zap.String("warehouse", cfg.Cluster.Type),
		zap.String("host", cfg.Cluster.Host),
		zap.Int("port", cfg.Cluster.Port),
		zap.String("connection", connectionSummary(cfg.Cluster)),
		zap.String("database", cfg.Cluster.Database),
		zap.String("dialect", string(cat.Dialect())),
		zap.Duration("statement_timeout", cfg.ETL.StatementTimeout))

	return &app{cfg: cfg, logger: logger, catalog: cat}, nil
}

// connectionSummary renders the warehouse connection string with credentials
// redacted.
func connectionSummary(cluster config.ClusterConfig) string {
	whCfg := warehouse.FromClusterConfig(cluster)
	if resolved, _, err := warehouse.Resolve(whCfg); err == nil {
		whCfg = resolved
	}
	return logging.SanitizeConnectionString(whCfg.ConnectionString())
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func (a *app) driver() *pipeline.Driver {
	whCfg := warehouse.FromClusterConfig(a.cfg.Cluster)
	connect := func(ctx context.Context) (warehouse.Conn, error) {
		return warehouse.Open(ctx, whCfg)
	}
	return pipeline.NewDriver(a.catalog, connect, a.logger,
		pipeline.WithStatementTimeout(a.cfg.ETL.StatementTimeout))
}

// plan is the YAML shape printed by the plan command.
type plan struct {
	Dialect  catalog.Dialect         `yaml:"dialect"`
	Adapters []warehouse.AdapterInfo `yaml:"adapters"`
	Phases   []planPhase             `yaml:"phases"`
}

type planPhase struct {
	Name       pipeline.Phase      `yaml:"name"`
	Command    string              `yaml:"command"`
	Statements []catalog.Statement `yaml:"statements"`
}

func buildPlan(cat *catalog.Catalog) plan {
	return plan{
		Dialect:  cat.Dialect(),
		Adapters: warehouse.RegisteredAdapters(),
		Phases: []planPhase{
			{Name: pipeline.PhaseDrop, Command: "create-tables", Statements: cat.DropStatements()},
			{Name: pipeline.PhaseCreate, Command: "create-tables", Statements: cat.CreateStatements()},
			{Name: pipeline.PhaseLoadStaging, Command: "etl", Statements: cat.CopyStatements()},
			{Name: pipeline.PhaseInsert, Command: "etl", Statements: cat.InsertStatements()},
		},
	}
}
