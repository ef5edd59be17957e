package testhelpers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // "pgx" driver for database/sql (sqlx)
	"github.com/jmoiron/sqlx"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ekaya-inc/songplay-etl/pkg/warehouse"
)

// WarehouseTestImage is the PostgreSQL image standing in for Redshift.
// Version 18 is required for NOT ENFORCED foreign keys.
const WarehouseTestImage = "postgres:18-alpine"

const (
	testUser     = "dwhuser"
	testPassword = "test_password"
	adminDB      = "postgres"
)

// TestDB holds the shared warehouse container.
type TestDB struct {
	Container testcontainers.Container
	Host      string
	Port      int
}

var (
	sharedTestDB     *TestDB
	sharedTestDBOnce sync.Once
	sharedTestDBErr  error

	databaseSeq atomic.Int64
)

// GetTestDB returns a shared PostgreSQL container for integration tests.
// The container is created once and reused across all tests in the run.
func GetTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}

	sharedTestDBOnce.Do(func() {
		sharedTestDB, sharedTestDBErr = setupTestDB()
	})

	if sharedTestDBErr != nil {
		t.Fatalf("Failed to setup test database: %v", sharedTestDBErr)
	}

	return sharedTestDB
}

func setupTestDB() (*TestDB, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        WarehouseTestImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       adminDB,
			"POSTGRES_USER":     testUser,
			"POSTGRES_PASSWORD": testPassword,
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start test container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	mapped, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}
	port, err := strconv.Atoi(mapped.Port())
	if err != nil {
		return nil, fmt.Errorf("invalid container port %q: %w", mapped.Port(), err)
	}

	return &TestDB{
		Container: container,
		Host:      host,
		Port:      port,
	}, nil
}

// Config returns warehouse settings for database dbName on the container.
func (d *TestDB) Config(dbName string) *warehouse.Config {
	return &warehouse.Config{
		Type:     "postgres",
		Host:     d.Host,
		Port:     d.Port,
		User:     testUser,
		Password: testPassword,
		Database: dbName,
		SSLMode:  "disable",
	}
}

// WarehouseDB is an empty database created for a single test.
type WarehouseDB struct {
	Name   string
	Config *warehouse.Config
	// DB is a side connection for seeding and assertions.
	DB *sqlx.DB
}

// NewWarehouseDB creates a fresh database on the shared container and drops
// it when the test ends.
func NewWarehouseDB(t *testing.T) *WarehouseDB {
	t.Helper()

	testDB := GetTestDB(t)
	ctx := context.Background()

	name := fmt.Sprintf("dwh_%d_%d", time.Now().UnixNano()%1_000_000, databaseSeq.Add(1))

	admin, err := pgx.Connect(ctx, testDB.Config(adminDB).ConnectionString())
	if err != nil {
		t.Fatalf("failed to connect to admin database: %v", err)
	}
	defer admin.Close(ctx)

	if _, err := admin.Exec(ctx, "CREATE DATABASE "+name); err != nil {
		t.Fatalf("failed to create database %s: %v", name, err)
	}

	cfg := testDB.Config(name)
	db, err := sqlx.Connect("pgx", cfg.ConnectionString())
	if err != nil {
		t.Fatalf("failed to connect to %s: %v", name, err)
	}

	t.Cleanup(func() {
		db.Close()
		ctx := context.Background()
		admin, err := pgx.Connect(ctx, testDB.Config(adminDB).ConnectionString())
		if err != nil {
			return
		}
		defer admin.Close(ctx)
		_, _ = admin.Exec(ctx, "DROP DATABASE IF EXISTS "+name+" WITH (FORCE)")
	})

	return &WarehouseDB{
		Name:   name,
		Config: cfg,
		DB:     db,
	}
}

// CopyRows bulk-loads rows into table, standing in for a warehouse COPY.
func (w *WarehouseDB) CopyRows(t *testing.T, table string, columns []string, rows [][]any) {
	t.Helper()
	ctx := context.Background()

	conn, err := pgx.Connect(ctx, w.Config.ConnectionString())
	if err != nil {
		t.Fatalf("failed to connect to %s: %v", w.Name, err)
	}
	defer conn.Close(ctx)

	n, err := conn.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		t.Fatalf("failed to copy into %s (%s): %v", table, strings.Join(columns, ", "), err)
	}
	if int(n) != len(rows) {
		t.Fatalf("copied %d rows into %s, expected %d", n, table, len(rows))
	}
}

// Count returns the number of rows in table.
func (w *WarehouseDB) Count(t *testing.T, table string) int {
	t.Helper()
	var n int
	if err := w.DB.Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

// TableExists reports whether table exists in the public schema.
func (w *WarehouseDB) TableExists(t *testing.T, table string) bool {
	t.Helper()
	var exists bool
	err := w.DB.Get(&exists,
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1)",
		table)
	if err != nil {
		t.Fatalf("failed to check table %s: %v", table, err)
	}
	return exists
}
