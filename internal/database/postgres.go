package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// PostgresStore keeps the scraped documents as JSONB rows.
type PostgresStore struct {
	conn   *sql.DB
	logger *logrus.Logger
}

func NewPostgresStore(ctx context.Context, uri string, logger *logrus.Logger) (*PostgresStore, error) {
	conn, err := sql.Open("postgres", uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &PostgresStore{
		conn:   conn,
		logger: logger,
	}

	if err := db.RunMigrations(); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info("Database connection established")
	return db, nil
}

// RunMigrations applies the embedded schema migrations.
func (db *PostgresStore) RunMigrations() error {
	db.logger.Info("Running database migrations...")

	driver, err := postgres.WithInstance(db.conn, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	db.logger.Infof("Migrations completed successfully (version=%d, dirty=%t)", version, dirty)
	return nil
}

func (db *PostgresStore) Close(ctx context.Context) error {
	return db.conn.Close()
}
