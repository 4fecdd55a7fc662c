package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

// Client holds the database handle
type Client struct {
	DB *sql.DB
}

// NewClient opens a Postgres connection and applies migrations
func NewClient(databaseURL string) (*Client, error) {
	return Open("postgres", databaseURL)
}

// Open opens a database connection for the given driver and applies
// migrations. Tests use this with the sqlite3 driver and an in-memory DSN.
func Open(driver, dsn string) (*Client, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed opening connection to %s: %w", driver, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed creating schema resources: %w", err)
	}

	log.Println("✅ Database connected and migrations applied")

	return &Client{DB: db}, nil
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.DB.Close()
}

// Ping checks if the database is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Migrate creates the schema if it does not exist. The DDL is kept portable
// between Postgres (runtime) and SQLite (tests).
func Migrate(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS companies (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			domain TEXT NOT NULL DEFAULT '',
			linkedin_url TEXT NOT NULL DEFAULT '',
			head_office TEXT NOT NULL DEFAULT '',
			company_size TEXT NOT NULL DEFAULT '',
			industry TEXT NOT NULL DEFAULT '',
			website TEXT NOT NULL DEFAULT '',
			logo_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS leads (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			linkedin_url TEXT NOT NULL DEFAULT '',
			company_id TEXT NOT NULL DEFAULT '',
			enrichment_status TEXT NOT NULL DEFAULT 'not_started',
			likelihood REAL,
			enriched_data TEXT NOT NULL DEFAULT '{}',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_enrichment_status ON leads (enrichment_status)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_email ON leads (email)`,
		`CREATE TABLE IF NOT EXISTS campaigns (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			provider_campaign_id TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			UNIQUE (user_id, provider_campaign_id)
		)`,
		`CREATE TABLE IF NOT EXISTS campaign_participants (
			campaign_id TEXT NOT NULL,
			lead_id TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'active',
			current_step INTEGER NOT NULL DEFAULT 0,
			opens INTEGER NOT NULL DEFAULT 0,
			replies INTEGER NOT NULL DEFAULT 0,
			last_activity_at TIMESTAMP,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (campaign_id, lead_id)
		)`,
		`CREATE TABLE IF NOT EXISTS provider_connections (
			user_id INTEGER NOT NULL,
			provider TEXT NOT NULL,
			api_key TEXT NOT NULL,
			connected_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, provider)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
