package database

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/verdantlabs/menu-match/internal/config"
)

// DB wraps the connection pool
type DB struct {
	Pool *pgxpool.Pool
}

// Connect creates a new database connection pool
func Connect(databaseURL string) (*DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}

	// Configure pool
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	log.Println("Database connected successfully")
	return &DB{Pool: pool}, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool.Close()
}

// RunMigrations runs all database migrations
func RunMigrations(db *DB) error {
	ctx := context.Background()

	// Create migrations table if it doesn't exist
	_, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	// Run each migration in version order
	versions := make([]int, 0, len(migrations))
	for version := range migrations {
		versions = append(versions, version)
	}
	sort.Ints(versions)

	for _, version := range versions {
		migration := migrations[version]
		// Check if migration already applied
		var exists bool
		err := db.Pool.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)",
			version,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check migration %d: %w", version, err)
		}

		if exists {
			continue
		}

		// Apply migration
		log.Printf("Applying migration %d...", version)
		_, err = db.Pool.Exec(ctx, migration)
		if err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", version, err)
		}

		// Record migration
		_, err = db.Pool.Exec(ctx,
			"INSERT INTO schema_migrations (version) VALUES ($1)",
			version,
		)
		if err != nil {
			return fmt.Errorf("failed to record migration %d: %w", version, err)
		}

		log.Printf("Migration %d applied successfully", version)
	}

	return nil
}

// EnsureAdminUser creates the admin user if it doesn't exist
func EnsureAdminUser(db *DB, cfg *config.Config) error {
	if cfg.AdminPassword == "" {
		log.Println("ADMIN_PASSWORD not set, skipping admin user creation")
		return nil
	}

	ctx := context.Background()

	// Check if admin exists
	var exists bool
	err := db.Pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)",
		cfg.AdminEmail,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}

	if exists {
		log.Println("Admin user already exists")
		return nil
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	// Create admin user
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO users (email, password_hash, role)
		VALUES ($1, $2, 'admin')
	`, cfg.AdminEmail, string(hashedPassword))
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Printf("Admin user created: %s", cfg.AdminEmail)
	return nil
}

// migrations maps version to SQL; applied in ascending version order
var migrations = map[int]string{
	1: migration001,
	2: migration002,
}

const migration001 = `
-- Enable extensions
CREATE EXTENSION IF NOT EXISTS "pg_trgm";

-- Users table
CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(255) NOT NULL,
    role VARCHAR(20) DEFAULT 'user',
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW(),
    last_login_at TIMESTAMP
);

-- Catalog records table
CREATE TABLE IF NOT EXISTS catalog_records (
    id SERIAL PRIMARY KEY,
    product_name VARCHAR(255) NOT NULL,
    normalized_name VARCHAR(255) NOT NULL,
    vendor VARCHAR(255) NOT NULL,
    normalized_vendor VARCHAR(255) NOT NULL,
    brand VARCHAR(255),
    normalized_brand VARCHAR(255),
    product_type VARCHAR(100),
    normalized_type VARCHAR(100),
    category_bucket VARCHAR(30) NOT NULL DEFAULT 'unknown',
    strain VARCHAR(255),
    price DECIMAL(10, 2),
    weight_grams DECIMAL(10, 3),
    lineage TEXT,
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);

-- Vendor alias groups: rows sharing a group_id denote one real vendor
CREATE TABLE IF NOT EXISTS vendor_aliases (
    group_id INT NOT NULL,
    name VARCHAR(255) NOT NULL,
    created_at TIMESTAMP DEFAULT NOW(),
    PRIMARY KEY (group_id, name)
);

-- Strain alias groups, same shape as vendor_aliases
CREATE TABLE IF NOT EXISTS strain_aliases (
    group_id INT NOT NULL,
    name VARCHAR(255) NOT NULL,
    created_at TIMESTAMP DEFAULT NOW(),
    PRIMARY KEY (group_id, name)
);

-- Create indexes
CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
CREATE INDEX IF NOT EXISTS idx_catalog_vendor ON catalog_records(normalized_vendor);
CREATE INDEX IF NOT EXISTS idx_catalog_bucket ON catalog_records(category_bucket);
CREATE INDEX IF NOT EXISTS idx_catalog_name_trgm ON catalog_records USING gin(product_name gin_trgm_ops);
CREATE INDEX IF NOT EXISTS idx_vendor_aliases_name ON vendor_aliases(name);
CREATE INDEX IF NOT EXISTS idx_strain_aliases_name ON strain_aliases(name);
`

const migration002 = `
-- Migration 002: Persisted match batches and per-item results

CREATE TABLE IF NOT EXISTS match_batches (
    id SERIAL PRIMARY KEY,
    source VARCHAR(255) NOT NULL,
    mode VARCHAR(20) NOT NULL,
    s3_key VARCHAR(512),
    item_count INT NOT NULL DEFAULT 0,
    created_by INT REFERENCES users(id),
    created_at TIMESTAMP DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS match_batch_items (
    id SERIAL PRIMARY KEY,
    batch_id INT REFERENCES match_batches(id) ON DELETE CASCADE,
    item_index INT NOT NULL,
    display_name VARCHAR(255) NOT NULL,
    vendor VARCHAR(255) NOT NULL,
    status VARCHAR(30) NOT NULL,
    score DECIMAL(5, 4),
    matched_record_id INT REFERENCES catalog_records(id) ON DELETE SET NULL,
    decision VARCHAR(20) NOT NULL DEFAULT 'pending',
    decided_by INT REFERENCES users(id),
    decided_at TIMESTAMP,
    created_at TIMESTAMP DEFAULT NOW(),
    CONSTRAINT unique_batch_item UNIQUE (batch_id, item_index)
);

CREATE INDEX IF NOT EXISTS idx_match_batches_created ON match_batches(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_batch_items_batch ON match_batch_items(batch_id);
CREATE INDEX IF NOT EXISTS idx_batch_items_decision ON match_batch_items(decision);
`
