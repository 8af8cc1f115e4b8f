package db

import (
	"database/sql"
	"fmt"
)

// Migrate creates the schema if it does not exist yet. Statements are ordered
// so foreign keys resolve.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			phone TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS parking_lots (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			price NUMERIC(10,2) NOT NULL,
			capacity INT NOT NULL,
			address TEXT NOT NULL,
			pincode TEXT NOT NULL,
			contact TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS parking_spots (
			id SERIAL PRIMARY KEY,
			lot_id INT NOT NULL REFERENCES parking_lots(id),
			label TEXT NOT NULL UNIQUE,
			spot_index INT NOT NULL,
			status TEXT NOT NULL DEFAULT 'available',
			spot_type TEXT NOT NULL DEFAULT 'standard',
			UNIQUE (lot_id, spot_index)
		)`,
		`CREATE TABLE IF NOT EXISTS reservations (
			id SERIAL PRIMARY KEY,
			spot_id INT NOT NULL REFERENCES parking_spots(id),
			user_id INT NOT NULL REFERENCES users(id),
			reservation_timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			parking_timestamp TIMESTAMPTZ NOT NULL,
			leaving_timestamp TIMESTAMPTZ,
			cost_per_hour NUMERIC(10,2) NOT NULL,
			vehicle_number TEXT NOT NULL,
			payment_status TEXT NOT NULL DEFAULT 'pending'
		)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id SERIAL PRIMARY KEY,
			reservation_id INT NOT NULL UNIQUE REFERENCES reservations(id),
			amount NUMERIC(10,2) NOT NULL,
			payment_method TEXT NOT NULL,
			payment_status TEXT NOT NULL,
			payment_timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_reservations_pending
			ON reservations (vehicle_number) WHERE payment_status = 'pending'`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_user
			ON reservations (user_id, reservation_timestamp DESC)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
