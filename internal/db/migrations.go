package db

import (
	"context"
	"fmt"
)

// migrate creates the SQLite schema.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS appointments (
			id           TEXT PRIMARY KEY,
			patient_name TEXT NOT NULL,
			doctor_name  TEXT NOT NULL,
			date         TEXT NOT NULL,
			time         TEXT NOT NULL,
			duration     INTEGER NOT NULL CHECK(duration > 0),
			status       TEXT NOT NULL DEFAULT 'Scheduled' CHECK(status IN (` + statusCheck() + `)),
			mode         TEXT NOT NULL DEFAULT 'In-Person' CHECK(mode IN ('Online', 'In-Person')),
			notes        TEXT NOT NULL DEFAULT '',
			created_at   TEXT NOT NULL,
			updated_at   TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments(date, time);
		CREATE INDEX IF NOT EXISTS idx_appointments_doctor ON appointments(doctor_name, date);

		CREATE TABLE IF NOT EXISTS preferences (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating appointments table: %w", err)
	}

	return nil
}

// migrate creates the PostgreSQL schema.
func (p *Postgres) migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS appointments (
			id           TEXT PRIMARY KEY,
			patient_name TEXT NOT NULL,
			doctor_name  TEXT NOT NULL,
			date         DATE NOT NULL,
			time         TEXT NOT NULL,
			duration     INTEGER NOT NULL CHECK(duration > 0),
			status       TEXT NOT NULL DEFAULT 'Scheduled' CHECK(status IN (` + statusCheck() + `)),
			mode         TEXT NOT NULL DEFAULT 'In-Person' CHECK(mode IN ('Online', 'In-Person')),
			notes        TEXT NOT NULL DEFAULT '',
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS idx_appointments_date ON appointments(date, time);
		CREATE INDEX IF NOT EXISTS idx_appointments_doctor ON appointments(doctor_name, date);

		CREATE TABLE IF NOT EXISTS preferences (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`

	if _, err := p.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("creating appointments table: %w", err)
	}

	return nil
}
