package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/dateutil"
)

// Postgres implements Store on a PostgreSQL connection pool.
type Postgres struct {
	pool *pgxpool.Pool
	opts options
}

// NewPostgres connects to databaseURL and runs migrations.
func NewPostgres(ctx context.Context, databaseURL string, opts ...Option) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	p := &Postgres{pool: pool, opts: newOptions(opts)}
	if err := p.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return p, nil
}

// List returns the appointments matching q ordered by date then time.
func (p *Postgres) List(ctx context.Context, q appointment.Query) ([]*appointment.Appointment, error) {
	where, args := postgresDialect.whereClause(q)
	query := `SELECT ` + selectColumns + ` FROM appointments` + where + ` ORDER BY date, time, created_at`

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying appointments: %w", err)
	}
	defer rows.Close()

	var appts []*appointment.Appointment
	for rows.Next() {
		a, err := scanPostgres(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating appointments: %w", err)
	}
	return appts, nil
}

// Get retrieves an appointment by ID.
func (p *Postgres) Get(ctx context.Context, id string) (*appointment.Appointment, error) {
	return getPostgres(ctx, p.pool, id, false)
}

// Create validates and inserts a new appointment.
// The doctor's day is locked so concurrent bookings cannot both pass the
// conflict check.
func (p *Postgres) Create(ctx context.Context, in appointment.Input) (*appointment.Appointment, error) {
	a, err := p.opts.prepare(in)
	if err != nil {
		return nil, err
	}
	a.ID = p.opts.newID()

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := checkConflictPostgres(ctx, tx, a); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO appointments (`+selectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		a.ID,
		a.PatientName,
		a.DoctorName,
		a.Date,
		a.Time,
		a.DurationMinutes,
		string(a.Status),
		string(a.Mode),
		a.Notes,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting appointment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return a, nil
}

// Update replaces every editable field of an appointment.
func (p *Postgres) Update(ctx context.Context, id string, in appointment.Input) (*appointment.Appointment, error) {
	next, err := p.opts.prepare(in)
	if err != nil {
		return nil, err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current, err := getPostgres(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt

	if err := checkConflictPostgres(ctx, tx, next); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE appointments
		SET patient_name = $1, doctor_name = $2, date = $3, time = $4, duration = $5,
		    status = $6, mode = $7, notes = $8, updated_at = $9
		WHERE id = $10
	`,
		next.PatientName,
		next.DoctorName,
		next.Date,
		next.Time,
		next.DurationMinutes,
		string(next.Status),
		string(next.Mode),
		next.Notes,
		next.UpdatedAt,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating appointment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return next, nil
}

// UpdateStatus changes only the status. Reactivating a cancelled appointment
// is rejected if its slot was booked in the meantime.
func (p *Postgres) UpdateStatus(ctx context.Context, id string, status appointment.Status) (*appointment.Appointment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", appointment.ErrInvalidStatus, status)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	a, err := getPostgres(ctx, tx, id, true)
	if err != nil {
		return nil, err
	}
	a.Status = status
	a.UpdatedAt = p.opts.now().UTC()

	if err := checkConflictPostgres(ctx, tx, a); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `UPDATE appointments SET status = $1, updated_at = $2 WHERE id = $3`,
		string(a.Status), a.UpdatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("updating status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return a, nil
}

// Delete removes an appointment.
func (p *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", appointment.ErrNotFound, id)
	}
	return nil
}

// Preference returns the stored value for key.
func (p *Postgres) Preference(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.pool.QueryRow(ctx, `SELECT value FROM preferences WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying preference: %w", err)
	}
	return value, true, nil
}

// SetPreference stores value under key.
func (p *Postgres) SetPreference(ctx context.Context, key, value string) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO preferences (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("saving preference: %w", err)
	}
	return nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// pgQuerier is satisfied by *pgxpool.Pool and pgx.Tx.
type pgQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getPostgres(ctx context.Context, q pgQuerier, id string, lock bool) (*appointment.Appointment, error) {
	query := `SELECT ` + selectColumns + ` FROM appointments WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	a, err := scanPostgres(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", appointment.ErrNotFound, id)
	}
	return a, err
}

// checkConflictPostgres locks the doctor's other bookings on the same day
// and rejects a if it overlaps any of them.
func checkConflictPostgres(ctx context.Context, q pgQuerier, a *appointment.Appointment) error {
	if a.IsCancelled() {
		return nil
	}
	rows, err := q.Query(ctx, `
		SELECT `+selectColumns+`
		FROM appointments
		WHERE doctor_name = $1 AND date = $2 AND status != $3 AND id != $4
		FOR UPDATE
	`, a.DoctorName, a.Date, string(appointment.StatusCancelled), a.ID)
	if err != nil {
		return fmt.Errorf("checking conflicts: %w", err)
	}
	defer rows.Close()

	var existing []*appointment.Appointment
	for rows.Next() {
		e, err := scanPostgres(rows)
		if err != nil {
			return err
		}
		existing = append(existing, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("checking conflicts: %w", err)
	}
	return appointment.CheckConflict(existing, a)
}

func scanPostgres(row pgx.Row) (*appointment.Appointment, error) {
	var (
		a      appointment.Appointment
		date   time.Time
		status string
		mode   string
	)
	err := row.Scan(
		&a.ID,
		&a.PatientName,
		&a.DoctorName,
		&date,
		&a.Time,
		&a.DurationMinutes,
		&status,
		&mode,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning appointment: %w", err)
	}
	a.Date = dateutil.Day(date)
	a.Status = appointment.Status(status)
	a.Mode = appointment.Mode(mode)
	return &a, nil
}
