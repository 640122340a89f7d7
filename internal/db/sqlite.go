package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/dateutil"
)

// SQLite implements Store using an embedded SQLite database.
type SQLite struct {
	db   *sql.DB
	opts options
}

// New creates a new SQLite store and runs migrations.
func New(path string, opts ...Option) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return newSQLite(db, opts...)
}

// newSQLite takes ownership of db and closes it if setup fails.
func newSQLite(db *sql.DB, opts ...Option) (*SQLite, error) {
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// A single connection serializes writers and keeps the conflict check
	// and insert atomic.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db, opts: newOptions(opts)}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// List returns the appointments matching q ordered by date then time.
func (s *SQLite) List(ctx context.Context, q appointment.Query) ([]*appointment.Appointment, error) {
	where, args := sqliteDialect.whereClause(q)
	query := `SELECT ` + selectColumns + ` FROM appointments` + where + ` ORDER BY date, time, created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying appointments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var appts []*appointment.Appointment
	for rows.Next() {
		a, err := scanSQLite(rows)
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
func (s *SQLite) Get(ctx context.Context, id string) (*appointment.Appointment, error) {
	return getSQLite(ctx, s.db, id)
}

// Create validates and inserts a new appointment.
// Returns ErrSlotConflict if the doctor is already booked.
func (s *SQLite) Create(ctx context.Context, in appointment.Input) (*appointment.Appointment, error) {
	a, err := s.opts.prepare(in)
	if err != nil {
		return nil, err
	}
	a.ID = s.opts.newID()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := checkConflictSQLite(ctx, tx, a); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO appointments (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.ID,
		a.PatientName,
		a.DoctorName,
		a.DateKey(),
		a.Time,
		a.DurationMinutes,
		string(a.Status),
		string(a.Mode),
		a.Notes,
		a.CreatedAt.Format(time.RFC3339Nano),
		a.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting appointment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return a, nil
}

// Update replaces every editable field of an appointment.
func (s *SQLite) Update(ctx context.Context, id string, in appointment.Input) (*appointment.Appointment, error) {
	next, err := s.opts.prepare(in)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := getSQLite(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt

	if err := checkConflictSQLite(ctx, tx, next); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE appointments
		SET patient_name = ?, doctor_name = ?, date = ?, time = ?, duration = ?,
		    status = ?, mode = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`,
		next.PatientName,
		next.DoctorName,
		next.DateKey(),
		next.Time,
		next.DurationMinutes,
		string(next.Status),
		string(next.Mode),
		next.Notes,
		next.UpdatedAt.Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating appointment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return next, nil
}

// UpdateStatus changes only the status. Reactivating a cancelled appointment
// is rejected if its slot was booked in the meantime.
func (s *SQLite) UpdateStatus(ctx context.Context, id string, status appointment.Status) (*appointment.Appointment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", appointment.ErrInvalidStatus, status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	a, err := getSQLite(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	a.Status = status
	a.UpdatedAt = s.opts.now().UTC()

	if err := checkConflictSQLite(ctx, tx, a); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `UPDATE appointments SET status = ?, updated_at = ? WHERE id = ?`,
		string(a.Status), a.UpdatedAt.Format(time.RFC3339Nano), id)
	if err != nil {
		return nil, fmt.Errorf("updating status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return a, nil
}

// Delete removes an appointment.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting appointment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", appointment.ErrNotFound, id)
	}
	return nil
}

// Preference returns the stored value for key.
func (s *SQLite) Preference(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying preference: %w", err)
	}
	return value, true, nil
}

// SetPreference stores value under key.
func (s *SQLite) SetPreference(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("saving preference: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func getSQLite(ctx context.Context, q querier, id string) (*appointment.Appointment, error) {
	row := q.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM appointments WHERE id = ?`, id)
	a, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", appointment.ErrNotFound, id)
	}
	return a, err
}

// checkConflictSQLite loads the doctor's other bookings on the same day and
// rejects a if it overlaps any of them.
func checkConflictSQLite(ctx context.Context, q querier, a *appointment.Appointment) error {
	if a.IsCancelled() {
		return nil
	}
	rows, err := q.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM appointments
		WHERE doctor_name = ? AND date = ? AND status != ? AND id != ?
	`, a.DoctorName, a.DateKey(), string(appointment.StatusCancelled), a.ID)
	if err != nil {
		return fmt.Errorf("checking conflicts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var existing []*appointment.Appointment
	for rows.Next() {
		e, err := scanSQLite(rows)
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

func scanSQLite(row scanner) (*appointment.Appointment, error) {
	var (
		a         appointment.Appointment
		date      string
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&a.ID,
		&a.PatientName,
		&a.DoctorName,
		&date,
		&a.Time,
		&a.DurationMinutes,
		&a.Status,
		&a.Mode,
		&a.Notes,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning appointment: %w", err)
	}

	if a.Date, err = parseDate(date); err != nil {
		return nil, fmt.Errorf("parsing date: %w", err)
	}
	if a.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created at: %w", err)
	}
	if a.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated at: %w", err)
	}
	return &a, nil
}

// parseDate parses a stored civil day. Values written by other tools as
// "2006-01-02T00:00:00Z" are accepted too.
func parseDate(s string) (time.Time, error) {
	if len(s) >= 10 {
		if t, err := dateutil.ParseDate(s[:10]); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %s", s)
}

func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %s", s)
}
