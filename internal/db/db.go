// Package db provides the SQLite and PostgreSQL appointment stores.
package db

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/dateutil"
)

// Supported storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store is a repository that also keeps user preferences.
type Store interface {
	appointment.Repository
	appointment.Preferences
}

// options holds the rules shared by every store.
type options struct {
	hours appointment.Hours
	now   func() time.Time
	newID func() string
}

// Option configures a store.
type Option func(*options)

// WithHours sets the window in which appointments may start.
func WithHours(h appointment.Hours) Option {
	return func(o *options) {
		o.hours = h
	}
}

// WithClock overrides time.Now for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func newOptions(opts []Option) options {
	o := options{
		hours: appointment.DefaultHours,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open connects to the store selected by driver. dsn is a file path for
// SQLite and a connection URL for PostgreSQL.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (Store, error) {
	switch strings.ToLower(driver) {
	case "", DriverSQLite:
		return New(dsn, opts...)
	case DriverPostgres:
		return NewPostgres(ctx, dsn, opts...)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

// prepare validates in and checks clinic hours. The result carries fresh
// timestamps and no ID.
func (o options) prepare(in appointment.Input) (*appointment.Appointment, error) {
	a, err := appointment.New(in, o.now().UTC())
	if err != nil {
		return nil, err
	}
	if err := o.hours.CheckHours(a.Time); err != nil {
		return nil, err
	}
	return a, nil
}

// dialect is what differs between the SQL stores.
type dialect struct {
	placeholder func(n int) string // bind marker for the n-th argument, from 1
	date        func(t time.Time) any
}

var (
	sqliteDialect = dialect{
		placeholder: func(int) string { return "?" },
		date:        func(t time.Time) any { return dateutil.Key(t) },
	}
	postgresDialect = dialect{
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		date:        func(t time.Time) any { return dateutil.Day(t) },
	}
)

// whereClause renders the SQL filter for q.
func (d dialect) whereClause(q appointment.Query) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, d.placeholder(len(args))))
	}

	if q.Date != nil {
		add("date = %s", d.date(*q.Date))
	}
	if q.From != nil {
		add("date >= %s", d.date(*q.From))
	}
	if q.To != nil {
		add("date <= %s", d.date(*q.To))
	}
	if q.Status != "" {
		add("status = %s", string(q.Status))
	}
	if q.Doctor != "" {
		add("doctor_name = %s", q.Doctor)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// statusCheck renders the IN list used by the status CHECK constraint.
func statusCheck() string {
	quoted := make([]string, len(appointment.Statuses))
	for i, s := range appointment.Statuses {
		quoted[i] = "'" + string(s) + "'"
	}
	return strings.Join(quoted, ", ")
}

const selectColumns = `id, patient_name, doctor_name, date, time, duration, status, mode, notes, created_at, updated_at`
