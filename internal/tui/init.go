package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/javiermolinar/clinicdesk/internal/config"
	"github.com/javiermolinar/clinicdesk/internal/db"
)

// InitState tracks whether startup initialization is required.
type InitState struct {
	NeedsInit     bool
	ConfigMissing bool
	DBMissing     bool
	ConfigPath    string
	DBPath        string // empty for server databases
}

// DetectInitState checks for a missing config file or SQLite database.
func DetectInitState(cfg *config.Config) (InitState, error) {
	state := InitState{ConfigPath: config.DefaultConfigPath()}
	if !strings.EqualFold(cfg.Storage.Driver, db.DriverPostgres) {
		state.DBPath = cfg.Storage.DBPath
	}

	configMissing, err := pathMissing(state.ConfigPath)
	if err != nil {
		return InitState{}, fmt.Errorf("checking config path: %w", err)
	}
	state.ConfigMissing = configMissing

	if state.DBPath != "" {
		dbMissing, err := pathMissing(state.DBPath)
		if err != nil {
			return InitState{}, fmt.Errorf("checking db path: %w", err)
		}
		state.DBMissing = dbMissing
	}

	state.NeedsInit = state.ConfigMissing || state.DBMissing
	return state, nil
}

func pathMissing(path string) (bool, error) {
	if path == "" {
		return true, nil
	}
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if os.IsNotExist(err) {
		return true, nil
	}
	return false, err
}

// OpenStore opens the configured database, creating the SQLite data
// directory when needed.
func OpenStore(ctx context.Context, cfg *config.Config) (db.Store, error) {
	dsn := cfg.DSN()
	if dsn == "" {
		return nil, fmt.Errorf("no database configured for driver %q", cfg.Storage.Driver)
	}
	if !strings.EqualFold(cfg.Storage.Driver, db.DriverPostgres) {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	store, err := db.Open(ctx, cfg.Storage.Driver, dsn, db.WithHours(cfg.Hours()))
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	return store, nil
}

func (m Model) initializeStorage() (Model, error) {
	if m.initState.ConfigMissing {
		if err := m.config.SaveTo(m.initState.ConfigPath); err != nil {
			return m, fmt.Errorf("saving config: %w", err)
		}
	}
	if m.store == nil {
		store, err := OpenStore(context.Background(), m.config)
		if err != nil {
			return m, err
		}
		m.attach(store)
	}
	m.initState = InitState{}
	return m, nil
}
