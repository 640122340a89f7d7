package ui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/clinicdesk/internal/board"
	"github.com/javiermolinar/clinicdesk/internal/config"
	"github.com/javiermolinar/clinicdesk/internal/db"
	"github.com/javiermolinar/clinicdesk/internal/logging"
	"github.com/javiermolinar/clinicdesk/internal/scheduler"
	"github.com/javiermolinar/clinicdesk/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	store     db.Store
	ownsStore bool
	config    *config.Config
	root      *cobra.Command
	logger    zerolog.Logger
	logCloser io.Closer
	debug     bool // Enable debug logging
	noColor   bool
	now       func() time.Time
}

// NewApp creates a new CLI application. A nil store is opened from cfg on
// first use.
func NewApp(store db.Store, cfg *config.Config) *App {
	a := &App{store: store, config: cfg, logger: zerolog.Nop(), now: time.Now}

	a.root = &cobra.Command{
		Use:   "clinicdesk",
		Short: "A terminal dashboard for clinic appointments",
		Long: `clinicdesk shows a clinic's appointments as a filterable list,
a day timeline with overlapping visits side by side, and a month heat map
of how busy each day is.

Run without arguments to open the dashboard.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if a.noColor {
				DisableColor()
			}
			return a.setupLogging()
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return tui.Run(a.store, a.config, a.logger)
		},
	}

	// Add global flags
	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging (logs to "+logging.DebugLogPath+")")
	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable color output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.listCmd())
	a.root.AddCommand(a.dayCmd())
	a.root.AddCommand(a.weekCmd())
	a.root.AddCommand(a.heatmapCmd())
	a.root.AddCommand(a.showCmd())
	a.root.AddCommand(a.addCmd())
	a.root.AddCommand(a.editCmd())
	a.root.AddCommand(a.statusCmd())
	a.root.AddCommand(a.deleteCmd())
	a.root.AddCommand(a.slotsCmd())
	a.root.AddCommand(a.importCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "clinicdesk %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// SetArgs overrides os.Args for the root command.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

// SetOutput redirects command output.
func (a *App) SetOutput(w io.Writer) {
	a.root.SetOut(w)
	a.root.SetErr(w)
}

// Close releases the store if the app opened it, and the log file.
func (a *App) Close() error {
	var err error
	if a.ownsStore && a.store != nil {
		err = a.store.Close()
		a.store = nil
	}
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
	return err
}

func (a *App) setupLogging() error {
	opts := logging.Options{
		Level:   a.config.Log.Level,
		Path:    a.config.Log.Path,
		Service: "clinicdesk",
	}
	if a.debug {
		opts.Level = "debug"
		if opts.Path == "" {
			opts.Path = logging.DebugLogPath
		}
	}
	logger, closer, err := logging.New(opts)
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	a.logger = logger
	a.logCloser = closer
	return nil
}

// ensureStore opens the configured store when none was injected.
func (a *App) ensureStore(ctx context.Context) error {
	if a.store != nil {
		return nil
	}
	store, err := tui.OpenStore(ctx, a.config)
	if err != nil {
		return err
	}
	a.store = store
	a.ownsStore = true
	return nil
}

// loadBoard opens the store and loads every appointment into a board.
func (a *App) loadBoard(ctx context.Context, opts ...board.Option) (*board.Board, error) {
	if err := a.ensureStore(ctx); err != nil {
		return nil, err
	}
	opts = append([]board.Option{board.WithClock(a.now)}, opts...)
	b := board.New(a.store, a.logger, opts...)
	if err := b.Refresh(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (a *App) scheduler() *scheduler.Scheduler {
	return scheduler.New(a.config.Clinic.Workdays, a.config.Hours(), a.config.Clinic.SlotStep)
}
