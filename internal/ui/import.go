package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/clinicdesk/internal/appointment"
	"github.com/javiermolinar/clinicdesk/internal/db"
)

func (a *App) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [database_path]",
		Short: "Import appointments from another clinicdesk database",
		Long: `Copy every appointment of another clinicdesk SQLite database into
the current store. Appointments already present, or that would overlap a
booking of the same doctor, are skipped and reported. Rows the current
store rejects, such as visits outside clinic hours, are skipped as well.

Example:
  clinicdesk import /path/to/other.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := a.ensureStore(ctx); err != nil {
				return err
			}

			sourcePath, err := resolvePath(args[0])
			if err != nil {
				return err
			}
			if !strings.EqualFold(a.config.Storage.Driver, db.DriverPostgres) {
				destPath, err := resolvePath(a.config.Storage.DBPath)
				if err != nil {
					return err
				}
				if sourcePath == destPath {
					return fmt.Errorf("source database matches current database")
				}
			}

			info, err := os.Stat(sourcePath)
			if err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("source database does not exist: %s", sourcePath)
				}
				return fmt.Errorf("checking source database: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("source database path is a directory: %s", sourcePath)
			}

			result, err := importAppointments(ctx, a.store, sourcePath, a.config.Hours())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Imported %d appointments from %s\n", result.Imported, sourcePath)
			if result.Duplicates > 0 {
				fmt.Fprintf(w, "%s\n", formatMuted(fmt.Sprintf("Skipped %d already present", result.Duplicates)))
			}
			for _, c := range result.Conflicts {
				fmt.Fprintf(w, "%s %s\n", formatWarn("conflict:"), c)
			}
			for _, r := range result.Rejected {
				fmt.Fprintf(w, "%s %s\n", formatWarn("rejected:"), r)
			}
			return nil
		},
	}

	return cmd
}

// ImportResult reports what importAppointments did.
type ImportResult struct {
	Imported   int
	Duplicates int
	Conflicts  []string // descriptions of appointments that overlapped a booking
	Rejected   []string // appointments the destination refused, with the reason
}

func importAppointments(ctx context.Context, dest appointment.Repository, sourcePath string, hours appointment.Hours) (ImportResult, error) {
	var result ImportResult

	source, err := db.New(sourcePath, db.WithHours(hours))
	if err != nil {
		return result, fmt.Errorf("opening source database: %w", err)
	}
	defer func() { _ = source.Close() }()

	appts, err := source.List(ctx, appointment.Query{})
	if err != nil {
		return result, fmt.Errorf("listing source appointments: %w", err)
	}
	existing, err := dest.List(ctx, appointment.Query{})
	if err != nil {
		return result, fmt.Errorf("listing current appointments: %w", err)
	}

	seen := make(map[string]bool, len(existing))
	for _, a := range existing {
		seen[importKey(a)] = true
	}

	for _, a := range appts {
		if seen[importKey(a)] {
			result.Duplicates++
			continue
		}
		if _, err := dest.Create(ctx, a.ToInput()); err != nil {
			if errors.Is(err, appointment.ErrSlotConflict) {
				result.Conflicts = append(result.Conflicts, a.String())
				continue
			}
			if appointment.IsValidation(err) {
				result.Rejected = append(result.Rejected, fmt.Sprintf("%s: %v", a, err))
				continue
			}
			return result, fmt.Errorf("importing %s: %w", a, err)
		}
		seen[importKey(a)] = true
		result.Imported++
	}

	return result, nil
}

// importKey identifies the same visit across databases.
func importKey(a *appointment.Appointment) string {
	return strings.Join([]string{a.DateKey(), a.Time, strings.ToLower(a.PatientName), strings.ToLower(a.DoctorName)}, "|")
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	return absPath, nil
}
