package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/clinicdesk/internal/config"
	"github.com/javiermolinar/clinicdesk/internal/schedule"
	"github.com/javiermolinar/clinicdesk/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.

Example:
  clinicdesk config`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInteractive(path, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&path, "path", config.DefaultConfigPath(), "Config file to edit")
	return cmd
}

func runConfigInteractive(configPath string, in io.Reader, w io.Writer) error {
	fmt.Fprintf(w, "Config file: %s\n\n", configPath)

	// Load existing config or create defaults
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	_, fileErr := os.Stat(configPath)
	if os.IsNotExist(fileErr) {
		fmt.Fprintln(w, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(w, "Created %s\n\n", configPath)
	}

	printConfig(w, cfg)

	reader := bufio.NewReader(in)
	if !promptYesNo(reader, w, "\nWould you like to edit the configuration?") {
		return nil
	}

	cfg.Clinic.Open = promptValue(reader, w, "Opening time", cfg.Clinic.Open)
	cfg.Clinic.Close = promptValue(reader, w, "Closing time", cfg.Clinic.Close)
	cfg.Clinic.Workdays = promptSlice(reader, w, "Workdays (comma-separated)", cfg.Clinic.Workdays)
	cfg.Clinic.DefaultDuration = promptInt(reader, w, "Default length (minutes)", cfg.Clinic.DefaultDuration)
	cfg.Clinic.SlotStep = promptInt(reader, w, "Slot step (minutes)", cfg.Clinic.SlotStep)
	cfg.Storage.Driver = promptValue(reader, w, "Storage driver (sqlite, postgres)", cfg.Storage.Driver)
	if strings.EqualFold(cfg.Storage.Driver, "postgres") {
		cfg.Storage.DatabaseURL = promptValue(reader, w, "Database URL", cfg.Storage.DatabaseURL)
	} else {
		cfg.Storage.DBPath = promptValue(reader, w, "Database path", cfg.Storage.DBPath)
	}
	cfg.UI.Theme = promptTheme(reader, w, cfg.UI.Theme)
	cfg.UI.DefaultScope = promptScope(reader, w, cfg.UI.DefaultScope)
	cfg.Log.Level = promptValue(reader, w, "Log level", cfg.Log.Level)
	cfg.Log.Path = promptValue(reader, w, "Log file (empty to disable)", cfg.Log.Path)

	// Validate before saving
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(w, "\nConfiguration saved!")
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Current configuration:")
	fmt.Fprintln(w, "──────────────────────")
	fmt.Fprintln(w, "[clinic]")
	fmt.Fprintf(w, "  open             = %s\n", cfg.Clinic.Open)
	fmt.Fprintf(w, "  close            = %s\n", cfg.Clinic.Close)
	fmt.Fprintf(w, "  workdays         = %s\n", strings.Join(cfg.Clinic.Workdays, ", "))
	fmt.Fprintf(w, "  default_duration = %d\n", cfg.Clinic.DefaultDuration)
	fmt.Fprintf(w, "  slot_step        = %d\n", cfg.Clinic.SlotStep)
	fmt.Fprintln(w, "\n[storage]")
	fmt.Fprintf(w, "  driver           = %s\n", cfg.Storage.Driver)
	if strings.EqualFold(cfg.Storage.Driver, "postgres") {
		fmt.Fprintf(w, "  database_url     = %s\n", redactURL(cfg.Storage.DatabaseURL))
	} else {
		fmt.Fprintf(w, "  db_path          = %s\n", cfg.Storage.DBPath)
	}
	fmt.Fprintln(w, "\n[ui]")
	fmt.Fprintf(w, "  theme            = %s\n", cfg.UI.Theme)
	fmt.Fprintf(w, "  default_scope    = %s\n", cfg.UI.DefaultScope)
	fmt.Fprintln(w, "\n[log]")
	fmt.Fprintf(w, "  level            = %s\n", cfg.Log.Level)
	fmt.Fprintf(w, "  path             = %s\n", cfg.Log.Path)
}

// redactURL hides the password of a connection URL.
func redactURL(raw string) string {
	at := strings.LastIndex(raw, "@")
	scheme := strings.Index(raw, "://")
	if at < 0 || scheme < 0 {
		return raw
	}
	creds := raw[scheme+3 : at]
	if i := strings.IndexByte(creds, ':'); i >= 0 {
		return raw[:scheme+3] + creds[:i] + ":****" + raw[at:]
	}
	return raw
}

func promptValue(reader *bufio.Reader, w io.Writer, label, current string) string {
	if current == "" {
		fmt.Fprintf(w, "  %s: ", label)
	} else {
		fmt.Fprintf(w, "  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptInt(reader *bufio.Reader, w io.Writer, label string, current int) int {
	for {
		value := promptValue(reader, w, label, strconv.Itoa(current))
		n, err := strconv.Atoi(value)
		if err == nil && n > 0 {
			return n
		}
		fmt.Fprintf(w, "  Invalid number %q.\n", value)
	}
}

func promptSlice(reader *bufio.Reader, w io.Writer, label string, current []string) []string {
	currentStr := strings.Join(current, ", ")
	fmt.Fprintf(w, "  %s [%s]: ", label, currentStr)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, strings.ToLower(p))
		}
	}
	return result
}

func promptTheme(reader *bufio.Reader, w io.Writer, current string) string {
	options := strings.Join(theme.Available(), ", ")
	label := fmt.Sprintf("UI theme (%s)", options)
	for {
		value := strings.ToLower(promptValue(reader, w, label, current))
		if theme.IsAvailable(value) {
			return value
		}
		fmt.Fprintf(w, "  Invalid theme %q. Available: %s\n", value, options)
	}
}

func promptScope(reader *bufio.Reader, w io.Writer, current string) string {
	for {
		value := promptValue(reader, w, "Start tab (today, upcoming, past, all)", current)
		if scope, err := schedule.ParseScope(value); err == nil {
			return string(scope)
		}
		fmt.Fprintf(w, "  Invalid tab %q.\n", value)
	}
}
