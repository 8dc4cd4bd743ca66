package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/onelouder/autoplex/internal/applog"
	"github.com/onelouder/autoplex/internal/format"
	"github.com/onelouder/autoplex/internal/store"

	"github.com/spf13/cobra"
)

type App struct {
	Server     string
	ConfigPath string
	LogLevel   string
	PrettyJSON bool
	Format     string

	store   store.Store
	cfg     *store.Config
	log     *slog.Logger
	logFile io.Closer
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "autoplex",
		Short:        "Research topic tracker: terminal UI, web UI and scriptable CLI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  autoplex

  # Scriptable commands
  autoplex topics list
  autoplex topics add "AI Safety" "alignment research"
  autoplex journal list --search safety

  # Direct entry lookup (shortcut for: autoplex journal show <filename>)
  autoplex ai-safety-new.html
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd, usesTerminal(cmd, args))
	}

	cmd.PersistentFlags().StringVar(&app.Server, "server", "", "Backend API base URL (default from config, e.g. http://127.0.0.1:5000/api)")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("AUTOPLEX_CONFIG", ""), "Path to config.yaml (default: ~/.autoplex/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("AUTOPLEX_FORMAT", "json"), "Output format (json|edn|table)")

	cmd.AddCommand(newTopicsCmd(app))
	cmd.AddCommand(newJournalCmd(app))
	cmd.AddCommand(newStatusCmd(app))
	cmd.AddCommand(newScheduleCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newTUICmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newWebTUICmd(app))

	return cmd
}

// usesTerminal reports whether cmd hands the terminal to the TUI, in which
// case logs must not reach stderr.
func usesTerminal(cmd *cobra.Command, args []string) bool {
	if cmd.Name() == "tui" {
		return true
	}
	return cmd == cmd.Root() && len(args) == 0
}

func (app *App) setup(cmd *cobra.Command, terminal bool) error {
	if !slices.Contains(format.Formats, strings.ToLower(strings.TrimSpace(app.Format))) {
		return writeErr(cmd, fmt.Errorf("unknown format: %s (want json|edn|table)", app.Format))
	}

	st, err := store.Default()
	if err != nil {
		return writeErr(cmd, err)
	}
	cfg, err := st.LoadConfig(app.ConfigPath)
	if err != nil {
		return writeErr(cmd, err)
	}
	if v := strings.TrimSpace(app.Server); v != "" {
		cfg.Server.URL = v
	}
	if v := strings.TrimSpace(app.LogLevel); v != "" {
		cfg.Log.Level = v
	}
	if err := cfg.Validate(); err != nil {
		return writeErr(cmd, err)
	}
	app.store, app.cfg = st, cfg

	switch {
	case !terminal:
		app.log = applog.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	case strings.TrimSpace(cfg.Log.File) != "":
		f, err := applog.OpenFile(cfg.Log.File)
		if err != nil {
			return writeErr(cmd, fmt.Errorf("open log file: %w", err))
		}
		app.logFile = f
		app.log = applog.New(f, cfg.Log.Level, cfg.Log.Format)
	default:
		app.log = applog.Discard()
	}
	slog.SetDefault(app.log)
	return nil
}

func (app *App) closeLog() {
	if app.logFile != nil {
		_ = app.logFile.Close()
		app.logFile = nil
	}
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

var errCancelled = errors.New("cancelled")
