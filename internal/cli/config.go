package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect client configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (file + env + flags)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOut(cmd, app, map[string]any{
				"data": app.cfg,
				"meta": map[string]any{
					"configPath": app.configPath(),
					"configDir":  app.store.Dir,
				},
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to config.yaml if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.store.ConfigPath()
			if _, err := os.Stat(path); err == nil {
				return writeErr(cmd, errors.New("config already exists: "+path))
			}
			if err := app.store.SaveConfig(app.cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   map[string]any{"path": path},
				"_hints": []string{"autoplex config show"},
			})
		},
	})
	return cmd
}

func (app *App) configPath() string {
	if app.ConfigPath != "" {
		return app.ConfigPath
	}
	return app.store.ConfigPath()
}
