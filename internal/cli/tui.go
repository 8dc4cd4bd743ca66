package cli

import (
	"github.com/onelouder/autoplex/internal/tui"

	"github.com/spf13/cobra"
)

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

func runTUI(cmd *cobra.Command, app *App) error {
	defer app.closeLog()

	ctx := cmd.Context()
	runner, client, snaps, err := app.newRunner(ctx)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer snaps.Close()

	return tui.Run(ctx, tui.Config{
		Runner:       runner,
		Store:        app.store,
		PollInterval: app.cfg.Poll.StatusInterval,
		RunNowDelay:  app.cfg.Poll.RunNowDelay,
		Quota:        app.cfg.Usage.Quota,
		Theme:        app.cfg.TUI.Theme,
		DocumentURL:  client.DocumentURL,
		Logger:       app.log,
	})
}
