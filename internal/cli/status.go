package cli

import (
	"time"

	"github.com/onelouder/autoplex/internal/model"
	"github.com/onelouder/autoplex/internal/state"

	"github.com/spf13/cobra"
)

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show scheduler status, API usage and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			quota := app.cfg.Usage.Quota
			if err := sess.fetch(cmd.Context(), state.ResourceStatus); err != nil {
				return writeStale(cmd, app, sess, state.ResourceStatus, err, func(s model.StatusSnapshot) any {
					return newStatusReport(s, quota, time.Now())
				})
			}
			return writeOut(cmd, app, map[string]any{
				"data": newStatusReport(*sess.st.Status, quota, time.Now()),
			})
		},
	}
}
