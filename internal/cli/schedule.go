package cli

import (
	"errors"
	"strings"

	"github.com/onelouder/autoplex/internal/model"
	"github.com/onelouder/autoplex/internal/state"

	"github.com/spf13/cobra"
)

func newScheduleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Update schedule settings",
	}
	cmd.AddCommand(newScheduleShowCmd(app))
	cmd.AddCommand(newScheduleSetCmd(app))
	return cmd
}

func newScheduleShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			if err := sess.fetch(cmd.Context(), state.ResourceSchedule); err != nil {
				return writeStale(cmd, app, sess, state.ResourceSchedule, err, func(s model.Schedule) any { return scheduleView(s) })
			}
			return writeOut(cmd, app, map[string]any{
				"data":   scheduleView(*sess.st.Schedule),
				"_hints": []string{"autoplex schedule set --frequency weekly --time 09:00"},
			})
		},
	}
}

func newScheduleSetCmd(app *App) *cobra.Command {
	var freq, timeOfDay string
	var email bool
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change frequency, time of day and/or email notifications",
		Example: strings.TrimSpace(`
autoplex schedule set --frequency weekly
autoplex schedule set --time 18:30 --email=false
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("frequency") && !flags.Changed("time") && !flags.Changed("email") {
				return writeErr(cmd, errors.New("nothing to change: pass --frequency, --time and/or --email"))
			}

			sess, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			ctx := cmd.Context()
			if err := sess.fetch(ctx, state.ResourceSchedule); err != nil {
				return writeErr(cmd, err)
			}
			next := *sess.st.Schedule
			if flags.Changed("frequency") {
				f, err := model.ParseFrequency(freq)
				if err != nil {
					return writeErr(cmd, err)
				}
				next.Frequency = f
			}
			if flags.Changed("time") {
				t, err := model.ParseTimeOfDay(timeOfDay)
				if err != nil {
					return writeErr(cmd, err)
				}
				next.TimeOfDay = t
			}
			if flags.Changed("email") {
				next.EmailNotifications = email
			}

			notices, events := sess.apply(ctx, state.SaveSchedule{Schedule: next})
			saved, ok := findEvent[state.ScheduleSaved](events)
			if !ok || saved.Err != nil {
				return writeErr(cmd, errOr(noticeErr(notices), state.MsgSaveScheduleFailed))
			}
			return writeOut(cmd, app, map[string]any{
				"data":   scheduleView(*sess.st.Schedule),
				"_hints": []string{noticeText(notices, state.NoticeSuccess), "autoplex status"},
			})
		},
	}
	cmd.Flags().StringVar(&freq, "frequency", "", "daily|weekly|monthly")
	cmd.Flags().StringVar(&timeOfDay, "time", "", "Time of day (HH:MM, 24h)")
	cmd.Flags().BoolVar(&email, "email", false, "Email notifications on/off")
	return cmd
}
