package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/onelouder/autoplex/internal/model"
	"github.com/onelouder/autoplex/internal/state"

	"github.com/spf13/cobra"
)

func newTopicsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "topics",
		Aliases: []string{"topic"},
		Short:   "Research topics",
	}
	cmd.AddCommand(newTopicsListCmd(app))
	cmd.AddCommand(newTopicsAddCmd(app))
	cmd.AddCommand(newTopicsEditCmd(app))
	cmd.AddCommand(newTopicsRmCmd(app))
	cmd.AddCommand(newTopicsRunCmd(app))
	return cmd
}

func newTopicsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List research topics in server order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			if err := sess.fetch(cmd.Context(), state.ResourceTopics); err != nil {
				return writeStale(cmd, app, sess, state.ResourceTopics, err, func(ts []model.Topic) any { return topicRows(ts) })
			}
			hints := []string{}
			if len(sess.st.Topics) == 0 {
				hints = append(hints, `autoplex topics add "<name>" "<query>"`)
			}
			return writeOut(cmd, app, map[string]any{"data": topicRows(sess.st.Topics), "_hints": hints})
		},
	}
}

func newTopicsAddCmd(app *App) *cobra.Command {
	var name, query string
	cmd := &cobra.Command{
		Use:   "add [name] [query]",
		Short: "Create a research topic",
		Example: strings.TrimSpace(`
autoplex topics add "AI Safety" "alignment research"
autoplex topics add --name "Fusion" --query "tokamak confinement"
`),
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 && !cmd.Flags().Changed("name") {
				name = args[0]
			}
			if len(args) > 1 && !cmd.Flags().Changed("query") {
				query = args[1]
			}

			sess, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			ctx := cmd.Context()
			sess.apply(ctx, state.OpenNewTopic{Name: name})
			notices, events := sess.apply(ctx, state.SubmitTopic{Name: name, Query: query})
			saved, ok := findEvent[state.TopicSaved](events)
			if !ok || saved.Err != nil {
				return writeErr(cmd, errOr(noticeErr(notices), state.MsgCreateTopicFailed))
			}
			return writeOut(cmd, app, map[string]any{
				"data": saved.Topic,
				"_hints": []string{
					noticeText(notices, state.NoticeSuccess),
					"autoplex topics run " + saved.Topic.ID.String(),
				},
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Topic name")
	cmd.Flags().StringVar(&query, "query", "", "Search query")
	return cmd
}

func newTopicsEditCmd(app *App) *cobra.Command {
	var name, query string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update a topic's name and/or query",
		Example: strings.TrimSpace(`
autoplex topics edit 3 --query "mechanistic interpretability"
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("name") && !cmd.Flags().Changed("query") {
				return writeErr(cmd, errors.New("nothing to change: pass --name and/or --query"))
			}
			sess, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			ctx := cmd.Context()
			if err := sess.fetch(ctx, state.ResourceTopics); err != nil {
				return writeErr(cmd, err)
			}
			notices, _ := sess.apply(ctx, state.OpenEditTopic{ID: model.TopicID(args[0])})
			if err := noticeErr(notices); err != nil {
				return writeErr(cmd, err)
			}

			form := *sess.st.Editing
			if cmd.Flags().Changed("name") {
				form.Name = name
			}
			if cmd.Flags().Changed("query") {
				form.Query = query
			}
			notices, events := sess.apply(ctx, state.SubmitTopic{Name: form.Name, Query: form.Query})
			saved, ok := findEvent[state.TopicSaved](events)
			if !ok || saved.Err != nil {
				return writeErr(cmd, errOr(noticeErr(notices), state.MsgUpdateTopicFailed))
			}
			return writeOut(cmd, app, map[string]any{
				"data":   saved.Topic,
				"_hints": []string{noticeText(notices, state.NoticeSuccess)},
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New topic name")
	cmd.Flags().StringVar(&query, "query", "", "New search query")
	return cmd
}

func newTopicsRmCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a topic (asks for confirmation unless --yes)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			ctx := cmd.Context()
			if err := sess.fetch(ctx, state.ResourceTopics); err != nil {
				return writeErr(cmd, err)
			}
			id := model.TopicID(args[0])
			sess.apply(ctx, state.RequestDeleteTopic{ID: id})
			if sess.st.Confirm == nil {
				return writeErr(cmd, errors.New(state.MsgTopicNotFound))
			}

			if !yes && !confirm(cmd, sess.st.Confirm.Prompt()) {
				sess.apply(ctx, state.CancelConfirm{})
				return writeErr(cmd, errCancelled)
			}

			notices, events := sess.apply(ctx, state.ConfirmDelete{})
			deleted, ok := findEvent[state.TopicDeleted](events)
			if !ok || deleted.Err != nil {
				return writeErr(cmd, errOr(noticeErr(notices), state.MsgDeleteTopicFailed))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"id":      deleted.ID,
					"message": noticeText(notices, state.NoticeSuccess),
				},
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.ErrOrStderr(), prompt+" [y/N] ")
	line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func newTopicsRunCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run <id>",
		Short: "Trigger an immediate search for a topic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			notices, events := sess.apply(cmd.Context(), state.RunNow{ID: model.TopicID(args[0])})
			started, ok := findEvent[state.RunStarted](events)
			if !ok || started.Err != nil {
				return writeErr(cmd, errOr(noticeErr(notices), state.MsgRunTopicFailed))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"id":      started.ID,
					"message": started.Message,
				},
				"_hints": []string{"autoplex status"},
			})
		},
	}
}
