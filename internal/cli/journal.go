package cli

import (
	"fmt"
	"strings"

	"github.com/onelouder/autoplex/internal/journaldoc"
	"github.com/onelouder/autoplex/internal/model"
	"github.com/onelouder/autoplex/internal/state"

	"github.com/spf13/cobra"
)

func newJournalCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Generated journal entries",
	}
	cmd.AddCommand(newJournalListCmd(app))
	cmd.AddCommand(newJournalShowCmd(app))
	cmd.AddCommand(newJournalOpenCmd(app))
	return cmd
}

func newJournalListCmd(app *App) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List journal entries, optionally filtered by topic name or tag",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			ctx := cmd.Context()
			sess.apply(ctx, state.SetJournalFilter{Term: search})
			if err := sess.fetch(ctx, state.ResourceJournal); err != nil {
				return writeStale(cmd, app, sess, state.ResourceJournal, err, func(es []model.JournalEntry) any {
					return journalRows(filterEntries(es, search))
				})
			}
			hints := []string{}
			if len(sess.st.Journal) == 0 {
				hints = append(hints, "autoplex topics run <id>")
			} else {
				hints = append(hints, "autoplex journal show <filename>")
			}
			return writeOut(cmd, app, map[string]any{"data": journalRows(sess.st.VisibleJournal()), "_hints": hints})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive match on topic name or tag")
	return cmd
}

func filterEntries(es []model.JournalEntry, term string) []model.JournalEntry {
	out := make([]model.JournalEntry, 0, len(es))
	for _, e := range es {
		if e.Matches(term) {
			out = append(out, e)
		}
	}
	return out
}

func newJournalShowCmd(app *App) *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "show <filename>",
		Short: "Show a journal entry's document as Markdown",
		Long: strings.TrimSpace(`
Fetch a journal entry's document and convert it to Markdown.

With --format table the Markdown is rendered for the terminal; json/edn
return {filename, url, markdown}.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			notices, _ := sess.apply(cmd.Context(), state.ViewEntry{Filename: args[0]})
			doc := sess.st.Document
			if doc == nil || doc.Loading {
				return writeErr(cmd, errOr(noticeErr(notices), state.MsgOpenDocumentFailed))
			}

			if strings.EqualFold(strings.TrimSpace(app.Format), "table") {
				_, err := fmt.Fprint(cmd.OutOrStdout(), journaldoc.RenderTerminal(doc.Markdown, width))
				return err
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"filename": doc.Filename,
					"url":      sess.client.DocumentURL(doc.Filename),
					"markdown": doc.Markdown,
				},
			})
		},
	}
	cmd.Flags().IntVar(&width, "width", 100, "Wrap width for --format table")
	return cmd
}

func newJournalOpenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "open <filename>",
		Short: "Open a journal entry's document in the browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.openSession(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer sess.Close()

			url := sess.client.DocumentURL(strings.TrimSpace(args[0]))
			if err := openPath(url); err != nil {
				return writeErr(cmd, fmt.Errorf("open %s: %w", url, err))
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"url": url, "opened": true}})
		},
	}
}
