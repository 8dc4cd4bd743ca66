package cli

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/onelouder/autoplex/internal/webtui"

	"github.com/spf13/cobra"
)

func newWebTUICmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "webtui",
		Short: "Run the terminal UI in your browser (PTY + WebSocket)",
		Long: strings.TrimSpace(`
Run the terminal UI over the web via a server-side PTY and a browser
terminal emulator.

Each browser tab starts its own TUI subprocess with the same --server,
--config and --log-level as this command. There is no authentication:
bind to localhost unless you trust the network.
`),
		Example: strings.TrimSpace(`
autoplex webtui
autoplex --server http://10.0.0.5:5000/api webtui --addr :3334
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return writeErr(cmd, errors.New("webtui: missing --addr"))
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}
			actualAddr := ln.Addr().String()

			srv, err := webtui.NewServer(webtui.ServerConfig{
				Addr:   actualAddr,
				Args:   app.sessionArgs(),
				Logger: app.log,
			})
			if err != nil {
				_ = ln.Close()
				return writeErr(cmd, err)
			}

			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      actualAddr,
					"server":    app.cfg.Server.URL,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				"_hints": []string{
					"open http://" + actualAddr,
				},
			})

			fmt.Fprintf(cmd.ErrOrStderr(), "autoplex webtui running at http://%s (server=%s)\n", actualAddr, app.cfg.Server.URL)
			return serveUntilDone(cmd.Context(), ln, srv.Handler())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:3334", "Bind address (host:port or :port)")
	return cmd
}

// sessionArgs is the argv for one browser session's TUI subprocess.
func (app *App) sessionArgs() []string {
	args := []string{"--server", app.cfg.Server.URL}
	if p := strings.TrimSpace(app.ConfigPath); p != "" {
		args = append(args, "--config", p)
	}
	if l := strings.TrimSpace(app.LogLevel); l != "" {
		args = append(args, "--log-level", l)
	}
	return append(args, "tui")
}
