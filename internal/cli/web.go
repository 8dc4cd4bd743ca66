package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/onelouder/autoplex/internal/web"

	"github.com/spf13/cobra"
)

func newWebCmd(app *App) *cobra.Command {
	var addr string
	var open bool

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the browser UI",
		Long: strings.TrimSpace(`
Serve the browser UI from a local HTTP server.

Pages are rendered on the server; the topic list and the status panel
update live over SSE. All pages share one client state, so a change made
in one tab shows up in the others.
`),
		Example: strings.TrimSpace(`
autoplex web
autoplex web --addr :3335 --open=false
autoplex --server http://10.0.0.5:5000/api web
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return writeErr(cmd, errors.New("web: missing --addr"))
			}

			ctx := cmd.Context()
			runner, _, snaps, err := app.newRunner(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer snaps.Close()

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}
			actualAddr := ln.Addr().String()

			srv, err := web.NewServer(ctx, web.ServerConfig{
				Addr:         actualAddr,
				Runner:       runner,
				PollInterval: app.cfg.Poll.StatusInterval,
				RunNowDelay:  app.cfg.Poll.RunNowDelay,
				Quota:        app.cfg.Usage.Quota,
				SecretDir:    app.store.Dir,
				Logger:       app.log,
			})
			if err != nil {
				_ = ln.Close()
				return writeErr(cmd, err)
			}

			url := "http://" + actualAddr + "/"
			opened := false
			openErr := ""
			if open {
				if err := openPath(url); err != nil {
					openErr = err.Error()
				} else {
					opened = true
				}
			}
			hints := []string{}
			if !opened {
				hints = append(hints, "open "+url)
			}
			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      actualAddr,
					"url":       url,
					"server":    app.cfg.Server.URL,
					"opened":    opened,
					"openError": openErr,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				"_hints": hints,
			})

			fmt.Fprintf(cmd.ErrOrStderr(), "autoplex web running at %s (server=%s)\n", url, app.cfg.Server.URL)
			if openErr != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to open browser: %s\n", openErr)
			}

			go srv.Poll(ctx)
			return serveUntilDone(ctx, ln, srv.Handler())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:3335", "Bind address (host:port or :port)")
	cmd.Flags().BoolVar(&open, "open", true, "Open the UI in your default browser")
	return cmd
}

// serveUntilDone serves h on ln and shuts down gracefully when ctx ends.
func serveUntilDone(ctx context.Context, ln net.Listener, h http.Handler) error {
	hs := &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- hs.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdownCtx)
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
