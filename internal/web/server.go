// Package web serves the browser front end: server-rendered pages whose
// live regions are patched over SSE with Datastar.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/onelouder/autoplex/internal/display"
	"github.com/onelouder/autoplex/internal/state"

	"github.com/starfederation/datastar-go/datastar"
)

//go:embed templates/*.html static/*.css
var assetsFS embed.FS

type ServerConfig struct {
	Addr   string
	Runner *state.Runner

	PollInterval time.Duration
	RunNowDelay  time.Duration
	Quota        int
	// SecretDir holds the form-token signing key. Empty keeps it in memory.
	SecretDir string

	Logger *slog.Logger
}

type Server struct {
	cfg    ServerConfig
	tmpl   *template.Template
	holder *state.Holder
	hub    *resourceHub
	secret []byte
	log    *slog.Logger
	now    func() time.Time
}

// NewServer builds the server. ctx bounds delayed refreshes scheduled by
// the shared state holder.
func NewServer(ctx context.Context, cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if cfg.Runner == nil {
		return nil, errors.New("web: runner is nil")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 60 * time.Second
	}
	if cfg.Quota <= 0 {
		cfg.Quota = display.DefaultQuota
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"percent": func(f float64) string { return fmt.Sprintf("%.0f", f) },
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	secret, err := loadOrInitSecretKey(cfg.SecretDir)
	if err != nil {
		return nil, fmt.Errorf("web: secret key: %w", err)
	}

	srv := &Server{
		cfg:    cfg,
		tmpl:   tmpl,
		holder: state.NewHolder(ctx, cfg.Runner, state.New(state.WithRunRefreshDelay(cfg.RunNowDelay))),
		hub:    newResourceHub(),
		secret: secret,
		log:    log,
		now:    time.Now,
	}
	srv.holder.OnChange(srv.hub.broadcast)
	return srv, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

// Poll loads every resource, then refreshes the status on the configured
// interval until ctx is done.
func (s *Server) Poll(ctx context.Context) {
	s.holder.Dispatch(ctx, state.Init{})
	t := time.NewTicker(s.cfg.PollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.holder.Dispatch(ctx, state.Tick{})
		}
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /static/app.css", s.handleAppCSS)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /topics", s.handleTopics)
	mux.HandleFunc("POST /topics", s.handleTopicCreate)
	mux.HandleFunc("POST /topics/{id}", s.handleTopicUpdate)
	mux.HandleFunc("POST /topics/{id}/delete", s.handleTopicDelete)
	mux.HandleFunc("POST /topics/{id}/run", s.handleTopicRun)
	mux.HandleFunc("GET /journal", s.handleJournal)
	mux.HandleFunc("GET /journal/search", s.handleJournalSearch)
	mux.HandleFunc("GET /journal/{filename}", s.handleDocument)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("POST /status/refresh", s.handleStatusRefresh)
	mux.HandleFunc("GET /schedule", s.handleSchedule)
	mux.HandleFunc("POST /schedule", s.handleScheduleSave)
	return s.logRequests(mux)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleAppCSS(w http.ResponseWriter, r *http.Request) {
	b, err := assetsFS.ReadFile("static/app.css")
	if err != nil || len(b) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/topics", http.StatusSeeOther)
}

type resourceHub struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func newResourceHub() *resourceHub {
	return &resourceHub{subs: map[chan struct{}]struct{}{}}
}

func (h *resourceHub) subscribe() (ch chan struct{}, cancel func()) {
	ch = make(chan struct{}, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}
}

func (h *resourceHub) broadcast() {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	h.mu.Unlock()
}

func (s *Server) renderTemplate(name string, data any) (string, error) {
	var b strings.Builder
	if err := s.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *Server) writeHTMLTemplate(w http.ResponseWriter, status int, name string, data any) {
	html, err := s.renderTemplate(name, data)
	if err != nil {
		s.log.Error("render template", "name", name, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, html)
}

// serveElementsStream patches selector with render's output now and after
// every state change, until the client goes away.
func (s *Server) serveElementsStream(w http.ResponseWriter, r *http.Request, selector string, render func(state.State) (string, error)) {
	sse := datastar.NewSSE(w, r)

	ch, cancel := s.hub.subscribe()
	defer cancel()

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	patch := func() {
		html, err := render(s.holder.Snapshot())
		if err != nil {
			_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, err.Error()))
			return
		}
		if strings.TrimSpace(html) == "" {
			return
		}
		_ = sse.PatchElements(html, datastar.WithSelector(selector), datastar.WithMode(datastar.ElementPatchModeInner))
	}

	patch()
	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case <-ch:
			patch()
		}
	}
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	view := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("view")))
	switch view {
	case "topics":
		s.serveElementsStream(w, r, "#topics-list", func(st state.State) (string, error) {
			return s.renderTemplate("topics_list", s.topicsVM(st))
		})
	case "status":
		s.serveElementsStream(w, r, "#status-panel", func(st state.State) (string, error) {
			return s.renderTemplate("status_panel", s.statusVM(st))
		})
	default:
		http.Error(w, "missing/invalid view (expected topics|status)", http.StatusBadRequest)
	}
}

// refresh fetches r on page load, the way the pages mount.
func (s *Server) refresh(ctx context.Context, r state.Resource) state.State {
	return s.holder.Dispatch(ctx, state.Refresh{Resource: r})
}

func (s *Server) checkForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return false
	}
	if _, err := verifyToken(s.secret, r.PostForm.Get(csrfField), s.now()); err != nil {
		http.Error(w, "invalid or expired form token; reload the page", http.StatusForbidden)
		return false
	}
	return true
}

func (s *Server) formToken() string {
	tok, err := newFormToken(s.secret, s.now())
	if err != nil {
		s.log.Error("form token", "err", err)
		return ""
	}
	return tok
}

func redirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	ref := strings.TrimSpace(r.Header.Get("Referer"))
	if ref != "" {
		http.Redirect(w, r, ref, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, fallback, http.StatusSeeOther)
}
