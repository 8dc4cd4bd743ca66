// Package apitest provides an in-memory backend speaking the tracker's REST
// surface, for tests that need a real HTTP round trip.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/onelouder/autoplex/internal/model"
)

type Backend struct {
	srv *httptest.Server

	mu        sync.Mutex
	nextID    int
	topics    []model.Topic
	journal   []model.JournalEntry
	documents map[string]string
	status    model.StatusSnapshot
	schedule  model.Schedule
	failures  map[string]int
	calls     map[string]int
}

// NewBackend starts the fake backend. It is closed when the test ends.
func NewBackend(t interface {
	Helper()
	Cleanup(func())
}) *Backend {
	t.Helper()
	b := &Backend{
		nextID:    1,
		topics:    []model.Topic{},
		journal:   []model.JournalEntry{},
		documents: map[string]string{},
		schedule:  model.DefaultSchedule(),
		failures:  map[string]int{},
		calls:     map[string]int{},
	}
	b.schedule.ID = 1
	b.status = model.StatusSnapshot{
		Status:         model.AppStatus{ID: 1, Status: "idle"},
		RecentActivity: []model.Activity{},
	}

	mux := http.NewServeMux()
	b.route(mux, "GET /api/topics", b.listTopics)
	b.route(mux, "POST /api/topics", b.createTopic)
	b.route(mux, "PUT /api/topics/{id}", b.updateTopic)
	b.route(mux, "DELETE /api/topics/{id}", b.deleteTopic)
	b.route(mux, "POST /api/run-now/{id}", b.runNow)
	b.route(mux, "GET /api/journal", b.listJournal)
	b.route(mux, "GET /api/status", b.getStatus)
	b.route(mux, "GET /api/schedule", b.getSchedule)
	b.route(mux, "POST /api/schedule", b.saveSchedule)
	b.route(mux, "GET /journal/{filename}", b.getDocument)

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

// APIURL is the base prefix to hand to api.New.
func (b *Backend) APIURL() string { return b.srv.URL + "/api" }

// Fail makes the route (e.g. "GET /api/topics") answer with status until
// cleared with Fail(route, 0).
func (b *Backend) Fail(route string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if status == 0 {
		delete(b.failures, route)
		return
	}
	b.failures[route] = status
}

// Calls returns how many requests hit route, including failed ones.
func (b *Backend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

func (b *Backend) AddTopic(name, query string, tags ...string) model.Topic {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addTopicLocked(model.TopicInput{Name: name, Query: query}, tags)
}

func (b *Backend) Topics() []model.Topic {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Topic(nil), b.topics...)
}

// AddJournalEntry registers an entry and the HTML served for it.
func (b *Backend) AddJournalEntry(e model.JournalEntry, html string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e.Tags == nil {
		e.Tags = []string{}
	}
	b.journal = append(b.journal, e)
	b.documents[e.Filename] = html
}

func (b *Backend) SetStatus(s model.StatusSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.RecentActivity == nil {
		s.RecentActivity = []model.Activity{}
	}
	b.status = s
}

func (b *Backend) Schedule() model.Schedule {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.schedule
}

func (b *Backend) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[pattern]++
		status := b.failures[pattern]
		b.mu.Unlock()
		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		h(w, r)
	})
}

func (b *Backend) addTopicLocked(in model.TopicInput, tags []string) model.Topic {
	now := model.Timestamp{Time: time.Now()}
	t := model.Topic{
		ID:        model.TopicID(strconv.Itoa(b.nextID)),
		Name:      in.Name,
		Query:     in.Query,
		Tags:      append([]string{}, tags...),
		CreatedAt: &now,
		Status:    "active",
	}
	b.nextID++
	b.topics = append(b.topics, t)
	return t
}

func (b *Backend) listTopics(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	out := append([]model.Topic{}, b.topics...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) createTopic(w http.ResponseWriter, r *http.Request) {
	var in model.TopicInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Name == "" || in.Query == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	t := b.addTopicLocked(in, nil)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, t)
}

func (b *Backend) updateTopic(w http.ResponseWriter, r *http.Request) {
	var in model.TopicInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	id := model.TopicID(r.PathValue("id"))
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.topics {
		if b.topics[i].ID.Equal(id) {
			b.topics[i].Name = in.Name
			b.topics[i].Query = in.Query
			writeJSON(w, http.StatusOK, b.topics[i])
			return
		}
	}
	http.NotFound(w, r)
}

func (b *Backend) deleteTopic(w http.ResponseWriter, r *http.Request) {
	id := model.TopicID(r.PathValue("id"))
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.topics {
		if b.topics[i].ID.Equal(id) {
			b.topics = append(b.topics[:i:i], b.topics[i+1:]...)
			writeJSON(w, http.StatusOK, model.Message{Message: "Topic deleted successfully"})
			return
		}
	}
	http.NotFound(w, r)
}

func (b *Backend) runNow(w http.ResponseWriter, r *http.Request) {
	id := model.TopicID(r.PathValue("id"))
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := model.FindTopic(b.topics, id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	b.status.Status.APICallsThisMonth++
	name := t.Name
	b.status.RecentActivity = append([]model.Activity{{
		ID:        len(b.status.RecentActivity) + 1,
		Timestamp: model.Timestamp{Time: time.Now()},
		TopicID:   &t.ID,
		TopicName: &name,
		Status:    model.ActivityInfo,
		Message:   fmt.Sprintf("Manual search started for %s", t.Name),
	}}, b.status.RecentActivity...)
	writeJSON(w, http.StatusOK, model.Message{Message: "Started search for topic: " + t.Name})
}

func (b *Backend) listJournal(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	out := append([]model.JournalEntry{}, b.journal...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getStatus(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	out := b.status
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) getSchedule(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	out := b.schedule
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (b *Backend) saveSchedule(w http.ResponseWriter, r *http.Request) {
	var in model.Schedule
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	in.ID = b.schedule.ID
	b.schedule = in
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, in)
}

func (b *Backend) getDocument(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("filename"))
	b.mu.Lock()
	html, ok := b.documents[name]
	b.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
