package state

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/onelouder/autoplex/internal/api"
	"github.com/onelouder/autoplex/internal/journaldoc"
	"github.com/onelouder/autoplex/internal/model"
)

// Backend is the REST surface the runner talks to. *api.Client implements it.
type Backend interface {
	ListTopics(ctx context.Context) ([]model.Topic, error)
	CreateTopic(ctx context.Context, in model.TopicInput) (model.Topic, error)
	UpdateTopic(ctx context.Context, id model.TopicID, in model.TopicInput) (model.Topic, error)
	DeleteTopic(ctx context.Context, id model.TopicID) (model.Message, error)
	RunNow(ctx context.Context, id model.TopicID) (model.Message, error)
	ListJournal(ctx context.Context) ([]model.JournalEntry, error)
	Status(ctx context.Context) (model.StatusSnapshot, error)
	Schedule(ctx context.Context) (model.Schedule, error)
	SaveSchedule(ctx context.Context, s model.Schedule) (model.Schedule, error)
	JournalDocument(ctx context.Context, filename string) (string, error)
	DocumentURL(filename string) string
}

var _ Backend = (*api.Client)(nil)

// SnapshotSink records the last successful fetch of each resource.
type SnapshotSink interface {
	SaveSnapshot(ctx context.Context, r Resource, v any) error
}

type DocumentConverter interface {
	Markdown(html, baseURL string) (string, error)
}

type Runner struct {
	backend Backend
	docs    DocumentConverter
	sink    SnapshotSink
	log     *slog.Logger
}

type RunnerOption func(*Runner)

func WithSnapshots(sink SnapshotSink) RunnerOption {
	return func(r *Runner) { r.sink = sink }
}

func WithDocuments(c DocumentConverter) RunnerOption {
	return func(r *Runner) {
		if c != nil {
			r.docs = c
		}
	}
}

func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

func NewRunner(b Backend, opts ...RunnerOption) *Runner {
	r := &Runner{
		backend: b,
		docs:    journaldoc.NewConverter(),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run performs eff and returns the event describing its outcome. Delays
// are the caller's concern; see Delay.
func (r *Runner) Run(ctx context.Context, eff Effect) Event {
	switch eff := eff.(type) {
	case FetchTopics:
		topics, err := r.backend.ListTopics(ctx)
		if err == nil {
			topics = nonNil(topics)
		}
		r.record(ctx, ResourceTopics, topics, err)
		return TopicsFetched{Topics: topics, Err: err}

	case FetchJournal:
		entries, err := r.backend.ListJournal(ctx)
		if err == nil {
			entries = nonNil(entries)
		}
		r.record(ctx, ResourceJournal, entries, err)
		return JournalFetched{Entries: entries, Err: err}

	case FetchStatus:
		snap, err := r.backend.Status(ctx)
		r.record(ctx, ResourceStatus, snap, err)
		return StatusFetched{Snapshot: snap, Err: err}

	case FetchSchedule:
		sched, err := r.backend.Schedule(ctx)
		r.record(ctx, ResourceSchedule, sched, err)
		return ScheduleFetched{Schedule: sched, Err: err}

	case CreateTopic:
		t, err := r.backend.CreateTopic(ctx, eff.Input)
		r.logFailure("create topic", err)
		return TopicSaved{Input: eff.Input, Topic: t, Err: err}

	case UpdateTopic:
		t, err := r.backend.UpdateTopic(ctx, eff.ID, eff.Input)
		r.logFailure("update topic", err, "id", eff.ID.String())
		return TopicSaved{ID: eff.ID, Input: eff.Input, Topic: t, Err: err}

	case DeleteTopic:
		msg, err := r.backend.DeleteTopic(ctx, eff.ID)
		r.logFailure("delete topic", err, "id", eff.ID.String())
		return TopicDeleted{ID: eff.ID, Message: msg.Message, Err: err}

	case RunTopic:
		msg, err := r.backend.RunNow(ctx, eff.ID)
		r.logFailure("run topic", err, "id", eff.ID.String())
		return RunStarted{ID: eff.ID, Message: msg.Message, Err: err}

	case PersistSchedule:
		saved, err := r.backend.SaveSchedule(ctx, eff.Schedule)
		r.logFailure("save schedule", err)
		return ScheduleSaved{Schedule: saved, Err: err}

	case FetchDocument:
		html, err := r.backend.JournalDocument(ctx, eff.Filename)
		if err != nil {
			r.logFailure("fetch document", err, "filename", eff.Filename)
			return DocumentFetched{Filename: eff.Filename, Err: err}
		}
		md, err := r.docs.Markdown(html, r.backend.DocumentURL(eff.Filename))
		r.logFailure("convert document", err, "filename", eff.Filename)
		return DocumentFetched{Filename: eff.Filename, Markdown: md, Err: err}
	}
	panic(fmt.Sprintf("state: unhandled effect %T", eff))
}

// Drive applies ev and runs every resulting effect to completion in order.
// Delayed effects are passed to deferred, or dropped when it is nil.
func (r *Runner) Drive(ctx context.Context, s State, ev Event, deferred func(Effect)) State {
	s, _ = r.Trace(ctx, s, ev, deferred)
	return s
}

// Trace is Drive that also returns the result events produced by the
// effects, in the order they were applied.
func (r *Runner) Trace(ctx context.Context, s State, ev Event, deferred func(Effect)) (State, []Event) {
	var results []Event
	queue := []Event{ev}
	for len(queue) > 0 {
		var effs []Effect
		s, effs = Update(s, queue[0])
		queue = queue[1:]
		for _, eff := range effs {
			if Delay(eff) > 0 {
				if deferred != nil {
					deferred(eff)
				}
				continue
			}
			res := r.Run(ctx, eff)
			results = append(results, res)
			queue = append(queue, res)
		}
	}
	return s, results
}

func (r *Runner) record(ctx context.Context, res Resource, v any, err error) {
	if err != nil {
		r.logFailure("fetch "+string(res), err)
		return
	}
	if r.sink == nil {
		return
	}
	if serr := r.sink.SaveSnapshot(ctx, res, v); serr != nil {
		r.log.Warn("snapshot save failed", "resource", res, "err", serr)
	}
}

func (r *Runner) logFailure(op string, err error, attrs ...any) {
	if err == nil {
		return
	}
	args := append([]any{"op", op, "err", err}, attrs...)
	if he, ok := api.AsHTTPError(err); ok {
		args = append(args, "status", he.Status)
	}
	r.log.Warn("request failed", args...)
}
