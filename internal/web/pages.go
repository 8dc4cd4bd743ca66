package web

import (
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/onelouder/autoplex/internal/display"
	"github.com/onelouder/autoplex/internal/model"
	"github.com/onelouder/autoplex/internal/state"

	"github.com/starfederation/datastar-go/datastar"
)

type page struct {
	Title  string
	Active string
	Flash  []state.Notice
	CSRF   string
}

func (s *Server) newPage(title, active string) page {
	return page{
		Title:  title,
		Active: active,
		Flash:  s.holder.TakeNotices(),
		CSRF:   s.formToken(),
	}
}

type topicRow struct {
	ID      string
	Name    string
	Query   string
	Tags    string
	Updated string
}

type topicForm struct {
	Title  string
	Action string
	Submit string
	Name   string
	Query  string
	Err    string
}

type deleteConfirm struct {
	ID     string
	Prompt string
}

type topicsPage struct {
	page
	Loaded  bool
	Empty   string
	Topics  []topicRow
	Form    *topicForm
	Confirm *deleteConfirm
}

func (s *Server) topicsVM(st state.State) topicsPage {
	now := s.now()
	rows := make([]topicRow, 0, len(st.Topics))
	for _, t := range st.Topics {
		updated := "never"
		if ts := t.LastUpdated.TimeOrNil(); ts != nil {
			updated = display.TimeAgo(*ts, now)
		}
		rows = append(rows, topicRow{
			ID:      t.ID.String(),
			Name:    t.Name,
			Query:   t.Query,
			Tags:    display.Tags(t.Tags),
			Updated: updated,
		})
	}
	return topicsPage{
		page:   page{CSRF: s.formToken()},
		Loaded: st.Loaded(state.ResourceTopics),
		Empty:  display.EmptyTopics,
		Topics: rows,
	}
}

func newTopicForm(f state.Form) *topicForm {
	out := &topicForm{
		Title:  f.Title(),
		Action: "/topics",
		Submit: "Add Topic",
		Name:   f.Name,
		Query:  f.Query,
		Err:    f.Err,
	}
	if !f.IsNew() {
		out.Action = "/topics/" + url.PathEscape(f.ID.String())
		out.Submit = "Update Topic"
	}
	return out
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	st := s.refresh(r.Context(), state.ResourceTopics)
	vm := s.topicsVM(st)
	vm.page = s.newPage("Research Topics", "topics")

	q := r.URL.Query()
	switch {
	case q.Has("new"):
		vm.Form = newTopicForm(state.Form{Name: strings.TrimSpace(q.Get("name"))})
	case q.Get("edit") != "":
		if t, ok := st.FindTopic(model.TopicID(q.Get("edit"))); ok {
			vm.Form = newTopicForm(state.Form{ID: t.ID, Name: t.Name, Query: t.Query})
		} else {
			vm.Flash = append(vm.Flash, state.Notice{Level: state.NoticeError, Text: state.MsgTopicNotFound})
		}
	case q.Get("delete") != "":
		if t, ok := st.FindTopic(model.TopicID(q.Get("delete"))); ok {
			vm.Confirm = &deleteConfirm{ID: t.ID.String(), Prompt: display.DeletePrompt(t.Name)}
		}
	}
	s.writeHTMLTemplate(w, http.StatusOK, "topics", vm)
}

// submitTopic saves the posted topic in one dispatch. A form that failed
// validation or saving is returned for re-display.
func (s *Server) submitTopic(w http.ResponseWriter, r *http.Request, id model.TopicID) {
	form := state.Form{ID: id, Name: r.PostForm.Get("name"), Query: r.PostForm.Get("query")}
	_, results := s.holder.DispatchTrace(r.Context(), state.SaveTopic{ID: id, Name: form.Name, Query: form.Query})
	if len(results) == 0 && (model.TopicInput{Name: form.Name, Query: form.Query}).Normalize().Valid() {
		// The topic vanished since the refresh; the not-found notice is queued.
		http.Redirect(w, r, "/topics", http.StatusSeeOther)
		return
	}

	status := http.StatusUnprocessableEntity
	form.Err = state.MsgRequiredFields
	for _, ev := range results {
		saved, ok := ev.(state.TopicSaved)
		if !ok {
			continue
		}
		if saved.Err == nil {
			http.Redirect(w, r, "/topics", http.StatusSeeOther)
			return
		}
		status = http.StatusBadGateway
		form.Err = state.MsgUpdateTopicFailed
		if id.IsZero() {
			form.Err = state.MsgCreateTopicFailed
		}
	}

	vm := s.topicsVM(s.holder.Snapshot())
	vm.page = s.newPage("Research Topics", "topics")
	vm.Form = newTopicForm(form)
	// The error is shown inside the form.
	vm.Flash = dropNotice(vm.Flash, form.Err)
	s.writeHTMLTemplate(w, status, "topics", vm)
}

func dropNotice(ns []state.Notice, text string) []state.Notice {
	out := ns[:0:0]
	for _, n := range ns {
		if n.Level == state.NoticeError && n.Text == text {
			continue
		}
		out = append(out, n)
	}
	return out
}

func (s *Server) handleTopicCreate(w http.ResponseWriter, r *http.Request) {
	if !s.checkForm(w, r) {
		return
	}
	s.submitTopic(w, r, "")
}

func (s *Server) handleTopicUpdate(w http.ResponseWriter, r *http.Request) {
	if !s.checkForm(w, r) {
		return
	}
	id := model.TopicID(r.PathValue("id"))
	if id.IsZero() {
		http.Error(w, "missing topic id", http.StatusBadRequest)
		return
	}
	st := s.refresh(r.Context(), state.ResourceTopics)
	if _, ok := st.FindTopic(id); !ok {
		// Queues the not-found notice for the next page.
		s.holder.Dispatch(r.Context(), state.SaveTopic{ID: id})
		http.Redirect(w, r, "/topics", http.StatusSeeOther)
		return
	}
	s.submitTopic(w, r, id)
}

func (s *Server) handleTopicDelete(w http.ResponseWriter, r *http.Request) {
	if !s.checkForm(w, r) {
		return
	}
	ctx := r.Context()
	id := model.TopicID(r.PathValue("id"))
	if id.IsZero() {
		http.Error(w, "missing topic id", http.StatusBadRequest)
		return
	}
	if _, ok := s.holder.Snapshot().FindTopic(id); !ok {
		s.refresh(ctx, state.ResourceTopics)
	}
	s.holder.Dispatch(ctx, state.ConfirmDelete{ID: id})
	http.Redirect(w, r, "/topics", http.StatusSeeOther)
}

func (s *Server) handleTopicRun(w http.ResponseWriter, r *http.Request) {
	if !s.checkForm(w, r) {
		return
	}
	s.holder.Dispatch(r.Context(), state.RunNow{ID: model.TopicID(r.PathValue("id"))})
	redirectBack(w, r, "/topics")
}

type journalRow struct {
	Filename string
	Href     string
	Topic    string
	Updated  string
	Status   string
	Tags     string
}

type journalPage struct {
	page
	Query   string
	Signals string
	Loaded  bool
	Total   int
	Empty   string
	Entries []journalRow
}

func journalVM(st state.State, term string) journalPage {
	st, _ = state.Update(st, state.SetJournalFilter{Term: term})
	visible := st.VisibleJournal()
	rows := make([]journalRow, 0, len(visible))
	for _, e := range visible {
		rows = append(rows, journalRow{
			Filename: e.Filename,
			Href:     "/journal/" + url.PathEscape(e.Filename),
			Topic:    e.TopicName,
			Updated:  e.Updated,
			Status:   display.EntryStatusLabel(e.Status()),
			Tags:     display.Tags(e.Tags),
		})
	}
	vm := journalPage{
		Query:   strings.TrimSpace(term),
		Signals: journalSignals{Q: strings.TrimSpace(term)}.String(),
		Loaded:  st.Loaded(state.ResourceJournal),
		Total:   len(st.Journal),
		Entries: rows,
	}
	switch {
	case vm.Total == 0:
		vm.Empty = display.EmptyJournal
	case len(rows) == 0:
		vm.Empty = "No entries match \"" + vm.Query + "\"."
	}
	return vm
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	st := s.refresh(r.Context(), state.ResourceJournal)
	vm := journalVM(st, r.URL.Query().Get("q"))
	vm.page = s.newPage("Journal", "journal")
	s.writeHTMLTemplate(w, http.StatusOK, "journal", vm)
}

type journalSignals struct {
	Q string `json:"q"`
}

func (j journalSignals) String() string {
	b, err := json.Marshal(j)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// handleJournalSearch re-renders the list for the search box signal
// without touching the shared filter.
func (s *Server) handleJournalSearch(w http.ResponseWriter, r *http.Request) {
	var sig journalSignals
	if err := datastar.ReadSignals(r, &sig); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	html, err := s.renderTemplate("journal_list", journalVM(s.holder.Snapshot(), sig.Q))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	sse := datastar.NewSSE(w, r)
	_ = sse.PatchElements(html, datastar.WithSelector("#journal-list"), datastar.WithMode(datastar.ElementPatchModeInner))
}

type documentPage struct {
	page
	Filename string
	Body     template.HTML
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("filename"))
	ev := s.cfg.Runner.Run(r.Context(), state.FetchDocument{Filename: name})
	doc, _ := ev.(state.DocumentFetched)
	if doc.Err != nil {
		vm := documentPage{page: s.newPage(name, "journal"), Filename: name}
		vm.Flash = append(vm.Flash, state.Notice{Level: state.NoticeError, Text: state.MsgOpenDocumentFailed})
		s.writeHTMLTemplate(w, http.StatusBadGateway, "document", vm)
		return
	}
	vm := documentPage{
		page:     s.newPage(name, "journal"),
		Filename: name,
		Body:     renderMarkdownHTML(doc.Markdown),
	}
	s.writeHTMLTemplate(w, http.StatusOK, "document", vm)
}

type activityRow struct {
	Icon    string
	Level   string
	When    string
	Topic   string
	Message string
}

type statusPage struct {
	page
	Loaded       bool
	Label        string
	NextRun      string
	LastRun      string
	Usage        string
	UsageLevel   display.UsageLevel
	UsagePercent float64
	Activity     []activityRow
	NoActivity   string
}

func (s *Server) statusVM(st state.State) statusPage {
	vm := statusPage{
		page:       page{CSRF: s.formToken()},
		Loaded:     st.Loaded(state.ResourceStatus),
		NoActivity: display.NoRecentActivity,
	}
	if st.Status == nil {
		return vm
	}
	now := s.now()
	snap := st.Status
	calls := snap.Status.APICallsThisMonth
	vm.Label = display.StatusLabel(snap.Status.Status)
	vm.NextRun = display.NextRunLine(snap.Status.NextRunTime.TimeOrNil(), now)
	vm.LastRun = "never"
	if t := snap.Status.LastRunTime.TimeOrNil(); t != nil {
		vm.LastRun = display.TimeAgo(*t, now)
	}
	vm.Usage = display.UsageLabel(calls, s.cfg.Quota)
	vm.UsageLevel = display.Usage(calls, s.cfg.Quota)
	vm.UsagePercent = display.UsagePercent(calls, s.cfg.Quota)
	for _, a := range snap.RecentActivity {
		row := activityRow{
			Icon:    display.ActivityIcon(a.Status),
			Level:   string(a.Status.Normalize()),
			When:    "-",
			Message: a.Message,
		}
		if t := a.Timestamp.TimeOrNil(); t != nil {
			row.When = display.TimeAgo(*t, now)
		}
		if a.TopicName != nil {
			row.Topic = *a.TopicName
		}
		vm.Activity = append(vm.Activity, row)
	}
	return vm
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.refresh(r.Context(), state.ResourceStatus)
	vm := s.statusVM(st)
	vm.page = s.newPage("Status", "status")
	s.writeHTMLTemplate(w, http.StatusOK, "status", vm)
}

func (s *Server) handleStatusRefresh(w http.ResponseWriter, r *http.Request) {
	if !s.checkForm(w, r) {
		return
	}
	s.refresh(r.Context(), state.ResourceStatus)
	http.Redirect(w, r, "/status", http.StatusSeeOther)
}

type frequencyOption struct {
	Value    string
	Label    string
	Selected bool
}

type schedulePage struct {
	page
	Frequencies []frequencyOption
	TimeOfDay   string
	Email       bool
	Err         string
}

func scheduleVM(sched model.Schedule) schedulePage {
	vm := schedulePage{TimeOfDay: sched.TimeOfDay, Email: sched.EmailNotifications}
	for _, f := range model.Frequencies {
		vm.Frequencies = append(vm.Frequencies, frequencyOption{
			Value:    string(f),
			Label:    display.FormatFrequency(f),
			Selected: f == sched.Frequency,
		})
	}
	return vm
}

func currentSchedule(st state.State) model.Schedule {
	if st.Schedule != nil {
		return *st.Schedule
	}
	return model.DefaultSchedule()
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	st := s.refresh(r.Context(), state.ResourceSchedule)
	vm := scheduleVM(currentSchedule(st))
	vm.page = s.newPage("Schedule", "schedule")
	s.writeHTMLTemplate(w, http.StatusOK, "schedule", vm)
}

const msgInvalidSchedule = "Choose a frequency and a time of day as HH:MM (24-hour)."

func (s *Server) handleScheduleSave(w http.ResponseWriter, r *http.Request) {
	if !s.checkForm(w, r) {
		return
	}
	sched := currentSchedule(s.holder.Snapshot())
	freq, ferr := model.ParseFrequency(r.PostForm.Get("frequency"))
	tod, terr := model.ParseTimeOfDay(r.PostForm.Get("time_of_day"))
	if ferr != nil || terr != nil {
		vm := scheduleVM(sched)
		vm.page = s.newPage("Schedule", "schedule")
		vm.TimeOfDay = r.PostForm.Get("time_of_day")
		vm.Err = msgInvalidSchedule
		s.writeHTMLTemplate(w, http.StatusUnprocessableEntity, "schedule", vm)
		return
	}
	sched.Frequency = freq
	sched.TimeOfDay = tod
	sched.EmailNotifications = r.PostForm.Get("email_notifications") != ""

	s.holder.Dispatch(r.Context(), state.SaveSchedule{Schedule: sched})
	http.Redirect(w, r, "/schedule", http.StatusSeeOther)
}
