package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// TopicID identifies a topic on the server.
//
// The backend emits numeric ids, but ids are treated as opaque: both JSON
// numbers and strings decode, and comparison is done on the trimmed text.
type TopicID string

func (id TopicID) String() string { return strings.TrimSpace(string(id)) }

func (id TopicID) IsZero() bool { return id.String() == "" }

// Equal compares ids loosely so 7 and "7" refer to the same topic.
func (id TopicID) Equal(other TopicID) bool {
	return id.String() == other.String()
}

func (id *TopicID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = TopicID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("topic id: %w", err)
	}
	*id = TopicID(n.String())
	return nil
}

func (id TopicID) MarshalJSON() ([]byte, error) {
	s := id.String()
	if s == "" {
		return []byte("null"), nil
	}
	// Only canonical integers go out bare; "007" or "+5" stay strings.
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(n, 10) == s {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

type Topic struct {
	ID          TopicID    `json:"id"`
	Name        string     `json:"name"`
	Query       string     `json:"query"`
	Tags        []string   `json:"tags,omitempty"`
	CreatedAt   *Timestamp `json:"created_at,omitempty"`
	LastUpdated *Timestamp `json:"last_updated,omitempty"`
	Status      string     `json:"status,omitempty"`
}

// TopicInput is the payload for creating or updating a topic.
type TopicInput struct {
	Name  string `json:"name"`
	Query string `json:"query"`
}

func (in TopicInput) Normalize() TopicInput {
	return TopicInput{
		Name:  strings.TrimSpace(in.Name),
		Query: strings.TrimSpace(in.Query),
	}
}

// Valid reports whether both fields are non-empty after trimming.
func (in TopicInput) Valid() bool {
	n := in.Normalize()
	return n.Name != "" && n.Query != ""
}

func FindTopic(topics []Topic, id TopicID) (Topic, bool) {
	for _, t := range topics {
		if t.ID.Equal(id) {
			return t, true
		}
	}
	return Topic{}, false
}

type EntryStatus string

const (
	EntryNew       EntryStatus = "new"
	EntryScheduled EntryStatus = "scheduled"
	EntryUpdated   EntryStatus = "updated"
)

type JournalEntry struct {
	Filename  string   `json:"filename"`
	TopicName string   `json:"topic_name"`
	Updated   string   `json:"updated"`
	Tags      []string `json:"tags"`
}

// Status classifies the entry from its filename. The backend has no status
// field for journal entries, so this is display-only and must not drive
// any decision.
func (e JournalEntry) Status() EntryStatus {
	switch {
	case strings.Contains(e.Filename, "new"):
		return EntryNew
	case strings.Contains(e.Filename, "scheduled"):
		return EntryScheduled
	default:
		return EntryUpdated
	}
}

// Matches reports whether the topic name or any tag contains term,
// case-insensitively. An empty or whitespace-only term matches everything.
func (e JournalEntry) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(e.TopicName), term) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// Message is the `{"message": ...}` body returned by delete and run-now.
type Message struct {
	Message string `json:"message"`
}
