package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/onelouder/autoplex/internal/model"
)

// DefaultBaseURL is the backend's API prefix when nothing is configured.
const DefaultBaseURL = "http://127.0.0.1:5000/api"

const maxDocumentBytes = 8 << 20

// HTTPError is returned for any non-2xx response. The body is ignored.
type HTTPError struct {
	Status int
	Method string
	Path   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d (%s %s)", e.Status, e.Method, e.Path)
}

// AsHTTPError unwraps an *HTTPError from err.
func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}

type Client struct {
	base *url.URL
	site *url.URL
	http *http.Client
	log  *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d, Transport: c.http.Transport}
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New returns a client rooted at baseURL (e.g. http://host:5000/api).
// Journal documents are fetched from the same host without the /api suffix.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api: base url must be http(s), got %q", baseURL)
	}
	site := *u
	site.Path = strings.TrimSuffix(u.Path, "/api")

	c := &Client{
		base: u,
		site: &site,
		http: &http.Client{Timeout: 30 * time.Second},
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string { return c.base.String() }

// DocumentURL returns the browser-facing location of a journal document.
func (c *Client) DocumentURL(filename string) string {
	return c.site.JoinPath("journal", filename).String()
}

func (c *Client) ListTopics(ctx context.Context) ([]model.Topic, error) {
	var out []model.Topic
	if err := c.do(ctx, http.MethodGet, "/topics", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTopic(ctx context.Context, in model.TopicInput) (model.Topic, error) {
	var out model.Topic
	err := c.do(ctx, http.MethodPost, "/topics", in.Normalize(), &out)
	return out, err
}

func (c *Client) UpdateTopic(ctx context.Context, id model.TopicID, in model.TopicInput) (model.Topic, error) {
	var out model.Topic
	err := c.do(ctx, http.MethodPut, "/topics/"+url.PathEscape(id.String()), in.Normalize(), &out)
	return out, err
}

func (c *Client) DeleteTopic(ctx context.Context, id model.TopicID) (model.Message, error) {
	var out model.Message
	err := c.do(ctx, http.MethodDelete, "/topics/"+url.PathEscape(id.String()), nil, &out)
	return out, err
}

func (c *Client) RunNow(ctx context.Context, id model.TopicID) (model.Message, error) {
	var out model.Message
	err := c.do(ctx, http.MethodPost, "/run-now/"+url.PathEscape(id.String()), nil, &out)
	return out, err
}

func (c *Client) ListJournal(ctx context.Context) ([]model.JournalEntry, error) {
	var out []model.JournalEntry
	if err := c.do(ctx, http.MethodGet, "/journal", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Status(ctx context.Context) (model.StatusSnapshot, error) {
	var out model.StatusSnapshot
	err := c.do(ctx, http.MethodGet, "/status", nil, &out)
	return out, err
}

func (c *Client) Schedule(ctx context.Context) (model.Schedule, error) {
	var out model.Schedule
	err := c.do(ctx, http.MethodGet, "/schedule", nil, &out)
	return out, err
}

func (c *Client) SaveSchedule(ctx context.Context, s model.Schedule) (model.Schedule, error) {
	var out model.Schedule
	err := c.do(ctx, http.MethodPost, "/schedule", s, &out)
	return out, err
}

// JournalDocument fetches the generated HTML for a journal entry.
func (c *Client) JournalDocument(ctx context.Context, filename string) (string, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" || strings.Contains(filename, "/") {
		return "", fmt.Errorf("api: invalid journal filename %q", filename)
	}
	u := c.DocumentURL(filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html")
	resp, err := c.send(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return "", fmt.Errorf("api: read %s: %w", req.URL.Path, err)
	}
	return string(b), nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return nil
}

// send performs the request and maps non-2xx statuses to *HTTPError.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("api request failed", "method", req.Method, "path", req.URL.Path, "err", err)
		return nil, fmt.Errorf("api: %s %s: %w", req.Method, req.URL.Path, err)
	}
	c.log.Debug("api request", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "duration", time.Since(start))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		return nil, &HTTPError{Status: resp.StatusCode, Method: req.Method, Path: req.URL.Path}
	}
	return resp, nil
}
