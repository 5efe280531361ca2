// Package restclient implements backend.Client on top of the platform's HTTP
// API and its websocket change feed.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vedran77/huddle/internal/backend"
)

const apiPrefix = "/api/v1"

var _ backend.Client = (*Client)(nil)

type Option func(*Client)

// WithHTTPClient replaces the default client, which times out after 15s.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

type Client struct {
	baseURL  string
	http     *http.Client
	sessions SessionStore
	log      *logrus.Entry

	mu      sync.Mutex
	loaded  bool
	session *Session
}

func New(baseURL string, sessions SessionStore, log *logrus.Entry, opts ...Option) *Client {
	if sessions == nil {
		sessions = &MemorySessionStore{}
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 15 * time.Second},
		sessions: sessions,
		log:      log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// token returns the stored access token, loading the session on first use.
func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		c.loaded = true
		s, err := c.sessions.Load()
		if err != nil {
			c.log.WithError(err).Warn("ignoring unreadable session")
		}
		c.session = s
	}
	if c.session == nil {
		return ""
	}
	return c.session.AccessToken
}

func (c *Client) setSession(s *Session) error {
	c.mu.Lock()
	c.loaded = true
	c.session = s
	c.mu.Unlock()

	if s == nil {
		return c.sessions.Clear()
	}
	return c.sessions.Save(s)
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        any
	raw         io.Reader
	size        int64
	contentType string
}

// do sends req and decodes a 2xx JSON response into out, which may be nil.
// Other statuses are returned as *backend.Error.
func (c *Client) do(ctx context.Context, req request, out any) error {
	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	body := req.raw
	contentType := req.contentType
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if req.raw != nil && req.size >= 0 {
		httpReq.ContentLength = req.size
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	if token := c.token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var envelope struct {
		Error struct {
			Code    string            `json:"code"`
			Message string            `json:"message"`
			Fields  map[string]string `json:"fields"`
		} `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &backend.Error{Status: resp.StatusCode}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Code != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		apiErr.Fields = envelope.Error.Fields
	} else {
		apiErr.Code = http.StatusText(resp.StatusCode)
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}

func isStatus(err error, status int) bool {
	var apiErr *backend.Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

func limitQuery(limit int) url.Values {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}
