// server/client/client.go

// Package client is a typed HTTP client for the notes API. A Client is
// constructed with its base address and session token; nothing is resolved
// from ambient state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/lumina-notes/lumina-server/domain"
)

type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying transport.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpc:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

type CreateNoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content,omitempty"`
}

func (c *Client) Create(ctx context.Context, input CreateNoteInput) (*domain.Note, error) {
	var note domain.Note
	status, err := c.do(ctx, http.MethodPost, "/api/notes", input, &note)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("failed to create note (status %d)", status)
	}
	return &note, nil
}

func (c *Client) Update(ctx context.Context, noteID string, patch domain.NotePatch) (*domain.Note, error) {
	var note domain.Note
	status, err := c.do(ctx, http.MethodPatch, "/api/notes/"+url.PathEscape(noteID), patch, &note)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("failed to update note (status %d)", status)
	}
	return &note, nil
}

// Get fetches one note with its folder and tags. A missing note is not an
// error: the result is nil so callers can tell "doesn't exist" from
// "request failed".
func (c *Client) Get(ctx context.Context, noteID string) (*domain.NoteDetail, error) {
	var detail domain.NoteDetail
	status, err := c.do(ctx, http.MethodGet, "/api/notes/"+url.PathEscape(noteID), nil, &detail)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch note (status %d)", status)
	}
	return &detail, nil
}

// List returns all of the caller's notes, most recently updated first.
func (c *Client) List(ctx context.Context) ([]domain.Note, error) {
	var notes []domain.Note
	status, err := c.do(ctx, http.MethodGet, "/api/notes", nil, &notes)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch notes (status %d)", status)
	}
	return notes, nil
}

func (c *Client) Delete(ctx context.Context, noteID string) (*domain.Note, error) {
	var note domain.Note
	status, err := c.do(ctx, http.MethodDelete, "/api/notes/"+url.PathEscape(noteID), nil, &note)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("failed to delete note (status %d)", status)
	}
	return &note, nil
}

func (c *Client) Search(ctx context.Context, query string) ([]domain.Note, error) {
	var notes []domain.Note
	status, err := c.do(ctx, http.MethodGet, "/api/notes/search?q="+url.QueryEscape(query), nil, &notes)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("failed to search notes (status %d)", status)
	}
	return notes, nil
}
