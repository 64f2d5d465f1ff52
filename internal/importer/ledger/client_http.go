package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"clearance/internal/importer/models"
	"clearance/pkg/platform/sentinel"
)

// HTTPClient talks to the ledger gateway's REST surface:
//
//	GET  /importers/{id}
//	POST /importers
//	POST /importers/{id}/violations
//	POST /importers/{id}/inspections
//	POST /importers/{id}/certificates
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClient) {
		if c != nil {
			h.http = c
		}
	}
}

// WithToken sends a bearer token on every request.
func WithToken(token string) HTTPOption {
	return func(h *HTTPClient) {
		h.token = token
	}
}

// NewHTTPClient builds a ledger client for baseURL. Per-call deadlines come
// from the caller's context.
func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query fetches the ledger's copy of the profile.
func (c *HTTPClient) Query(ctx context.Context, importerID string) (*models.Profile, error) {
	var profile models.Profile
	if err := c.do(ctx, http.MethodGet, "/importers/"+url.PathEscape(importerID), nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Register creates the profile on the ledger. Returns sentinel.ErrConflict
// when the ledger already holds the key.
func (c *HTTPClient) Register(ctx context.Context, profile *models.Profile) error {
	return c.do(ctx, http.MethodPost, "/importers", profile, nil)
}

// AddViolation appends a violation to the ledger record.
func (c *HTTPClient) AddViolation(ctx context.Context, importerID string, v models.Violation) error {
	return c.do(ctx, http.MethodPost, "/importers/"+url.PathEscape(importerID)+"/violations", v, nil)
}

// LogInspection appends an inspection to the ledger record.
func (c *HTTPClient) LogInspection(ctx context.Context, importerID string, i models.Inspection) error {
	return c.do(ctx, http.MethodPost, "/importers/"+url.PathEscape(importerID)+"/inspections", i, nil)
}

// AddCertificate appends an AEO certificate to the ledger record.
func (c *HTTPClient) AddCertificate(ctx context.Context, importerID string, cert models.AEOCertificate) error {
	return c.do(ctx, http.MethodPost, "/importers/"+url.PathEscape(importerID)+"/certificates", cert, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode ledger request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build ledger request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ledger %s %s: %w: %w", method, path, sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return sentinel.ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return sentinel.ErrConflict
	case resp.StatusCode >= 300:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("ledger %s %s: status %d: %w", method, path, resp.StatusCode, sentinel.ErrUnavailable)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("ledger %s %s: empty body: %w", method, path, sentinel.ErrUnavailable)
		}
		return fmt.Errorf("ledger %s %s: decode: %w: %w", method, path, sentinel.ErrUnavailable, err)
	}
	return nil
}
