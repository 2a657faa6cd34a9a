// Package recordstore is a thin HTTP client for the remote record-store API
// that backs the catalog. It exposes generic fetch/create/update/delete
// operations over named tables and normalizes the loosely typed field values
// the store returns (comma-joined strings vs. arrays, serialized JSON vs.
// structured values) into one canonical form.
package recordstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// ErrNotFound is returned when the record store reports a missing record.
var ErrNotFound = errors.New("record not found")

// Operator enumerates the filter operators the record store understands.
type Operator string

const (
	OpEqualTo     Operator = "EqualTo"
	OpNotEqualTo  Operator = "NotEqualTo"
	OpContains    Operator = "Contains"
	OpGreaterThan Operator = "GreaterThan"
	OpExactMatch  Operator = "ExactMatch"
)

// Condition is a single field filter.
type Condition struct {
	Field    string
	Operator Operator
	Values   []string
}

// Order is a sort directive.
type Order struct {
	Field string
	Desc  bool
}

// Query shapes a FetchRecords call. Zero Limit means no paging.
type Query struct {
	Fields  []string
	Where   []Condition
	AnyOf   []Condition // OR-group, combined with AND against Where
	OrderBy []Order
	Limit   int
	Offset  int
}

// Config holds the connection settings for the record store.
type Config struct {
	BaseURL   string
	ProjectID string
	APIKey    string
	Timeout   time.Duration
}

// Client talks to the record store over HTTP. It is safe for concurrent use.
type Client struct {
	baseURL   string
	projectID string
	apiKey    string
	http      *http.Client
}

// NewClient creates a Client. The base URL is normalized to scheme + host
// with no trailing slash.
func NewClient(cfg Config) *Client {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   base,
		projectID: cfg.ProjectID,
		apiKey:    cfg.APIKey,
		http:      &http.Client{Timeout: timeout},
	}
}

// Ping verifies the record store is reachable by fetching a single record
// from the given table. Used by the readiness probe.
func (c *Client) Ping(ctx context.Context, table string) error {
	_, err := c.FetchRecords(ctx, table, Query{Limit: 1})
	return err
}

// FetchRecords lists records from table matching the query.
func (c *Client) FetchRecords(ctx context.Context, table string, q Query) ([]Record, error) {
	body := encodeQuery(q)
	data, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/tables/%s/records/fetch", table), body)
	if err != nil {
		return nil, err
	}
	return decodeRecordList(data)
}

// GetRecordByID returns a single record, or ErrNotFound.
func (c *Client) GetRecordByID(ctx context.Context, table, id string) (Record, error) {
	data, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/tables/%s/records/%s", table, id), nil)
	if err != nil {
		return nil, err
	}
	return decodeRecord(data)
}

// CreateRecord inserts a record with the given field values and returns the
// stored record (including its assigned ID).
func (c *Client) CreateRecord(ctx context.Context, table string, fields map[string]any) (Record, error) {
	data, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/v1/tables/%s/records", table), encodeFields(fields))
	if err != nil {
		return nil, err
	}
	return decodeRecord(data)
}

// UpdateRecord patches the given fields of an existing record.
func (c *Client) UpdateRecord(ctx context.Context, table, id string, fields map[string]any) (Record, error) {
	data, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/v1/tables/%s/records/%s", table, id), encodeFields(fields))
	if err != nil {
		return nil, err
	}
	return decodeRecord(data)
}

// DeleteRecord removes a record. Deleting an absent record returns ErrNotFound.
func (c *Client) DeleteRecord(ctx context.Context, table, id string) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/v1/tables/%s/records/%s", table, id), nil)
	return err
}

// do performs one request and unwraps the response envelope, returning the
// raw bytes of the "data" value.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (jx.Raw, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Project-ID", c.projectID)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "record store request")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("record store: status %d: %s", resp.StatusCode, truncate(raw, 256))
	}

	return unwrapEnvelope(raw)
}

// unwrapEnvelope parses the {success, message, data} envelope and returns
// the raw data value. An unsuccessful envelope naming a missing record maps
// to ErrNotFound.
func unwrapEnvelope(raw []byte) (jx.Raw, error) {
	var (
		success = true
		message string
		data    jx.Raw
	)
	d := jx.DecodeBytes(raw)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "success":
			v, err := d.Bool()
			if err != nil {
				return err
			}
			success = v
			return nil
		case "message":
			v, err := d.Str()
			if err != nil {
				return err
			}
			message = v
			return nil
		case "data":
			v, err := d.Raw()
			if err != nil {
				return err
			}
			data = v
			return nil
		default:
			return d.Skip()
		}
	}); err != nil {
		return nil, errors.Wrap(err, "parse response envelope")
	}

	if !success {
		if strings.Contains(strings.ToLower(message), "not found") {
			return nil, ErrNotFound
		}
		return nil, errors.Errorf("record store: %s", message)
	}
	return data, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
