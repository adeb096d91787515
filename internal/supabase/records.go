package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// Filters are column -> value equality filters for Select and Update.
type Filters map[string]string

// Insert writes one record into table and decodes the stored row
// (server-assigned fields included) into out. out may be nil when the
// caller does not need the representation.
func (c *Client) Insert(ctx context.Context, table string, record, out any) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("supabase: marshal %s record: %w", table, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.restURL(table, nil, ""), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		c.logger.Warn("insert failed", zap.String("table", table), zap.Int("status", resp.StatusCode))
		return readError(resp)
	}
	if out == nil {
		return nil
	}
	return decodeSingle(resp, table, out)
}

// Select reads rows matching the filters into out (a pointer to a slice).
// order is a PostgREST order expression such as "created_at.desc", or "".
func (c *Client) Select(ctx context.Context, table string, filters Filters, order string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.restURL(table, filters, order), nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("supabase: decode %s rows: %w", table, err)
	}
	return nil
}

// Update patches rows matching the filters with the given record.
func (c *Client) Update(ctx context.Context, table string, filters Filters, record any) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("supabase: marshal %s record: %w", table, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.restURL(table, filters, ""), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return readError(resp)
	}
	return nil
}

func (c *Client) restURL(table string, filters Filters, order string) string {
	q := url.Values{}
	for col, val := range filters {
		q.Set(col, "eq."+val)
	}
	if order != "" {
		q.Set("order", order)
	}
	u := c.baseURL + "/rest/v1/" + table
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// decodeSingle unwraps PostgREST's single-element array representation.
func decodeSingle(resp *http.Response, table string, out any) error {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return err
	}
	data := bytes.TrimSpace(buf.Bytes())
	if len(data) > 0 && data[0] == '[' {
		var rows []json.RawMessage
		if err := json.Unmarshal(data, &rows); err != nil {
			return fmt.Errorf("supabase: decode %s representation: %w", table, err)
		}
		if len(rows) == 0 {
			return fmt.Errorf("supabase: empty %s representation", table)
		}
		data = rows[0]
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("supabase: decode %s row: %w", table, err)
	}
	return nil
}

// ErrNoRows signals an empty Select where exactly one row was expected.
var ErrNoRows = fmt.Errorf("supabase: no rows")

// SelectOne reads exactly one row matching the filters into out.
func (c *Client) SelectOne(ctx context.Context, table string, filters Filters, out any) error {
	var rows []json.RawMessage
	if err := c.Select(ctx, table, filters, "", &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNoRows
	}
	if err := json.Unmarshal(rows[0], out); err != nil {
		return fmt.Errorf("supabase: decode %s row: %w", table, err)
	}
	return nil
}

// tables used by the app
const (
	TableUsers    = "users"
	TablePals     = "pals"
	TableMessages = "messages"
	TablePosts    = "posts"
)
