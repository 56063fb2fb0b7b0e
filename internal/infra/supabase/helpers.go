package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ============================================================
// HTTP helpers for GET, POST, PATCH, DELETE
// ============================================================

// getRows decodes a PostgREST array into out. Missing tables and empty
// results leave out untouched.
func (c *Client) getRows(ctx context.Context, path string, out any) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	if len(body) == 0 || string(body) == "[]" {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) doPost(ctx context.Context, table string, data any) error {
	_, err := c.doRequest(ctx, http.MethodPost, table, data, "return=minimal")
	return err
}

// doUpsert merges on the given conflict columns.
func (c *Client) doUpsert(ctx context.Context, table, onConflict string, data any) error {
	path := fmt.Sprintf("%s?on_conflict=%s", table, onConflict)
	_, err := c.doRequest(ctx, http.MethodPost, path, data, "resolution=merge-duplicates,return=minimal")
	return err
}

// doPatch returns the number of rows it touched.
func (c *Client) doPatch(ctx context.Context, path string, data map[string]any) (int, error) {
	body, err := c.doRequest(ctx, http.MethodPatch, path, data, "return=representation")
	if err != nil {
		return 0, err
	}
	if len(body) == 0 {
		return 0, nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, fmt.Errorf("decode patch %s: %w", path, err)
	}
	return len(rows), nil
}

func (c *Client) doDelete(ctx context.Context, path string) error {
	_, err := c.doRequest(ctx, http.MethodDelete, path, nil, "")
	return err
}

// count asks PostgREST for an exact row count via the Content-Range header.
func (c *Client) count(ctx context.Context, path string) (int64, error) {
	u := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u, nil)
	if err != nil {
		return 0, err
	}
	c.authorize(req)
	req.Header.Set("Prefer", "count=exact")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: HEAD request failed", zap.String("path", path), zap.Error(err))
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, &statusError{Method: http.MethodHead, Path: path, Status: resp.StatusCode}
	}
	return parseContentRange(resp.Header.Get("Content-Range"))
}

// parseContentRange reads the total out of "0-24/3573" or "*/0".
func parseContentRange(v string) (int64, error) {
	i := strings.LastIndexByte(v, '/')
	if i < 0 || v[i+1:] == "*" {
		return 0, fmt.Errorf("supabase: no total in content-range %q", v)
	}
	return strconv.ParseInt(v[i+1:], 10, 64)
}

func readBody(resp *http.Response) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ============================================================
// PostgREST filter helpers
// ============================================================

func eq(v string) string {
	return "eq." + url.QueryEscape(v)
}

func gte(t time.Time) string {
	return "gte." + url.QueryEscape(t.UTC().Format(time.RFC3339Nano))
}

func limitClause(n int) string {
	if n <= 0 {
		return ""
	}
	return "&limit=" + strconv.Itoa(n)
}
