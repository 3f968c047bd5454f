package postgrest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
)

// Filter is one PostgREST column filter, e.g. {"pair", "eq", "EURUSD"}.
type Filter struct {
	Column   string
	Operator string // eq, gte, lte, ...
	Value    string
}

// Count returns the number of rows in table matching all filters.
// It uses the select=count aggregate, which answers [{"count": N}].
func (c *Client) Count(ctx context.Context, table string, filters ...Filter) (int64, error) {
	if table == "" {
		return 0, fmt.Errorf("table is required")
	}

	query := url.Values{}
	query.Set("select", "count")
	for _, f := range filters {
		query.Add(f.Column, f.Operator+"."+f.Value)
	}

	body, err := c.doWithRetry(ctx, "/"+url.PathEscape(table), query)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}

	if !gjson.ValidBytes(body) {
		return 0, fmt.Errorf("count %s: invalid json response", table)
	}
	result := gjson.GetBytes(body, "0.count")
	if !result.Exists() {
		// An empty array means no matching rows.
		if gjson.GetBytes(body, "#").Int() == 0 {
			return 0, nil
		}
		return 0, fmt.Errorf("count %s: response has no count field", table)
	}

	return result.Int(), nil
}

// Insert posts rows to table as one request.
// PostgREST runs a multi-row insert in a single statement, so the call is atomic.
func (c *Client) Insert(ctx context.Context, table string, rows any) error {
	if table == "" {
		return fmt.Errorf("table is required")
	}

	body, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal rows: %w", err)
	}

	header := http.Header{}
	header.Set("Prefer", "return=minimal")

	if _, err := c.doRequest(ctx, http.MethodPost, "/"+url.PathEscape(table), nil, body, header); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}
