package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// page mirrors the API's paging envelope.
type page struct {
	Items  []json.RawMessage `json:"items"`
	Next   *string           `json:"next"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// decodePage decodes a paging envelope from body. When envelope is non-empty
// the paging object is nested under that key ("artists" for the followed
// artists endpoint, one key per kind for search).
func decodePage(body json.RawMessage, envelope string) (*page, error) {
	if envelope != "" {
		var outer map[string]json.RawMessage
		if err := json.Unmarshal(body, &outer); err != nil {
			return nil, fmt.Errorf("spotify: decoding page: %w", err)
		}
		inner, ok := outer[envelope]
		if !ok {
			return nil, fmt.Errorf("spotify: decoding page: missing %q", envelope)
		}
		body = inner
	}
	var pg page
	if err := json.Unmarshal(body, &pg); err != nil {
		return nil, fmt.Errorf("spotify: decoding page: %w", err)
	}
	return &pg, nil
}

// collect walks an offset/limit paginated endpoint, accumulating raw items
// until limit items are gathered, the API reports no further page, or a page
// comes back empty. A limit <= 0 collects everything available. Requesting
// more items than exist returns all available items without error.
//
// Each request asks for min(pageMax, remaining) items, and pages are fetched
// strictly sequentially.
func (c *Client) collect(ctx context.Context, path string, query url.Values, envelope string, start, pageMax, limit int) ([]json.RawMessage, error) {
	all := limit <= 0
	var items []json.RawMessage
	offset := start

	for all || len(items) < limit {
		size := pageMax
		if !all && limit-len(items) < size {
			size = limit - len(items)
		}

		q := cloneQuery(query)
		q.Set("limit", strconv.Itoa(size))
		q.Set("offset", strconv.Itoa(offset))

		body, _, err := c.request(ctx, http.MethodGet, path, q, nil)
		if err != nil {
			return nil, err
		}

		pg, err := decodePage(body, envelope)
		if err != nil {
			return nil, err
		}
		if len(pg.Items) == 0 {
			break
		}

		items = append(items, pg.Items...)
		offset += len(pg.Items)

		if pg.Next == nil {
			break
		}
	}

	if !all && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// collectCursor walks a cursor-paginated endpoint (followed artists), where
// each page is requested with an "after" cursor naming the last id seen
// instead of a numeric offset.
func (c *Client) collectCursor(ctx context.Context, path string, query url.Values, envelope string, pageMax, limit int) ([]json.RawMessage, error) {
	all := limit <= 0
	var items []json.RawMessage
	after := ""

	for all || len(items) < limit {
		size := pageMax
		if !all && limit-len(items) < size {
			size = limit - len(items)
		}

		q := cloneQuery(query)
		q.Set("limit", strconv.Itoa(size))
		if after != "" {
			q.Set("after", after)
		}

		body, _, err := c.request(ctx, http.MethodGet, path, q, nil)
		if err != nil {
			return nil, err
		}

		pg, err := decodePage(body, envelope)
		if err != nil {
			return nil, err
		}
		if len(pg.Items) == 0 {
			break
		}

		items = append(items, pg.Items...)

		var last record
		if err := json.Unmarshal(pg.Items[len(pg.Items)-1], &last); err != nil {
			return nil, fmt.Errorf("spotify: decoding cursor page item: %w", err)
		}
		after = last.stringValue("id")

		if pg.Next == nil || after == "" {
			break
		}
	}

	if !all && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func cloneQuery(q url.Values) url.Values {
	out := url.Values{}
	for k, vs := range q {
		for _, v := range vs {
			out.Add(k, v)
		}
	}
	return out
}

// decodeRecords decodes a list of raw JSON objects into records, preserving
// order. Null items stay nil so callers can map them to absent results.
func decodeRecords(raws []json.RawMessage) ([]record, error) {
	recs := make([]record, 0, len(raws))
	for _, raw := range raws {
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("spotify: decoding item: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
