package couch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// ViewOptions selects and shapes the rows of a view query. The zero
// value queries the view with server defaults. Unset options are
// never sent: Limit, Skip and Reduce are pointers so that zero and
// false stay expressible, and the boolean flags only reach the query
// string when they deviate from the server default.
type ViewOptions struct {
	// Key restricts the result to rows with exactly this key.
	// StartKey/EndKey restrict it to the inclusive key range.
	// Keys are JSON values and are JSON-encoded on the wire,
	// so non-string keys (numbers, arrays) keep their type.
	Key      interface{}
	StartKey interface{}
	EndKey   interface{}

	// Keys restricts the result to rows matching any of the given
	// keys. Setting it switches the query to a POST request with
	// {"keys": [...]} as the body.
	Keys []interface{}

	Limit *int
	Skip  *int

	// Descending reverses the key order.
	Descending bool
	// IncludeDocs attaches the full document to every row.
	IncludeDocs bool
	// Group groups reduce results by key.
	Group bool
	// Reduce toggles the reduce function. The server default is
	// true; only an explicit false is transmitted.
	Reduce *bool
}

// encode renders the options into query parameters.
// The scalar key options are JSON-encoded; Keys is carried in the
// request body instead and does not appear here.
func (opts *ViewOptions) encode() (url.Values, error) {
	params := make(url.Values)
	if opts == nil {
		return params, nil
	}
	jsonKeys := []struct {
		name  string
		value interface{}
	}{
		{"key", opts.Key},
		{"startkey", opts.StartKey},
		{"endkey", opts.EndKey},
	}
	for _, p := range jsonKeys {
		if p.value == nil {
			continue
		}
		enc, err := json.Marshal(p.value)
		if err != nil {
			return nil, xerrors.Errorf("couch: encoding view parameter %q: %w", p.name, err)
		}
		params.Set(p.name, string(enc))
	}
	if opts.Limit != nil {
		params.Set("limit", strconv.Itoa(*opts.Limit))
	}
	if opts.Skip != nil {
		params.Set("skip", strconv.Itoa(*opts.Skip))
	}
	if opts.Descending {
		params.Set("descending", "true")
	}
	if opts.IncludeDocs {
		params.Set("include_docs", "true")
	}
	if opts.Group {
		params.Set("group", "true")
	}
	if opts.Reduce != nil && !*opts.Reduce {
		params.Set("reduce", "false")
	}
	return params, nil
}

type viewKeysReq struct {
	Keys []interface{} `json:"keys"`
}

// viewRequest issues a view-style request against p. Queries with
// Keys go out as POST with the keys in the body and everything else
// still in the query string; all others as plain GET.
func (db *DB) viewRequest(ctx context.Context, p string, opts *ViewOptions) (*http.Response, error) {
	params, err := opts.encode()
	if err != nil {
		return nil, err
	}
	if len(params) > 0 {
		p += "?" + params.Encode()
	}
	if opts != nil && opts.Keys != nil {
		body, err := json.Marshal(viewKeysReq{Keys: opts.Keys})
		if err != nil {
			return nil, err
		}
		return db.request(ctx, "POST", p, bytes.NewReader(body))
	}
	return db.request(ctx, "GET", p, nil)
}

// View invokes a view.
// The ddoc parameter must be the name of the design document
// containing the view; a leading "_design/" prefix is accepted
// and stripped.
//
// The rows come back in server-determined order: ascending by key,
// or strictly reversed when opts.Descending is set. Reduce (grouped)
// queries produce rows without id or doc.
//
// http://docs.couchdb.org/en/latest/api/ddoc/views.html
func (db *DB) View(ctx context.Context, ddoc, view string, opts *ViewOptions) (*ViewResult, error) {
	ddoc = strings.TrimPrefix(ddoc, "_design/")
	resp, err := db.viewRequest(ctx, path(db.name, "_design", ddoc, "_view", view), opts)
	if err != nil {
		return nil, err
	}
	reply := new(ViewResponse)
	if err := readBody(resp, reply); err != nil {
		return nil, err
	}
	return &ViewResult{rows: reply.Rows}, nil
}
