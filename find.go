package couch

import (
	"bytes"
	"context"
	"encoding/json"
)

// Find runs a declarative Mango query against the database.
// Optional query fields that were left unset are omitted from the
// request payload. The result exposes the matched documents only;
// bookmark, warnings and execution statistics are decoded and
// discarded at this layer.
//
// http://docs.couchdb.org/en/latest/api/database/find.html
func (db *DB) Find(ctx context.Context, query FindQuery) (*FindResult, error) {
	if query.Selector == nil {
		// the server rejects a missing selector; an empty one matches everything
		query.Selector = map[string]interface{}{}
	}
	body, err := json.Marshal(&query)
	if err != nil {
		return nil, err
	}
	resp, err := db.request(ctx, "POST", path(db.name, "_find"), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	reply := new(FindResponse)
	if err := readBody(resp, reply); err != nil {
		return nil, err
	}
	return &FindResult{docs: reply.Docs}, nil
}
