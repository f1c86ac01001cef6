package couch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// DB represents a remote CouchDB database. Instances hold only the
// bound database name and the shared transport; all methods are
// single stateless request/response exchanges.
type DB struct {
	*transport
	name string
}

// Name returns the name of a database.
func (db *DB) Name() string {
	return db.name
}

// Info retrieves a metadata snapshot of the database: document
// counts, sizes and sequence numbers.
//
// http://docs.couchdb.org/en/latest/api/database/common.html#get--db
func (db *DB) Info(ctx context.Context) (*DatabaseInfo, error) {
	resp, err := db.request(ctx, "GET", path(db.name), nil)
	if err != nil {
		return nil, err
	}
	info := new(DatabaseInfo)
	if err := readBody(resp, info); err != nil {
		return nil, err
	}
	return info, nil
}

// Save stores a document into the given database.
// A document carrying "_id" is written with PUT to that id, creating
// or updating it; "_rev" must hold the current revision token when
// updating, otherwise the request fails with an error matched by
// Conflict. A document without "_id" is created with POST and the
// server picks an id.
//
// http://docs.couchdb.org/en/latest/api/document/common.html#put--db-docid
func (db *DB) Save(ctx context.Context, doc Document) (*DocumentResponse, error) {
	// TODO: make it possible to stream encoder output somehow
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var resp *http.Response
	if id := doc.ID(); id != "" {
		resp, err = db.request(ctx, "PUT", revpath(doc.Rev(), db.name, id), bytes.NewReader(body))
	} else {
		resp, err = db.request(ctx, "POST", path(db.name), bytes.NewReader(body))
	}
	if err != nil {
		return nil, err
	}
	reply := new(DocumentResponse)
	if err := readBody(resp, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// Get retrieves a document from the given database by id,
// optionally pinned to the given revision. An empty rev fetches
// the current revision. The request fails with an error matched
// by NotFound if the document is absent.
//
// http://docs.couchdb.org/en/latest/api/document/common.html#get--db-docid
func (db *DB) Get(ctx context.Context, id, rev string) (Document, error) {
	resp, err := db.request(ctx, "GET", revpath(rev, db.name, id), nil)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := readBody(resp, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Rev fetches the current revision of a document.
// It is faster than an equivalent Get request because no body
// has to be parsed.
func (db *DB) Rev(ctx context.Context, id string) (string, error) {
	return responseRev(db.closedRequest(ctx, "HEAD", path(db.name, id), nil))
}

// Delete marks a document revision as deleted. The revision token is
// mandatory; a stale one fails with an error matched by Conflict, a
// missing document with one matched by NotFound.
func (db *DB) Delete(ctx context.Context, id, rev string) (*DocumentResponse, error) {
	resp, err := db.request(ctx, "DELETE", revpath(rev, db.name, id), nil)
	if err != nil {
		return nil, err
	}
	reply := new(DocumentResponse)
	if err := readBody(resp, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// AllDocIDs returns the ids of all ordinary documents in the
// database, excluding design documents (ids starting with
// "_design/").
func (db *DB) AllDocIDs(ctx context.Context) ([]string, error) {
	reply, err := db.AllDocs(ctx, nil)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(reply.Rows))
	for _, row := range reply.Rows {
		if !strings.HasPrefix(row.ID, "_design/") {
			ids = append(ids, row.ID)
		}
	}
	return ids, nil
}

// AllDocs invokes the _all_docs view of a database. It accepts the
// same options as View; a nil opts fetches the whole listing.
//
// http://docs.couchdb.org/en/latest/api/database/bulk-api.html#db-all-docs
func (db *DB) AllDocs(ctx context.Context, opts *ViewOptions) (*AllDocsResponse, error) {
	resp, err := db.viewRequest(ctx, path(db.name, "_all_docs"), opts)
	if err != nil {
		return nil, err
	}
	reply := new(AllDocsResponse)
	if err := readBody(resp, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// BulkSave creates, updates and/or deletes multiple documents in a
// single request. Documents may carry "_id", "_rev" and "_deleted"
// depending on the wanted operation.
//
// It returns one BulkResult per input document, in the same order as
// submitted. Individual document failures are reported there as data
// and do not fail the call; only a non-2xx answer for the batch
// endpoint itself does.
//
// http://docs.couchdb.org/en/latest/api/database/bulk-api.html#db-bulk-docs
func (db *DB) BulkSave(ctx context.Context, docs ...Document) ([]BulkResult, error) {
	body, err := json.Marshal(bulkSaveReq{Docs: docs})
	if err != nil {
		return nil, err
	}
	resp, err := db.request(ctx, "POST", path(db.name, "_bulk_docs"), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	var results []BulkResult
	if err := readBody(resp, &results); err != nil {
		return nil, err
	}
	return results, nil
}
