package couch

import "encoding/json"

// Document is a schema-less CouchDB document: an arbitrary mapping of
// field names to JSON values. The reserved fields "_id" and "_rev"
// carry the document identity and its revision token.
type Document map[string]interface{}

// ID returns the value of the reserved "_id" field,
// or "" if the document has none.
func (d Document) ID() string {
	id, _ := d["_id"].(string)
	return id
}

// Rev returns the value of the reserved "_rev" field,
// or "" if the document has none.
func (d Document) Rev() string {
	rev, _ := d["_rev"].(string)
	return rev
}

// ServerInfo describes the server answering at the root URL.
type ServerInfo struct {
	CouchDB  string   `json:"couchdb"`
	Version  string   `json:"version"`
	GitSHA   string   `json:"git_sha"`
	UUID     string   `json:"uuid"`
	Features []string `json:"features"`
}

// Seq is an update sequence identifier. Depending on the server
// version it is either a JSON number or an opaque string.
type Seq string

func (s *Seq) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Seq(str)
		return nil
	}
	*s = Seq(data)
	return nil
}

// DatabaseInfo is a point-in-time snapshot of database metadata,
// as returned by GET /{db}. It is fetched on demand and never cached.
type DatabaseInfo struct {
	DBName             string         `json:"db_name"`
	DocCount           int64          `json:"doc_count"`
	DocDelCount        int64          `json:"doc_del_count"`
	UpdateSeq          Seq            `json:"update_seq"`
	PurgeSeq           Seq            `json:"purge_seq"`
	CompactRunning     bool           `json:"compact_running"`
	DiskSize           int64          `json:"disk_size"`
	DataSize           int64          `json:"data_size"`
	InstanceStartTime  string         `json:"instance_start_time"`
	DiskFormatVersion  int            `json:"disk_format_version"`
	CommittedUpdateSeq Seq            `json:"committed_update_seq"`
	Sizes              *DatabaseSizes `json:"sizes"`
}

// DatabaseSizes is the size breakdown reported by newer servers.
type DatabaseSizes struct {
	Active   int64 `json:"active"`
	External int64 `json:"external"`
	File     int64 `json:"file"`
}

// DocumentResponse is the acknowledgement of a successful
// single-document write or delete.
type DocumentResponse struct {
	OK  bool   `json:"ok"`
	ID  string `json:"id"`
	Rev string `json:"rev"`
}

// AllDocsRow is one row of the _all_docs index.
type AllDocsRow struct {
	ID    string            `json:"id"`
	Key   string            `json:"key"`
	Value map[string]string `json:"value"`
	Doc   Document          `json:"doc,omitempty"`
}

// AllDocsResponse is the raw answer of GET /{db}/_all_docs.
type AllDocsResponse struct {
	TotalRows int          `json:"total_rows"`
	Offset    int          `json:"offset"`
	Rows      []AllDocsRow `json:"rows"`
}

// BulkResult is the outcome of one document in a bulk save.
// A successful write has OK set and carries the new Rev; a failed
// one leaves OK unset and carries Error and Reason instead.
type BulkResult struct {
	OK     bool   `json:"ok,omitempty"`
	ID     string `json:"id"`
	Rev    string `json:"rev,omitempty"`
	Error  string `json:"error,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Failed reports whether this document was rejected by the server.
func (r *BulkResult) Failed() bool {
	return r.Error != ""
}

type bulkSaveReq struct {
	Docs []Document `json:"docs"`
}

// FindQuery is a declarative Mango query for POST /{db}/_find.
// Optional fields that are left unset are omitted from the wire
// payload; Limit and Skip are pointers so that zero stays expressible.
type FindQuery struct {
	Selector map[string]interface{} `json:"selector"`
	Fields   []string               `json:"fields,omitempty"`
	Sort     []map[string]string    `json:"sort,omitempty"`
	Limit    *int                   `json:"limit,omitempty"`
	Skip     *int                   `json:"skip,omitempty"`
	UseIndex interface{}            `json:"use_index,omitempty"`
}

// FindResponse is the raw answer of POST /{db}/_find.
type FindResponse struct {
	Docs           []Document             `json:"docs"`
	Bookmark       string                 `json:"bookmark,omitempty"`
	Warning        string                 `json:"warning,omitempty"`
	ExecutionStats map[string]interface{} `json:"execution_stats,omitempty"`
}

// FindResult is the materialized, repeatedly-iterable document list
// produced by a find query.
type FindResult struct {
	docs []Document
}

// Len returns the number of matched documents.
func (r *FindResult) Len() int {
	return len(r.docs)
}

// Docs returns the matched documents in server order.
func (r *FindResult) Docs() []Document {
	return r.docs
}

// ViewRow is one emitted (key, value) tuple of a view query.
// ID and Doc are empty for reduce (grouped) queries.
type ViewRow struct {
	ID    string      `json:"id,omitempty"`
	Key   interface{} `json:"key"`
	Value interface{} `json:"value"`
	Doc   Document    `json:"doc,omitempty"`
}

// ViewResponse is the raw answer of a view query.
// TotalRows and Offset are absent for reduce queries.
type ViewResponse struct {
	TotalRows int       `json:"total_rows,omitempty"`
	Offset    int       `json:"offset,omitempty"`
	Rows      []ViewRow `json:"rows"`
}

// ViewResult is the materialized, repeatedly-iterable row list
// produced by a view query, in server-determined order.
type ViewResult struct {
	rows []ViewRow
}

// Len returns the number of rows.
func (r *ViewResult) Len() int {
	return len(r.rows)
}

// Rows returns all rows in server order.
func (r *ViewResult) Rows() []ViewRow {
	return r.rows
}

// Keys returns the key of every row, in order.
func (r *ViewResult) Keys() []interface{} {
	keys := make([]interface{}, len(r.rows))
	for i, row := range r.rows {
		keys[i] = row.Key
	}
	return keys
}

// Values returns the value of every row, in order.
func (r *ViewResult) Values() []interface{} {
	values := make([]interface{}, len(r.rows))
	for i, row := range r.rows {
		values[i] = row.Value
	}
	return values
}

// Docs returns the attached documents of all rows that carry one.
// Rows only carry documents when the query asked for IncludeDocs.
func (r *ViewResult) Docs() []Document {
	var docs []Document
	for _, row := range r.rows {
		if row.Doc != nil {
			docs = append(docs, row.Doc)
		}
	}
	return docs
}
