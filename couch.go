// Package couch implements wrappers for the CouchDB HTTP API.
//
// Unless otherwise noted, all functions in this package
// can be called from more than one goroutine at the same time.
package couch

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/xerrors"
)

// Auth is implemented by HTTP authentication mechanisms.
type Auth interface {
	// AddAuth should add authentication information
	// to the request, e.g. the Authorization header.
	AddAuth(*http.Request)
}

type basicauth string

// BasicAuth returns an Auth that performs HTTP Basic Authentication.
func BasicAuth(username, password string) Auth {
	auth := []byte(username + ":" + password)
	return basicauth("Basic " + base64.StdEncoding.EncodeToString(auth))
}

func (a basicauth) AddAuth(req *http.Request) {
	req.Header.Set("Authorization", string(a))
}

// transport performs the HTTP round trips for a client and all
// database objects derived from it. Auth and logger are guarded by
// the mutex so they can be swapped while requests are in flight.
type transport struct {
	prefix string // URL prefix, no trailing '/'
	http   *http.Client

	mu   sync.RWMutex
	auth Auth
	log  *zap.Logger
}

func newTransport(prefix string, httpClient *http.Client, auth Auth) *transport {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &transport{
		prefix: strings.TrimRight(prefix, "/"),
		http:   httpClient,
		auth:   auth,
		log:    zap.NewNop(),
	}
}

func (t *transport) setAuth(a Auth) {
	t.mu.Lock()
	t.auth = a
	t.mu.Unlock()
}

func (t *transport) setLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	t.mu.Lock()
	t.log = l
	t.mu.Unlock()
}

func (t *transport) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, t.prefix+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	t.mu.RLock()
	auth := t.auth
	t.mu.RUnlock()
	if auth != nil {
		auth.AddAuth(req)
	}
	return req, nil
}

// request sends an HTTP request to the server. It returns the response
// if its status code is 2xx; any other status is translated into an
// error of type *Error carrying the server's {error, reason} payload.
func (t *transport) request(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := t.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := t.http.Do(req)
	if err != nil {
		return nil, err
	}
	t.mu.RLock()
	log := t.log
	t.mu.RUnlock()
	log.Debug("couch request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	return nil, parseError(resp) // the body is read and closed here
}

// closedRequest sends an HTTP request and closes the response body
// immediately. The response is only useful for its status and headers.
func (t *transport) closedRequest(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	resp, err := t.request(ctx, method, path, body)
	if err == nil {
		resp.Body.Close()
	}
	return resp, err
}

// path joins the given segments into a URL path,
// escaping each segment.
func path(segs ...string) string {
	var r strings.Builder
	for _, seg := range segs {
		r.WriteByte('/')
		r.WriteString(url.PathEscape(seg))
	}
	return r.String()
}

// revpath is like path, appending rev as a query parameter
// unless it is empty.
func revpath(rev string, segs ...string) string {
	r := path(segs...)
	if rev != "" {
		r += "?rev=" + url.QueryEscape(rev)
	}
	return r
}

// readBody decodes the JSON response body into v and closes it.
func readBody(resp *http.Response, v interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(v)
}

// responseRev returns the unquoted Etag of a response.
func responseRev(resp *http.Response, err error) (string, error) {
	if err != nil {
		return "", err
	}
	etag := resp.Header.Get("Etag")
	if len(etag) < 2 || etag[0] != '"' || etag[len(etag)-1] != '"' {
		return "", xerrors.Errorf("couch: missing or malformed Etag header in response to %s %s",
			resp.Request.Method, resp.Request.URL)
	}
	return etag[1 : len(etag)-1], nil
}
