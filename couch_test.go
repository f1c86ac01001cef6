package couch_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"

	couch "github.com/sofadb/couch"
)

// testClient wraps a couch.Client with an in-process handler table so
// tests can register server behavior per method and path. Requests
// never leave the process; the registered handler renders the
// response through an httptest recorder.
type testClient struct {
	*couch.Client
	t        *testing.T
	handlers map[string]http.Handler
}

func newTestClient(t *testing.T) *testClient {
	tc := &testClient{t: t, handlers: make(map[string]http.Handler)}
	httpClient := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			key := req.Method + " " + req.URL.Path
			h, ok := tc.handlers[key]
			if !ok {
				tc.t.Fatalf("unhandled request: %s", key)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			resp := rec.Result()
			resp.Request = req
			return resp, nil
		}),
	}
	addr, err := url.Parse("http://testClient:5984/")
	if err != nil {
		t.Fatal(err)
	}
	tc.Client = couch.NewClient(addr, httpClient, nil)
	return tc
}

// Handle registers a handler for requests matching "METHOD /path".
func (tc *testClient) Handle(pattern string, f func(http.ResponseWriter, *http.Request)) {
	tc.handlers[pattern] = http.HandlerFunc(f)
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func check(t *testing.T, field string, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Errorf("%s mismatch:\nwant %#v\ngot  %#v", field, expected, actual)
	}
}

func asURL(rawurl string) *url.URL {
	u, err := url.Parse(rawurl)
	if err != nil {
		panic(err)
	}
	return u
}

// newRev mints a revision token the way the server would,
// with the given generation counter.
func newRev(n int) string {
	return fmt.Sprintf("%d-%s", n, strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func sendError(w http.ResponseWriter, status int, code, reason string) {
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q,"reason":%q}`, code, reason)
}
