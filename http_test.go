package couch_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	couch "github.com/sofadb/couch"
)

type testauth struct{ called bool }

func (a *testauth) AddAuth(*http.Request) {
	a.called = true
}

func TestClientSetAuth(t *testing.T) {
	c := newTestClient(t)
	c.Handle("HEAD /", func(resp http.ResponseWriter, req *http.Request) {})

	auth := new(testauth)
	c.SetAuth(auth)
	if err := c.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !auth.called {
		t.Error("AddAuth was not called")
	}

	auth.called = false
	c.SetAuth(nil)
	if err := c.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}
	if auth.called {
		t.Error("AddAuth was called after removing Auth instance")
	}
}

func TestClientSetLogger(t *testing.T) {
	c := newTestClient(t)
	c.Handle("HEAD /", func(resp http.ResponseWriter, req *http.Request) {})

	c.SetLogger(zaptest.NewLogger(t))
	if err := c.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}
	c.SetLogger(nil)
	if err := c.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestErrorHandling(t *testing.T) {
	notFound := &couch.Error{Method: "GET", StatusCode: http.StatusNotFound}
	conflict := &couch.Error{Method: "PUT", StatusCode: http.StatusConflict}
	exists412 := &couch.Error{Method: "PUT", StatusCode: http.StatusPreconditionFailed, ErrorCode: "file_exists"}
	exists409 := &couch.Error{Method: "PUT", StatusCode: http.StatusConflict, ErrorCode: "file_exists"}
	unauthorized := &couch.Error{Method: "GET", StatusCode: http.StatusUnauthorized}
	fe := errors.New("Not an HTTP error")

	if !couch.NotFound(notFound) || couch.NotFound(conflict) || couch.NotFound(fe) {
		t.Error("NotFound misclassified")
	}
	if !couch.Conflict(conflict) || couch.Conflict(notFound) || couch.Conflict(fe) {
		t.Error("Conflict misclassified")
	}
	if !couch.AlreadyExists(exists412) || !couch.AlreadyExists(exists409) {
		t.Error("AlreadyExists must match 412 and 409/file_exists")
	}
	if couch.AlreadyExists(conflict) || couch.AlreadyExists(fe) {
		t.Error("AlreadyExists misclassified")
	}
	if !couch.Unauthorized(unauthorized) || couch.Unauthorized(fe) {
		t.Error("Unauthorized misclassified")
	}
	if !couch.ErrorStatus(conflict, http.StatusConflict) || couch.ErrorStatus(fe, http.StatusConflict) {
		t.Error("ErrorStatus misclassified")
	}
}

func TestErrorPayload(t *testing.T) {
	c := newTestClient(t)
	c.Handle("GET /db/doc", func(resp http.ResponseWriter, req *http.Request) {
		sendError(resp, http.StatusNotFound, "not_found", "missing")
	})

	_, err := c.DB("db").Get(context.Background(), "doc", "")
	var dberr *couch.Error
	if !errors.As(err, &dberr) {
		t.Fatalf("expected *couch.Error, got %T: %v", err, err)
	}
	check(t, "dberr.Method", "GET", dberr.Method)
	check(t, "dberr.StatusCode", http.StatusNotFound, dberr.StatusCode)
	check(t, "dberr.ErrorCode", "not_found", dberr.ErrorCode)
	check(t, "dberr.Reason", "missing", dberr.Reason)
}

func TestUndecodableErrorBody(t *testing.T) {
	c := newTestClient(t)
	c.Handle("GET /db/doc", func(resp http.ResponseWriter, req *http.Request) {
		resp.WriteHeader(http.StatusInternalServerError)
		io.WriteString(resp, "<html>gateway error</html>")
	})

	_, err := c.DB("db").Get(context.Background(), "doc", "")
	if err == nil {
		t.Fatal("expected an error")
	}
	// a protocol violation is not part of the error taxonomy
	var dberr *couch.Error
	if errors.As(err, &dberr) {
		t.Fatalf("expected a plain decode error, got *couch.Error: %v", err)
	}
	if !strings.Contains(err.Error(), "undecodable error response") {
		t.Errorf("unexpected error text: %v", err)
	}
}
