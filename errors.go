package couch

import (
	"fmt"
	"net/http"

	"golang.org/x/xerrors"
)

// ErrorResponse is the raw error payload the server attaches
// to every non-2xx response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// Error represents API-level errors, reported by CouchDB as
//
//	{"error": <ErrorCode>, "reason": <Reason>}
type Error struct {
	Method     string // HTTP method of the request
	URL        string // HTTP URL of the request
	StatusCode int    // HTTP status code of the response
	ErrorCode  string // error code from the response body
	Reason     string // error reason from the response body
}

func (e *Error) Error() string {
	if e.ErrorCode == "" {
		return fmt.Sprintf("%v %v: (%v) %v", e.Method, e.URL, e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("%v %v: (%v) %v: %v", e.Method, e.URL, e.StatusCode, e.ErrorCode, e.Reason)
}

// NotFound checks whether the given error is a *Error with
// StatusCode == 404. This is useful for conditional creation
// of databases and documents.
func NotFound(err error) bool {
	return ErrorStatus(err, http.StatusNotFound)
}

// Unauthorized checks whether the given error is a *Error
// with StatusCode == 401.
func Unauthorized(err error) bool {
	return ErrorStatus(err, http.StatusUnauthorized)
}

// Conflict checks whether the given error is a *Error with
// StatusCode == 409. CouchDB answers document writes carrying a
// stale or missing revision with this status.
func Conflict(err error) bool {
	return ErrorStatus(err, http.StatusConflict)
}

// AlreadyExists checks whether the given error is the server's answer
// to creating a database that is already there. CouchDB reports this
// as 412 Precondition Failed with the error code "file_exists"; some
// deployments answer 409 with the same code.
func AlreadyExists(err error) bool {
	var dberr *Error
	if !xerrors.As(err, &dberr) {
		return false
	}
	return dberr.StatusCode == http.StatusPreconditionFailed || dberr.ErrorCode == "file_exists"
}

// ErrorStatus checks whether the given error is a *Error
// and has the given status code.
func ErrorStatus(err error, statusCode int) bool {
	var dberr *Error
	if !xerrors.As(err, &dberr) {
		return false
	}
	return dberr.StatusCode == statusCode
}

// parseError reads a non-2xx response body as an ErrorResponse and
// converts it into a *Error. HEAD responses carry no body, so their
// payload fields stay empty. A body that cannot be decoded is a
// protocol violation and is reported as a plain wrapped error
// rather than a *Error.
func parseError(resp *http.Response) error {
	var reply ErrorResponse
	if resp.Request.Method != http.MethodHead {
		if err := readBody(resp, &reply); err != nil {
			return xerrors.Errorf("couch: %s %s: undecodable error response (status %d): %w",
				resp.Request.Method, resp.Request.URL, resp.StatusCode, err)
		}
	} else {
		resp.Body.Close()
	}
	return &Error{
		Method:     resp.Request.Method,
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		ErrorCode:  reply.Error,
		Reason:     reply.Reason,
	}
}
