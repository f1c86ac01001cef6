package couch

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/xerrors"
)

// Client represents a remote CouchDB server.
type Client struct{ *transport }

// NewClient creates a new Client.
// addr should contain scheme and host, and optionally port and path. All other attributes will be ignored.
// If httpClient is nil, the default http.Client will be used.
// If auth is nil, no auth will be set.
func NewClient(addr *url.URL, httpClient *http.Client, auth Auth) *Client {
	prefixAddr := *addr
	// cleanup our address
	prefixAddr.User, prefixAddr.RawQuery, prefixAddr.Fragment = nil, "", ""
	return &Client{newTransport(prefixAddr.String(), httpClient, auth)}
}

// URL returns the URL prefix of the server.
// The url will not contain a trailing '/'.
func (c *Client) URL() string {
	return c.prefix
}

// Ping can be used to check whether a server is alive.
// It sends an HTTP HEAD request to the server's URL.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.closedRequest(ctx, "HEAD", "/", nil)
	return err
}

// SetAuth sets the authentication mechanism used by the client.
// Use SetAuth(nil) to unset any mechanism that might be in use.
// In order to verify the credentials against the server, issue any request
// after the call to SetAuth.
func (c *Client) SetAuth(a Auth) {
	c.transport.setAuth(a)
}

// SetLogger sets the logger used for request-level debug logging.
// The client is silent by default; SetLogger(nil) restores that.
func (c *Client) SetLogger(l *zap.Logger) {
	c.transport.setLogger(l)
}

// Info retrieves server metadata: the welcome banner with name,
// version, build SHA, instance UUID and feature list.
//
// http://docs.couchdb.org/en/latest/api/server/common.html#get--
func (c *Client) Info(ctx context.Context) (*ServerInfo, error) {
	resp, err := c.request(ctx, "GET", "/", nil)
	if err != nil {
		return nil, err
	}
	info := new(ServerInfo)
	if err := readBody(resp, info); err != nil {
		return nil, err
	}
	return info, nil
}

// CreateDB creates a new database. The request fails with an error
// matched by AlreadyExists if the database is already there.
// A valid DB object is returned in all cases, even if the
// request fails.
func (c *Client) CreateDB(ctx context.Context, name string) (*DB, error) {
	if _, err := c.closedRequest(ctx, "PUT", path(name), nil); err != nil {
		return c.DB(name), err
	}
	return c.DB(name), nil
}

// EnsureDB ensures that a database with the given name exists.
func (c *Client) EnsureDB(ctx context.Context, name string) (*DB, error) {
	db, err := c.CreateDB(ctx, name)
	if err != nil && !AlreadyExists(err) {
		return nil, err
	}
	return db, nil
}

// DeleteDB deletes an existing database.
// The request fails with an error matched by NotFound if the
// database does not exist.
func (c *Client) DeleteDB(ctx context.Context, name string) error {
	_, err := c.closedRequest(ctx, "DELETE", path(name), nil)
	return err
}

// AllDBs returns the names of all existing databases,
// excluding system databases (names starting with '_').
func (c *Client) AllDBs(ctx context.Context) ([]string, error) {
	resp, err := c.request(ctx, "GET", "/_all_dbs", nil)
	if err != nil {
		return nil, err
	}
	var all []string
	if err := readBody(resp, &all); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(all))
	for _, name := range all {
		if !strings.HasPrefix(name, "_") {
			names = append(names, name)
		}
	}
	return names, nil
}

// DBExists probes for a database with an HTTP HEAD request.
// Any answer from the server resolves to a boolean; in particular a
// missing database is false, not an error. Only transport-level
// failures are returned as errors.
func (c *Client) DBExists(ctx context.Context, name string) (bool, error) {
	resp, err := c.closedRequest(ctx, "HEAD", path(name), nil)
	if err != nil {
		var dberr *Error
		if xerrors.As(err, &dberr) {
			return false, nil
		}
		return false, err
	}
	return resp.StatusCode == http.StatusOK, nil
}

// DB creates a database object.
// The database inherits the authentication and http.RoundTripper
// of the client. The database's actual existence is not verified.
func (c *Client) DB(name string) *DB {
	return &DB{c.transport, name}
}
