package couch

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

// Config holds connection settings for a CouchDB server.
// VerifySSL is a pointer so that "unset" keeps certificate
// verification on; only an explicit false disables it.
type Config struct {
	URL        string `yaml:"url"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	VerifySSL  *bool  `yaml:"verify_ssl"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// LoadConfig reads a Config from a YAML file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("couch: reading config: %w", err)
	}
	cfg := new(Config)
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, xerrors.Errorf("couch: parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Client builds a ready-to-use Client from the configuration:
// URL validation, request timeout, the TLS verification toggle and
// basic auth when a username is set.
func (cfg *Config) Client() (*Client, error) {
	addr, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, xerrors.Errorf("couch: invalid server URL %q: %w", cfg.URL, err)
	}
	if addr.Scheme != "http" && addr.Scheme != "https" {
		return nil, xerrors.Errorf("couch: unsupported URL scheme %q in %q", addr.Scheme, cfg.URL)
	}
	httpClient := &http.Client{
		Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
	}
	if cfg.VerifySSL != nil && !*cfg.VerifySSL {
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	var auth Auth
	if cfg.Username != "" {
		auth = BasicAuth(cfg.Username, cfg.Password)
	}
	return NewClient(addr, httpClient, auth), nil
}
