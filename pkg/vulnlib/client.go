package vulnlib

import (
	"crypto/tls"
	"database/sql"
	"net/http"
	"time"

	"github.com/kvesta/lem/config"
)

// Client keeps a local copy of the CVE list published by the security API.
type Client struct {
	Cli *http.Client
	DB  *sql.DB

	// Store is the directory holding the refresh date log.
	Store    string
	URL      string
	PerPage  int
	MaxPages int
	Expire   time.Duration
}

type CVERow struct {
	CVEID      string
	Severity   string
	PublicDate string
	// Packages lists the fixed package builds, e.g. openssl-1:1.0.2k-16.el7_6.1
	Packages []string
}

// New returns a client configured from c. The database is opened by Init.
func New(c *config.Config) *Client {
	tr := &http.Transport{
		IdleConnTimeout:    60 * time.Second,
		DisableCompression: true,
	}
	if c.SecurityAPI.Insecure {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		Cli: &http.Client{
			Transport: tr,
			Timeout:   2 * time.Minute,
		},
		Store:    c.Home,
		URL:      c.SecurityAPI.URL,
		PerPage:  c.SecurityAPI.PerPage,
		MaxPages: c.SecurityAPI.MaxPages,
		Expire:   time.Duration(c.SecurityAPI.ExpireHours) * time.Hour,
	}
}
