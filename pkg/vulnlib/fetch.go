package vulnlib

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kvesta/lem/config"
)

// Refresh downloads the CVE list from the security API into the database.
// Nothing is fetched while the last refresh is younger than the expiry
// unless force is set.
func (c *Client) Refresh(ctx context.Context, force bool) (int, error) {
	if force {
		if err := c.Reset(); err != nil {
			return 0, err
		}
	}

	if !checkExpired(c.Store, c.Expire) {
		log.Printf("Security API data is up to date")
		return 0, nil
	}

	log.Printf(config.Green("Begin updating security API data from %s"), c.URL)

	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	total := 0
	for page := 1; page <= c.MaxPages; page++ {
		body, err := c.request(ctx, page)
		if err != nil {
			tx.Rollback()
			return 0, err
		}

		rows, err := parseCVEs(body)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("page %d: %w", page, err)
		}

		for _, r := range rows {
			if err := c.update(tx, r); err != nil {
				tx.Rollback()
				return 0, err
			}
		}
		total += len(rows)

		if len(rows) < c.PerPage {
			break
		}
		if page == c.MaxPages {
			log.Printf(config.Yellow("stopped after %d pages, the list may be incomplete"), page)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	if err := writeLog(c.Store); err != nil {
		log.Printf("failed to write date log, error: %v", err)
	}

	log.Printf("Security API updating finish, %d cves stored", total)
	return total, nil
}

func (c *Client) request(ctx context.Context, page int) ([]byte, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	q.Set("per_page", strconv.Itoa(c.PerPage))
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.Cli.Do(req)
	if err != nil {
		log.Printf("failed to request url: %s", u.String())
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("security API returned %s", res.Status)
	}

	return io.ReadAll(res.Body)
}

func parseCVEs(body []byte) ([]*CVERow, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid json response")
	}

	result := gjson.ParseBytes(body)
	if !result.IsArray() {
		return nil, fmt.Errorf("expected a json array")
	}

	rows := []*CVERow{}
	result.ForEach(func(_, item gjson.Result) bool {
		id := strings.ToUpper(item.Get("CVE").String())
		if id == "" {
			return true
		}

		r := &CVERow{
			CVEID:      id,
			Severity:   item.Get("severity").String(),
			PublicDate: item.Get("public_date").String(),
			Packages:   []string{},
		}
		if pd := strings.SplitN(r.PublicDate, "T", 2); len(pd) > 1 {
			r.PublicDate = pd[0]
		}

		for _, p := range item.Get("affected_packages").Array() {
			if s := strings.TrimSpace(p.String()); s != "" {
				r.Packages = append(r.Packages, s)
			}
		}

		rows = append(rows, r)
		return true
	})

	return rows, nil
}

// Reset removes the refresh date log so the next refresh fetches again.
func (c *Client) Reset() error {
	err := os.Remove(filepath.Join(c.Store, "date.txt"))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
