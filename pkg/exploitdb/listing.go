package exploitdb

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/kvesta/lem/pkg/curation"
)

var cveRe = regexp.MustCompile(`(?i)CVE-\d{4}-\d{4,}`)

// Exploit is one row of files_exploits.csv.
type Exploit struct {
	ID          string `csv:"id"`
	File        string `csv:"file"`
	Description string `csv:"description"`
	Published   string `csv:"date_published"`
	Type        string `csv:"type"`
	Platform    string `csv:"platform"`
	Codes       string `csv:"codes"`
}

// CVEs returns the CVE identifiers referenced by the codes column.
func (e *Exploit) CVEs() []string {
	seen := map[string]bool{}
	cves := []string{}
	for _, c := range cveRe.FindAllString(e.Codes, -1) {
		c = strings.ToUpper(c)
		if seen[c] {
			continue
		}
		seen[c] = true
		cves = append(cves, c)
	}
	return cves
}

// ParseExploits decodes the exploit listing.
func ParseExploits(r io.Reader) ([]*Exploit, error) {
	rows := []*Exploit{}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse exploit listing: %w", err)
	}
	return rows, nil
}

// Listing turns the exploit rows into the reconciliation input.
func Listing(rows []*Exploit) curation.Listing {
	listing := curation.Listing{}
	for _, e := range rows {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			continue
		}
		listing[id] = curation.ListingEntry{
			Filename: strings.TrimSpace(e.File),
			CVEs:     e.CVEs(),
		}
	}
	return listing
}

// ReadListing parses the listing file name inside the checkout at root.
func ReadListing(root, name string) ([]*Exploit, error) {
	f, err := os.Open(filepath.Join(root, name))
	if err != nil {
		return nil, fmt.Errorf("exploit listing not found, run 'lem refresh' first: %w", err)
	}
	defer f.Close()

	return ParseExploits(f)
}
