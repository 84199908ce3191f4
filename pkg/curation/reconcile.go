package curation

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ListingEntry is what the exploit database says about one exploit.
type ListingEntry struct {
	Filename string
	CVEs     []string
}

// Listing maps exploit ids to their exploit database entry.
type Listing map[string]ListingEntry

// Summary counts the outcome of one reconciliation pass.
type Summary struct {
	Created   int
	Updated   int
	Unchanged int
	Failed    int
}

// Reconciler merges the exploit database listing and the security API CVE
// list into the store. It only adds or augments data: annotations, scores
// and staging data already in the store are never removed.
type Reconciler struct {
	Store  *Store
	Logger *log.Logger
}

type outcome int

const (
	unchanged outcome = iota
	created
	updated
)

// Reconcile runs one pass over every exploit of the listing and of the
// store. A failure on one exploit is collected and does not stop the
// others; the returned error aggregates all of them.
func (r *Reconciler) Reconcile(listing Listing, apiCVEs []string) (*Summary, error) {
	ids, err := r.exploitIDs(listing)
	if err != nil {
		return nil, err
	}

	observed := make(map[string]bool, len(apiCVEs))
	for _, c := range apiCVEs {
		observed[strings.ToUpper(strings.TrimSpace(c))] = true
	}

	summary := &Summary{}
	var result *multierror.Error

	for _, id := range ids {
		entry, inListing := listing[id]

		o, err := r.reconcileOne(id, entry, inListing, observed)
		if err != nil {
			summary.Failed++
			result = multierror.Append(result, fmt.Errorf("exploit %s: %w", id, err))
			r.logger().Printf("failed to reconcile exploit %s: %v", id, err)
			continue
		}

		switch o {
		case created:
			summary.Created++
		case updated:
			summary.Updated++
		default:
			summary.Unchanged++
		}
	}

	return summary, result.ErrorOrNil()
}

func (r *Reconciler) exploitIDs(listing Listing) ([]string, error) {
	keys, err := r.Store.Keys()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(keys)+len(listing))
	ids := make([]string, 0, len(keys)+len(listing))
	for _, id := range keys {
		seen[id] = true
		ids = append(ids, id)
	}

	extra := make([]string, 0)
	for id := range listing {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)

	return append(ids, extra...), nil
}

func (r *Reconciler) reconcileOne(id string, entry ListingEntry, inListing bool, observed map[string]bool) (outcome, error) {
	isNew := false

	rec, err := r.Store.Load(id)
	if err != nil {
		var nf *NotFoundError
		if !errors.As(err, &nf) || !inListing {
			return unchanged, err
		}
		rec = NewRecord("")
		isNew = true
	}

	if inListing {
		if err := validFilename(entry.Filename); err != nil {
			return unchanged, err
		}

		rec.Filename = entry.Filename

		for _, c := range entry.CVEs {
			c = strings.ToUpper(strings.TrimSpace(c))
			if !ValidCVE(c) {
				r.logger().Printf("exploit %s: ignoring malformed CVE %q", id, c)
				continue
			}
			if _, ok := rec.CVEs[c]; !ok {
				rec.CVEs[c] = &CveAnnotation{}
			}
		}
	}

	for c, ann := range rec.CVEs {
		if !observed[c] {
			continue
		}
		if ann == nil {
			ann = &CveAnnotation{}
			rec.CVEs[c] = ann
		}
		if !ann.ObservedInAPI() {
			t := true
			ann.RHAPI = &t
		}
	}

	changed, err := r.Store.Write(id, rec)
	switch {
	case err != nil:
		return unchanged, err
	case isNew:
		return created, nil
	case changed:
		return updated, nil
	default:
		return unchanged, nil
	}
}

func validFilename(name string) error {
	if name == "" {
		return errors.New("empty payload filename")
	}
	if filepath.IsAbs(name) {
		return fmt.Errorf("payload filename %q is absolute", name)
	}

	clean := filepath.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("payload filename %q leaves the exploit database", name)
	}

	return nil
}

func (r *Reconciler) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}
