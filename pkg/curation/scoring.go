package curation

import (
	"fmt"
	"sort"

	"github.com/kvesta/lem/pkg/packages"
)

// Validator checks a value against a score dimension.
type Validator interface {
	Validate(name, value string) error
}

// Scorer records per-platform scores on curated exploits.
type Scorer struct {
	Store     *Store
	Validator Validator
}

// SetScores validates every value and then stores them under cpe. When one
// value is rejected the record is left unchanged.
func (s *Scorer) SetScores(t Target, values map[string]string) error {
	if len(values) < 1 {
		return fmt.Errorf("no score values given")
	}

	dims := make([]string, 0, len(values))
	for d := range values {
		dims = append(dims, d)
	}
	sort.Strings(dims)

	for _, d := range dims {
		if err := s.Validator.Validate(d, values[d]); err != nil {
			return err
		}
	}

	cpe, err := packages.NormalizeCPE(t.CPE)
	if err != nil {
		return fmt.Errorf("invalid cpe %q: %w", t.CPE, err)
	}

	rec, err := s.Store.Load(t.ExploitID)
	if err != nil {
		return err
	}

	anns, err := annotations(rec, t)
	if err != nil {
		return err
	}

	for _, ann := range anns {
		if ann.Scores == nil {
			ann.Scores = map[string]PlatformScore{}
		}
		score := ann.Scores[cpe]
		if score == nil {
			score = PlatformScore{}
			ann.Scores[cpe] = score
		}
		for _, d := range dims {
			score[d] = values[d]
		}
	}

	_, err = s.Store.Write(t.ExploitID, rec)
	return err
}
