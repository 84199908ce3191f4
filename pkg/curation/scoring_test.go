package curation

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patternValidator map[string]*regexp.Regexp

func (v patternValidator) Validate(name, value string) error {
	re, ok := v[name]
	if !ok {
		return fmt.Errorf("unknown dimension %s", name)
	}
	if !re.MatchString(value) {
		return fmt.Errorf("invalid value %q for %s", value, name)
	}
	return nil
}

func TestSetScores(t *testing.T) {
	s := newStager(t)
	scorer := &Scorer{
		Store: s.Store,
		Validator: patternValidator{
			"severity": regexp.MustCompile(`^[LMH]$`),
			"impact":   regexp.MustCompile(`^\d$`),
		},
	}
	target := Target{ExploitID: "40611", CVE: "CVE-2016-5195", CPE: rhel7}

	require.NoError(t, scorer.SetScores(target, map[string]string{"severity": "H", "impact": "9"}))

	err := scorer.SetScores(target, map[string]string{"severity": "L", "impact": "high"})
	require.Error(t, err)

	rec, err := s.Store.Load("40611")
	require.NoError(t, err)
	assert.Equal(t, PlatformScore{"severity": "H", "impact": "9"}, rec.CVEs["CVE-2016-5195"].Scores[rhel7])

	assert.Error(t, scorer.SetScores(target, map[string]string{"exploitability": "H"}))
	assert.Error(t, scorer.SetScores(target, nil))
	assert.Error(t, scorer.SetScores(Target{ExploitID: "1", CPE: rhel7}, map[string]string{"severity": "H"}))
}
