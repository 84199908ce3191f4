package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvesta/lem/pkg/curation"
)

func sampleAssessment() *Assessment {
	return &Assessment{
		Assessor: "yum",
		CVEs:     []string{"CVE-2016-5195", "CVE-2020-1971", "CVE-2021-4034"},
		Findings: []*Finding{
			{CVE: "CVE-2021-4034", Severity: "moderate", ExploitID: "50689", Filename: "exploits/linux/local/50689.txt"},
			{CVE: "CVE-2016-5195", Severity: "important", ExploitID: "40611", Filename: "exploits/linux/local/40611.c", Observed: true},
		},
		Unmatched: []string{"CVE-2020-1971"},
	}
}

func TestResolveAssessment(t *testing.T) {
	buf := &bytes.Buffer{}
	a := sampleAssessment()

	ResolveAssessment(buf, a)

	out := buf.String()
	assert.Contains(t, out, "40611")
	assert.Contains(t, out, "50689")
	// Most severe first.
	assert.Equal(t, "CVE-2016-5195", a.Findings[0].CVE)
	assert.Less(t, strings.Index(out, "40611"), strings.Index(out, "50689"))
}

func TestResolveExploits(t *testing.T) {
	rec := curation.NewRecord("exploits/linux/local/40611.c")
	rec.CVEs["CVE-2016-5195"] = &curation.CveAnnotation{
		Scores: map[string]curation.PlatformScore{"cpe:2.3:o:redhat:enterprise_linux:7:*:*:*:*:*:*:*": {"severity": "H"}},
	}

	buf := &bytes.Buffer{}
	ResolveExploits(buf, []*Exploit{
		{ID: "40611", Record: rec},
		{ID: "1", Record: curation.NewRecord("exploits/windows/dos/1.c")},
	})

	out := buf.String()
	assert.Contains(t, out, "CVE-2016-5195")
	assert.Contains(t, out, "severity=H")
	assert.Contains(t, out, "exploits/windows/dos/1.c")
}

func TestToJson(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "assessment.json")

	name, err := ToJson(path, sampleAssessment())
	require.NoError(t, err)
	assert.Equal(t, path, name)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	got := &Assessment{}
	require.NoError(t, json.Unmarshal(data, got))
	assert.Equal(t, []string{"CVE-2020-1971"}, got.Unmatched)
}

func TestFindingsToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "findings.csv")

	_, err := FindingsToCSV(path, sampleAssessment().Findings)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "cve,severity,edbid,filename,rhapi,scored,staged", lines[0])
	assert.Contains(t, lines[2], "40611")
}
