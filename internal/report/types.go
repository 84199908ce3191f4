package report

import (
	"github.com/kvesta/lem/pkg/curation"
)

// Finding is one curated exploit applicable to a CVE affecting the host.
type Finding struct {
	CVE       string `json:"cve" csv:"cve"`
	Severity  string `json:"severity" csv:"severity"`
	ExploitID string `json:"edbid" csv:"edbid"`
	Filename  string `json:"filename" csv:"filename"`
	Observed  bool   `json:"rhapi" csv:"rhapi"`
	Scored    bool   `json:"scored" csv:"scored"`
	Staged    bool   `json:"staged" csv:"staged"`
}

// Assessment is the result of one host assessment.
type Assessment struct {
	Assessor  string     `json:"assessor"`
	Host      string     `json:"host,omitempty"`
	CPE       string     `json:"cpe,omitempty"`
	CVEs      []string   `json:"cves"`
	Findings  []*Finding `json:"findings"`
	Unmatched []string   `json:"unmatched"`
}

// Exploit is one curated record as shown by list.
type Exploit struct {
	ID     string           `json:"edbid"`
	Record *curation.Record `json:"record"`
}
