package curation

import (
	"fmt"
	"regexp"
	"sort"
)

var cveRe = regexp.MustCompile(`^CVE-\d{4}-\d{4,}$`)

// ValidCVE reports whether id is a well formed CVE identifier.
func ValidCVE(id string) bool {
	return cveRe.MatchString(id)
}

// Record is the curated data of one exploit, persisted as one document.
type Record struct {
	Filename string                    `json:"filename"`
	CVEs     map[string]*CveAnnotation `json:"cves"`
}

// CveAnnotation holds what is known about one CVE of an exploit. Scores and
// staging data are keyed by CPE.
type CveAnnotation struct {
	RHAPI   *bool                    `json:"rhapi,omitempty"`
	Scores  map[string]PlatformScore `json:"scores,omitempty"`
	Staging map[string]*StagingInfo  `json:"staging,omitempty"`
}

// PlatformScore maps a score dimension to its value.
type PlatformScore map[string]string

// StagingInfo describes how to prepare a host before running an exploit.
type StagingInfo struct {
	Command  string   `json:"command,omitempty"`
	Packages []string `json:"packages,omitempty"`
	Services []string `json:"services,omitempty"`
	SELinux  string   `json:"selinux,omitempty"`
}

// IsSet reports whether at least one field carries data.
func (s *StagingInfo) IsSet() bool {
	return s != nil && (s.Command != "" || len(s.Packages) > 0 || len(s.Services) > 0 || s.SELinux != "")
}

func NewRecord(filename string) *Record {
	return &Record{
		Filename: filename,
		CVEs:     map[string]*CveAnnotation{},
	}
}

// CVEIDs returns the annotated CVE identifiers in sorted order.
func (r *Record) CVEIDs() []string {
	ids := make([]string, 0, len(r.CVEs))
	for id := range r.CVEs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ObservedInAPI reports whether the security API listed cve.
func (a *CveAnnotation) ObservedInAPI() bool {
	return a != nil && a.RHAPI != nil && *a.RHAPI
}

// NotFoundError is returned for exploits, CVEs or staging data that have not
// been curated yet.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s is empty, run 'lem refresh' first", e.Kind)
	}
	return fmt.Sprintf("%s %s is not curated yet, run 'lem refresh' first", e.Kind, e.ID)
}
