package vulnscan

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/kvesta/lem/pkg/packages"
)

var cveRe = regexp.MustCompile(`CVE-\d{4}-\d{4,}`)

// Kind names one assessor variant.
type Kind string

const (
	KindYum    Kind = "yum"
	KindRpm    Kind = "rpm"
	KindPacman Kind = "pacman"
)

// ParseKind validates a kind taken from configuration or the command line.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindYum, KindRpm, KindPacman:
		return k, nil
	default:
		return "", fmt.Errorf("unknown assessor %q, expected one of yum, rpm, pacman", s)
	}
}

// CVESet is the set of CVE identifiers affecting a host.
type CVESet map[string]struct{}

func (s CVESet) Add(ids ...string) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

func (s CVESet) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ParseError marks a line of command output that matched no expected
// pattern. Such lines yield no findings and never abort a scan.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparsable line %q: %s", e.Line, e.Reason)
}

// VulnSource provides the packages known to be affected by each CVE.
type VulnSource interface {
	AffectedPackages(ctx context.Context) (map[string][]packages.Identity, error)
}

// StaticVulnData is a VulnSource backed by a fixed mapping.
type StaticVulnData map[string][]packages.Identity

func (d StaticVulnData) AffectedPackages(ctx context.Context) (map[string][]packages.Identity, error) {
	return d, nil
}

// Assessor decides which CVEs currently affect the host.
type Assessor interface {
	Kind() Kind
	Assess(ctx context.Context) (CVESet, error)
}

// Options carries the collaborators shared by all assessors.
type Options struct {
	Runner Runner
	Logger *log.Logger

	YumCommand        []string
	RpmCommand        []string
	AuditCommand      []string
	AuditCheckCommand []string
	RpmDBPath         string

	VulnData VulnSource
}

// New builds the assessor for kind.
func New(kind Kind, opts Options) (Assessor, error) {
	if opts.Runner == nil {
		opts.Runner = ExecRunner{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	switch kind {
	case KindYum:
		return &YumAssessor{
			Runner:  opts.Runner,
			Command: opts.YumCommand,
			Logger:  opts.Logger,
		}, nil
	case KindRpm:
		if opts.VulnData == nil {
			return nil, fmt.Errorf("rpm assessor requires vulnerability data")
		}
		return &RpmAssessor{
			Runner:    opts.Runner,
			Command:   opts.RpmCommand,
			RpmDBPath: opts.RpmDBPath,
			VulnData:  opts.VulnData,
			Logger:    opts.Logger,
		}, nil
	case KindPacman:
		return &PacmanAssessor{
			Runner:       opts.Runner,
			Command:      opts.AuditCommand,
			CheckCommand: opts.AuditCheckCommand,
			Logger:       opts.Logger,
		}, nil
	default:
		return nil, fmt.Errorf("unknown assessor %q", kind)
	}
}

func logger(l *log.Logger) *log.Logger {
	if l == nil {
		return log.Default()
	}
	return l
}

func logSkipped(l *log.Logger, kind Kind, skipped []*ParseError) {
	if len(skipped) < 1 {
		return
	}
	logger(l).Printf("%s: skipped %d lines without findings", kind, len(skipped))
}
