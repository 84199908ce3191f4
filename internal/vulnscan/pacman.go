package vulnscan

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"strings"
)

// ErrAuditHelperMissing is wrapped by the error returned when arch-audit is
// not installed. The invocation cannot continue without it.
var ErrAuditHelperMissing = errors.New("the pacman assessor requires arch-audit to be installed, please install it and try again")

var defaultAuditCheck = []string{"pacman", "-Qi", "arch-audit"}

// PacmanAssessor relies on arch-audit, which matches installed packages
// against the Arch security tracker.
type PacmanAssessor struct {
	Runner  Runner
	Command []string
	Logger  *log.Logger

	// CheckCommand fails when arch-audit is not installed.
	CheckCommand []string
}

func (a *PacmanAssessor) Kind() Kind { return KindPacman }

func (a *PacmanAssessor) Assess(ctx context.Context) (CVESet, error) {
	if err := a.checkHelper(ctx); err != nil {
		return nil, err
	}

	out, err := run(ctx, a.Runner, a.Command)
	if err != nil {
		return nil, err
	}

	cves, skipped := ParseAudit(bytes.NewReader(out))
	logSkipped(a.Logger, KindPacman, skipped)

	return cves, nil
}

func (a *PacmanAssessor) checkHelper(ctx context.Context) error {
	check := a.CheckCommand
	if len(check) == 0 {
		check = defaultAuditCheck
	}

	_, err := run(ctx, a.Runner, check)
	if err == nil {
		return nil
	}

	var toolErr *ExternalToolError
	if errors.As(err, &toolErr) && (toolErr.Missing || toolErr.ExitCode == 1) {
		return &ExternalToolError{
			Tool:     "arch-audit",
			Missing:  true,
			ExitCode: toolErr.ExitCode,
			Err:      ErrAuditHelperMissing,
		}
	}

	return err
}

// ParseAudit reads arch-audit output where every line has the form
// "<pkgname> <cve1,cve2,...>".
func ParseAudit(r io.Reader) (CVESet, []*ParseError) {
	cves := CVESet{}
	var skipped []*ParseError

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.ReplaceAll(scanner.Text(), "'", ""))
		if len(line) < 1 {
			continue
		}

		_, rest, ok := strings.Cut(line, " ")
		if !ok {
			skipped = append(skipped, &ParseError{Line: line, Reason: "no CVE list"})
			continue
		}

		found := cveRe.FindAllString(rest, -1)
		if len(found) < 1 {
			skipped = append(skipped, &ParseError{Line: line, Reason: "no CVE identifier"})
			continue
		}

		cves.Add(found...)
	}

	if err := scanner.Err(); err != nil {
		skipped = append(skipped, &ParseError{Reason: err.Error()})
	}

	return cves, skipped
}
