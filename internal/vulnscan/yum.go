package vulnscan

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log"
	"regexp"
)

var advisoryRe = regexp.MustCompile(`\s(.*CVE-\d{4}-\d{4,})`)

// YumAssessor asks the platform's update-advisory tool which CVEs have
// pending fixes. The tool does the package matching itself.
type YumAssessor struct {
	Runner  Runner
	Command []string
	Logger  *log.Logger
}

func (a *YumAssessor) Kind() Kind { return KindYum }

func (a *YumAssessor) Assess(ctx context.Context) (CVESet, error) {
	out, err := run(ctx, a.Runner, a.Command)
	if err != nil {
		return nil, err
	}

	cves, skipped := ParseAdvisories(bytes.NewReader(out))
	logSkipped(a.Logger, KindYum, skipped)

	return cves, nil
}

// ParseAdvisories collects the CVE identifiers of an advisory listing such
// as the output of `yum updateinfo list cves`.
func ParseAdvisories(r io.Reader) (CVESet, []*ParseError) {
	cves := CVESet{}
	var skipped []*ParseError

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 1 {
			continue
		}

		m := advisoryRe.FindStringSubmatch(line)
		if m == nil {
			skipped = append(skipped, &ParseError{Line: line, Reason: "no advisory CVE"})
			continue
		}

		cves.Add(cveRe.FindAllString(m[1], -1)...)
	}

	if err := scanner.Err(); err != nil {
		skipped = append(skipped, &ParseError{Reason: err.Error()})
	}

	return cves, skipped
}
