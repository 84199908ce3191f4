package vulnscan

import (
	"bytes"
	"context"
	"errors"
	"log"

	"github.com/kvesta/lem/config"
	"github.com/kvesta/lem/pkg/packages"
)

// RpmAssessor compares the installed rpm packages with the packages known
// to be affected by each CVE.
type RpmAssessor struct {
	Runner  Runner
	Command []string
	// RpmDBPath is read directly when the listing command is missing.
	RpmDBPath string
	VulnData  VulnSource
	Logger    *log.Logger
}

func (a *RpmAssessor) Kind() Kind { return KindRpm }

func (a *RpmAssessor) Assess(ctx context.Context) (CVESet, error) {
	// The whole inventory is gathered before any comparison since the
	// listing is not sorted.
	inv, err := a.inventory(ctx)
	if err != nil {
		return nil, err
	}

	data, err := a.VulnData.AffectedPackages(ctx)
	if err != nil {
		return nil, err
	}

	return Match(inv, data), nil
}

func (a *RpmAssessor) inventory(ctx context.Context) (packages.Inventory, error) {
	out, err := run(ctx, a.Runner, a.Command)
	if err != nil {
		var toolErr *ExternalToolError
		if errors.As(err, &toolErr) && toolErr.Missing && a.RpmDBPath != "" {
			logger(a.Logger).Printf(config.Yellow("%s not found, reading rpm database in %s"), toolErr.Tool, a.RpmDBPath)
			return packages.ReadRpmDB(ctx, a.RpmDBPath)
		}
		return nil, err
	}

	inv, lines, err := packages.ParseListing(bytes.NewReader(out))
	if err != nil {
		return nil, err
	}

	skipped := make([]*ParseError, 0, len(lines))
	for _, l := range lines {
		skipped = append(skipped, &ParseError{Line: l, Reason: "no package name"})
	}
	logSkipped(a.Logger, KindRpm, skipped)

	return inv, nil
}

// Match returns the CVEs for which an installed package of the same name is
// older than one of the affected packages.
func Match(inv packages.Inventory, data map[string][]packages.Identity) CVESet {
	cves := CVESet{}

	for cve, affected := range data {
		for _, pkg := range affected {
			installed, ok := inv[pkg.Name]
			if !ok {
				continue
			}

			if packages.IsLess(installed, pkg) {
				cves.Add(cve)
				break
			}
		}
	}

	return cves
}
