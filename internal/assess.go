package internal

import (
	"context"
	"fmt"

	"github.com/kvesta/lem/config"
	"github.com/kvesta/lem/internal/report"
	"github.com/kvesta/lem/internal/vulnscan"
)

// ResolveKind turns the configured assessor kind into a concrete one,
// detecting the distribution for "auto".
func ResolveKind(ctx context.Context, a *App, kind string) (vulnscan.Kind, error) {
	if kind == "" || kind == "auto" {
		osv, err := a.Host(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to detect the host: %w", err)
		}

		kind = osv.Assessor()
		if kind == "" {
			return "", fmt.Errorf("no assessor for %s, pass --kind", osv.NAME)
		}
		a.Logger.Printf("Detect OS: %s, using the %s assessor", osv.OID, kind)
	}

	return vulnscan.ParseKind(kind)
}

// DoAssess finds the CVEs affecting the host and the curated exploits
// applicable to them.
func DoAssess(ctx context.Context, a *App, kind string) (*report.Assessment, error) {
	k, err := ResolveKind(ctx, a, kind)
	if err != nil {
		return nil, err
	}

	// Without curated exploits every CVE would be reported as unmatched.
	if err := a.Store.Ready(); err != nil {
		return nil, err
	}

	opts := vulnscan.Options{
		Runner:            a.Runner,
		Logger:            a.Logger,
		YumCommand:        a.Cfg.Assessor.YumCommand,
		RpmCommand:        a.Cfg.Assessor.RpmCommand,
		AuditCommand:      a.Cfg.Assessor.AuditCommand,
		AuditCheckCommand: a.Cfg.Assessor.AuditCheckCommand,
		RpmDBPath:         a.Cfg.Assessor.RpmDBPath,
	}
	if k == vulnscan.KindRpm {
		opts.VulnData = a.Vulns
	}

	assessor, err := vulnscan.New(k, opts)
	if err != nil {
		return nil, err
	}

	a.Logger.Printf(config.Green("Begin to assess the host with %s"), k)
	cves, err := assessor.Assess(ctx)
	if err != nil {
		return nil, err
	}

	index, failed, err := a.Store.ByCVE()
	if err != nil {
		return nil, err
	}
	warnFailed(a, failed)

	result := &report.Assessment{
		Assessor:  string(k),
		CVEs:      cves.Sorted(),
		Findings:  []*report.Finding{},
		Unmatched: []string{},
	}
	if a.host != nil {
		result.Host = a.host.NAME
		result.CPE = a.host.CPE
	}

	for _, cve := range result.CVEs {
		ids := index[cve]
		if len(ids) < 1 {
			result.Unmatched = append(result.Unmatched, cve)
			continue
		}

		severity := ""
		if row, err := a.Vulns.QueryCVE(cve); err == nil && row != nil {
			severity = row.Severity
		}

		for _, id := range ids {
			rec, err := a.Store.Load(id)
			if err != nil {
				a.Logger.Printf(config.Yellow("skipping exploit %s: %v"), id, err)
				continue
			}

			ann := rec.CVEs[cve]
			f := &report.Finding{
				CVE:       cve,
				Severity:  severity,
				ExploitID: id,
				Filename:  rec.Filename,
				Observed:  ann.ObservedInAPI(),
			}
			if ann != nil {
				f.Scored = len(ann.Scores) > 0
				for _, info := range ann.Staging {
					if info.IsSet() {
						f.Staged = true
					}
				}
			}
			result.Findings = append(result.Findings, f)
		}
	}

	if len(result.Unmatched) > 0 {
		a.Logger.Printf(config.Yellow("%d CVEs affect the host without a curated exploit"), len(result.Unmatched))
	}

	return result, nil
}
