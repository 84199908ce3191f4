package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/kvesta/lem/config"
	"github.com/kvesta/lem/pkg/curation"
	"github.com/kvesta/lem/pkg/score"
)

// ResolveAssessment prints the exploits applicable to the assessed host.
func ResolveAssessment(w io.Writer, a *Assessment) {
	critical, high, medium, low := 0, 0, 0, 0

	for _, f := range a.Findings {
		switch config.SeverityMap[strings.ToLower(f.Severity)] {
		case 5:
			critical += 1
		case 4:
			high += 1
		case 3:
			medium += 1
		case 2:
			low += 1
		default:
			// ignore
		}
	}

	fmt.Fprintf(w, "\n%s assessment found %s CVEs with %s applicable exploits | "+
		"Critical: %s High: %s Medium: %s Low: %s\n\n",
		a.Assessor,
		config.Yellow(len(a.CVEs)),
		config.Yellow(len(a.Findings)),
		config.Red(critical),
		config.Pink(high),
		config.Yellow(medium),
		config.Green(low))

	if len(a.Findings) < 1 {
		return
	}

	sort.SliceStable(a.Findings, func(i, j int) bool {
		si := config.SeverityMap[strings.ToLower(a.Findings[i].Severity)]
		sj := config.SeverityMap[strings.ToLower(a.Findings[j].Severity)]
		if si != sj {
			return si > sj
		}
		return a.Findings[i].CVE < a.Findings[j].CVE
	})

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "CVEID", "Severity", "EDB-ID", "Filename", "Security API", "Scored", "Staged"})
	table.SetRowLine(true)
	table.SetAutoMergeCellsByColumnIndex([]int{1, 2})

	for i, f := range a.Findings {
		table.Append([]string{
			strconv.Itoa(i + 1), f.CVE, judgeSeverity(f.Severity),
			f.ExploitID, f.Filename,
			yesNo(f.Observed), yesNo(f.Scored), yesNo(f.Staged),
		})
	}

	table.Render()
}

// ResolveExploits prints curated records, one row per CVE annotation.
func ResolveExploits(w io.Writer, exploits []*Exploit) {
	fmt.Fprintf(w, "\n%s curated exploits\n\n", config.Yellow(len(exploits)))

	if len(exploits) < 1 {
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"EDB-ID", "Filename", "CVEID", "Security API", "Scores", "Staging"})
	table.SetRowLine(true)
	table.SetAutoMergeCellsByColumnIndex([]int{0, 1})

	for _, e := range exploits {
		ids := e.Record.CVEIDs()
		if len(ids) < 1 {
			table.Append([]string{e.ID, e.Record.Filename, "-", "-", "-", "-"})
			continue
		}

		for _, c := range ids {
			ann := e.Record.CVEs[c]
			table.Append([]string{
				e.ID, e.Record.Filename, c,
				yesNo(ann.ObservedInAPI()),
				formatScores(ann), formatStaging(ann),
			})
		}
	}

	table.Render()
}

// ResolveScores prints the score definitions.
func ResolveScores(w io.Writer, defs []*score.Definition) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Pattern", "Example"})

	for _, d := range defs {
		table.Append([]string{d.Name, d.Pattern, d.Example})
	}

	table.Render()
}

// ResolveStaging prints the staging data of one exploit.
func ResolveStaging(w io.Writer, id, cve, cpe string, info *curation.StagingInfo) {
	if !info.IsSet() {
		fmt.Fprintf(w, "No staging data for exploit %s on %s\n", id, cpe)
		return
	}

	fmt.Fprintf(w, "Staging of exploit %s (%s) on %s\n", config.Yellow(id), cve, cpe)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Param", "Value"})
	table.SetRowLine(true)
	table.Append([]string{"Command", info.Command})
	table.Append([]string{"Packages", strings.Join(info.Packages, "\n")})
	table.Append([]string{"Services", strings.Join(info.Services, "\n")})
	table.Append([]string{"SELinux", info.SELinux})
	table.Render()
}

// ResolveStageResult prints the outcome of staging a payload.
func ResolveStageResult(w io.Writer, r *curation.StageResult) {
	status := config.Green("staged")
	if !r.Staged {
		status = config.Red("failed")
	}

	fmt.Fprintf(w, "Exploit %s %s: %s\n", r.ExploitID, status, r.Message)
	fmt.Fprintf(w, "  payload:     %s\n  destination: %s\n", r.Payload, r.Destination)

	if r.Info.IsSet() {
		ResolveStaging(w, r.ExploitID, r.CVE, r.CPE, r.Info)
	}
}

func formatScores(ann *curation.CveAnnotation) string {
	if ann == nil || len(ann.Scores) < 1 {
		return "-"
	}

	lines := []string{}
	for cpe, s := range ann.Scores {
		dims := make([]string, 0, len(s))
		for d, v := range s {
			dims = append(dims, fmt.Sprintf("%s=%s", d, v))
		}
		sort.Strings(dims)
		lines = append(lines, fmt.Sprintf("%s: %s", cpe, strings.Join(dims, " ")))
	}
	sort.Strings(lines)

	return strings.Join(lines, "\n")
}

func formatStaging(ann *curation.CveAnnotation) string {
	if ann == nil {
		return "-"
	}

	cpes := []string{}
	for cpe, info := range ann.Staging {
		if info.IsSet() {
			cpes = append(cpes, cpe)
		}
	}
	if len(cpes) < 1 {
		return "-"
	}
	sort.Strings(cpes)

	return strings.Join(cpes, "\n")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func judgeSeverity(severity string) string {

	severityLow := strings.ToLower(severity)

	switch severityLow {
	case "critical":
		return config.Red("critical")
	case "important", "high":
		return config.Pink(severityLow)
	case "moderate", "medium":
		return config.Yellow(severityLow)
	case "low":
		return config.Green("low")
	default:
		// ignore
	}
	return "unknown"
}
