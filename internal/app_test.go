package internal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvesta/lem/config"
	"github.com/kvesta/lem/internal/report"
	"github.com/kvesta/lem/internal/vulnscan"
	"github.com/kvesta/lem/pkg/curation"
	"github.com/kvesta/lem/pkg/score"
)

const (
	listingCSV = `id,file,description,date_published,author,type,platform,port,date_added,date_updated,verified,codes,tags
40611,exploits/linux/local/40611.c,Dirty COW,2016-10-19,Phil Oester,local,linux,,2016-10-19,2016-10-19,1,CVE-2016-5195;OSVDB-146015,
50689,exploits/linux/local/50689.txt,PwnKit,2022-01-27,someone,local,linux,,2022-01-27,2022-01-27,0,CVE-2021-4034,
`
	apiPage = `[
		{"CVE": "CVE-2016-5195", "severity": "important", "public_date": "2016-10-19T00:00:00Z",
		 "affected_packages": ["kernel-0:3.10.0-327.36.3.el7"]}
	]`
	rhel7 = "cpe:2.3:o:redhat:enterprise_linux:7:*:*:*:*:*:*:*"
)

type fakeRunner map[string]string

func (f fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmdline := strings.TrimSpace(name + " " + strings.Join(args, " "))
	out, ok := f[cmdline]
	if !ok {
		return nil, &vulnscan.ExternalToolError{Tool: name, Args: args, Missing: true, Err: errors.New("not found")}
	}
	return []byte(out), nil
}

func newApp(t *testing.T, runner fakeRunner) *App {
	t.Helper()

	home := t.TempDir()
	t.Setenv("LEM_HOME", home)

	cfg, err := config.Load(filepath.Join(home, "config.yaml"))
	require.NoError(t, err)

	a, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	a.Runner = runner
	a.Logger = log.New(io.Discard, "", 0)
	a.Out = &bytes.Buffer{}
	a.Root = t.TempDir()

	require.NoError(t, os.MkdirAll(cfg.ExploitDB.Path, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ExploitDB.Path, cfg.ExploitDB.Listing), []byte(listingCSV), 0o644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			w.Write([]byte(apiPage))
			return
		}
		w.Write([]byte("[]"))
	}))
	t.Cleanup(srv.Close)
	a.Vulns.Cli = srv.Client()
	a.Vulns.URL = srv.URL

	return a
}

func TestRefreshAndList(t *testing.T) {
	a := newApp(t, fakeRunner{})
	ctx := context.Background()

	summary, err := DoRefresh(ctx, a, RefreshOptions{Offline: true, API: true})
	require.NoError(t, err)
	assert.Equal(t, &curation.Summary{Created: 2}, summary)

	summary, err = DoRefresh(ctx, a, RefreshOptions{Offline: true})
	require.NoError(t, err)
	assert.Equal(t, &curation.Summary{Unchanged: 2}, summary)

	all, err := DoList(a, "", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "40611", all[0].ID)
	assert.True(t, all[0].Record.CVEs["CVE-2016-5195"].ObservedInAPI())
	assert.False(t, all[1].Record.CVEs["CVE-2021-4034"].ObservedInAPI())

	byCVE, err := DoList(a, "", "cve-2021-4034")
	require.NoError(t, err)
	require.Len(t, byCVE, 1)
	assert.Equal(t, "50689", byCVE[0].ID)

	_, err = DoList(a, "999", "")
	var nf *curation.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestNotRefreshed(t *testing.T) {
	a := newApp(t, fakeRunner{
		"yum updateinfo list cves": " CVE-2016-5195 Important/Sec. kernel-3.10.0-327.36.3.el7.x86_64\n",
	})
	ctx := context.Background()

	var nf *curation.NotFoundError

	_, err := DoList(a, "", "")
	require.True(t, errors.As(err, &nf), "got %v", err)
	assert.Equal(t, "curation store", nf.Kind)
	assert.Contains(t, err.Error(), "run 'lem refresh' first")

	_, err = DoList(a, "", "CVE-2016-5195")
	assert.True(t, errors.As(err, &nf), "got %v", err)

	result, err := DoAssess(ctx, a, "yum")
	assert.Nil(t, result)
	require.True(t, errors.As(err, &nf), "got %v", err)
	assert.Equal(t, "curation store", nf.Kind)

	_, err = DoRefresh(ctx, a, RefreshOptions{Offline: true})
	require.NoError(t, err)

	result, err = DoAssess(ctx, a, "yum")
	require.NoError(t, err)
	assert.Len(t, result.Findings, 1)
}

func TestAssess(t *testing.T) {
	a := newApp(t, fakeRunner{
		"yum updateinfo list cves": " CVE-2016-5195 Important/Sec. kernel-3.10.0-327.36.3.el7.x86_64\n" +
			" CVE-2020-1971 Important/Sec. openssl-libs-1:1.0.2k-21.el7_9.x86_64\n",
		"rpm -qa": "kernel-3.10.0-229.el7.x86_64\nopenssl-1.0.2k-19.el7.x86_64\n",
	})
	ctx := context.Background()

	_, err := DoRefresh(ctx, a, RefreshOptions{Offline: true, API: true})
	require.NoError(t, err)

	result, err := DoAssess(ctx, a, "yum")
	require.NoError(t, err)
	assert.Equal(t, []string{"CVE-2016-5195", "CVE-2020-1971"}, result.CVEs)
	assert.Equal(t, []string{"CVE-2020-1971"}, result.Unmatched)
	require.Len(t, result.Findings, 1)
	assert.Equal(t, &report.Finding{
		CVE:       "CVE-2016-5195",
		Severity:  "important",
		ExploitID: "40611",
		Filename:  "exploits/linux/local/40611.c",
		Observed:  true,
	}, result.Findings[0])

	result, err = DoAssess(ctx, a, "rpm")
	require.NoError(t, err)
	assert.Equal(t, []string{"CVE-2016-5195"}, result.CVEs)
	assert.Len(t, result.Findings, 1)

	_, err = DoAssess(ctx, a, "pacman")
	var toolErr *vulnscan.ExternalToolError
	require.True(t, errors.As(err, &toolErr), "got %v", err)
	assert.True(t, toolErr.Missing)
}

func TestAssessAutoDetect(t *testing.T) {
	a := newApp(t, fakeRunner{"yum updateinfo list cves": ""})

	require.NoError(t, os.MkdirAll(filepath.Join(a.Root, "etc"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(a.Root, "etc", "os-release"),
		[]byte("NAME=\"CentOS Linux\"\nID=\"centos\"\nID_LIKE=\"rhel fedora\"\nVERSION_ID=\"7\"\n"), 0o644))

	k, err := ResolveKind(context.Background(), a, "auto")
	require.NoError(t, err)
	assert.Equal(t, vulnscan.KindYum, k)

	_, err = DoRefresh(context.Background(), a, RefreshOptions{Offline: true})
	require.NoError(t, err)

	result, err := DoAssess(context.Background(), a, "")
	require.NoError(t, err)
	assert.Equal(t, "CentOS Linux", result.Host)
	assert.Empty(t, result.CVEs)
}

func TestScoreAndStage(t *testing.T) {
	a := newApp(t, fakeRunner{})
	ctx := context.Background()

	_, err := DoRefresh(ctx, a, RefreshOptions{Offline: true})
	require.NoError(t, err)

	require.NoError(t, a.Scores.Define(score.Definition{Name: "severity", Pattern: "[LMH]", Example: "H"}))

	target := curation.Target{ExploitID: "40611", CVE: "CVE-2016-5195", CPE: rhel7}
	values, err := ParseScoreValues([]string{"severity=H"})
	require.NoError(t, err)
	require.NoError(t, DoScore(ctx, a, target, values))

	err = DoScore(ctx, a, target, map[string]string{"severity": "X"})
	var invalid *score.ValidationError
	assert.True(t, errors.As(err, &invalid), "got %v", err)

	_, err = ParseScoreValues([]string{"severity"})
	assert.Error(t, err)

	require.NoError(t, DoSetStaging(ctx, a, target, StagePackages, []string{"gcc"}))
	require.NoError(t, DoSetStaging(ctx, a, target, StageCommand, []string{"gcc", "-pthread", "40611.c"}))
	assert.Error(t, DoSetStaging(ctx, a, target, StageSelinux, []string{"a", "b"}))

	info, cve, _, err := DoShowStaging(ctx, a, "40611", rhel7)
	require.NoError(t, err)
	assert.Equal(t, "CVE-2016-5195", cve)
	assert.Equal(t, "gcc -pthread 40611.c", info.Command)

	payload := filepath.Join(a.Cfg.ExploitDB.Path, "exploits", "linux", "local", "40611.c")
	require.NoError(t, os.MkdirAll(filepath.Dir(payload), 0o755))
	require.NoError(t, os.WriteFile(payload, []byte("int main(){}\n"), 0o644))

	dest := t.TempDir()
	result, err := DoStage(ctx, a, "40611", dest, rhel7)
	require.NoError(t, err)
	assert.True(t, result.Staged)
	assert.FileExists(t, filepath.Join(dest, "40611.c"))

	// The test root has no os-release, so the host CPE is unknown.
	_, err = DoStage(ctx, a, "40611", dest, "")
	assert.Error(t, err)
}
