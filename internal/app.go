package internal

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/kvesta/lem/config"
	"github.com/kvesta/lem/internal/vulnscan"
	"github.com/kvesta/lem/pkg/curation"
	"github.com/kvesta/lem/pkg/exploitdb"
	"github.com/kvesta/lem/pkg/osrelease"
	"github.com/kvesta/lem/pkg/score"
	"github.com/kvesta/lem/pkg/vulnlib"
)

// App wires the components of one invocation.
type App struct {
	Cfg    *config.Config
	Store  *curation.Store
	Scores *score.Manager
	Vulns  *vulnlib.Client
	Runner vulnscan.Runner
	Logger *log.Logger
	Out    io.Writer

	// Root is the filesystem the host is detected from.
	Root string
	host *osrelease.OsVersion
}

// Open prepares the local state under the configured home.
func Open(cfg *config.Config) (*App, error) {
	if err := os.MkdirAll(cfg.Home, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", cfg.Home, err)
	}

	vulns := vulnlib.New(cfg)
	if err := vulns.Init(cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	scores, err := score.Open(cfg.Database)
	if err != nil {
		vulns.Close()
		return nil, err
	}

	return &App{
		Cfg:    cfg,
		Store:  curation.NewStore(cfg.Curation.Path),
		Scores: scores,
		Vulns:  vulns,
		Runner: vulnscan.ExecRunner{Timeout: cfg.Assessor.Timeout},
		Logger: log.Default(),
		Out:    os.Stdout,
		Root:   "/",
	}, nil
}

func (a *App) Close() error {
	a.Scores.Close()
	return a.Vulns.Close()
}

func (a *App) exploitRepo() *exploitdb.Repository {
	return &exploitdb.Repository{URL: a.Cfg.ExploitDB.URL, Path: a.Cfg.ExploitDB.Path}
}

func (a *App) curationRepo() *exploitdb.Repository {
	return &exploitdb.Repository{URL: a.Cfg.Curation.URL, Path: a.Cfg.Curation.Path}
}

// Host detects the running distribution once.
func (a *App) Host(ctx context.Context) (*osrelease.OsVersion, error) {
	if a.host != nil {
		return a.host, nil
	}

	osv, err := osrelease.DetectOs(ctx, a.Root)
	if err != nil {
		return nil, err
	}
	a.host = osv

	return osv, nil
}

// ResolveCPE returns cpe, or the CPE of the running host when it is empty.
func (a *App) ResolveCPE(ctx context.Context, cpe string) (string, error) {
	if cpe != "" {
		return cpe, nil
	}

	osv, err := a.Host(ctx)
	if err != nil {
		return "", err
	}
	if osv.CPE == "" {
		return "", fmt.Errorf("%s does not publish a CPE name, pass --cpe", osv.NAME)
	}

	return osv.CPE, nil
}
