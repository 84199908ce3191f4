package internal

import (
	"context"

	"github.com/kvesta/lem/config"
	"github.com/kvesta/lem/pkg/curation"
	"github.com/kvesta/lem/pkg/exploitdb"
)

type RefreshOptions struct {
	// API queries the security API instead of using the cached CVE list.
	API   bool
	Force bool
	// Offline skips syncing the git repositories.
	Offline bool
}

// DoRefresh syncs the exploit database and reconciles the curation store
// with it and with the security API CVE list.
func DoRefresh(ctx context.Context, a *App, opts RefreshOptions) (*curation.Summary, error) {
	if !opts.Offline {
		if err := a.exploitRepo().Sync(ctx); err != nil {
			return nil, err
		}
		if err := a.curationRepo().Sync(ctx); err != nil {
			return nil, err
		}
	}

	if opts.API {
		if _, err := a.Vulns.Refresh(ctx, opts.Force); err != nil {
			return nil, err
		}
	}

	cves, err := a.Vulns.CVEList()
	if err != nil {
		return nil, err
	}
	if len(cves) < 1 {
		a.Logger.Printf(config.Yellow("security API CVE list is empty, run 'lem refresh --api' to fetch it"))
	}

	rows, err := exploitdb.ReadListing(a.Cfg.ExploitDB.Path, a.Cfg.ExploitDB.Listing)
	if err != nil {
		return nil, err
	}
	a.Logger.Printf("Loaded %d exploits from %s", len(rows), a.Cfg.ExploitDB.Listing)

	r := &curation.Reconciler{Store: a.Store, Logger: a.Logger}
	summary, err := r.Reconcile(exploitdb.Listing(rows), cves)
	if summary != nil {
		a.Logger.Printf(config.Green("Reconciled curation store: %d created, %d updated, %d unchanged, %d failed"),
			summary.Created, summary.Updated, summary.Unchanged, summary.Failed)
	}

	return summary, err
}
