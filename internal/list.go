package internal

import (
	"sort"
	"strings"

	"github.com/kvesta/lem/config"
	"github.com/kvesta/lem/internal/report"
)

// DoList returns the curated exploits, optionally restricted to one exploit
// id or to the exploits of one CVE.
func DoList(a *App, edbid, cve string) ([]*report.Exploit, error) {
	var ids []string

	switch {
	case edbid != "":
		ids = []string{edbid}
	case cve != "":
		if err := a.Store.Ready(); err != nil {
			return nil, err
		}
		index, failed, err := a.Store.ByCVE()
		if err != nil {
			return nil, err
		}
		warnFailed(a, failed)
		ids = index[strings.ToUpper(cve)]
		if len(ids) < 1 {
			a.Logger.Printf(config.Yellow("no curated exploit for %s"), cve)
		}
	default:
		if err := a.Store.Ready(); err != nil {
			return nil, err
		}
		keys, err := a.Store.Keys()
		if err != nil {
			return nil, err
		}
		ids = keys
	}

	exploits := make([]*report.Exploit, 0, len(ids))
	for _, id := range ids {
		rec, err := a.Store.Load(id)
		if err != nil {
			if edbid != "" {
				return nil, err
			}
			a.Logger.Printf(config.Yellow("skipping exploit %s: %v"), id, err)
			continue
		}
		exploits = append(exploits, &report.Exploit{ID: id, Record: rec})
	}

	return exploits, nil
}

func warnFailed(a *App, failed map[string]error) {
	ids := make([]string, 0, len(failed))
	for id := range failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		a.Logger.Printf(config.Yellow("skipping unreadable exploit %s: %v"), id, failed[id])
	}
}
