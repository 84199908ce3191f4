package packages

import (
	"context"
	"fmt"
	"path/filepath"

	rpmdb "github.com/knqyf263/go-rpmdb/pkg"
)

var rpmDBFiles = []string{
	"Packages",
	"Packages.db",
	"rpmdb.sqlite",
}

// ReadRpmDB builds an inventory straight from the rpm database under dir,
// trying the Berkeley DB, NDB and sqlite backends in turn.
func ReadRpmDB(ctx context.Context, dir string) (Inventory, error) {
	var lastErr error

	for _, name := range rpmDBFiles {
		db, err := rpmdb.Open(filepath.Join(dir, name))
		if err != nil {
			lastErr = err
			continue
		}

		pkgList, err := db.ListPackages()
		db.Close()
		if err != nil {
			lastErr = err
			continue
		}

		inv := Inventory{}
		for _, pkg := range pkgList {
			raw := fmt.Sprintf("%s-%s-%s", pkg.Name, pkg.Version, pkg.Release)
			if pkg.Arch != "" {
				raw += "." + pkg.Arch
			}
			inv.Add(ParseIdentity(raw))
		}

		return inv, nil
	}

	return nil, fmt.Errorf("no readable rpm database in %s: %v", dir, lastErr)
}
