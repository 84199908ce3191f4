package packages

import (
	"bufio"
	"io"

	rpmversion "github.com/knqyf263/go-rpm-version"
)

// Inventory maps a package name to the installed identity.
type Inventory map[string]Identity

// Add records id. Identities without a name are dropped. When a name is
// already present, as with several installed kernels, the highest build by
// RPM EVR ordering is kept.
func (inv Inventory) Add(id Identity) bool {
	if id.Name == "" {
		return false
	}

	if cur, ok := inv[id.Name]; ok && evr(cur).Compare(evr(id)) >= 0 {
		return true
	}

	inv[id.Name] = id
	return true
}

func evr(id Identity) rpmversion.Version {
	s := id.Version
	if id.Epoch != "" {
		s = id.Epoch + ":" + s
	}
	if id.Release != "" {
		s += "-" + id.Release
	}
	return rpmversion.NewVersion(s)
}

// ParseListing reads one package identity per line, the format printed by
// `rpm -qa`. It returns the inventory and the lines that could not be
// parsed into a named identity.
func ParseListing(r io.Reader) (Inventory, []string, error) {
	inv := Inventory{}
	var skipped []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 1 {
			continue
		}

		if !inv.Add(ParseIdentity(line)) {
			skipped = append(skipped, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return inv, skipped, err
	}

	return inv, skipped, nil
}
