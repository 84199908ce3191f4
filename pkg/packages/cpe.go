package packages

import (
	"fmt"
	"strings"

	"github.com/facebookincubator/nvdtools/wfn"
)

// CPE binds the identity to a CPE 2.3 formatted string of the form
// cpe:2.3:a:*:<name>:<version>:*:*:*:*:*:*:*
func (p Identity) CPE() (string, error) {
	if p.Name == "" {
		return "", fmt.Errorf("package %q has no name", p.Raw)
	}

	product, err := wfn.WFNize(p.Name)
	if err != nil {
		return "", fmt.Errorf("can't wfnize package name %q: %v", p.Name, err)
	}

	attrs := wfn.NewAttributesWithAny()
	attrs.Part = "a"
	attrs.Product = product

	if p.Version != "" {
		version, err := wfn.WFNize(p.Version)
		if err != nil {
			return "", fmt.Errorf("can't wfnize version %q: %v", p.Version, err)
		}
		attrs.Version = version
	}

	return attrs.BindToFmtString(), nil
}

// NormalizeCPE accepts either a CPE (URI or formatted string binding) or a
// raw package identity and returns the formatted string binding used as the
// key of scores and staging data.
func NormalizeCPE(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty cpe")
	}

	if strings.HasPrefix(s, "cpe:") {
		attrs, err := wfn.Parse(s)
		if err != nil {
			return "", err
		}
		return attrs.BindToFmtString(), nil
	}

	return ParseIdentity(s).CPE()
}
