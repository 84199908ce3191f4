package packages

import (
	"regexp"
	"strings"
)

var (
	nameRe     = regexp.MustCompile(`^[\w+.]+(-[\w+.]+)*$`)
	epochRe    = regexp.MustCompile(`^(\d+):`)
	platformRe = regexp.MustCompile(`\.((?:el|fc)\d+)`)

	archRe = regexp.MustCompile(`\.(i[3-6]86|athlon|geode|pentium[34]|x86_64|amd64|ia32e|ia64|` +
		`alpha(?:ev5|ev56|pca56|ev6|ev67)?|sparc(?:v8|v9|64|64v)?|sun4[cdmu]?|` +
		`armv[3-7][a-z]*|aarch64|mips(?:el)?|ppc(?:iseries|pseries|64|64le|8260|8560|32dy4)?|` +
		`m68k(?:mint)?|s390x?|riscv64|noarch|src)$`)
)

// Ordinal is one numeric component of a version, e.g. "2k" is digits "2"
// with suffix "k". Digits never carry leading zeros so that comparison by
// length then lexical order is a true numeric comparison.
type Ordinal struct {
	Digits string
	Suffix string
}

func (o Ordinal) String() string {
	return o.Digits + o.Suffix
}

// Identity is a package identity parsed from a raw string such as
// "openssl-1.0.2k-19.el7.x86_64". Missing version components are nil, which
// is distinct from a zero component.
type Identity struct {
	Raw      string `json:"raw"`
	Name     string `json:"name"`
	Epoch    string `json:"epoch,omitempty"`
	Version  string `json:"version"`
	Release  string `json:"release,omitempty"`
	Arch     string `json:"arch,omitempty"`
	Platform string `json:"platform,omitempty"`

	Major  *Ordinal `json:"-"`
	Minor  *Ordinal `json:"-"`
	Micro  *Ordinal `json:"-"`
	Update *Ordinal `json:"-"`
}

// ParseIdentity splits a raw package string into its components. It never
// fails; an unparsable string yields an identity without a name, which is
// not comparable to anything.
func ParseIdentity(raw string) Identity {
	raw = strings.TrimSpace(raw)
	id := Identity{Raw: raw}

	i := versionBoundary(raw)
	if i < 0 {
		return id
	}

	id.Name = extractName(raw[:i])

	rest := raw[i+1:]
	if m := archRe.FindStringSubmatchIndex(rest); m != nil {
		id.Arch = rest[m[2]:m[3]]
		rest = rest[:m[0]]
	}
	if m := platformRe.FindStringSubmatch(rest); m != nil {
		id.Platform = m[1]
	}

	version := rest
	if j := strings.LastIndex(rest, "-"); j >= 0 {
		version = rest[:j]
		id.Release = rest[j+1:]
	}

	if m := epochRe.FindStringSubmatch(version); m != nil {
		id.Epoch = m[1]
		version = version[len(m[0]):]
	}
	id.Version = version

	id.Major, id.Minor, id.Micro = extractVersionTriple(version)
	id.Update = extractUpdate(id.Release)

	return id
}

// versionBoundary returns the index of the first "-<digit>" in s.
func versionBoundary(s string) int {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '-' && isDigit(s[i+1]) {
			return i
		}
	}
	return -1
}

func extractName(prefix string) string {
	if !nameRe.MatchString(prefix) {
		return ""
	}
	return prefix
}

func extractVersionTriple(version string) (major, minor, micro *Ordinal) {
	if version == "" {
		return nil, nil, nil
	}

	parts := strings.Split(version, ".")
	ords := make([]*Ordinal, 3)
	for i := 0; i < len(parts) && i < 3; i++ {
		ords[i] = parseOrdinal(parts[i])
	}

	return ords[0], ords[1], ords[2]
}

func extractUpdate(release string) *Ordinal {
	end := 0
	for end < len(release) && isDigit(release[end]) {
		end++
	}
	if end == 0 {
		return nil
	}

	return &Ordinal{Digits: trimZeros(release[:end])}
}

func parseOrdinal(s string) *Ordinal {
	if s == "" {
		return nil
	}

	end := 0
	for end < len(s) && isDigit(s[end]) {
		end++
	}

	return &Ordinal{
		Digits: trimZeros(s[:end]),
		Suffix: s[end:],
	}
}

func trimZeros(digits string) string {
	if digits == "" {
		return ""
	}
	t := strings.TrimLeft(digits, "0")
	if t == "" {
		return "0"
	}
	return t
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func compareOrdinal(a, b *Ordinal) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if len(a.Digits) != len(b.Digits) {
		if len(a.Digits) < len(b.Digits) {
			return -1
		}
		return 1
	}
	if c := strings.Compare(a.Digits, b.Digits); c != 0 {
		return c
	}

	return strings.Compare(a.Suffix, b.Suffix)
}

// Compare orders two identities by (major, minor, micro, update). The second
// result is false when the identities are not comparable, that is when
// their names differ or are empty. Architecture and platform tags are not
// part of the precondition.
func Compare(a, b Identity) (int, bool) {
	if a.Name == "" || a.Name != b.Name {
		return 0, false
	}

	pairs := [][2]*Ordinal{
		{a.Major, b.Major},
		{a.Minor, b.Minor},
		{a.Micro, b.Micro},
		{a.Update, b.Update},
	}
	for _, p := range pairs {
		if c := compareOrdinal(p[0], p[1]); c != 0 {
			return c, true
		}
	}

	return 0, true
}

// IsLess reports whether a is an older build of the same package than b.
func IsLess(a, b Identity) bool {
	c, ok := Compare(a, b)
	return ok && c < 0
}

// IsGreater reports whether a is a newer build of the same package than b.
func IsGreater(a, b Identity) bool {
	c, ok := Compare(a, b)
	return ok && c > 0
}

// Canonical rebuilds "name-major.minor.micro-update" from the parsed
// components, leaving out absent ones.
func (p Identity) Canonical() string {
	var parts []string
	for _, o := range []*Ordinal{p.Major, p.Minor, p.Micro} {
		if o == nil {
			break
		}
		parts = append(parts, o.String())
	}

	s := p.Name + "-" + strings.Join(parts, ".")
	if p.Update != nil {
		s += "-" + p.Update.String()
	}
	return s
}

func (p Identity) String() string {
	if p.Raw != "" {
		return p.Raw
	}
	return p.Canonical()
}
