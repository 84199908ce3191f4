package packages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ord(digits string) *Ordinal {
	return &Ordinal{Digits: digits}
}

func TestParseIdentity(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Identity
	}{
		{
			name: "rpmWithArch",
			raw:  "openssl-1.0.2k-19.el7.x86_64",
			want: Identity{
				Raw:      "openssl-1.0.2k-19.el7.x86_64",
				Name:     "openssl",
				Version:  "1.0.2k",
				Release:  "19.el7",
				Arch:     "x86_64",
				Platform: "el7",
				Major:    ord("1"),
				Minor:    ord("0"),
				Micro:    &Ordinal{Digits: "2", Suffix: "k"},
				Update:   ord("19"),
			},
		},
		{
			name: "hyphenatedName",
			raw:  "python3-libs-3.6.8-47.el8_6.noarch",
			want: Identity{
				Raw:      "python3-libs-3.6.8-47.el8_6.noarch",
				Name:     "python3-libs",
				Version:  "3.6.8",
				Release:  "47.el8_6",
				Arch:     "noarch",
				Platform: "el8",
				Major:    ord("3"),
				Minor:    ord("6"),
				Micro:    ord("8"),
				Update:   ord("47"),
			},
		},
		{
			name: "epoch",
			raw:  "openssl-1:1.0.2k-16.el7_6.1",
			want: Identity{
				Raw:      "openssl-1:1.0.2k-16.el7_6.1",
				Name:     "openssl",
				Epoch:    "1",
				Version:  "1.0.2k",
				Release:  "16.el7_6.1",
				Platform: "el7",
				Major:    ord("1"),
				Minor:    ord("0"),
				Micro:    &Ordinal{Digits: "2", Suffix: "k"},
				Update:   ord("16"),
			},
		},
		{
			name: "shortVersion",
			raw:  "foo-1.2-3",
			want: Identity{
				Raw:     "foo-1.2-3",
				Name:    "foo",
				Version: "1.2",
				Release: "3",
				Major:   ord("1"),
				Minor:   ord("2"),
				Update:  ord("3"),
			},
		},
		{
			name: "noRelease",
			raw:  "foo-10",
			want: Identity{
				Raw:     "foo-10",
				Name:    "foo",
				Version: "10",
				Major:   ord("10"),
			},
		},
		{
			name: "noBoundary",
			raw:  "gpg-pubkey",
			want: Identity{Raw: "gpg-pubkey"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseIdentity(tt.raw))
		})
	}
}

func TestExtractNameIllegalPrefix(t *testing.T) {
	got := ParseIdentity("bad name-1.0-1")
	assert.Equal(t, "", got.Name)
	assert.Equal(t, "1.0", got.Version)
}

func TestAbsentIsNotZero(t *testing.T) {
	short := ParseIdentity("foo-1.0-1")
	zero := ParseIdentity("foo-1.0.0-1")

	assert.Nil(t, short.Micro)
	require.NotNil(t, zero.Micro)
	assert.True(t, IsLess(short, zero))
	assert.False(t, IsLess(zero, short))
}

func TestIsLess(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{name: "update", a: "foo-1.0.0-1", b: "foo-1.0.0-2", want: true},
		{name: "numericMinor", a: "foo-1.9.0-1", b: "foo-1.10.0-1", want: true},
		{name: "numericMinorReverse", a: "foo-1.10.0-1", b: "foo-1.9.0-1", want: false},
		{name: "major", a: "foo-2.0.0-9", b: "foo-10.0.0-1", want: true},
		{name: "leadingZeros", a: "foo-1.01.0-1", b: "foo-1.1.0-1", want: false},
		{name: "suffix", a: "openssl-1.0.2k-19.el7.x86_64", b: "openssl-1.0.2m-1.el7", want: true},
		{name: "sameMicroHigherUpdate", a: "openssl-1.0.2m-2.el7", b: "openssl-1.0.2m-1.el7", want: false},
		{name: "equal", a: "foo-1.0.0-1", b: "foo-1.0.0-1", want: false},
		{name: "differentName", a: "foo-1.0.0-1", b: "bar-2.0.0-1", want: false},
		{name: "archIgnored", a: "foo-1.0.0-1.el7.x86_64", b: "foo-1.0.0-2.el8.noarch", want: true},
		{name: "unnamed", a: "1.0", b: "2.0", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := ParseIdentity(tt.a), ParseIdentity(tt.b)
			assert.Equal(t, tt.want, IsLess(a, b))
		})
	}
}

func TestIsGreaterMirrorsIsLess(t *testing.T) {
	raws := []string{
		"foo-1.0.0-1", "foo-1.0.0-2", "foo-1.9.0-1", "foo-1.10.0-1",
		"foo-1.10-1", "foo-1.10.0", "foo-2-1", "foo-1.0.0a-1",
	}

	for _, x := range raws {
		for _, y := range raws {
			a, b := ParseIdentity(x), ParseIdentity(y)
			assert.Equal(t, IsLess(a, b), IsGreater(b, a), "%s vs %s", x, y)
		}
	}
}

func TestIsLessOrder(t *testing.T) {
	raws := []string{
		"foo-1.0.0-1", "foo-1.0.0-2", "foo-1.9.0-1", "foo-1.10.0-1",
		"foo-1.10-1", "foo-1.10.0", "foo-2-1", "foo-1.0.0a-1", "foo-0.1.1-7",
	}
	ids := make([]Identity, len(raws))
	for i, r := range raws {
		ids[i] = ParseIdentity(r)
	}

	for _, a := range ids {
		assert.False(t, IsLess(a, a), "irreflexive %s", a)

		for _, b := range ids {
			if IsLess(a, b) {
				assert.False(t, IsLess(b, a), "antisymmetric %s %s", a, b)
			}

			for _, c := range ids {
				if IsLess(a, b) && IsLess(b, c) {
					assert.True(t, IsLess(a, c), "transitive %s %s %s", a, b, c)
				}
			}
		}
	}
}

func TestCanonicalRoundTrip(t *testing.T) {
	raws := []string{
		"openssl-1.0.2k-19.el7.x86_64",
		"foo-1.10.0-1",
		"python3-libs-3.6.8-47.el8_6.noarch",
		"foo-1.2-3",
		"bar-007.1.2-03",
	}

	for _, raw := range raws {
		id := ParseIdentity(raw)
		back := ParseIdentity(id.Canonical())

		c, ok := Compare(id, back)
		require.True(t, ok, raw)
		assert.Equal(t, 0, c, "%s -> %s", raw, id.Canonical())
	}
}
