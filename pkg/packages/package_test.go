package packages

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListing(t *testing.T) {
	listing := strings.Join([]string{
		"openssl-1.0.2k-19.el7.x86_64",
		"",
		"kernel-3.10.0-1160.el7.x86_64",
		"kernel-3.10.0-1160.92.1.el7.x86_64",
		"kernel-3.10.0-957.el7.x86_64",
		"gpg-pubkey",
	}, "\n")

	inv, skipped, err := ParseListing(strings.NewReader(listing))
	require.NoError(t, err)

	assert.Len(t, inv, 2)
	assert.Contains(t, inv, "openssl")
	assert.Equal(t, "kernel-3.10.0-1160.92.1.el7.x86_64", inv["kernel"].Raw)
	assert.Equal(t, []string{"gpg-pubkey"}, skipped)
}

func TestCPE(t *testing.T) {
	got, err := ParseIdentity("openssl-1.0.2k-19.el7.x86_64").CPE()
	require.NoError(t, err)
	assert.Equal(t, "cpe:2.3:a:*:openssl:1.0.2k:*:*:*:*:*:*:*", got)

	_, err = ParseIdentity("noversion").CPE()
	assert.Error(t, err)
}

func TestNormalizeCPE(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{
			name: "formattedString",
			in:   "cpe:2.3:a:*:openssl:1.0.2k:*:*:*:*:*:*:*",
			want: "cpe:2.3:a:*:openssl:1.0.2k:*:*:*:*:*:*:*",
		},
		{
			name: "packageIdentity",
			in:   "sudo-1.8.23-10.el7_9.3",
			want: "cpe:2.3:a:*:sudo:1.8.23:*:*:*:*:*:*:*",
		},
		{
			name:    "empty",
			in:      "  ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeCPE(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
