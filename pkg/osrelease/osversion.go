package osrelease

type OsVersion struct {
	NAME       string   `json:"name"`
	OID        string   `json:"oid"`
	IDLike     []string `json:"id_like,omitempty"`
	VERSION    string   `json:"version"`
	VERSION_ID string   `json:"version_id"`
	CPE        string   `json:"cpe,omitempty"`
	Kernel     string   `json:"kernel,omitempty"`
}

var families = map[string]string{
	"rhel":        "yum",
	"centos":      "yum",
	"fedora":      "yum",
	"rocky":       "yum",
	"almalinux":   "yum",
	"ol":          "yum",
	"amzn":        "yum",
	"scientific":  "yum",
	"suse":        "rpm",
	"opensuse":    "rpm",
	"sles":        "rpm",
	"mageia":      "rpm",
	"arch":        "pacman",
	"manjaro":     "pacman",
	"endeavouros": "pacman",
}

// Assessor names the assessor suited to the distribution, or "" when none
// is known.
func (o *OsVersion) Assessor() string {
	if a, ok := families[o.OID]; ok {
		return a
	}
	for _, like := range o.IDLike {
		if a, ok := families[like]; ok {
			return a
		}
	}
	return ""
}
