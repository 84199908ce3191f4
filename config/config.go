package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultExploitDBURL   = "https://gitlab.com/exploit-database/exploitdb.git"
	defaultSecurityAPIURL = "https://access.redhat.com/hydra/rest/securitydata/cve.json"
	defaultListing        = "files_exploits.csv"
)

type ExploitDB struct {
	URL     string `yaml:"url"`
	Path    string `yaml:"path"`
	Listing string `yaml:"listing"`
}

type Curation struct {
	// URL is optional, an empty value keeps the curation store local only.
	URL  string `yaml:"url"`
	Path string `yaml:"path"`
}

type SecurityAPI struct {
	URL         string `yaml:"url"`
	Insecure    bool   `yaml:"insecure"`
	PerPage     int    `yaml:"per_page"`
	MaxPages    int    `yaml:"max_pages"`
	ExpireHours int    `yaml:"expire_hours"`
}

type Assessor struct {
	// Kind is one of auto, yum, rpm or pacman.
	Kind         string        `yaml:"kind"`
	Timeout      time.Duration `yaml:"timeout"`
	YumCommand   []string      `yaml:"yum_command"`
	RpmCommand   []string      `yaml:"rpm_command"`
	AuditCommand []string      `yaml:"audit_command"`
	RpmDBPath    string        `yaml:"rpmdb_path"`

	// AuditCheckCommand exits non-zero when arch-audit is not installed.
	AuditCheckCommand []string `yaml:"audit_check_command"`
}

// Config holds every setting of one invocation. It is loaded once by the
// command line layer and handed to each component explicitly.
type Config struct {
	Home        string      `yaml:"home"`
	Database    string      `yaml:"database"`
	ExploitDB   ExploitDB   `yaml:"exploitdb"`
	Curation    Curation    `yaml:"curation"`
	SecurityAPI SecurityAPI `yaml:"security_api"`
	Assessor    Assessor    `yaml:"assessor"`
}

// GetEnvDefault returns the value of the environment variable key, or defVal
// when it is unset.
func GetEnvDefault(key, defVal string) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return defVal
	}
	return val
}

// DefaultHome returns ~/.lem unless LEM_HOME is set.
func DefaultHome() (string, error) {
	if home, ok := os.LookupEnv("LEM_HOME"); ok && home != "" {
		return home, nil
	}

	dir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".lem"), nil
}

// Load reads the YAML file at path. A missing file yields the defaults; an
// empty path means <home>/config.yaml.
func Load(path string) (*Config, error) {
	home, err := DefaultHome()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = filepath.Join(home, "config.yaml")
	}

	c := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if c.Home == "" {
		c.Home = home
	}

	c.fill()
	c.env()
	return c, nil
}

func (c *Config) fill() {
	if c.Database == "" {
		c.Database = filepath.Join(c.Home, "lem.db")
	}

	if c.ExploitDB.URL == "" {
		c.ExploitDB.URL = defaultExploitDBURL
	}
	if c.ExploitDB.Path == "" {
		c.ExploitDB.Path = filepath.Join(c.Home, "exploitdb")
	}
	if c.ExploitDB.Listing == "" {
		c.ExploitDB.Listing = defaultListing
	}

	if c.Curation.Path == "" {
		c.Curation.Path = filepath.Join(c.Home, "curation")
	}

	if c.SecurityAPI.URL == "" {
		c.SecurityAPI.URL = defaultSecurityAPIURL
	}
	if c.SecurityAPI.PerPage <= 0 {
		c.SecurityAPI.PerPage = 1000
	}
	if c.SecurityAPI.MaxPages <= 0 {
		c.SecurityAPI.MaxPages = 50
	}
	if c.SecurityAPI.ExpireHours <= 0 {
		c.SecurityAPI.ExpireHours = 24
	}

	if c.Assessor.Kind == "" {
		c.Assessor.Kind = "auto"
	}
	if c.Assessor.Timeout <= 0 {
		c.Assessor.Timeout = 5 * time.Minute
	}
	if len(c.Assessor.YumCommand) == 0 {
		c.Assessor.YumCommand = []string{"yum", "updateinfo", "list", "cves"}
	}
	if len(c.Assessor.RpmCommand) == 0 {
		c.Assessor.RpmCommand = []string{"rpm", "-qa"}
	}
	if len(c.Assessor.AuditCommand) == 0 {
		c.Assessor.AuditCommand = []string{"arch-audit", "-f", "%n %c"}
	}
	if len(c.Assessor.AuditCheckCommand) == 0 {
		c.Assessor.AuditCheckCommand = []string{"pacman", "-Qi", "arch-audit"}
	}
	if c.Assessor.RpmDBPath == "" {
		c.Assessor.RpmDBPath = "/var/lib/rpm"
	}
}

func (c *Config) env() {
	c.SecurityAPI.URL = GetEnvDefault("LEM_SECURITY_API", c.SecurityAPI.URL)

	if v, ok := os.LookupEnv("LEM_INSECURE"); ok {
		if insecure, err := strconv.ParseBool(v); err == nil {
			c.SecurityAPI.Insecure = insecure
		}
	}
}
