package osrelease

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shirou/gopsutil/host"

	"github.com/kvesta/lem/pkg/packages"
)

// Reference https://www.freedesktop.org/software/systemd/man/os-release.html
var paths = []string{"etc/os-release", "usr/lib/os-release", "etc/centos-release", "etc/redhat-release"}

var versionRegex = regexp.MustCompile(`(\d+\.)?(\d+\.)?(\*|\d+)`)

// DetectOs reads the release files below root, "/" for the running host.
// When none can be read the platform reported by the kernel is used.
func DetectOs(ctx context.Context, root string) (*OsVersion, error) {
	for _, n := range paths {
		f, err := os.Open(filepath.Join(root, n))
		if err != nil {
			continue
		}

		osv, err := getOs(f, n)
		f.Close()
		if err != nil {
			log.Printf("parse os error: %v", err)
			continue
		}

		osv.Kernel = kernelVersion(ctx)
		return osv, nil
	}

	platform, family, version, err := host.PlatformInformationWithContext(ctx)
	if err != nil {
		return nil, err
	}

	osv := &OsVersion{
		NAME:       platform,
		OID:        strings.ToLower(platform),
		VERSION:    version,
		VERSION_ID: version,
		Kernel:     kernelVersion(ctx),
	}
	if family != "" {
		osv.IDLike = []string{strings.ToLower(family)}
	}

	return osv, nil
}

func kernelVersion(ctx context.Context) string {
	kernel, err := host.KernelVersionWithContext(ctx)
	if err != nil {
		return ""
	}
	return kernel
}

func parse(r io.Reader, path string) (map[string]string, error) {
	m := make(map[string]string)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}

		switch path {
		case "etc/os-release", "usr/lib/os-release":
			index := strings.Index(line, "=")
			if index > -1 {
				m[line[:index]] = strings.Trim(line[index+1:], `"'`)
			}
		case "etc/centos-release":
			m["NAME"] = "CentOS Linux"
			m["ID"] = "centos"
			m["VERSION_ID"] = versionRegex.FindString(line)
		case "etc/redhat-release":
			m["NAME"] = strings.TrimSpace(strings.Split(line, " release ")[0])
			m["ID"] = "rhel"
			m["VERSION_ID"] = versionRegex.FindString(line)
		}
	}

	return m, scanner.Err()
}

func getOs(r io.Reader, path string) (*OsVersion, error) {
	kv, err := parse(r, path)
	if err != nil {
		return nil, err
	}

	os := &OsVersion{
		NAME: "Linux",
		OID:  "linux",
	}
	for k, v := range kv {
		switch k {
		case "NAME":
			os.NAME = v
		case "ID":
			os.OID = strings.ToLower(v)
		case "ID_LIKE":
			os.IDLike = strings.Fields(strings.ToLower(v))
		case "VERSION":
			os.VERSION = v
		case "VERSION_ID":
			os.VERSION_ID = v
		case "CPE_NAME":
			if cpe, err := packages.NormalizeCPE(strings.ToLower(v)); err == nil {
				os.CPE = cpe
			}
		}
	}
	return os, nil
}
