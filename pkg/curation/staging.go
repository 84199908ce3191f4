package curation

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/kvesta/lem/pkg/packages"
)

// SELinux modes accepted by SetSelinux.
var selinuxModes = map[string]bool{
	"enforcing":  true,
	"permissive": true,
	"disabled":   true,
}

// Target selects the staging data of one exploit on one platform. An empty
// CVE applies a change to every CVE annotation of the exploit.
type Target struct {
	ExploitID string
	CVE       string
	CPE       string
}

// Copier places an exploit payload at a destination path.
type Copier interface {
	Copy(src, dst string) error
}

// FileCopier copies payloads on the local filesystem.
type FileCopier struct{}

func (FileCopier) Copy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Stager attaches remediation metadata to curated exploits and stages their
// payloads.
type Stager struct {
	Store *Store
	// PayloadRoot is the exploit database checkout the record filenames
	// are relative to.
	PayloadRoot string
	Copier      Copier
	Logger      *log.Logger
}

// StageResult is handed back to the caller after a payload was staged.
type StageResult struct {
	ExploitID   string       `json:"edbid"`
	CVE         string       `json:"cve,omitempty"`
	CPE         string       `json:"cpe"`
	Payload     string       `json:"payload"`
	Destination string       `json:"destination"`
	Info        *StagingInfo `json:"staging,omitempty"`
	Staged      bool         `json:"staged"`
	Message     string       `json:"message"`
}

func (s *Stager) SetStageCommand(t Target, command string) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return fmt.Errorf("empty stage command")
	}

	return s.mutate(t, func(info *StagingInfo) {
		info.Command = command
	})
}

func (s *Stager) AddPackages(t Target, pkgs ...string) error {
	return s.mutate(t, func(info *StagingInfo) {
		info.Packages = appendUnique(info.Packages, pkgs...)
	})
}

func (s *Stager) AddServices(t Target, services ...string) error {
	return s.mutate(t, func(info *StagingInfo) {
		info.Services = appendUnique(info.Services, services...)
	})
}

func (s *Stager) SetSelinux(t Target, mode string) error {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if !selinuxModes[mode] {
		return fmt.Errorf("unknown selinux mode %q, expected enforcing, permissive or disabled", mode)
	}

	return s.mutate(t, func(info *StagingInfo) {
		info.SELinux = mode
	})
}

func (s *Stager) mutate(t Target, fn func(info *StagingInfo)) error {
	cpe, err := packages.NormalizeCPE(t.CPE)
	if err != nil {
		return fmt.Errorf("invalid cpe %q: %w", t.CPE, err)
	}

	rec, err := s.Store.Load(t.ExploitID)
	if err != nil {
		return err
	}

	anns, err := annotations(rec, t)
	if err != nil {
		return err
	}

	for _, ann := range anns {
		if ann.Staging == nil {
			ann.Staging = map[string]*StagingInfo{}
		}
		info := ann.Staging[cpe]
		if info == nil {
			info = &StagingInfo{}
			ann.Staging[cpe] = info
		}
		fn(info)
	}

	_, err = s.Store.Write(t.ExploitID, rec)
	return err
}

// Info returns the staging data recorded for exploit id on cpe together
// with the CVE it was found under. It returns nil when nothing is set.
func (s *Stager) Info(id, cpe string) (*StagingInfo, string, error) {
	cpe, err := packages.NormalizeCPE(cpe)
	if err != nil {
		return nil, "", fmt.Errorf("invalid cpe: %w", err)
	}

	rec, err := s.Store.Load(id)
	if err != nil {
		return nil, "", err
	}

	for _, c := range rec.CVEIDs() {
		ann := rec.CVEs[c]
		if ann == nil {
			continue
		}
		if info := ann.Staging[cpe]; info.IsSet() {
			return info, c, nil
		}
	}

	return nil, "", nil
}

// Stage copies the payload of exploit id to destination and hands back the
// staging data recorded for cpe. Running the staging command is left to the
// caller.
func (s *Stager) Stage(ctx context.Context, id, destination, cpe string) (*StageResult, error) {
	rec, err := s.Store.Load(id)
	if err != nil {
		return nil, err
	}

	info, cve, err := s.Info(id, cpe)
	if err != nil {
		return nil, err
	}
	normalized, _ := packages.NormalizeCPE(cpe)

	payload := filepath.Join(s.PayloadRoot, rec.Filename)
	if isDirDestination(destination) {
		destination = filepath.Join(destination, filepath.Base(rec.Filename))
	}

	result := &StageResult{
		ExploitID:   id,
		CVE:         cve,
		CPE:         normalized,
		Payload:     payload,
		Destination: destination,
		Info:        info,
	}

	copier := s.Copier
	if copier == nil {
		copier = FileCopier{}
	}

	if err := copier.Copy(payload, destination); err != nil {
		result.Message = fmt.Sprintf("failed to copy payload: %v", err)
		return result, err
	}

	result.Staged = true
	if info == nil {
		result.Message = fmt.Sprintf("payload copied, no staging data for %s", normalized)
	} else {
		result.Message = fmt.Sprintf("payload copied, staging data found under %s", cve)
	}

	return result, nil
}

// isDirDestination reports whether the payload goes inside destination. A
// trailing separator names a directory that may not exist yet.
func isDirDestination(destination string) bool {
	if strings.HasSuffix(destination, string(filepath.Separator)) || strings.HasSuffix(destination, "/") {
		return true
	}
	fi, err := os.Stat(destination)
	return err == nil && fi.IsDir()
}

func annotations(rec *Record, t Target) ([]*CveAnnotation, error) {
	if t.CVE != "" {
		c := strings.ToUpper(t.CVE)
		ann, ok := rec.CVEs[c]
		if !ok {
			return nil, &NotFoundError{Kind: "cve", ID: fmt.Sprintf("%s of exploit %s", c, t.ExploitID)}
		}
		if ann == nil {
			ann = &CveAnnotation{}
			rec.CVEs[c] = ann
		}
		return []*CveAnnotation{ann}, nil
	}

	if len(rec.CVEs) < 1 {
		return nil, &NotFoundError{Kind: "cve annotation of exploit", ID: t.ExploitID}
	}

	anns := make([]*CveAnnotation, 0, len(rec.CVEs))
	for _, c := range rec.CVEIDs() {
		if rec.CVEs[c] == nil {
			rec.CVEs[c] = &CveAnnotation{}
		}
		anns = append(anns, rec.CVEs[c])
	}
	return anns, nil
}

func appendUnique(list []string, items ...string) []string {
	seen := make(map[string]bool, len(list))
	for _, l := range list {
		seen[l] = true
	}

	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		list = append(list, it)
	}
	return list
}
