package curation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var idRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// Store persists one JSON document per exploit under:
//
//	<root>/exploits/<exploit id>.json
//
// Every write replaces the document atomically, so a concurrent reader sees
// either the previous or the new record.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) dir() string {
	return filepath.Join(s.root, "exploits")
}

func (s *Store) path(id string) (string, error) {
	if !idRe.MatchString(id) {
		return "", fmt.Errorf("invalid exploit id %q", id)
	}
	return filepath.Join(s.dir(), id+".json"), nil
}

// Load returns the record of exploit id.
func (s *Store) Load(id string) (*Record, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{Kind: "exploit", ID: id}
		}
		return nil, err
	}

	rec := &Record{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("decode exploit %s: %w", id, err)
	}
	if rec.CVEs == nil {
		rec.CVEs = map[string]*CveAnnotation{}
	}

	return rec, nil
}

// Write persists rec for exploit id. Writing content equal to what is on
// disk leaves the file untouched and reports false.
func (s *Store) Write(id string, rec *Record) (bool, error) {
	if rec == nil {
		return false, fmt.Errorf("record of exploit %s is nil", id)
	}

	path, err := s.path(id)
	if err != nil {
		return false, err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return false, err
	}
	data = append(data, '\n')

	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, data) {
		return false, nil
	}

	if err := os.MkdirAll(s.dir(), 0o755); err != nil {
		return false, err
	}

	if err := writeFileAtomic(path, data); err != nil {
		return false, fmt.Errorf("write exploit %s: %w", id, err)
	}

	return true, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}

	return nil
}

// Keys lists every known exploit id, numeric ids first in numeric order.
func (s *Store) Keys() ([]string, error) {
	entries, err := os.ReadDir(s.dir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}

	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return keys[i] < keys[j]
	})

	return keys, nil
}

// Ready returns a NotFoundError when no exploit has been curated yet, as on
// a host where refresh never ran.
func (s *Store) Ready() error {
	keys, err := s.Keys()
	if err != nil {
		return err
	}
	if len(keys) < 1 {
		return &NotFoundError{Kind: "curation store"}
	}
	return nil
}

// ByCVE indexes the store by CVE identifier. Records that cannot be read
// are returned in the error map and left out of the index.
func (s *Store) ByCVE() (map[string][]string, map[string]error, error) {
	keys, err := s.Keys()
	if err != nil {
		return nil, nil, err
	}

	index := map[string][]string{}
	failed := map[string]error{}
	for _, id := range keys {
		rec, err := s.Load(id)
		if err != nil {
			failed[id] = err
			continue
		}
		for cve := range rec.CVEs {
			index[cve] = append(index[cve], id)
		}
	}

	return index, failed, nil
}
