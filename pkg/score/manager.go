package score

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mattn/go-sqlite3"
)

const scoreTable = `CREATE TABLE IF NOT EXISTS scores (
	"Name" TEXT NOT NULL PRIMARY KEY,
	"Pattern" TEXT NOT NULL,
	"Example" TEXT);`

// Definition is one scoring dimension.
type Definition struct {
	Name    string
	Pattern string
	Example string
}

// Manager keeps score definitions in the lem database.
type Manager struct {
	DB *sql.DB
}

// Open opens the database at path and makes sure the scores table exists.
func Open(path string) (*Manager, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(scoreTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create scores table: %w", err)
	}

	return &Manager{DB: db}, nil
}

func (m *Manager) Close() error {
	return m.DB.Close()
}

func compile(pattern string) (*regexp.Regexp, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, errors.New("empty score pattern")
	}

	// Values have to match as a whole.
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, fmt.Errorf("invalid score pattern %q: %w", pattern, err)
	}
	return re, nil
}

func checkDefinition(d Definition) error {
	if strings.TrimSpace(d.Name) == "" {
		return errors.New("empty score name")
	}

	re, err := compile(d.Pattern)
	if err != nil {
		return err
	}

	if d.Example != "" && !re.MatchString(d.Example) {
		return &ValidationError{Name: d.Name, Value: d.Example, Pattern: d.Pattern}
	}
	return nil
}

// Define registers a new dimension. Defining an existing name fails with
// DuplicateNameError.
func (m *Manager) Define(d Definition) error {
	if err := checkDefinition(d); err != nil {
		return err
	}

	_, err := m.DB.Exec(`INSERT INTO scores ("Name", "Pattern", "Example") VALUES (?, ?, ?)`,
		d.Name, d.Pattern, d.Example)
	if err != nil {
		var se sqlite3.Error
		if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
			return &DuplicateNameError{Name: d.Name}
		}
		return err
	}

	return nil
}

// Update replaces the pattern and example of an existing dimension.
func (m *Manager) Update(d Definition) error {
	if err := checkDefinition(d); err != nil {
		return err
	}

	res, err := m.DB.Exec(`UPDATE scores SET "Pattern" = ?, "Example" = ? WHERE "Name" = ?`,
		d.Pattern, d.Example, d.Name)
	if err != nil {
		return err
	}

	return m.affected(res, d.Name)
}

func (m *Manager) Remove(name string) error {
	res, err := m.DB.Exec(`DELETE FROM scores WHERE "Name" = ?`, name)
	if err != nil {
		return err
	}

	return m.affected(res, name)
}

func (m *Manager) affected(res sql.Result, name string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n < 1 {
		return m.unknown(name)
	}
	return nil
}

func (m *Manager) unknown(name string) error {
	e := &UnknownDimensionError{Name: name}

	defs, err := m.List()
	if err == nil {
		names := make([]string, 0, len(defs))
		for _, d := range defs {
			names = append(names, d.Name)
		}
		e.Suggestion = suggest(name, names)
	}

	return e
}

// Get returns the definition of name.
func (m *Manager) Get(name string) (*Definition, error) {
	d := &Definition{}
	var example sql.NullString

	err := m.DB.QueryRow(`SELECT "Name", "Pattern", "Example" FROM scores WHERE "Name" = ?`, name).
		Scan(&d.Name, &d.Pattern, &example)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, m.unknown(name)
		}
		return nil, err
	}
	d.Example = example.String

	return d, nil
}

func (m *Manager) Pattern(name string) (string, error) {
	d, err := m.Get(name)
	if err != nil {
		return "", err
	}
	return d.Pattern, nil
}

// Validate accepts value iff it fully matches the pattern of dimension name.
func (m *Manager) Validate(name, value string) error {
	d, err := m.Get(name)
	if err != nil {
		return err
	}

	re, err := compile(d.Pattern)
	if err != nil {
		return err
	}

	if !re.MatchString(value) {
		return &ValidationError{Name: name, Value: value, Pattern: d.Pattern}
	}
	return nil
}

// List returns every definition ordered by name.
func (m *Manager) List() ([]*Definition, error) {
	rows, err := m.DB.Query(`SELECT "Name", "Pattern", "Example" FROM scores ORDER BY "Name"`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	defs := []*Definition{}
	for rows.Next() {
		d := &Definition{}
		var example sql.NullString
		if err := rows.Scan(&d.Name, &d.Pattern, &example); err != nil {
			return nil, err
		}
		d.Example = example.String
		defs = append(defs, d)
	}

	return defs, rows.Err()
}
