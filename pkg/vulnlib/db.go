package vulnlib

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kvesta/lem/config"
	"github.com/kvesta/lem/pkg/packages"
)

const cveTable = `CREATE TABLE IF NOT EXISTS cves (
	"CVEID" TEXT NOT NULL PRIMARY KEY,
	"Severity" TEXT,
	"PublicDate" TEXT,
	"Packages" TEXT);`

// Init opens the database at path and creates the cve table.
func (cli *Client) Init(path string) error {
	if err := mkFolder(cli.Store); err != nil {
		log.Printf("failed to create folder, error: %v", err)
		return err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	if _, err = db.Exec(cveTable); err != nil {
		db.Close()
		return fmt.Errorf("failed to create cve table: %w", err)
	}

	cli.DB = db
	return nil
}

func (cli *Client) Close() error {
	if cli.DB == nil {
		return nil
	}
	return cli.DB.Close()
}

func (cli *Client) update(tx *sql.Tx, r *CVERow) error {
	pkgs, err := json.Marshal(r.Packages)
	if err != nil {
		return err
	}

	sqlRow := `INSERT OR REPLACE INTO cves
				  ("CVEID", "Severity", "PublicDate", "Packages")
				   VALUES
				  (?, ?, ?, ?)`

	_, err = tx.Exec(sqlRow, r.CVEID, r.Severity, r.PublicDate, string(pkgs))
	return err
}

func scanRow(rows *sql.Rows) (*CVERow, error) {
	r := &CVERow{}
	var pkgs sql.NullString

	if err := rows.Scan(&r.CVEID, &r.Severity, &r.PublicDate, &pkgs); err != nil {
		return nil, err
	}

	if pkgs.Valid && pkgs.String != "" {
		if err := json.Unmarshal([]byte(pkgs.String), &r.Packages); err != nil {
			return nil, fmt.Errorf("decode packages of %s: %w", r.CVEID, err)
		}
	}
	return r, nil
}

// CVEList returns every cached CVE identifier in sorted order.
func (cli *Client) CVEList() ([]string, error) {
	rows, err := cli.DB.Query(`SELECT "CVEID" FROM cves ORDER BY "CVEID"`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (cli *Client) QueryCVE(cveid string) (*CVERow, error) {
	rows, err := cli.DB.Query(`SELECT * FROM cves WHERE "CVEID" = ?`, strings.ToUpper(cveid))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return scanRow(rows)
}

// AffectedPackages maps every cached CVE to the package builds fixing it.
// An installed package older than one of those builds is vulnerable.
func (cli *Client) AffectedPackages(ctx context.Context) (map[string][]packages.Identity, error) {
	rows, err := cli.DB.QueryContext(ctx, `SELECT * FROM cves WHERE "Packages" != '[]' AND "Packages" != 'null'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	data := map[string][]packages.Identity{}
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			log.Printf(config.Yellow("skipping cached cve: %v"), err)
			continue
		}

		for _, p := range r.Packages {
			id := packages.ParseIdentity(p)
			if id.Name == "" {
				continue
			}
			data[r.CVEID] = append(data[r.CVEID], id)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(data) < 1 {
		return nil, fmt.Errorf("no affected package data cached, run 'lem refresh --api' first")
	}

	return data, nil
}
