// internal/library/sqlite.go
package library

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"umidemux/pkg/api"
)

// WriteSQLite persists the library document to an SQLite file: one
// `library` row holding the run metadata, one `umi_pair` row per key with
// the sequence lists as JSON arrays. Everything lands in a single
// transaction, so a failed write leaves no partially-populated database.
func WriteSQLite(path string, doc api.LibraryV1) error {
	// Recreate rather than append: the artifact is written out immutably
	// once per population per run.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(`
		CREATE TABLE library (
			population TEXT NOT NULL,
			gw_name    TEXT NOT NULL,
			stats      TEXT NOT NULL
		);
		CREATE TABLE umi_pair (
			forward_umi TEXT NOT NULL,
			reverse_umi TEXT NOT NULL,
			r1          TEXT NOT NULL,
			r2          TEXT NOT NULL,
			PRIMARY KEY (forward_umi, reverse_umi)
		);`); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	statsJSON, err := json.Marshal(doc.Stats)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO library (population, gw_name, stats) VALUES (?, ?, ?)`,
		doc.Population, doc.GWName, string(statsJSON)); err != nil {
		return fmt.Errorf("insert library row: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO umi_pair (forward_umi, reverse_umi, r1, r2) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, e := range doc.Entries {
		r1, err := json.Marshal(e.R1Sequences)
		if err != nil {
			return err
		}
		r2, err := json.Marshal(e.R2Sequences)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(e.ForwardUMI, e.ReverseUMI, string(r1), string(r2)); err != nil {
			return fmt.Errorf("insert umi pair %s/%s: %w", e.ForwardUMI, e.ReverseUMI, err)
		}
	}
	return tx.Commit()
}

// ReadSQLite loads a library document written by WriteSQLite. Entries are
// returned in key order, matching the JSON form.
func ReadSQLite(path string) (api.LibraryV1, error) {
	var doc api.LibraryV1
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return doc, fmt.Errorf("open sqlite: %w", err)
	}
	defer func() { _ = db.Close() }()

	var statsJSON string
	if err := db.QueryRow(`SELECT population, gw_name, stats FROM library`).
		Scan(&doc.Population, &doc.GWName, &statsJSON); err != nil {
		return doc, fmt.Errorf("read library row: %w", err)
	}
	if err := json.Unmarshal([]byte(statsJSON), &doc.Stats); err != nil {
		return doc, err
	}

	rows, err := db.Query(`SELECT forward_umi, reverse_umi, r1, r2 FROM umi_pair ORDER BY forward_umi, reverse_umi`)
	if err != nil {
		return doc, err
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var e api.LibraryEntryV1
		var r1, r2 string
		if err := rows.Scan(&e.ForwardUMI, &e.ReverseUMI, &r1, &r2); err != nil {
			return doc, err
		}
		if err := json.Unmarshal([]byte(r1), &e.R1Sequences); err != nil {
			return doc, err
		}
		if err := json.Unmarshal([]byte(r2), &e.R2Sequences); err != nil {
			return doc, err
		}
		doc.Entries = append(doc.Entries, e)
	}
	return doc, rows.Err()
}
