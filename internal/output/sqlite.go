package output

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/l-stahlhut/meme-crawler/internal/scraper"
)

const memesSchema = `
DROP TABLE IF EXISTS memes;
CREATE TABLE memes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	collection TEXT NOT NULL,
	text TEXT NOT NULL,
	author TEXT NOT NULL,
	views TEXT NOT NULL,
	upvotes TEXT NOT NULL,
	comments TEXT NOT NULL,
	url TEXT NOT NULL
);`

// WriteSQLite stores the collection in the memes table of the database at
// path. The table is recreated on every call, so a database only ever holds
// the latest run.
func WriteSQLite(ctx context.Context, path string, name string, memes []scraper.MemeRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, memesSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO memes (collection, text, author, views, upvotes, comments, url) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range memes {
		v := m.Fields()
		if _, err := stmt.ExecContext(ctx, name, v[0], v[1], v[2], v[3], v[4], v[5]); err != nil {
			return fmt.Errorf("insert meme by %s: %w", m.Author, err)
		}
	}
	return tx.Commit()
}

// ReadSQLite returns the memes stored by WriteSQLite, in insertion order.
func ReadSQLite(ctx context.Context, path string) ([]scraper.MemeRecord, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT text, author, views, upvotes, comments, url FROM memes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memes []scraper.MemeRecord
	for rows.Next() {
		fields := make([]string, len(scraper.Columns))
		if err := rows.Scan(&fields[0], &fields[1], &fields[2], &fields[3], &fields[4], &fields[5]); err != nil {
			return nil, err
		}
		rec, err := scraper.RecordFromFields(fields)
		if err != nil {
			return nil, err
		}
		memes = append(memes, rec)
	}
	return memes, rows.Err()
}
