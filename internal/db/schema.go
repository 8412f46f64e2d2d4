package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const SchemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    created_at TEXT,
    gap REAL,
    penalty REAL,
    min_score REAL,
    documents INTEGER,
    links INTEGER
);

CREATE TABLE IF NOT EXISTS clusters (
    run_id TEXT,
    cluster_id TEXT,
    source_doc TEXT,
    char_start INTEGER,
    char_end INTEGER,
    PRIMARY KEY (run_id, cluster_id)
);

CREATE TABLE IF NOT EXISTS links (
    id INTEGER PRIMARY KEY,
    run_id TEXT,
    cluster_id TEXT,
    dest_doc TEXT,
    char_start INTEGER,
    char_end INTEGER,
    score REAL,
    overlap REAL
);

CREATE TABLE IF NOT EXISTS diffs (
    id INTEGER PRIMARY KEY,
    link_id INTEGER,
    kind TEXT,
    source_text TEXT,
    dest_text TEXT,
    tokens INTEGER
);
`

func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(SchemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return db, nil
}
