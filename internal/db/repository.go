package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/RishiKendai/duplink/internal/duplink"
)

// Run describes one detection run.
type Run struct {
	ID        string
	CreatedAt time.Time
	Options   duplink.Options
}

// PersistRun stores a run with its clusters, links and diffs in one
// transaction. Rows of an earlier run with the same ID are replaced.
func PersistRun(dbPath string, run Run, res *duplink.Result) error {
	conn, err := Open(dbPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := clearRun(tx, run.ID); err != nil {
		return err
	}

	if _, err := tx.Exec(
		`INSERT INTO runs(id, created_at, gap, penalty, min_score, documents, links) VALUES(?,?,?,?,?,?,?)`,
		run.ID,
		run.CreatedAt.UTC().Format(time.RFC3339),
		run.Options.Gap,
		run.Options.Penalty,
		run.Options.MinScore,
		len(res.Documents),
		len(res.Links),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, c := range res.Clusters {
		if _, err := tx.Exec(
			`INSERT INTO clusters(run_id, cluster_id, source_doc, char_start, char_end) VALUES(?,?,?,?,?)`,
			run.ID, c.ID, c.Source.DocumentID(), c.Source.CharStart(), c.Source.CharEnd(),
		); err != nil {
			return fmt.Errorf("insert cluster: %w", err)
		}
		for _, l := range c.Links {
			if err := insertLink(tx, run.ID, c.ID, l); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func clearRun(tx *sql.Tx, runID string) error {
	if _, err := tx.Exec(`DELETE FROM diffs WHERE link_id IN (SELECT id FROM links WHERE run_id = ?)`, runID); err != nil {
		return fmt.Errorf("clear diffs: %w", err)
	}
	for _, table := range []string{"links", "clusters"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE run_id = ?`, runID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	if _, err := tx.Exec(`DELETE FROM runs WHERE id = ?`, runID); err != nil {
		return fmt.Errorf("clear run: %w", err)
	}
	return nil
}

func insertLink(tx *sql.Tx, runID, clusterID string, l *duplink.Link) error {
	res, err := tx.Exec(
		`INSERT INTO links(run_id, cluster_id, dest_doc, char_start, char_end, score, overlap) VALUES(?,?,?,?,?,?,?)`,
		runID,
		clusterID,
		l.Dest.DocumentID(),
		l.Dest.CharStart(),
		l.Dest.CharEnd(),
		l.Score,
		l.Overlap(),
	)
	if err != nil {
		return fmt.Errorf("insert link: %w", err)
	}
	linkID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("link last insert id: %w", err)
	}
	for _, d := range l.Diffs {
		if _, err := tx.Exec(
			`INSERT INTO diffs(link_id, kind, source_text, dest_text, tokens) VALUES(?,?,?,?,?)`,
			linkID, string(d.Kind()), d.Source.Raw(), d.Dest.Raw(), d.Tokens,
		); err != nil {
			return fmt.Errorf("insert diff: %w", err)
		}
	}
	return nil
}

func CountRows(dbPath, table string) (int, error) {
	conn, err := Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	return countRowsConn(conn, table)
}

func countRowsConn(conn *sql.DB, table string) (int, error) {
	row := conn.QueryRow(`SELECT COUNT(*) FROM ` + table)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("scan count: %w", err)
	}
	return count, nil
}
