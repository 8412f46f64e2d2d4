package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/RishiKendai/duplink/internal/duplink"
	"github.com/RishiKendai/duplink/internal/text"
	"github.com/RishiKendai/duplink/internal/tokenize"
)

func linkSample(t *testing.T, opts duplink.Options) *duplink.Result {
	t.Helper()
	docs := []*text.Document{
		tokenize.Document(tokenize.Word(), "1", 1, "the wound was cleaned and dressed today at noon"),
		tokenize.Document(tokenize.Word(), "2", 2, "the wound was cleaned and packed today at noon"),
		tokenize.Document(tokenize.Word(), "3", 3, "follow up: the wound was cleaned and dressed today at noon"),
	}
	l, err := duplink.New(opts)
	if err != nil {
		t.Fatalf("new linker: %v", err)
	}
	res, err := l.Link(context.Background(), docs)
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	return res
}

func TestPersistRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "links.db")
	opts := duplink.Options{Gap: -5, Penalty: -1, MinScore: 4}
	res := linkSample(t, opts)
	if len(res.Links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(res.Links))
	}

	run := Run{ID: "run-1", CreatedAt: time.Now(), Options: opts}
	if err := PersistRun(dbPath, run, res); err != nil {
		t.Fatalf("persist run: %v", err)
	}
	// a second write of the same run replaces the first
	if err := PersistRun(dbPath, run, res); err != nil {
		t.Fatalf("persist run again: %v", err)
	}

	for table, want := range map[string]int{"runs": 1, "clusters": 1, "links": 2, "diffs": 1} {
		got, err := CountRows(dbPath, table)
		if err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if got != want {
			t.Fatalf("expected %d rows in %s, got %d", want, table, got)
		}
	}
}
