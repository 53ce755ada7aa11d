// Package treestore persists a parsed classification tree into SQLite, one
// row per haplogroup branch, so downstream tooling can query ancestor paths
// with plain SQL.
//
// Usage:
//
//	db, err := treestore.Open("tree.db")
//	n, err := treestore.Store(ctx, db, tree.Prettify())
package treestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/phylotree/phylo"
)

const schema = `
CREATE TABLE IF NOT EXISTS branches (
	path        TEXT PRIMARY KEY,
	haplogroup  TEXT NOT NULL,
	parent      TEXT NOT NULL,
	depth       INTEGER NOT NULL,
	conditions  TEXT NOT NULL,
	accessions  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_branches_parent ON branches(parent);
CREATE INDEX IF NOT EXISTS idx_branches_haplogroup ON branches(haplogroup);
`

type config struct {
	busyTimeout int
	synchronous string
	mkdirAll    bool
	ping        bool
}

func defaults() config {
	return config{
		busyTimeout: 10_000,
		synchronous: "NORMAL",
		ping:        true,
	}
}

// Option customises Open behaviour.
type Option func(*config)

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds. Default: 10000.
func WithBusyTimeout(ms int) Option { return func(c *config) { c.busyTimeout = ms } }

// WithSynchronous sets PRAGMA synchronous. Default: "NORMAL".
func WithSynchronous(mode string) Option { return func(c *config) { c.synchronous = mode } }

// WithMkdirAll creates parent directories of the database path before opening.
func WithMkdirAll() Option { return func(c *config) { c.mkdirAll = true } }

// WithoutPing skips the db.Ping() verification after opening.
func WithoutPing() Option { return func(c *config) { c.ping = false } }

// Open opens the branches database at path with production-safe pragmas
// (WAL, busy_timeout, synchronous NORMAL, foreign_keys) and applies the
// schema.
func Open(path string, opts ...Option) (*sql.DB, error) {
	cfg := defaults()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.mkdirAll && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("treestore: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("treestore: open: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout),
		fmt.Sprintf("PRAGMA synchronous = %s", cfg.synchronous),
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("treestore: %s: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("treestore: exec schema: %w", err)
	}

	if cfg.ping {
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("treestore: ping: %w", err)
		}
	}

	return db, nil
}

// OpenMemory opens an in-memory branches database for testing. It sets
// MaxOpenConns(1) so every query hits the same in-memory database and
// registers t.Cleanup to close it.
func OpenMemory(t testing.TB, opts ...Option) *sql.DB {
	t.Helper()
	db, err := Open(":memory:", opts...)
	if err != nil {
		t.Fatalf("treestore.OpenMemory: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// Store writes the flattened classification into the branches table in one
// transaction, replacing any previous row for the same path. Returns the
// number of branches written.
func Store(ctx context.Context, db *sql.DB, root *phylo.Node) (int, error) {
	paths := phylo.Flatten(root)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("treestore: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO branches
			(path, haplogroup, parent, depth, conditions, accessions)
		VALUES (?,?,?,?,?,?)`)
	if err != nil {
		return 0, fmt.Errorf("treestore: prepare: %w", err)
	}
	defer stmt.Close()

	for _, path := range paths {
		leaf := path[len(path)-1]
		parent := ""
		if len(path) > 1 {
			parent = path[len(path)-2].Name
		}

		names := make([]string, len(path))
		for i, step := range path {
			names[i] = step.Name
		}

		conditions, err := json.Marshal(leaf.Conditions)
		if err != nil {
			return 0, fmt.Errorf("treestore: marshal conditions: %w", err)
		}
		accessions, err := json.Marshal(accessionsAt(root, names))
		if err != nil {
			return 0, fmt.Errorf("treestore: marshal accessions: %w", err)
		}

		_, err = stmt.ExecContext(ctx,
			strings.Join(names, "/"), leaf.Name, parent, len(path)-1,
			string(conditions), string(accessions))
		if err != nil {
			return 0, fmt.Errorf("treestore: insert %s: %w", leaf.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("treestore: commit: %w", err)
	}
	return len(paths), nil
}

// accessionsAt resolves the example accessions of the node at the given
// name path.
func accessionsAt(root *phylo.Node, names []string) []string {
	node := root
	for _, name := range names {
		child, ok := node.Descendants[name]
		if !ok {
			return nil
		}
		node = child
	}
	return node.ExampleAccessions
}
