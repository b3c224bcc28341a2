/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"sketchboard/internal/domain"
	applog "sketchboard/internal/log"
	"sketchboard/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// archiveSchemaVersion is stored in meta.schema. Bump it with a migration
// when the table layout changes.
const archiveSchemaVersion = 1

// language=SQL
// dialect=SQLite
const createMetaSQL = `CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// language=SQL
// dialect=SQLite
const createRevisionsSQL = `CREATE TABLE IF NOT EXISTS revisions (
	seq          INTEGER PRIMARY KEY,
	id           TEXT    NOT NULL,
	tool_kind    TEXT    NOT NULL,
	stroke_color TEXT    NOT NULL,
	fill_color   TEXT    NOT NULL,
	stroke_width REAL    NOT NULL,
	z_index      INTEGER NOT NULL,
	disabled     INTEGER NOT NULL DEFAULT 0,
	segments     TEXT    NOT NULL
)`

// language=SQL
// dialect=SQLite
const createRevisionsIDIndexSQL = `CREATE INDEX IF NOT EXISTS idx_revisions_id ON revisions(id)`

// language=SQL
// dialect=SQLite
const upsertMetaSQL = `INSERT INTO meta(key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value`

// language=SQL
// dialect=SQLite
const selectMetaSQL = `SELECT key, value FROM meta`

// language=SQL
// dialect=SQLite
const insertRevisionSQL = `INSERT INTO revisions(seq, id, tool_kind, stroke_color, fill_color, stroke_width, z_index, disabled, segments)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const selectRevisionsSQL = `SELECT id, tool_kind, stroke_color, fill_color, stroke_width, z_index, disabled, segments
	FROM revisions ORDER BY seq`

// WriteArchive packs doc into a new SQLite file at path, replacing any
// existing file once the archive is complete.
func WriteArchive(ctx context.Context, path string, doc Document) (err error) {
	if strings.TrimSpace(path) == "" {
		return errors.New("archive path is required")
	}
	l := applog.WithDocument(applog.WithOperation(applog.WithComponent("storage"), "pack"), doc.DocumentID)
	if doc.Format == "" {
		doc.Format = FormatName
	}
	if doc.Version == 0 {
		doc.Version = FormatVersion
	}
	if doc.Mode == "" {
		doc.Mode = ModeScene
	}
	if err := domain.ValidateAll(doc.Shapes); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	defer func() {
		if err != nil {
			removeDB(temp)
		}
	}()

	db, err := openArchive(ctx, temp)
	if err != nil {
		return err
	}
	if err := fillArchive(ctx, db, doc); err != nil {
		_ = db.Close()
		return err
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	removeDB(path)
	if err := os.Rename(temp, path); err != nil {
		return fmt.Errorf("replace archive: %w", err)
	}
	l.Info("archive written", slog.String("path", path), slog.Int("revisions", len(doc.Shapes)))
	return nil
}

// ReadArchive loads the document stored in the SQLite archive at path.
func ReadArchive(ctx context.Context, path string) (Document, error) {
	if _, err := os.Stat(path); err != nil {
		return Document{}, fmt.Errorf("open archive: %w", err)
	}
	db, err := openArchive(ctx, path)
	if err != nil {
		return Document{}, err
	}
	defer func() { _ = db.Close() }()

	meta := map[string]string{}
	rows, err := db.QueryContext(ctx, selectMetaSQL)
	if err != nil {
		return Document{}, fmt.Errorf("read meta: %w", err)
	}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			_ = rows.Close()
			return Document{}, fmt.Errorf("scan meta: %w", err)
		}
		meta[k] = v
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return Document{}, fmt.Errorf("read meta: %w", err)
	}
	if meta["format"] != FormatName {
		return Document{}, fmt.Errorf("%w: archive format %q", ErrUnsupportedFormat, meta["format"])
	}
	doc := Document{
		Format:     FormatName,
		DocumentID: meta["documentId"],
		Mode:       Mode(meta["mode"]),
	}
	doc.Version, _ = strconv.Atoi(meta["version"])
	if doc.Version > FormatVersion {
		return Document{}, fmt.Errorf("%w: version %d is newer than %d", ErrUnsupportedFormat, doc.Version, FormatVersion)
	}
	if ts, err := time.Parse(time.RFC3339Nano, meta["exportedAt"]); err == nil {
		doc.ExportedAt = ts
	}

	doc.Shapes, err = readRevisions(ctx, db)
	if err != nil {
		return Document{}, err
	}
	if err := domain.ValidateAll(doc.Shapes); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return doc, nil
}

func openArchive(ctx context.Context, path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	for _, q := range []string{createMetaSQL, createRevisionsSQL, createRevisionsIDIndexSQL} {
		if _, err := db.ExecContext(ctx, q); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create table: %w", err)
		}
	}
	return db, nil
}

func fillArchive(ctx context.Context, db *sql.DB, doc Document) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	exported := doc.ExportedAt
	if exported.IsZero() {
		exported = time.Now().UTC()
	}
	meta := [][2]string{
		{"format", doc.Format},
		{"version", strconv.Itoa(doc.Version)},
		{"schema", strconv.Itoa(archiveSchemaVersion)},
		{"documentId", doc.DocumentID},
		{"exportedAt", exported.Format(time.RFC3339Nano)},
		{"mode", string(doc.Mode)},
		{"app", version.String()},
	}
	for _, kv := range meta {
		if _, err := tx.ExecContext(ctx, upsertMetaSQL, kv[0], kv[1]); err != nil {
			return fmt.Errorf("write meta %s: %w", kv[0], err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, insertRevisionSQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()
	for i, r := range doc.Shapes {
		segs, err := json.Marshal(r.Segments)
		if err != nil {
			return fmt.Errorf("marshal segments of %s: %w", r.ID, err)
		}
		disabled := 0
		if r.Disabled {
			disabled = 1
		}
		if _, err := stmt.ExecContext(ctx, i, r.ID, r.ToolKind.String(), r.StrokeColor, r.FillColor,
			r.StrokeWidth, r.ZIndex, disabled, string(segs)); err != nil {
			return fmt.Errorf("insert revision %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func readRevisions(ctx context.Context, db *sql.DB) ([]domain.ShapeRevision, error) {
	rows, err := db.QueryContext(ctx, selectRevisionsSQL)
	if err != nil {
		return nil, fmt.Errorf("read revisions: %w", err)
	}
	defer func() { _ = rows.Close() }()
	out := []domain.ShapeRevision{}
	for rows.Next() {
		var (
			r        domain.ShapeRevision
			kind     string
			disabled int
			segs     string
		)
		if err := rows.Scan(&r.ID, &kind, &r.StrokeColor, &r.FillColor, &r.StrokeWidth, &r.ZIndex, &disabled, &segs); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		if r.ToolKind, err = domain.ParseToolKind(kind); err != nil {
			return nil, fmt.Errorf("%w: revision %s: %v", ErrInvalidDocument, r.ID, err)
		}
		if err := json.Unmarshal([]byte(segs), &r.Segments); err != nil {
			return nil, fmt.Errorf("%w: revision %s segments: %v", ErrInvalidDocument, r.ID, err)
		}
		r.Disabled = disabled != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// removeDB deletes a SQLite file together with its WAL sidecars.
func removeDB(path string) {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		_ = os.Remove(p)
	}
}
