/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	applog "sketchboard/internal/log"
)

// BackupsDirName is created next to a saved document and holds earlier versions.
const BackupsDirName = ".backups"

// SaveDocument writes doc to path. An existing file is first copied to a
// timestamped backup, then replaced through a synced temp file and rename.
func SaveDocument(path string, doc Document) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("document path is required")
	}
	l := applog.WithDocument(applog.WithOperation(applog.WithComponent("storage"), "save"), doc.DocumentID)

	var buf bytes.Buffer
	if err := EncodeDocument(&buf, doc); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create document dir: %w", err)
	}

	if _, statErr := os.Stat(path); statErr == nil {
		bpath := backupPath(path, time.Now())
		if err := copyFile(path, bpath); err != nil {
			return fmt.Errorf("backup current document: %w", err)
		}
		l.Debug("previous version backed up", slog.String("backup", bpath))
	}

	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, buf.Bytes()); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp document: %w", err)
	}
	// Windows cannot rename over an existing file.
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace document: %w", err)
	}
	l.Info("document saved", slog.String("path", path), slog.Int("shapes", len(doc.Shapes)))
	return nil
}

// LoadDocument reads the document at path. If it is missing or invalid the
// newest backup is tried; the original error is kept when that fails too.
func LoadDocument(path string) (Document, error) {
	doc, err := readDocumentFile(path)
	if err == nil {
		return doc, nil
	}
	bdoc, berr := loadLatestBackup(path)
	if berr != nil {
		return Document{}, fmt.Errorf("load %s: %w; backup attempt: %v", path, err, berr)
	}
	applog.WithComponent("storage").Warn("document restored from backup",
		slog.String("path", path), slog.Any("err", err))
	return bdoc, nil
}

// Backups lists the backups of path, oldest first.
func Backups(path string) ([]string, error) {
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, err
	}
	prefix := filepath.Base(path) + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out)
	return out, nil
}

func backupPath(path string, ts time.Time) string {
	stamp := ts.Format("20060102-150405.000000")
	return filepath.Join(filepath.Dir(path), BackupsDirName, fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp))
}

func readDocumentFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer func() { _ = f.Close() }()
	return DecodeDocument(f)
}

func loadLatestBackup(path string) (Document, error) {
	backups, err := Backups(path)
	if err != nil {
		return Document{}, fmt.Errorf("read backups dir: %w", err)
	}
	if len(backups) == 0 {
		return Document{}, errors.New("no backups found")
	}
	return readDocumentFile(backups[len(backups)-1])
}

func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
