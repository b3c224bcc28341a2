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
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	gojsonschema "github.com/xeipuuv/gojsonschema"

	"sketchboard/internal/domain"
)

const (
	FormatName    = "sketchboard"
	FormatVersion = 1
)

var (
	// ErrInvalidDocument is returned for documents that are not valid JSON,
	// do not match the schema or carry invalid revisions.
	ErrInvalidDocument = errors.New("invalid board document")
	// ErrUnsupportedFormat is returned for envelopes of another format or a newer version.
	ErrUnsupportedFormat = errors.New("unsupported board document format")
)

// Mode tells whether a document holds the collapsed scene or the raw log.
type Mode string

const (
	ModeScene Mode = "scene"
	ModeLog   Mode = "log"
)

// Document is the envelope written by EncodeDocument.
type Document struct {
	Format     string                 `json:"format"`
	Version    int                    `json:"version"`
	DocumentID string                 `json:"documentId,omitempty"`
	ExportedAt time.Time              `json:"exportedAt"`
	Mode       Mode                   `json:"mode"`
	Shapes     []domain.ShapeRevision `json:"shapes"`
}

// NewDocument wraps shapes in an envelope with a fresh document id.
func NewDocument(shapes []domain.ShapeRevision, mode Mode) Document {
	if mode == "" {
		mode = ModeScene
	}
	if shapes == nil {
		shapes = []domain.ShapeRevision{}
	}
	return Document{
		Format:     FormatName,
		Version:    FormatVersion,
		DocumentID: uuid.NewString(),
		ExportedAt: time.Now().UTC(),
		Mode:       mode,
		Shapes:     shapes,
	}
}

//go:embed board.schema.json
var boardSchemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func boardSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(boardSchemaJSON))
	})
	return schema, schemaErr
}

// EncodeDocument writes doc as indented JSON.
func EncodeDocument(w io.Writer, doc Document) error {
	if doc.Format == "" {
		doc.Format = FormatName
	}
	if doc.Version == 0 {
		doc.Version = FormatVersion
	}
	if doc.Shapes == nil {
		doc.Shapes = []domain.ShapeRevision{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// DecodeDocument reads a board document. A bare JSON array of revisions is
// accepted and returned as a log-mode document without an id.
func DecodeDocument(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}
	data = bytes.TrimSpace(data)
	if err := validateSchema(data); err != nil {
		return Document{}, err
	}

	var doc Document
	if len(data) > 0 && data[0] == '[' {
		var shapes []domain.ShapeRevision
		if err := json.Unmarshal(data, &shapes); err != nil {
			return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		doc = Document{Format: FormatName, Version: FormatVersion, Mode: ModeLog, Shapes: shapes}
	} else {
		if err := json.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		if doc.Format != FormatName {
			return Document{}, fmt.Errorf("%w: format %q", ErrUnsupportedFormat, doc.Format)
		}
		if doc.Version > FormatVersion {
			return Document{}, fmt.Errorf("%w: version %d is newer than %d", ErrUnsupportedFormat, doc.Version, FormatVersion)
		}
		if doc.Mode == "" {
			doc.Mode = ModeScene
		}
	}
	if doc.Shapes == nil {
		doc.Shapes = []domain.ShapeRevision{}
	}
	if err := domain.ValidateAll(doc.Shapes); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return doc, nil
}

func validateSchema(data []byte) error {
	s, err := boardSchema()
	if err != nil {
		return fmt.Errorf("load board schema: %w", err)
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if !res.Valid() {
		errs := res.Errors()
		msg := "schema mismatch"
		if len(errs) > 0 {
			msg = errs[0].String()
			if len(errs) > 1 {
				msg += fmt.Sprintf(" (and %d more)", len(errs)-1)
			}
		}
		return fmt.Errorf("%w: %s", ErrInvalidDocument, msg)
	}
	return nil
}

// Codec reads and writes board documents for the engine.
type Codec struct{}

// Export writes shapes as a scene document, or as a log document when rawLog is set.
func (Codec) Export(w io.Writer, shapes []domain.ShapeRevision, rawLog bool) error {
	mode := ModeScene
	if rawLog {
		mode = ModeLog
	}
	return EncodeDocument(w, NewDocument(shapes, mode))
}

// Import decodes a document and returns its revisions in order.
func (Codec) Import(r io.Reader) ([]domain.ShapeRevision, error) {
	doc, err := DecodeDocument(r)
	if err != nil {
		return nil, err
	}
	return doc.Shapes, nil
}
