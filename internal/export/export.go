/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a board to PNG, SVG or PDF. The picture is fitted
// to the content bounds plus a margin, independent of the on-screen viewport.
package export

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"sketchboard/internal/domain"
	applog "sketchboard/internal/log"
	"sketchboard/internal/render"
	"sketchboard/internal/shape"
	"sketchboard/internal/vector"
)

// ErrUnsupportedFormat is returned for formats other than png, svg and pdf.
var ErrUnsupportedFormat = errors.New("unsupported image format")

type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
)

// Formats lists the supported formats.
func Formats() []Format { return []Format{FormatPNG, FormatSVG, FormatPDF} }

// ParseFormat accepts a format name case-insensitively, with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	for _, k := range Formats() {
		if f == k {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// MaxPixels bounds either side of a raster export.
const MaxPixels = 16384

// Options controls the output size.
type Options struct {
	// Margin around the content in output units.
	Margin float64
	// Scale is output units per world unit; zero means 1.
	Scale      float64
	Background vector.Color
}

// DefaultOptions returns a 16 unit margin at scale 1 on white.
func DefaultOptions() Options {
	return Options{Margin: 16, Scale: 1, Background: vector.White}
}

// Layout is the output size and the world-to-output transform.
type Layout struct {
	Width, Height float64
	Transform     vector.Affine2D
}

// Fit computes the layout that frames shapes with the margin of opts.
func Fit(shapes []domain.ShapeRevision, opts Options) Layout {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	margin := math.Max(opts.Margin, 0)
	b, ok := shape.SceneBounds(shapes)
	if !ok {
		b = vector.Rect{}
	}
	w := math.Max(math.Ceil(b.W*scale+2*margin), 1)
	h := math.Max(math.Ceil(b.H*scale+2*margin), 1)
	m := vector.Translate(margin-b.X*scale, margin-b.Y*scale).Mul(vector.Scale(scale, scale))
	return Layout{Width: w, Height: h, Transform: m}
}

// Write renders shapes in format to w.
func Write(format Format, w io.Writer, shapes []domain.ShapeRevision, opts Options) error {
	l := applog.WithOperation(applog.WithComponent("export"), "write")
	lay := Fit(shapes, opts)
	frame := render.Frame{Background: opts.Background, Transform: lay.Transform, Shapes: shapes}

	var err error
	switch format {
	case FormatPNG:
		if lay.Width > MaxPixels || lay.Height > MaxPixels {
			return fmt.Errorf("export png: %vx%v exceeds %d pixels", lay.Width, lay.Height, MaxPixels)
		}
		s := NewRasterSurface(int(lay.Width), int(lay.Height))
		render.Draw(s, frame)
		err = s.EncodePNG(w)
	case FormatSVG:
		s := NewSVGSurface(lay.Width, lay.Height)
		render.Draw(s, frame)
		_, err = s.WriteTo(w)
	case FormatPDF:
		s := NewPDFSurface(lay.Width, lay.Height)
		render.Draw(s, frame)
		err = s.Output(w)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}
	l.Debug("image written", slog.String("format", string(format)), slog.Int("shapes", len(shapes)),
		slog.Float64("width", lay.Width), slog.Float64("height", lay.Height))
	return nil
}

// Encoder renders images for the engine's Save action.
type Encoder struct {
	Options Options
}

func (e Encoder) Encode(w io.Writer, format string, shapes []domain.ShapeRevision, background vector.Color) error {
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}
	opts := e.Options
	if opts.Scale == 0 && opts.Margin == 0 {
		opts = DefaultOptions()
	}
	opts.Background = background
	return Write(f, w, shapes, opts)
}
