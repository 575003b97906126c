/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"keyforge/internal/domain"
	"keyforge/internal/geom"
	"keyforge/internal/storage"
)

// PNGOptions controls layout preview rendering.
// Scale is pixels per key unit; MarginPx pads the layout bounds.
// Reasonable defaults are applied for zero values.
type PNGOptions struct {
	Scale     float64 // pixels per key unit; default domain.Unit
	MarginPx  int     // default 16
	LabelKeys bool    // draw "row,col" at each key center
	Part      int     // part to render; -1 renders all parts
}

// ExportPreviewPNG renders the layout to a PNG file at outPath. Keys are
// filled light gray with black rotated outlines; rotation is rendered
// exactly via the key outline polygon, not an axis-aligned approximation.
func ExportPreviewPNG(ph *storage.ProjectHandle, outPath string, opt PNGOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	keys := selectKeys(ph.Project, opt.Part)
	if len(keys) == 0 {
		return fmt.Errorf("no keys to render")
	}

	scale := opt.Scale
	if scale <= 0 {
		scale = domain.Unit
	}
	margin := opt.MarginPx
	if margin <= 0 {
		margin = 16
	}
	// Key outlines are computed in canonical pixels (domain.Unit per u).
	k := scale / domain.Unit

	b := geom.KeysBounds(keys)
	pixW := int(math.Ceil(b.W()*k)) + 2*margin
	pixH := int(math.Ceil(b.H()*k)) + 2*margin

	img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	fill := color.RGBA{230, 230, 230, 255}
	stroke := color.RGBA{0, 0, 0, 255}
	for _, key := range keys {
		poly := geom.KeyPolygon(key)
		dev := make(geom.Polygon, len(poly))
		for i, p := range poly {
			dev[i] = geom.Pt{X: (p.X-b.MinX)*k + float64(margin), Y: (p.Y-b.MinY)*k + float64(margin)}
		}
		fillPolygon(img, dev, fill)
		strokePolygon(img, dev, stroke)
	}

	if opt.LabelKeys {
		for _, key := range keys {
			c := geom.KeyCenter(key)
			x := int(math.Round((c.X-b.MinX)*k)) + margin
			y := int(math.Round((c.Y-b.MinY)*k)) + margin
			drawLabel(img, x, y, fmt.Sprintf("%d,%d", key.Row, key.Col), stroke)
		}
	}

	outPath = resolveOutPath(ph.Root, outPath)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

// fillPolygon fills poly by per-scanline point-in-polygon testing. Layout
// previews are small enough that the simple test beats an edge-table rasterizer.
func fillPolygon(img *image.RGBA, poly geom.Polygon, col color.RGBA) {
	pb := geom.PolygonBounds(poly)
	y0 := int(math.Floor(pb.MinY))
	y1 := int(math.Ceil(pb.MaxY))
	x0 := int(math.Floor(pb.MinX))
	x1 := int(math.Ceil(pb.MaxX))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if geom.PointInPolygon(poly, float64(x)+0.5, float64(y)+0.5) {
				img.SetRGBA(x, y, col)
			}
		}
	}
}

// strokePolygon draws the closed polygon outline with 1px lines.
func strokePolygon(img *image.RGBA, poly geom.Polygon, col color.RGBA) {
	n := len(poly)
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		drawLine(img, a.X, a.Y, b.X, b.Y, col)
	}
}

// drawLine plots a 1px line by stepping along the major axis.
func drawLine(img *image.RGBA, x0, y0, x1, y1 float64, col color.RGBA) {
	dx := x1 - x0
	dy := y1 - y0
	steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
	if steps == 0 {
		img.SetRGBA(int(math.Round(x0)), int(math.Round(y0)), col)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		img.SetRGBA(int(math.Round(x0+dx*t)), int(math.Round(y0+dy*t)), col)
	}
}

// drawLabel renders text centered at (x, y) using the fixed 7x13 face.
func drawLabel(img *image.RGBA, x, y int, text string, col color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
	}
	w := d.MeasureString(text).Ceil()
	d.Dot = fixed.P(x-w/2, y+face.Ascent/2)
	d.DrawString(text)
}
