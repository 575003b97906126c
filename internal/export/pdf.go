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
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"keyforge/internal/domain"
	"keyforge/internal/geom"
	"keyforge/internal/storage"
)

// MMPerUnit is the physical pitch of one key unit (standard MX spacing).
const MMPerUnit = 19.05

// PDFOptions controls plate PDF export behavior.
// The page is sized to the layout bounds plus margins; all output is in mm
// for a 1:1 print of the plate. Built-in Helvetica keeps labels vector
// without font embedding.
type PDFOptions struct {
	MarginMM  float64 // outer margin around the layout; default 10
	LabelKeys bool    // print "row,col" at each key center
	Part      int     // part to export; -1 exports all parts
}

// ExportPlatePDF exports the keyboard plate outline to a single-page PDF at outPath.
// Rotated keys are drawn as their true rotated outlines.
func ExportPlatePDF(ph *storage.ProjectHandle, outPath string, opt PDFOptions) error {
	if ph == nil {
		return fmt.Errorf("project handle is nil")
	}
	keys := selectKeys(ph.Project, opt.Part)
	if len(keys) == 0 {
		return fmt.Errorf("no keys to export")
	}

	margin := opt.MarginMM
	if margin <= 0 {
		margin = 10
	}

	b := geom.KeysBounds(keys)
	pageW := pxToMM(b.W()) + 2*margin
	pageH := pxToMM(b.H()) + 2*margin

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: pageW, Ht: pageH},
		OrientationStr: "",
	})
	pdf.SetTitle(fmt.Sprintf("%s — plate", ph.Project.Name), false)
	pdf.SetAuthor("KeyForge", false)
	pdf.SetFont("Helvetica", "", 8)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: pageW, Ht: pageH})

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.25)
	for _, k := range keys {
		poly := geom.KeyPolygon(k)
		pts := make([]gofpdf.PointType, 0, len(poly))
		for _, p := range poly {
			pts = append(pts, gofpdf.PointType{
				X: pxToMM(p.X-b.MinX) + margin,
				Y: pxToMM(p.Y-b.MinY) + margin,
			})
		}
		pdf.Polygon(pts, "D")

		if opt.LabelKeys {
			c := geom.KeyCenter(k)
			label := fmt.Sprintf("%d,%d", k.Row, k.Col)
			w := pdf.GetStringWidth(label)
			x := pxToMM(c.X-b.MinX) + margin - w/2
			y := pxToMM(c.Y-b.MinY) + margin + 1.4 // approx half cap height for 8pt
			pdf.Text(x, y, label)
		}
	}

	outPath = resolveOutPath(ph.Root, outPath)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func pxToMM(px float64) float64 { return px / domain.Unit * MMPerUnit }

// selectKeys returns the keys of the given part, or all keys when part < 0.
func selectKeys(p domain.Project, part int) []domain.Key {
	if part < 0 {
		return p.Keys
	}
	return p.PartKeys(part)
}

// resolveOutPath places relative paths under the project exports folder.
func resolveOutPath(root, outPath string) string {
	if filepath.IsAbs(outPath) {
		return outPath
	}
	return filepath.Join(root, "exports", outPath)
}
