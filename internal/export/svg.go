/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"keyforge/internal/geom"
	"keyforge/internal/storage"
)

// SVGOptions controls SVG plate export behavior.
// The coordinate system is mm (one key unit = MMPerUnit); the viewBox matches
// the physical plate so the file prints 1:1.
type SVGOptions struct {
	MarginMM  float64 // default 10
	LabelKeys bool
	Part      int // part to export; -1 exports all parts
}

// ExportPlateSVG writes the keyboard plate outline as a single SVG file at outPath.
func ExportPlateSVG(ph *storage.ProjectHandle, outPath string, opt SVGOptions) error {
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
	docW := pxToMM(b.W()) + 2*margin
	docH := pxToMM(b.H()) + 2*margin

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%gmm\" height=\"%gmm\" viewBox=\"0 0 %g %g\">\n", docW, docH, docW, docH)
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"#ffffff\"/>\n", docW, docH)

	for _, k := range keys {
		poly := geom.KeyPolygon(k)
		wf("  <polygon points=\"")
		for i, p := range poly {
			if i > 0 {
				wf(" ")
			}
			wf("%g,%g", pxToMM(p.X-b.MinX)+margin, pxToMM(p.Y-b.MinY)+margin)
		}
		wf("\" fill=\"none\" stroke=\"#000000\" stroke-width=\"0.25\"/>\n")

		if opt.LabelKeys {
			c := geom.KeyCenter(k)
			wf("  <text x=\"%g\" y=\"%g\" font-family=\"Helvetica\" font-size=\"3\" text-anchor=\"middle\" dominant-baseline=\"middle\">%d,%d</text>\n",
				pxToMM(c.X-b.MinX)+margin, pxToMM(c.Y-b.MinY)+margin, k.Row, k.Col)
		}
	}
	wf("</svg>\n")
	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}

	outPath = resolveOutPath(ph.Root, outPath)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}
