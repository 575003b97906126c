//go:build fyne

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// These tests validate the Fyne-based UI components. They are gated behind the
// "fyne" build tag so CI (which is headless) does not need Fyne or a display.
// To run locally:
//
//	go test -tags fyne ./internal/ui
//
// Ensure you have the Fyne dependencies installed and a working OS driver.
package ui

import (
	"testing"

	"fyne.io/fyne/v2"

	"keyforge/internal/domain"
	"keyforge/internal/gesture"
	"keyforge/internal/session"
	"keyforge/internal/view"
)

func almostEqual(a, b, eps float64) bool {
	if a > b {
		return a-b <= eps
	}
	return b-a <= eps
}

func testCanvas(keys []domain.Key) *LayoutCanvas {
	store := session.NewKeyStore(keys)
	nav := session.NewNavState()
	v := view.New()
	env := &gesture.Env{Keys: store, Nav: nav, View: v}
	ctrl := gesture.NewController(env)
	return NewLayoutCanvas(store, nav, v, ctrl)
}

func TestLayoutCanvas_LayoutSetsContainer(t *testing.T) {
	lc := testCanvas(nil)
	r, ok := lc.CreateRenderer().(*layoutCanvasRenderer)
	if !ok {
		t.Fatalf("expected layoutCanvasRenderer, got %T", lc.CreateRenderer())
	}
	r.Layout(fyne.NewSize(1000, 800))
	if lc.view.Width != 1000 || lc.view.Height != 800 {
		t.Fatalf("container not propagated to view: %vx%v", lc.view.Width, lc.view.Height)
	}
	if len(r.Objects()) != 1 {
		t.Fatalf("expected a single raster object, got %d", len(r.Objects()))
	}
}

func TestLayoutCanvas_FitContentOnLayout(t *testing.T) {
	keys := []domain.Key{
		{ID: "a", X: 0, Y: 0, W: 1, H: 1, Row: 0, Col: 0},
		{ID: "b", X: 1, Y: 0, W: 1, H: 1, Row: 0, Col: 1},
	}
	lc := testCanvas(keys)
	r := lc.CreateRenderer().(*layoutCanvasRenderer)
	r.Layout(fyne.NewSize(1000, 800))
	// Two 1u keys fit well within the container; auto-zoom caps out.
	if !almostEqual(lc.view.T.S, 1.5, 1e-9) {
		t.Fatalf("expected auto-zoom cap 1.5, got %v", lc.view.T.S)
	}
}

func TestLayoutCanvas_DrawDimensionsAndContent(t *testing.T) {
	keys := []domain.Key{{ID: "a", X: 0, Y: 0, W: 1, H: 1, Row: 0, Col: 0}}
	lc := testCanvas(keys)
	r := lc.CreateRenderer().(*layoutCanvasRenderer)
	r.Layout(fyne.NewSize(400, 300))

	img := lc.draw(400, 300)
	b := img.Bounds()
	if b.Dx() != 400 || b.Dy() != 300 {
		t.Fatalf("unexpected image size %dx%d", b.Dx(), b.Dy())
	}
	// The single key is centered in the viewport; its center pixel must
	// differ from the background.
	cx, cy := 200, 150
	if img.At(cx, cy) == img.At(2, 2) {
		t.Fatal("expected key fill at the viewport center")
	}
}

func TestLayoutCanvas_HitKeyAt(t *testing.T) {
	keys := []domain.Key{{ID: "a", X: 0, Y: 0, W: 1, H: 1, Row: 0, Col: 0}}
	lc := testCanvas(keys)
	r := lc.CreateRenderer().(*layoutCanvasRenderer)
	lc.view.AutoZoom = false
	r.Layout(fyne.NewSize(400, 300))

	// The key's polygon is centered on the virtual origin, which maps
	// to the container center at scale 1.
	if got := lc.hitKeyAt(200, 150); got != "a" {
		t.Fatalf("expected hit on key a at viewport center, got %q", got)
	}
	if got := lc.hitKeyAt(10, 10); got != "" {
		t.Fatalf("expected no hit in the corner, got %q", got)
	}
}

func TestLayoutCanvas_ScrolledZoomsAboutCursor(t *testing.T) {
	keys := []domain.Key{{ID: "a", X: 0, Y: 0, W: 1, H: 1, Row: 0, Col: 0}}
	lc := testCanvas(keys)
	r := lc.CreateRenderer().(*layoutCanvasRenderer)
	lc.view.AutoZoom = false
	r.Layout(fyne.NewSize(400, 300))

	pos := fyne.NewPos(120, 90)
	before := lc.view.ScreenToVirtual(float64(pos.X), float64(pos.Y))
	lc.Scrolled(&fyne.ScrollEvent{
		PointEvent: fyne.PointEvent{Position: pos},
		Scrolled:   fyne.Delta{DY: 1},
	})
	if !almostEqual(lc.view.T.S, 1.1, 1e-9) {
		t.Fatalf("expected scale 1.1 after one wheel step, got %v", lc.view.T.S)
	}
	after := lc.view.ScreenToVirtual(float64(pos.X), float64(pos.Y))
	if !almostEqual(before.X, after.X, 1e-6) || !almostEqual(before.Y, after.Y, 1e-6) {
		t.Fatalf("virtual point under cursor moved: before %v after %v", before, after)
	}
}
