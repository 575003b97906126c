//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"keyforge/internal/config"
	"keyforge/internal/crash"
	"keyforge/internal/domain"
	"keyforge/internal/export"
	"keyforge/internal/format"
	"keyforge/internal/geom"
	"keyforge/internal/gesture"
	"keyforge/internal/infer"
	applog "keyforge/internal/log"
	"keyforge/internal/session"
	"keyforge/internal/storage"
	"keyforge/internal/telemetry"
	"keyforge/internal/undo"
	"keyforge/internal/version"
	"keyforge/internal/view"
)

// Run starts the Fyne-based desktop editor. Pass an optional project
// directory to open immediately.
func Run(projectDir string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))
	telemetry.Event("app_start", map[string]any{"version": version.String()})

	cfg, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}

	var ph *storage.ProjectHandle
	defer func() { crash.Recover(ph) }()

	fyneApp := app.NewWithID("keyforge")
	w := fyneApp.NewWindow("KeyForge")
	// Restore window size from preferences (with sane minimums)
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")

	store := session.NewKeyStore(nil)
	nav := session.NewNavState()
	v := view.New()
	v.AutoZoom = cfg.Editor.AutoZoom

	// Wiring assignment state: the next row/col handed out by the wire
	// tool, advancing one column per assigned key.
	wireRow, wireCol := 0, 0
	env := &gesture.Env{Keys: store, Nav: nav, View: v}
	env.Assign = func(k *domain.Key) {
		k.Row, k.Col = wireRow, wireCol
		wireCol++
		status.SetText(fmt.Sprintf("Wired %s to %d,%d", k.ID, k.Row, k.Col))
	}
	ctrl := gesture.NewController(env)

	canvasWidget := NewLayoutCanvas(store, nav, v, ctrl)

	// Undo manager with safeguards (snapshots capture the whole key set)
	undoMgr := undo.NewManager(undo.Config{
		MaxBytes:    32 * 1024 * 1024,
		MaxPerPart:  20,
		MinInterval: 300 * time.Millisecond,
	})

	scopePart := func() int {
		if part, ok := nav.ActivePart(); ok {
			return part
		}
		return 0
	}

	captureKeysSnapshot := func() ([]byte, error) {
		return json.Marshal(store.Keys())
	}

	applyKeysSnapshot := func(blob []byte) error {
		var keys []domain.Key
		if err := json.Unmarshal(blob, &keys); err != nil {
			return err
		}
		store.Replace(keys)
		return nil
	}

	// Capture the pre-gesture state whenever a mutating tool goes down;
	// MinInterval coalescing folds rapid nudges into one undo step.
	canvasWidget.OnBeforeMutate = func() {
		if blob, err := captureKeysSnapshot(); err == nil {
			undoMgr.PushSnapshot(undo.Snapshot{Part: scopePart(), Blob: blob, TS: time.Now()})
		}
	}

	updateStatus := func() {
		scope := "all parts"
		if part, ok := nav.ActivePart(); ok {
			scope = fmt.Sprintf("part %d", part)
		}
		status.SetText(fmt.Sprintf("%d keys | %d selected | zoom %.0f%% | %s",
			store.Len(), len(nav.Selected()), v.T.S*100, scope))
	}

	// Debounced autosave into the snapshot index after every committed edit.
	autosave := session.NewDebouncer()
	debounce := time.Duration(cfg.Editor.DebounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	store.OnChange(func() {
		canvasWidget.Refresh()
		updateStatus()
		if ph == nil {
			return
		}
		autosave.Schedule(debounce, func() {
			blob, err := captureKeysSnapshot()
			if err != nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := storage.SaveSnapshot(ctx, ph, scopePart(), blob); err != nil {
				l.Warn("autosave snapshot failed", slog.Any("err", err))
			}
		})
	})

	doUndo := func() {
		if s, ok := undoMgr.Undo(scopePart()); ok {
			if err := applyKeysSnapshot(s.Blob); err != nil {
				dialog.ShowError(err, w)
				return
			}
			status.SetText("Undid last action")
		} else {
			status.SetText("Nothing to undo")
		}
	}
	doRedo := func() {
		if s, ok := undoMgr.Redo(scopePart()); ok {
			if err := applyKeysSnapshot(s.Blob); err != nil {
				dialog.ShowError(err, w)
				return
			}
			status.SetText("Redid last action")
		} else {
			status.SetText("Nothing to redo")
		}
	}

	var refreshRecentMenu func()

	openProject := func(root string) {
		h, err := storage.Open(root)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		ph = h
		if err := storage.BuildIndexIfEmpty(context.Background(), ph.Root, ph.Project); err != nil {
			l.Warn("index build failed", slog.Any("err", err))
		}
		nav.ClearSelection()
		nav.ClearActivePart()
		v.AutoZoom = cfg.Editor.AutoZoom
		store.Replace(ph.Project.Keys)
		addRecentProject(prefs, root)
		if refreshRecentMenu != nil {
			refreshRecentMenu()
		}
		w.SetTitle("KeyForge - " + ph.Project.Name)
		status.SetText("Opened " + root)
		l.Info("project opened", slog.String("root", root))
	}

	saveProject := func() {
		if ph == nil {
			dialog.ShowInformation("Save", "No project open.", w)
			return
		}
		ph.Project.Keys = append([]domain.Key(nil), store.Keys()...)
		if err := storage.Save(ph); err != nil {
			dialog.ShowError(err, w)
			return
		}
		if err := storage.UpdateIndex(context.Background(), ph.Root, ph.Project); err != nil {
			l.Warn("index update failed", slog.Any("err", err))
		}
		// Save normalizes in place; reflect the canonical form.
		store.Replace(ph.Project.Keys)
		status.SetText("Saved " + ph.ManifestPath)
	}

	importLayout := func(reader io.ReadCloser, name string) {
		defer reader.Close()
		data, err := io.ReadAll(reader)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		keys, detected, err := format.Parse(string(data))
		if err != nil {
			dialog.ShowError(fmt.Errorf("import %s: %w", name, err), w)
			return
		}
		store.Replace(keys)
		telemetry.Event("import", map[string]any{"format": detected, "keys": len(keys)})
		status.SetText(fmt.Sprintf("Imported %d keys (%s)", len(keys), detected))
	}

	exportLayout := func(outPath string) error {
		telemetry.Event("export", map[string]any{"format": strings.ToLower(filepath.Ext(outPath))})
		switch strings.ToLower(filepath.Ext(outPath)) {
		case ".pdf":
			return export.ExportPlatePDF(ph, outPath, export.PDFOptions{LabelKeys: true, Part: -1})
		case ".png":
			return export.ExportPreviewPNG(ph, outPath, export.PNGOptions{LabelKeys: true, Part: -1})
		case ".svg":
			return export.ExportPlateSVG(ph, outPath, export.SVGOptions{Part: -1})
		case ".kle":
			text, err := format.ToKLE(store.Keys())
			if err != nil {
				return err
			}
			return os.WriteFile(outPath, []byte(text), 0o644)
		default:
			text, err := format.ToLayoutJSON(store.Keys())
			if err != nil {
				return err
			}
			return os.WriteFile(outPath, []byte(text), 0o644)
		}
	}

	// File menu
	newItem := fyne.NewMenuItem("New Project…", func() {
		dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil || uri == nil {
				return
			}
			entry := widget.NewEntry()
			entry.SetText("keyboard")
			form := dialog.NewForm("New Project", "Create", "Cancel", []*widget.FormItem{
				widget.NewFormItem("Name", entry),
			}, func(ok bool) {
				if !ok {
					return
				}
				name := strings.TrimSpace(entry.Text)
				if name == "" {
					dialog.ShowError(fmt.Errorf("please enter a project name"), w)
					return
				}
				root := filepath.Join(uri.Path(), name)
				h, err := storage.InitProject(root, domain.Project{Name: name})
				if err != nil {
					dialog.ShowError(err, w)
					return
				}
				ph = h
				store.Replace(nil)
				addRecentProject(prefs, root)
				w.SetTitle("KeyForge - " + name)
				status.SetText("Created " + root)
			}, w)
			form.Show()
		}, w)
	})
	openItem := fyne.NewMenuItem("Open Project…", func() {
		dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
			if err != nil || uri == nil {
				return
			}
			openProject(uri.Path())
		}, w)
	})
	saveItem := fyne.NewMenuItem("Save", saveProject)
	importItem := fyne.NewMenuItem("Import Layout…", func() {
		open := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil || reader == nil {
				return
			}
			importLayout(reader, reader.URI().Name())
		}, w)
		open.SetFilter(fstorage.NewExtensionFileFilter([]string{".json", ".dtsi", ".dts", ".overlay", ".kle"}))
		open.Show()
	})
	exportItem := fyne.NewMenuItem("Export…", func() {
		if ph == nil {
			dialog.ShowInformation("Export", "No project open.", w)
			return
		}
		save := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil || writer == nil {
				return
			}
			outPath := writer.URI().Path()
			_ = writer.Close()
			ph.Project.Keys = append([]domain.Key(nil), store.Keys()...)
			if err := exportLayout(outPath); err != nil {
				dialog.ShowError(err, w)
				return
			}
			dialog.ShowInformation("Export", "Exported to "+outPath, w)
		}, w)
		save.SetFileName("layout.svg")
		save.SetFilter(fstorage.NewExtensionFileFilter([]string{".pdf", ".png", ".svg", ".json", ".kle"}))
		save.Show()
	})
	rebuildIndexItem := fyne.NewMenuItem("Rebuild Index", func() {
		if ph == nil {
			dialog.ShowInformation("Rebuild Index", "No project open.", w)
			return
		}
		if err := storage.RebuildIndex(context.Background(), ph.Root, ph.Project); err != nil {
			dialog.ShowError(err, w)
			return
		}
		status.SetText("Index rebuilt")
	})

	recentMenu := fyne.NewMenuItem("Open Recent", nil)
	refreshRecentMenu = func() {
		items := loadRecentProjects(prefs)
		sub := make([]*fyne.MenuItem, 0, len(items))
		for _, p := range items {
			path := p
			sub = append(sub, fyne.NewMenuItem(filepath.Base(path), func() { openProject(path) }))
		}
		if len(sub) == 0 {
			sub = append(sub, fyne.NewMenuItem("(empty)", nil))
		}
		recentMenu.ChildMenu = fyne.NewMenu("", sub...)
	}
	refreshRecentMenu()

	fileMenu := fyne.NewMenu("File", newItem, openItem, recentMenu, saveItem,
		fyne.NewMenuItemSeparator(), importItem, exportItem,
		fyne.NewMenuItemSeparator(), rebuildIndexItem)

	// Edit menu
	undoMenuItem := fyne.NewMenuItem("Undo", doUndo)
	redoMenuItem := fyne.NewMenuItem("Redo", doRedo)
	deleteItem := fyne.NewMenuItem("Delete Selected", func() {
		sel := nav.Selected()
		if len(sel) == 0 {
			return
		}
		canvasWidget.OnBeforeMutate()
		store.Remove(sel)
		nav.ClearSelection()
		store.Commit()
	})
	inferItem := fyne.NewMenuItem("Infer Rows/Columns", func() {
		if store.Len() == 0 {
			return
		}
		canvasWidget.OnBeforeMutate()
		infer.PhysicalToLogical(store.Keys())
		store.Commit()
		telemetry.Event("infer", map[string]any{"keys": store.Len()})
		status.SetText("Grid positions inferred")
	})
	editMenu := fyne.NewMenu("Edit", undoMenuItem, redoMenuItem,
		fyne.NewMenuItemSeparator(), deleteItem, inferItem)

	// View menu
	fitItem := fyne.NewMenuItem("Fit Content", func() {
		v.AutoZoom = true
		v.FitContent(store.Keys())
		canvasWidget.Refresh()
		updateStatus()
	})
	viewMenu := fyne.NewMenu("View", fitItem)

	w.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu))

	// Toolbar: tool and edit-op pickers plus the wiring counters.
	toolSelect := widget.NewSelect([]string{"Pan", "Select", "Wire", "Edit"}, func(s string) {
		switch s {
		case "Pan":
			ctrl.SetTool(gesture.ToolPan)
		case "Select":
			ctrl.SetTool(gesture.ToolSelect)
		case "Wire":
			ctrl.SetTool(gesture.ToolWire)
		case "Edit":
			ctrl.SetTool(gesture.ToolEdit)
		}
		canvasWidget.Refresh()
	})
	toolSelect.SetSelected("Select")

	opSelect := widget.NewSelect([]string{"Move", "Resize", "Rotate (center)", "Rotate (anchor)"}, func(s string) {
		switch s {
		case "Move":
			ctrl.Edit().SetOp(gesture.OpMove)
		case "Resize":
			ctrl.Edit().SetOp(gesture.OpResize)
		case "Rotate (center)":
			ctrl.Edit().SetOp(gesture.OpRotateCenter)
		case "Rotate (anchor)":
			ctrl.Edit().SetOp(gesture.OpRotateAnchor)
		}
	})
	opSelect.SetSelected("Move")

	wireRowEntry := widget.NewEntry()
	wireRowEntry.SetText("0")
	wireRowEntry.OnChanged = func(s string) {
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d", &n); err == nil && n >= 0 {
			wireRow = n
			wireCol = 0
		}
	}

	toolbar := container.NewHBox(
		widget.NewLabel("Tool:"), toolSelect,
		widget.NewLabel("Op:"), opSelect,
		widget.NewLabel("Wire row:"), wireRowEntry,
	)

	// Keyboard shortcuts
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { doUndo() })
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { doRedo() })
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { saveProject() })
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyDelete, fyne.KeyBackspace:
			if len(nav.Selected()) > 0 {
				canvasWidget.OnBeforeMutate()
				store.Remove(nav.Selected())
				nav.ClearSelection()
				store.Commit()
			}
		case fyne.KeyEscape:
			nav.ClearSelection()
			canvasWidget.Refresh()
			updateStatus()
		}
	})

	w.SetContent(container.NewBorder(toolbar, status, nil, nil, canvasWidget))

	w.SetOnClosed(func() {
		autosave.Cancel()
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
	})

	if strings.TrimSpace(projectDir) != "" {
		openProject(projectDir)
	}

	w.ShowAndRun()
	l.Info("UI closed")
	return nil
}

// LayoutCanvas renders the key collection through the view transform
// and routes pointer events into the gesture controller.
type LayoutCanvas struct {
	widget.BaseWidget

	store *session.KeyStore
	nav   *session.NavState
	view  *view.View
	ctrl  *gesture.Controller

	// OnBeforeMutate runs just before a mutating gesture starts, so the
	// shell can capture an undo snapshot of the pre-gesture state.
	OnBeforeMutate func()

	// Modifier state captured at the most recent press; fyne drag
	// events carry no modifiers.
	shift, alt bool
	dragging   bool
	lastDrag   fyne.Position
}

func NewLayoutCanvas(store *session.KeyStore, nav *session.NavState, v *view.View, ctrl *gesture.Controller) *LayoutCanvas {
	c := &LayoutCanvas{store: store, nav: nav, view: v, ctrl: ctrl}
	c.OnBeforeMutate = func() {}
	c.ExtendBaseWidget(c)
	return c
}

func (c *LayoutCanvas) pointerAt(pos fyne.Position) gesture.Pointer {
	p := gesture.Pointer{X: float64(pos.X), Y: float64(pos.Y), Shift: c.shift, Alt: c.alt}
	if c.ctrl.Tool() == gesture.ToolEdit {
		p.HandleKey = c.hitKeyAt(p.X, p.Y)
	}
	return p
}

// hitKeyAt returns the id of the topmost key under a client position,
// or "" when the press hit bare canvas.
func (c *LayoutCanvas) hitKeyAt(x, y float64) string {
	keys := c.store.Keys()
	virt := c.view.ScreenToVirtual(x, y)
	cp := c.view.VirtualToContent(virt, keys)
	for i := len(keys) - 1; i >= 0; i-- {
		if geom.PointInPolygon(geom.KeyPolygon(keys[i]), cp.X, cp.Y) {
			return keys[i].ID
		}
	}
	return ""
}

func (c *LayoutCanvas) MouseDown(e *desktop.MouseEvent) {
	c.shift = e.Modifier&fyne.KeyModifierShift != 0
	c.alt = e.Modifier&fyne.KeyModifierAlt != 0
	c.dragging = false
	c.lastDrag = e.Position
	if c.ctrl.Tool() != gesture.ToolPan {
		c.OnBeforeMutate()
	}
	c.ctrl.Down(c.pointerAt(e.Position))
	c.Refresh()
}

func (c *LayoutCanvas) MouseUp(e *desktop.MouseEvent) {
	pos := e.Position
	if c.dragging {
		pos = c.lastDrag
	}
	c.ctrl.Up(c.pointerAt(pos))
	c.dragging = false
	c.Refresh()
}

func (c *LayoutCanvas) Dragged(e *fyne.DragEvent) {
	c.dragging = true
	c.lastDrag = e.Position
	c.ctrl.Move(c.pointerAt(e.Position))
	c.Refresh()
}

// DragEnd is a no-op; the matching MouseUp completes the gesture.
func (c *LayoutCanvas) DragEnd() {}

// Scrolled zooms about the cursor, keeping the virtual point under it
// fixed.
func (c *LayoutCanvas) Scrolled(e *fyne.ScrollEvent) {
	factor := 1.1
	if e.Scrolled.DY < 0 {
		factor = 1 / 1.1
	}
	x, y := float64(e.Position.X), float64(e.Position.Y)
	before := c.view.ScreenToVirtual(x, y)
	if !c.view.SetScale(c.view.T.S * factor) {
		return
	}
	after := c.view.ScreenToVirtual(x, y)
	c.view.T.X += after.X - before.X
	c.view.T.Y += after.Y - before.Y
	c.Refresh()
}

func (c *LayoutCanvas) MinSize() fyne.Size { return fyne.NewSize(320, 240) }

func (c *LayoutCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := canvas.NewRaster(c.draw)
	return &layoutCanvasRenderer{lc: c, raster: r}
}

type layoutCanvasRenderer struct {
	lc     *LayoutCanvas
	raster *canvas.Raster
}

func (r *layoutCanvasRenderer) Layout(size fyne.Size) {
	// View math runs in widget-local points; the raster generator
	// rescales to device pixels when drawing.
	r.lc.view.SetContainer(0, 0, float64(size.Width), float64(size.Height))
	r.lc.view.FitContent(r.lc.store.Keys())
	r.raster.Resize(size)
}

func (r *layoutCanvasRenderer) MinSize() fyne.Size           { return r.lc.MinSize() }
func (r *layoutCanvasRenderer) Objects() []fyne.CanvasObject { return []fyne.CanvasObject{r.raster} }
func (r *layoutCanvasRenderer) Refresh()                     { canvas.Refresh(r.raster) }
func (r *layoutCanvasRenderer) Destroy()                     {}

var (
	canvasBG      = color.NRGBA{R: 250, G: 250, B: 250, A: 255}
	keyFill       = color.NRGBA{R: 225, G: 228, B: 232, A: 255}
	keyFillAlt    = color.NRGBA{R: 236, G: 230, B: 218, A: 255}
	keyFillSel    = color.NRGBA{R: 176, G: 208, B: 245, A: 255}
	keyStroke     = color.NRGBA{R: 70, G: 70, B: 70, A: 255}
	overlayStroke = color.NRGBA{R: 50, G: 110, B: 200, A: 255}
)

// draw rasterizes the key polygons and the selection overlay. pw/ph
// are device pixels; screen coordinates are rescaled by the pixel
// ratio before plotting.
func (c *LayoutCanvas) draw(pw, ph int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, pw, ph))
	bg := img.Bounds()
	for y := bg.Min.Y; y < bg.Max.Y; y++ {
		for x := bg.Min.X; x < bg.Max.X; x++ {
			img.SetRGBA(x, y, color.RGBA{canvasBG.R, canvasBG.G, canvasBG.B, 255})
		}
	}

	keys := c.store.Keys()
	if len(keys) == 0 {
		return img
	}
	ratio := 1.0
	if c.view.Width > 0 {
		ratio = float64(pw) / c.view.Width
	}
	off := view.ContentOffset(keys)
	for _, k := range keys {
		poly := geom.KeyPolygon(k)
		pts := make([]geom.Pt, len(poly))
		for i, p := range poly {
			sx, sy := c.view.VirtualToScreen(geom.Pt{X: p.X - off.X, Y: p.Y - off.Y})
			pts[i] = geom.Pt{X: sx * ratio, Y: sy * ratio}
		}
		fill := keyFill
		if k.Part%2 == 1 {
			fill = keyFillAlt
		}
		if c.nav.IsSelected(k.ID) {
			fill = keyFillSel
		}
		fillPoly(img, pts, fill)
		strokePoly(img, pts, keyStroke)
	}

	if start, end, ok := c.ctrl.Select().Overlay(); ok {
		sx1, sy1 := c.view.VirtualToScreen(start)
		sx2, sy2 := c.view.VirtualToScreen(end)
		box := []geom.Pt{
			{X: sx1 * ratio, Y: sy1 * ratio},
			{X: sx2 * ratio, Y: sy1 * ratio},
			{X: sx2 * ratio, Y: sy2 * ratio},
			{X: sx1 * ratio, Y: sy2 * ratio},
		}
		strokePoly(img, box, overlayStroke)
	}
	return img
}

// fillPoly paints a convex polygon by testing pixel centers inside its
// bounding box.
func fillPoly(img *image.RGBA, pts []geom.Pt, col color.NRGBA) {
	b := geom.PolygonBounds(pts)
	x0, y0 := int(b.MinX), int(b.MinY)
	x1, y1 := int(b.MaxX)+1, int(b.MaxY)+1
	r := img.Bounds()
	if x0 < r.Min.X {
		x0 = r.Min.X
	}
	if y0 < r.Min.Y {
		y0 = r.Min.Y
	}
	if x1 > r.Max.X {
		x1 = r.Max.X
	}
	if y1 > r.Max.Y {
		y1 = r.Max.Y
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if geom.PointInPolygon(pts, float64(x)+0.5, float64(y)+0.5) {
				img.SetRGBA(x, y, color.RGBA{col.R, col.G, col.B, 255})
			}
		}
	}
}

func strokePoly(img *image.RGBA, pts []geom.Pt, col color.NRGBA) {
	for i := range pts {
		j := (i + 1) % len(pts)
		plotLine(img, pts[i], pts[j], col)
	}
}

func plotLine(img *image.RGBA, a, b geom.Pt, col color.NRGBA) {
	dx, dy := b.X-a.X, b.Y-a.Y
	steps := int(maxAbs(dx, dy)) + 1
	r := img.Bounds()
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x, y := int(a.X+dx*t), int(a.Y+dy*t)
		if x >= r.Min.X && x < r.Max.X && y >= r.Min.Y && y < r.Max.Y {
			img.SetRGBA(x, y, color.RGBA{col.R, col.G, col.B, 255})
		}
	}
}

func maxAbs(a, b float64) float64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	if a > b {
		return a
	}
	return b
}

// Recent project persistence helpers
const recentPrefsKey = "recent.projects"
const recentMax = 10

func loadRecentProjects(p fyne.Preferences) []string {
	raw := p.StringWithFallback(recentPrefsKey, "")
	var items []string
	if strings.TrimSpace(raw) != "" {
		var tmp []string
		if err := json.Unmarshal([]byte(raw), &tmp); err == nil {
			items = tmp
		}
	}
	if items == nil {
		items = []string{}
	}
	// Filter out non-existing paths
	out := make([]string, 0, len(items))
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := os.Stat(s); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func saveRecentProjects(p fyne.Preferences, items []string) {
	if len(items) > recentMax {
		items = items[:recentMax]
	}
	b, _ := json.Marshal(items)
	p.SetString(recentPrefsKey, string(b))
}

func addRecentProject(p fyne.Preferences, path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	abs, _ := filepath.Abs(path)
	rec := loadRecentProjects(p)
	out := make([]string, 0, 1+len(rec))
	out = append(out, abs)
	for _, s := range rec {
		// de-dup (case-insensitive on Windows)
		if strings.EqualFold(s, abs) {
			continue
		}
		out = append(out, s)
	}
	saveRecentProjects(p, out)
}
