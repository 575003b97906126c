/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"keyforge/internal/crash"
	"keyforge/internal/domain"
	"keyforge/internal/export"
	"keyforge/internal/format"
	applog "keyforge/internal/log"
	"keyforge/internal/storage"
	"keyforge/internal/telemetry"
	"keyforge/internal/ui"
	"keyforge/internal/version"
)

func usage() {
	fmt.Println("KeyForge — keyboard layout editor")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  keyforge version|-v|--version              Show version")
	fmt.Println("  keyforge init <dir> <name>                 Create a new project at <dir> with name <name>")
	fmt.Println("  keyforge open <dir>                        Open project at <dir> and print summary")
	fmt.Println("  keyforge save <dir>                        Save project at <dir> (creates backup)")
	fmt.Println("  keyforge import <dir> <file>               Import a layout file (ZMK DTS, layout JSON or KLE) into the project")
	fmt.Println("  keyforge convert <in> <out.json|out.kle>   Convert a layout file between formats")
	fmt.Println("  keyforge export <dir> <out.pdf|png|svg>    Export the project's plate or preview")
	fmt.Println("  keyforge ui [<dir>]                        Launch desktop UI (build with -tags fyne for full UI)")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var ph *storage.ProjectHandle
	defer func() { crash.Recover(ph) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("KeyForge — keyboard layout editor")
			fmt.Println(version.String())
			return
		case "init":
			if len(args) < 4 {
				fmt.Println("init requires <dir> and <name>")
				usage()
				os.Exit(2)
			}
			dir := args[2]
			name := args[3]
			abs, _ := filepath.Abs(dir)
			l.Info("init project", slog.String("root", abs), slog.String("name", name))
			h, err := storage.InitProject(abs, domain.Project{Name: name})
			if err != nil {
				l.Error("init failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ph = h
			fmt.Println("Created project at", abs)
			return
		case "open":
			if len(args) < 3 {
				fmt.Println("open requires <dir>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			l.Info("open project", slog.String("root", abs))
			h, err := storage.Open(abs)
			if err != nil {
				l.Error("open failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ph = h
			fmt.Printf("Opened project: %s\n", h.Project.Name)
			fmt.Printf("Keys: %d\n", len(h.Project.Keys))
			fmt.Printf("Parts: %d\n", len(h.Project.Parts))
			fmt.Println("Root:", h.Root)
			return
		case "save":
			if len(args) < 3 {
				fmt.Println("save requires <dir>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			l.Info("save project", slog.String("root", abs))
			h, err := storage.Open(abs)
			if err != nil {
				l.Error("open before save failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ph = h
			if err := storage.Save(h); err != nil {
				l.Error("save failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			if err := storage.UpdateIndex(context.Background(), h.Root, h.Project); err != nil {
				l.Warn("index update failed", slog.Any("err", err))
			}
			fmt.Println("Saved project and created a backup of previous manifest (if any).")
			return
		case "import":
			if len(args) < 4 {
				fmt.Println("import requires <dir> and <file>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			h, err := storage.Open(abs)
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ph = h
			keys, detected, err := parseFile(args[3])
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			h.Project.Keys = keys
			if err := storage.Save(h); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			if err := storage.UpdateIndex(context.Background(), h.Root, h.Project); err != nil {
				l.Warn("index update failed", slog.Any("err", err))
			}
			telemetry.Event("import", map[string]any{"format": detected, "keys": len(keys)})
			fmt.Printf("Imported %d keys (%s) into %s\n", len(keys), detected, abs)
			return
		case "convert":
			if len(args) < 4 {
				fmt.Println("convert requires <in> and <out>")
				usage()
				os.Exit(2)
			}
			if err := convertFile(args[2], args[3]); err != nil {
				l.Error("convert failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Wrote", args[3])
			return
		case "export":
			if len(args) < 4 {
				fmt.Println("export requires <dir> and <out>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			h, err := storage.Open(abs)
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			ph = h
			if err := exportFile(h, args[3]); err != nil {
				l.Error("export failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			telemetry.Event("export", map[string]any{"format": strings.ToLower(filepath.Ext(args[3]))})
			fmt.Println("Exported", args[3])
			return
		case "ui":
			var dir string
			if len(args) >= 3 {
				dir = args[2]
			}
			if err := ui.Run(dir); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}

// parseFile reads a layout file and detects its format.
func parseFile(path string) ([]domain.Key, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	keys, detected, err := format.Parse(string(data))
	if err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", path, err)
	}
	return keys, detected, nil
}

func convertFile(inPath, outPath string) error {
	keys, _, err := parseFile(inPath)
	if err != nil {
		return err
	}
	var text string
	switch strings.ToLower(filepath.Ext(outPath)) {
	case ".kle":
		text, err = format.ToKLE(keys)
	case ".json":
		text, err = format.ToLayoutJSON(keys)
	default:
		return fmt.Errorf("unsupported output format %q (want .json or .kle)", filepath.Ext(outPath))
	}
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, []byte(text), 0o644)
}

func exportFile(ph *storage.ProjectHandle, outPath string) error {
	switch strings.ToLower(filepath.Ext(outPath)) {
	case ".pdf":
		return export.ExportPlatePDF(ph, outPath, export.PDFOptions{LabelKeys: true, Part: -1})
	case ".png":
		return export.ExportPreviewPNG(ph, outPath, export.PNGOptions{LabelKeys: true, Part: -1})
	case ".svg":
		return export.ExportPlateSVG(ph, outPath, export.SVGOptions{Part: -1})
	default:
		return fmt.Errorf("unsupported export format %q (want .pdf, .png or .svg)", filepath.Ext(outPath))
	}
}
