/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"os"
	"path/filepath"
	"testing"

	"keyforge/internal/domain"
)

func testProject() domain.Project {
	return domain.Project{
		Name:  "Sixty",
		Parts: []domain.Part{{Index: 0, Name: "main"}},
		Keys: []domain.Key{
			{ID: "k1", X: 0, Y: 0, W: 1, H: 1, Row: 0, Col: 0},
			{ID: "k2", X: 1, Y: 0, W: 1.5, H: 1, Row: 0, Col: 1},
			{ID: "k3", X: 0, Y: 1, W: 1, H: 1, Row: 1, Col: 0},
		},
	}
}

func TestInitAndOpenRoundTrip(t *testing.T) {
	root := t.TempDir()
	ph, err := InitProject(root, testProject())
	if err != nil {
		t.Fatalf("InitProject error: %v", err)
	}
	if ph.ManifestPath != filepath.Join(root, ManifestFileName) {
		t.Fatalf("unexpected manifest path %s", ph.ManifestPath)
	}
	for _, d := range standardSubDirs {
		if st, err := os.Stat(filepath.Join(root, d)); err != nil || !st.IsDir() {
			t.Fatalf("missing subdir %s: %v", d, err)
		}
	}

	got, err := Open(root)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if got.Project.Name != "Sixty" {
		t.Fatalf("name round trip failed: %q", got.Project.Name)
	}
	if len(got.Project.Keys) != 3 {
		t.Fatalf("expected 3 keys, got %d", len(got.Project.Keys))
	}
	if got.Project.Keys[1].W != 1.5 {
		t.Fatalf("key width lost: %v", got.Project.Keys[1].W)
	}
}

func TestSaveNormalizesKeys(t *testing.T) {
	root := t.TempDir()
	proj := domain.Project{
		Name: "Shifted",
		Keys: []domain.Key{
			{ID: "b", X: 3, Y: 2, W: 1, H: 1, Row: 0, Col: 1},
			{ID: "a", X: 2, Y: 2, W: 1, H: 1, Row: 0, Col: 0},
		},
	}
	if _, err := InitProject(root, proj); err != nil {
		t.Fatalf("InitProject error: %v", err)
	}
	got, err := Open(root)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	ks := got.Project.Keys
	if ks[0].ID != "a" || ks[0].X != 0 || ks[0].Y != 0 {
		t.Fatalf("expected normalized first key, got %+v", ks[0])
	}
	if ks[1].X != 1 {
		t.Fatalf("expected shifted second key at x=1, got %v", ks[1].X)
	}
}

func TestSaveCreatesTimestampedBackup(t *testing.T) {
	root := t.TempDir()
	ph, err := InitProject(root, testProject())
	if err != nil {
		t.Fatalf("InitProject error: %v", err)
	}
	// Second save should back up the first manifest
	ph.Project.Name = "Sixty v2"
	if err := Save(ph); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	ents, err := os.ReadDir(filepath.Join(root, BackupsDirName))
	if err != nil {
		t.Fatalf("read backups dir: %v", err)
	}
	if len(ents) == 0 {
		t.Fatalf("expected at least one backup file")
	}
}

func TestOpenFallsBackToBackupOnCorruptManifest(t *testing.T) {
	root := t.TempDir()
	ph, err := InitProject(root, testProject())
	if err != nil {
		t.Fatalf("InitProject error: %v", err)
	}
	if err := Save(ph); err != nil { // produce a backup
		t.Fatalf("Save error: %v", err)
	}
	if err := os.WriteFile(ph.ManifestPath, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt manifest: %v", err)
	}
	got, err := Open(root)
	if err != nil {
		t.Fatalf("Open should fall back to backup, got error: %v", err)
	}
	if got.Project.Name != "Sixty" {
		t.Fatalf("expected backup content, got name %q", got.Project.Name)
	}
}

func TestOpenFailsWithoutManifestOrBackup(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Fatalf("expected error opening empty directory")
	}
}

func TestSaveAsScaffoldsNewRoot(t *testing.T) {
	root := t.TempDir()
	ph, err := InitProject(root, testProject())
	if err != nil {
		t.Fatalf("InitProject error: %v", err)
	}
	newRoot := filepath.Join(t.TempDir(), "copy")
	if err := SaveAs(ph, newRoot); err != nil {
		t.Fatalf("SaveAs error: %v", err)
	}
	if ph.Root != newRoot {
		t.Fatalf("handle root not updated")
	}
	if _, err := os.Stat(filepath.Join(newRoot, ManifestFileName)); err != nil {
		t.Fatalf("manifest missing in new root: %v", err)
	}
}
