/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"keyforge/internal/domain"
)

// SQL statements for autosave snapshots.
// language=SQL
const insertSnapshotSQL = `INSERT INTO snapshots(part_id, ts, blob) VALUES(?,?,?);`

// language=SQL
const selectLatestSnapshotSQL = `SELECT blob, ts FROM snapshots WHERE part_id=? ORDER BY ts DESC, id DESC LIMIT 1;`

// language=SQL
const listSnapshotsSQL = `SELECT id, ts FROM snapshots WHERE part_id=? ORDER BY ts DESC, id DESC LIMIT ?;`

// language=SQL
const pruneOldSnapshotsSQL = `DELETE FROM snapshots WHERE part_id=? AND id NOT IN (
	SELECT id FROM snapshots WHERE part_id=? ORDER BY ts DESC, id DESC LIMIT ?
);`

// SnapshotInfo describes one stored autosave snapshot.
type SnapshotInfo struct {
	ID int64
	TS time.Time
}

// SaveSnapshot stores an autosave blob for the given part in the embedded index.
func SaveSnapshot(ctx context.Context, ph *ProjectHandle, part int, blob []byte) error {
	if ph == nil {
		return errors.New("nil ProjectHandle")
	}
	db, err := InitOrOpenIndex(ph.Root)
	if err != nil {
		return err
	}
	defer db.Close()
	ts := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := db.ExecContext(ctx, insertSnapshotSQL, part, ts, blob); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// GetLatestSnapshot returns the most recent autosave blob for the given part.
// It returns sql.ErrNoRows when the part has no snapshots.
func GetLatestSnapshot(ctx context.Context, ph *ProjectHandle, part int) ([]byte, time.Time, error) {
	if ph == nil {
		return nil, time.Time{}, errors.New("nil ProjectHandle")
	}
	db, err := InitOrOpenIndex(ph.Root)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer db.Close()
	var blob []byte
	var tsStr string
	if err := db.QueryRowContext(ctx, selectLatestSnapshotSQL, part).Scan(&blob, &tsStr); err != nil {
		return nil, time.Time{}, err
	}
	ts, perr := time.Parse(time.RFC3339Nano, tsStr)
	if perr != nil {
		return blob, time.Time{}, nil
	}
	return blob, ts, nil
}

// ListSnapshots returns up to limit snapshot descriptors for the given part, newest first.
func ListSnapshots(ctx context.Context, ph *ProjectHandle, part int, limit int) ([]SnapshotInfo, error) {
	if ph == nil {
		return nil, errors.New("nil ProjectHandle")
	}
	if limit <= 0 {
		limit = 50
	}
	db, err := InitOrOpenIndex(ph.Root)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	rows, err := db.QueryContext(ctx, listSnapshotsSQL, part, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()
	var out []SnapshotInfo
	for rows.Next() {
		var id int64
		var tsStr string
		if err := rows.Scan(&id, &tsStr); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		ts, _ := time.Parse(time.RFC3339Nano, tsStr)
		out = append(out, SnapshotInfo{ID: id, TS: ts})
	}
	return out, rows.Err()
}

// PruneOldSnapshots removes all but the newest keep snapshots for the given part.
func PruneOldSnapshots(ctx context.Context, ph *ProjectHandle, part int, keep int) error {
	if ph == nil {
		return errors.New("nil ProjectHandle")
	}
	if keep <= 0 {
		keep = 20
	}
	db, err := InitOrOpenIndex(ph.Root)
	if err != nil {
		return err
	}
	defer db.Close()
	if _, err := db.ExecContext(ctx, pruneOldSnapshotsSQL, part, part, keep); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

// AutosaveCrashSnapshot persists every part of the current project as autosave
// snapshots in one pass. It is called from the crash handler, so it must not
// panic and should do its best even when some parts fail.
func AutosaveCrashSnapshot(ctx context.Context, ph *ProjectHandle) error {
	if ph == nil {
		return errors.New("nil ProjectHandle")
	}
	parts := map[int][]domain.Key{}
	for _, k := range ph.Project.Keys {
		parts[k.Part] = append(parts[k.Part], k)
	}
	if len(parts) == 0 {
		parts[0] = nil
	}
	var firstErr error
	for part, keys := range parts {
		blob, err := json.Marshal(keys)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("marshal part %d: %w", part, err)
			}
			continue
		}
		if err := SaveSnapshot(ctx, ph, part, blob); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RestoreSnapshot decodes an autosave blob back into keys.
func RestoreSnapshot(blob []byte) ([]domain.Key, error) {
	var keys []domain.Key
	if err := json.Unmarshal(blob, &keys); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return keys, nil
}
