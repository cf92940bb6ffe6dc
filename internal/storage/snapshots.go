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
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"topodraw/internal/domain"
)

// language=SQL
// dialect=SQLite
const insertSnapshotSQL = `INSERT INTO design_snapshots(design_id, ts, body) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const listSnapshotsSQL = `SELECT id, ts, length(body) FROM design_snapshots WHERE design_id = ? ORDER BY id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const selectSnapshotSQL = `SELECT body FROM design_snapshots WHERE design_id = ? AND id = ?`

// language=SQL
// dialect=SQLite
const pruneOldSnapshotsSQL = `DELETE FROM design_snapshots WHERE design_id = ? AND id NOT IN (
	SELECT id FROM design_snapshots WHERE design_id = ? ORDER BY id DESC LIMIT ?
)`

// SnapshotInfo describes one saved version of a design.
type SnapshotInfo struct {
	ID   int64     `json:"id"`
	TS   time.Time `json:"ts"`
	Size int       `json:"size"`
}

func (l *Library) recordSnapshot(ctx context.Context, tx *sql.Tx, id string, ts time.Time, body string) error {
	if _, err := tx.ExecContext(ctx, insertSnapshotSQL, id, ts.Format(tsLayout), []byte(body)); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	if l.keep <= 0 {
		return nil
	}
	if _, err := tx.ExecContext(ctx, pruneOldSnapshotsSQL, id, id, l.keep); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

// Snapshots returns up to limit saved versions of a design, newest first.
// A non-positive limit returns all of them.
func (l *Library) Snapshots(ctx context.Context, id string, limit int) ([]SnapshotInfo, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := l.db.QueryContext(ctx, listSnapshotsSQL, id, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []SnapshotInfo
	for rows.Next() {
		var s SnapshotInfo
		var ts string
		if err := rows.Scan(&s.ID, &ts, &s.Size); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		s.TS = parseTS(ts)
		out = append(out, s)
	}
	return out, rows.Err()
}

// Restore replaces the current design content with a saved snapshot. The
// title comes back with the content; the restore itself is saved as a new
// version so it can be undone through history as well.
func (l *Library) Restore(ctx context.Context, id string, snapshotID int64) (domain.Design, error) {
	var blob []byte
	err := l.db.QueryRowContext(ctx, selectSnapshotSQL, id, snapshotID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Design{}, fmt.Errorf("snapshot %d of %s: %w", snapshotID, id, ErrNotFound)
	}
	if err != nil {
		return domain.Design{}, fmt.Errorf("load snapshot: %w", err)
	}
	var d domain.Design
	if err := json.Unmarshal(blob, &d); err != nil {
		return domain.Design{}, fmt.Errorf("decode snapshot: %w", err)
	}
	d.ID = id
	out, err := l.Save(ctx, d)
	if err != nil {
		return domain.Design{}, err
	}
	l.log.Info("design restored", slog.String("design", id), slog.Int64("snapshot", snapshotID))
	return out, nil
}
