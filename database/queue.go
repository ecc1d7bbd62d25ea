/*
Copyright 2025 The Beamtime Server Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/seescience/beamtime-server/model"
)

// GetNextQueueEntry returns the entry with the smallest id, or nil when the
// queue is empty.
func (d Datasource) GetNextQueueEntry(ctx context.Context) (*model.QueueEntry, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT id, experiment_id, proposal_id, create_doi, draft_doi, data_path, pvlog_path, acknowledgments
		FROM queue
		ORDER BY id ASC
		LIMIT 1
	`)

	entry := &model.QueueEntry{}
	err := row.Scan(
		&entry.ID, &entry.ExperimentID, &entry.ProposalID, &entry.CreateDOI, &entry.DraftDOI,
		&entry.DataPath, &entry.PvlogPath, &entry.Acknowledgments,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError("get_next_queue_entry", "failed to fetch next queue entry", err)
	}
	return entry, nil
}

// DeleteQueueEntry removes the entry and reports whether it existed.
func (d Datasource) DeleteQueueEntry(ctx context.Context, id int64) (bool, error) {
	result, err := d.Conn.ExecContext(ctx, `DELETE FROM queue WHERE id = $1`, id)
	if err != nil {
		return false, wrapError("delete_queue_entry", "failed to delete queue entry", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, wrapError("delete_queue_entry", "failed to read affected rows", err)
	}
	return affected > 0, nil
}

func (d Datasource) CountQueueEntries(ctx context.Context) (int, error) {
	var count int
	if err := d.Conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM queue`).Scan(&count); err != nil {
		return 0, wrapError("count_queue_entries", "failed to count queue entries", err)
	}
	return count, nil
}
