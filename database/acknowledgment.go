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

	"github.com/lib/pq"

	"github.com/seescience/beamtime-server/model"
)

// GetAcknowledgments resolves a comma separated id list. Blank and invalid
// tokens are ignored; unknown ids are silently missing from the result.
func (d Datasource) GetAcknowledgments(ctx context.Context, ids string) ([]model.Acknowledgment, error) {
	parsed := model.ParseIDList(ids)
	if len(parsed) == 0 {
		return nil, nil
	}

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT id, COALESCE(title, ''), COALESCE(text, '')
		FROM acknowledgment
		WHERE id = ANY($1)
		ORDER BY id
	`, pq.Array(parsed))
	if err != nil {
		return nil, wrapError("get_acknowledgments", "failed to fetch acknowledgments", err)
	}
	defer rows.Close()

	var acks []model.Acknowledgment
	for rows.Next() {
		var ack model.Acknowledgment
		if err := rows.Scan(&ack.ID, &ack.Title, &ack.Text); err != nil {
			return nil, wrapError("get_acknowledgments", "failed to scan acknowledgment", err)
		}
		acks = append(acks, ack)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("get_acknowledgments", "error occurred while iterating over acknowledgments", err)
	}
	return acks, nil
}
