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
	"fmt"
	"strings"

	"github.com/seescience/beamtime-server/model"
)

// UpdateExperiment writes the non-nil fields of update. An empty update is a
// no-op that reports success without touching the database.
func (d Datasource) UpdateExperiment(ctx context.Context, id int64, update model.ExperimentUpdate) (bool, error) {
	if update.IsEmpty() {
		return true, nil
	}

	var sets []string
	var args []interface{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Folder != nil {
		add("folder", *update.Folder)
	}
	if update.SeesDOI != nil {
		add("sees_doi", *update.SeesDOI)
	}
	if update.EsafPDFFile != nil {
		add("esaf_pdf_file", *update.EsafPDFFile)
	}
	if update.ProcessStatusID != nil {
		add("process_status_id", int(*update.ProcessStatusID))
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE experiment SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	result, err := d.Conn.ExecContext(ctx, query, args...)
	if err != nil {
		return false, wrapError("update_experiment", fmt.Sprintf("failed to update experiment %d", id), err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, wrapError("update_experiment", "failed to read affected rows", err)
	}
	return affected > 0, nil
}

// GetExperimentSnapshot loads the experiment with its spokesperson and run.
func (d Datasource) GetExperimentSnapshot(ctx context.Context, id int64) (*model.ExperimentSnapshot, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT e.id, e.title, e.description, e.folder, e.sees_doi, e.esaf_pdf_file,
		       e.start_date, e.end_date, e.run_id, e.spokesperson_id, e.process_status_id, e.old_process_status_id,
		       p.id, p.first_name, p.last_name, p.email, p.orcid,
		       r.id, r.name
		FROM experiment e
		LEFT JOIN person p ON p.id = e.spokesperson_id
		LEFT JOIN run r ON r.id = e.run_id
		WHERE e.id = $1
	`, id)

	snapshot := &model.ExperimentSnapshot{}
	e := &snapshot.Experiment

	var personID, runID *int64
	var firstName, lastName, email, orcid, runName *string

	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Folder, &e.SeesDOI, &e.EsafPDFFile,
		&e.StartDate, &e.EndDate, &e.RunID, &e.SpokespersonID, &e.ProcessStatusID, &e.OldProcessStatusID,
		&personID, &firstName, &lastName, &email, &orcid,
		&runID, &runName,
	)
	if err != nil {
		return nil, wrapError("get_experiment_snapshot", fmt.Sprintf("experiment with ID '%d' not found", id), err)
	}

	if personID != nil {
		snapshot.Spokesperson = &model.Person{
			ID:        *personID,
			FirstName: deref(firstName),
			LastName:  deref(lastName),
			Email:     deref(email),
			ORCID:     orcid,
		}
	}
	if runID != nil {
		snapshot.Run = &model.Run{ID: *runID, Name: deref(runName)}
	}
	return snapshot, nil
}

// GetOldProcessStatus returns the status recorded before the experiment was
// queued, or nil when none was recorded.
func (d Datasource) GetOldProcessStatus(ctx context.Context, experimentID int64) (*model.ProcessStatus, error) {
	var status *model.ProcessStatus
	err := d.Conn.QueryRowContext(ctx, `SELECT old_process_status_id FROM experiment WHERE id = $1`, experimentID).Scan(&status)
	if err != nil {
		return nil, wrapError("get_old_process_status", fmt.Sprintf("experiment with ID '%d' not found", experimentID), err)
	}
	return status, nil
}

// GetRunName returns the name of the run the experiment belongs to, or nil
// when it has none.
func (d Datasource) GetRunName(ctx context.Context, experimentID int64) (*string, error) {
	var name *string
	err := d.Conn.QueryRowContext(ctx, `
		SELECT r.name
		FROM experiment e
		JOIN run r ON r.id = e.run_id
		WHERE e.id = $1
	`, experimentID).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError("get_run_name", "failed to fetch run name", err)
	}
	return name, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
