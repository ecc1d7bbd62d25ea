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

package model

import (
	"fmt"
	"time"
)

type Experiment struct {
	ID                 int64          `json:"id"`
	Title              *string        `json:"title,omitempty"`
	Description        *string        `json:"description,omitempty"`
	Folder             *string        `json:"folder,omitempty"`
	SeesDOI            *string        `json:"sees_doi,omitempty"`
	EsafPDFFile        *string        `json:"esaf_pdf_file,omitempty"`
	StartDate          *time.Time     `json:"start_date,omitempty"`
	EndDate            *time.Time     `json:"end_date,omitempty"`
	RunID              *int64         `json:"run_id,omitempty"`
	SpokespersonID     *int64         `json:"spokesperson_id,omitempty"`
	ProcessStatusID    *ProcessStatus `json:"process_status_id,omitempty"`
	OldProcessStatusID *ProcessStatus `json:"old_process_status_id,omitempty"`
}

// DisplayTitle returns the experiment title or a generated fallback.
func (e Experiment) DisplayTitle() string {
	if e.Title != nil && *e.Title != "" {
		return *e.Title
	}
	return fmt.Sprintf("Beamtime Data - Experiment %d", e.ID)
}

// ExperimentSnapshot is an experiment with its weak references resolved.
type ExperimentSnapshot struct {
	Experiment
	Spokesperson *Person `json:"spokesperson,omitempty"`
	Run          *Run    `json:"run,omitempty"`
}

type Person struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	ORCID     *string `json:"orcid,omitempty"`
}

type Run struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ExperimentUpdate is a partial update. Only non-nil fields are written.
type ExperimentUpdate struct {
	Folder          *string
	SeesDOI         *string
	EsafPDFFile     *string
	ProcessStatusID *ProcessStatus
}

// IsEmpty reports whether the update carries no fields.
func (u ExperimentUpdate) IsEmpty() bool {
	return u.Folder == nil && u.SeesDOI == nil && u.EsafPDFFile == nil && u.ProcessStatusID == nil
}

// StatusUpdate builds an update that only sets the process status.
func StatusUpdate(status ProcessStatus) ExperimentUpdate {
	return ExperimentUpdate{ProcessStatusID: &status}
}
