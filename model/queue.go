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
	"strconv"
	"strings"
)

// QueueEntry is one row of pending work. It is returned by value from the
// datasource and never mutated by the processor.
type QueueEntry struct {
	ID              int64   `json:"id"`
	ExperimentID    int64   `json:"experiment_id"`
	ProposalID      int64   `json:"proposal_id"`
	CreateDOI       bool    `json:"create_doi"`
	DraftDOI        bool    `json:"draft_doi"`
	DataPath        *string `json:"data_path,omitempty"`
	PvlogPath       *string `json:"pvlog_path,omitempty"`
	Acknowledgments *string `json:"acknowledgments,omitempty"`
}

// HasDataPath reports whether a non-blank data path was supplied.
func (q QueueEntry) HasDataPath() bool {
	return q.DataPath != nil && strings.TrimSpace(*q.DataPath) != ""
}

// AcknowledgmentIDs parses the comma separated acknowledgment list.
// Blank and non-numeric tokens are skipped.
func (q QueueEntry) AcknowledgmentIDs() []int64 {
	if q.Acknowledgments == nil {
		return nil
	}
	return ParseIDList(*q.Acknowledgments)
}

// ParseIDList parses a comma separated list of integer ids.
func ParseIDList(raw string) []int64 {
	var ids []int64
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		id, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
