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

import "fmt"

// ProcessStatus mirrors the process_status lookup table.
type ProcessStatus int

const (
	StatusNew       ProcessStatus = 1
	StatusPending   ProcessStatus = 2
	StatusModified  ProcessStatus = 3
	StatusProcessed ProcessStatus = 4
	StatusLocked    ProcessStatus = 5
	StatusError     ProcessStatus = 6
)

func (s ProcessStatus) String() string {
	switch s {
	case StatusNew:
		return "NEW"
	case StatusPending:
		return "PENDING"
	case StatusModified:
		return "MODIFIED"
	case StatusProcessed:
		return "PROCESSED"
	case StatusLocked:
		return "LOCKED"
	case StatusError:
		return "ERROR"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// FinalStatus decides the status an experiment gets after a successful
// processing attempt. Only experiments that were NEW before entering the
// queue become PROCESSED; everything else, including an unknown prior
// status, becomes MODIFIED.
func FinalStatus(old *ProcessStatus) ProcessStatus {
	if old != nil && *old == StatusNew {
		return StatusProcessed
	}
	return StatusModified
}
