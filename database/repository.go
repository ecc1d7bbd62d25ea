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

	"github.com/seescience/beamtime-server/model"
)

// IDataSource defines the interface for data source operations, grouping related functionalities.
type IDataSource interface {
	queue          // Interface for queue-related operations
	experiment     // Interface for experiment-related operations
	acknowledgment // Interface for acknowledgment-related operations
	info           // Interface for system info lookups
}

// queue defines methods for handling the processing queue.
type queue interface {
	GetNextQueueEntry(ctx context.Context) (*model.QueueEntry, error)  // Retrieves the oldest entry, nil when empty
	DeleteQueueEntry(ctx context.Context, id int64) (bool, error)       // Removes an entry, reports whether a row matched
	CountQueueEntries(ctx context.Context) (int, error)                 // Counts pending entries
}

// experiment defines methods for reading and updating experiments.
type experiment interface {
	UpdateExperiment(ctx context.Context, id int64, update model.ExperimentUpdate) (bool, error)  // Applies a partial update
	GetExperimentSnapshot(ctx context.Context, id int64) (*model.ExperimentSnapshot, error)        // Retrieves an experiment with spokesperson and run
	GetOldProcessStatus(ctx context.Context, experimentID int64) (*model.ProcessStatus, error)     // Retrieves the status before queueing
	GetRunName(ctx context.Context, experimentID int64) (*string, error)                           // Retrieves the name of the experiment's run
}

// acknowledgment defines methods for handling acknowledgments.
type acknowledgment interface {
	GetAcknowledgments(ctx context.Context, ids string) ([]model.Acknowledgment, error) // Retrieves acknowledgments from a comma separated id list
}

// info defines methods for reading the info key/value table.
type info interface {
	GetInfoValue(ctx context.Context, key string) (*string, error) // Retrieves a value by key
	GetBasePath(ctx context.Context) (string, error)               // Retrieves the storage base path
	GetEsafSourceFolder(ctx context.Context) (*string, error)      // Retrieves the ESAF source folder
}
