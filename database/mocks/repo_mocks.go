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
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/seescience/beamtime-server/model"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Queue methods

func (m *MockDataSource) GetNextQueueEntry(ctx context.Context) (*model.QueueEntry, error) {
	args := m.Called(ctx)
	entry, _ := args.Get(0).(*model.QueueEntry)
	return entry, args.Error(1)
}

func (m *MockDataSource) DeleteQueueEntry(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataSource) CountQueueEntries(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// Experiment methods

func (m *MockDataSource) UpdateExperiment(ctx context.Context, id int64, update model.ExperimentUpdate) (bool, error) {
	args := m.Called(ctx, id, update)
	return args.Bool(0), args.Error(1)
}

func (m *MockDataSource) GetExperimentSnapshot(ctx context.Context, id int64) (*model.ExperimentSnapshot, error) {
	args := m.Called(ctx, id)
	snapshot, _ := args.Get(0).(*model.ExperimentSnapshot)
	return snapshot, args.Error(1)
}

func (m *MockDataSource) GetOldProcessStatus(ctx context.Context, experimentID int64) (*model.ProcessStatus, error) {
	args := m.Called(ctx, experimentID)
	status, _ := args.Get(0).(*model.ProcessStatus)
	return status, args.Error(1)
}

func (m *MockDataSource) GetRunName(ctx context.Context, experimentID int64) (*string, error) {
	args := m.Called(ctx, experimentID)
	name, _ := args.Get(0).(*string)
	return name, args.Error(1)
}

// Acknowledgment methods

func (m *MockDataSource) GetAcknowledgments(ctx context.Context, ids string) ([]model.Acknowledgment, error) {
	args := m.Called(ctx, ids)
	acks, _ := args.Get(0).([]model.Acknowledgment)
	return acks, args.Error(1)
}

// Info methods

func (m *MockDataSource) GetInfoValue(ctx context.Context, key string) (*string, error) {
	args := m.Called(ctx, key)
	value, _ := args.Get(0).(*string)
	return value, args.Error(1)
}

func (m *MockDataSource) GetBasePath(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockDataSource) GetEsafSourceFolder(ctx context.Context) (*string, error) {
	args := m.Called(ctx)
	value, _ := args.Get(0).(*string)
	return value, args.Error(1)
}
