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

package apierror_test

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/seescience/beamtime-server/internal/apierror"
	"github.com/stretchr/testify/assert"
)

func TestNewAPIError(t *testing.T) {
	details := "Some internal error details"
	apiErr := apierror.NewAPIError(apierror.ErrPersistence, "Something went wrong", details)

	assert.Equal(t, apierror.ErrPersistence, apiErr.Code)
	assert.Equal(t, "Something went wrong", apiErr.Message)
	assert.Equal(t, details, apiErr.Details)
	assert.Equal(t, "PERSISTENCE: Something went wrong", apiErr.Error())
}

func TestNewOpErrorUnwrapsCause(t *testing.T) {
	apiErr := apierror.NewOpError(apierror.ErrDataManagement, "create_experiment_tree", "Failed to create folder", os.ErrPermission)

	assert.Equal(t, "create_experiment_tree", apiErr.Op)
	assert.True(t, errors.Is(apiErr, os.ErrPermission))
	assert.Contains(t, apiErr.Error(), "permission denied")
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected apierror.ErrorCode
		found    bool
	}{
		{
			name:     "direct",
			err:      apierror.NewAPIError(apierror.ErrNotFound, "Experiment not found", nil),
			expected: apierror.ErrNotFound,
			found:    true,
		},
		{
			name:     "wrapped",
			err:      fmt.Errorf("processing item: %w", apierror.NewAPIError(apierror.ErrRegistry, "create failed", nil)),
			expected: apierror.ErrRegistry,
			found:    true,
		},
		{
			name:  "plain error",
			err:   errors.New("boom"),
			found: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := apierror.CodeOf(tt.err)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, code)
			if tt.found {
				assert.True(t, apierror.Is(tt.err, tt.expected))
			}
		})
	}
}
