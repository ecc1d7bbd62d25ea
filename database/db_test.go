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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seescience/beamtime-server/config"
)

func resetConnection(t *testing.T) {
	t.Helper()
	reset := func() {
		instance = nil
		instanceErr = nil
		once = sync.Once{}
	}
	reset()
	t.Cleanup(reset)
}

func TestGetDBConnection_RemembersConnectFailure(t *testing.T) {
	resetConnection(t)

	cnf := &config.Configuration{
		DataSource: config.DataSourceConfig{
			Dns:               "postgres://beamtime@127.0.0.1:1/beamtime?sslmode=disable&connect_timeout=1",
			MaxOpenConns:      1,
			MaxIdleConns:      1,
			ConnectTimeoutSec: 1,
		},
	}

	first, err := GetDBConnection(cnf)
	require.Error(t, err)
	assert.Nil(t, first)

	second, err := GetDBConnection(cnf)
	require.Error(t, err)
	assert.Nil(t, second)

	ds, err := NewDataSource(cnf)
	assert.Error(t, err)
	assert.Nil(t, ds)
}
