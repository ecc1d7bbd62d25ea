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

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seescience/beamtime-server/config"
)

func TestMaskSecrets(t *testing.T) {
	cnf := config.Configuration{
		DataCite:     config.DataCiteConfig{Username: "SEES.TEST", Password: "secret"},
		OtelExporter: config.OtelExporter{OtelExporterOtlpHeaders: "api-key=12345"},
	}

	masked := maskSecrets(cnf)
	assert.Equal(t, maskedSecret, masked.DataCite.Password)
	assert.Equal(t, maskedSecret, masked.OtelExporter.OtelExporterOtlpHeaders)
	assert.Equal(t, "SEES.TEST", masked.DataCite.Username)
	assert.Equal(t, "secret", cnf.DataCite.Password)

	assert.Empty(t, maskSecrets(config.Configuration{}).DataCite.Password)
}

func TestNewCLIRegistersCommands(t *testing.T) {
	cli := NewCLI()

	for _, path := range [][]string{
		{"queue"},
		{"queue", "status"},
		{"batch"},
		{"doi", "publish"},
		{"doi", "delete"},
		{"doi", "status"},
		{"migrate", "up"},
		{"migrate", "down"},
		{"config"},
	} {
		cmd, _, err := cli.cmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	for _, flag := range []string{"config", "dry-run"} {
		assert.NotNil(t, cli.cmd.PersistentFlags().Lookup(flag), flag)
	}

	queue, _, err := cli.cmd.Find([]string{"queue"})
	require.NoError(t, err)
	interval := queue.Flags().Lookup("interval")
	require.NotNil(t, interval)
	assert.Equal(t, "300", interval.DefValue)
}
