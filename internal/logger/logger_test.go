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

package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seescience/beamtime-server/config"
)

func TestNewWritesToRotatingFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "beamtime_server.log")

	log, err := New(config.LogConfig{File: logFile, Level: "debug", Format: "json", MaxSizeMB: 1, MaxBackups: 1})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("queue_id", 7).Info("processing queue item")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"queue_id":7`)
	assert.Contains(t, string(data), "processing queue item")
}

func TestNewFallsBackToInfoLevel(t *testing.T) {
	log, err := New(config.LogConfig{Level: "chatty"})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}
