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

package config

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"
)

func validConfiguration() Configuration {
	return Configuration{
		DataSource: DataSourceConfig{
			Dns: "postgres://localhost:5432/beamtime?sslmode=disable",
		},
		DataCite: DataCiteConfig{
			BaseURL:  "https://api.test.datacite.org/",
			Username: "SEES.TEST",
			Password: "secret",
			Prefix:   "10.8675",
		},
	}
}

func TestValidateAndAddDefaults(t *testing.T) {
	// Test case with empty DataSource DNS
	cnf := validConfiguration()
	cnf.DataSource.Dns = ""

	err := cnf.validateAndAddDefaults()
	if err == nil || err.Error() != "data source DNS is required" {
		t.Errorf("Expected data source DNS required error, got %v", err)
	}

	// Test case with all required fields filled, expect no error
	cnf = validConfiguration()
	err = cnf.validateAndAddDefaults()
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if cnf.ProjectName != "Beamtime Server" {
		t.Errorf("Expected default project name, got %s", cnf.ProjectName)
	}
	if cnf.DataCite.BaseURL != "https://api.test.datacite.org" {
		t.Errorf("Expected trailing slash to be trimmed, got %s", cnf.DataCite.BaseURL)
	}
	if cnf.DataCite.DOIBasePath != DEFAULT_DOI_BASE_PATH {
		t.Errorf("Expected default DOI base path %s, got %s", DEFAULT_DOI_BASE_PATH, cnf.DataCite.DOIBasePath)
	}
	if cnf.DataCite.LandingURLBase != DEFAULT_LANDING_URL_BASE {
		t.Errorf("Expected default landing URL base, got %s", cnf.DataCite.LandingURLBase)
	}
	if cnf.Queue.PollIntervalSec != DEFAULT_POLL_INTERVAL {
		t.Errorf("Expected default poll interval %d, got %d", DEFAULT_POLL_INTERVAL, cnf.Queue.PollIntervalSec)
	}
	if cnf.PollInterval() != 300*time.Second {
		t.Errorf("Expected 300s poll interval, got %s", cnf.PollInterval())
	}
	if cnf.Log.File != DEFAULT_LOG_FILE || cnf.Log.MaxSizeMB != 10 || cnf.Log.MaxBackups != 10 {
		t.Errorf("Expected log defaults, got %+v", cnf.Log)
	}
	if cnf.DataSource.MaxOpenConns != 5 {
		t.Errorf("Expected default pool size 5, got %d", cnf.DataSource.MaxOpenConns)
	}
}

func TestValidateRejectsBadDataCiteSettings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Configuration)
		field  string
	}{
		{"malformed prefix", func(c *Configuration) { c.DataCite.Prefix = "8675" }, "prefix"},
		{"missing username", func(c *Configuration) { c.DataCite.Username = "" }, "username"},
		{"missing password", func(c *Configuration) { c.DataCite.Password = "" }, "password"},
		{"bad url", func(c *Configuration) { c.DataCite.BaseURL = "not a url" }, "base_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cnf := validConfiguration()
			tt.mutate(&cnf)
			err := cnf.validateAndAddDefaults()
			if err == nil {
				t.Fatalf("Expected validation error for %s", tt.name)
			}
			if !strings.Contains(strings.ToLower(err.Error()), strings.ToLower(tt.field)) {
				t.Errorf("Expected error to mention %s, got %v", tt.field, err)
			}
		})
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	// Create a temporary file
	tmpFile, err := os.CreateTemp("", "beamtime.json")
	if err != nil {
		t.Fatalf("Unable to create temporary file: %v", err)
	}
	defer os.Remove(tmpFile.Name()) // Clean up after the test

	sampleConfig := validConfiguration()
	sampleConfig.ProjectName = "Temp Project"
	sampleConfig.DataSource.Dns = "temp-dns"
	if err := json.NewEncoder(tmpFile).Encode(sampleConfig); err != nil {
		t.Fatalf("Unable to write to temporary file: %v", err)
	}
	tmpFile.Close() // Close the file so loadConfigFromFile can open it

	// Set environment variables to override values from the file
	t.Setenv("BEAMTIME_PROJECT_NAME", "Env Project")
	t.Setenv("BEAMTIME_FOLDER", "/beamtime")

	if err := loadConfigFromFile(tmpFile.Name()); err != nil {
		t.Fatalf("loadConfigFromFile failed: %v", err)
	}

	loadedConfig, err := Fetch()
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if loadedConfig.ProjectName != "Env Project" {
		t.Errorf("Expected ProjectName to be 'Env Project', got '%s'", loadedConfig.ProjectName)
	}
	if loadedConfig.Storage.BeamtimeFolder != "/beamtime" {
		t.Errorf("Expected beamtime folder from env, got '%s'", loadedConfig.Storage.BeamtimeFolder)
	}
	if loadedConfig.DataSource.Dns != "temp-dns" {
		t.Errorf("Expected DataSource.Dns to be 'temp-dns', got '%s'", loadedConfig.DataSource.Dns)
	}
}

func TestInitConfigFromEnvOnly(t *testing.T) {
	t.Setenv("BEAMTIME_DATA_SOURCE_DNS", "env-dns")
	t.Setenv("BEAMTIME_DOI_BASE_URL", "https://api.datacite.org")
	t.Setenv("BEAMTIME_DOI_USERNAME", "SEES")
	t.Setenv("BEAMTIME_DOI_PASSWORD", "secret")
	t.Setenv("BEAMTIME_DOI_PREFIX", "10.8675")

	if err := InitConfig("does-not-exist.json"); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	loadedConfig, err := Fetch()
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if loadedConfig.DataSource.Dns != "env-dns" {
		t.Errorf("Expected DataSource.Dns to be 'env-dns', got '%s'", loadedConfig.DataSource.Dns)
	}
	if loadedConfig.DataCite.Prefix != "10.8675" {
		t.Errorf("Expected prefix from env, got '%s'", loadedConfig.DataCite.Prefix)
	}
}

func TestSetOtelExporterEnvs(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_PROTOCOL", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	mockConfig := Configuration{
		OtelExporter: OtelExporter{
			OtelExporterOtlpProtocol: "http/protobuf",
			OtelExporterOtlpEndpoint: "localhost:4318",
			OtelExporterOtlpHeaders:  "api-key=12345",
		},
	}
	MockConfig(&mockConfig)

	if err := SetOtelExporterEnvs(); err != nil {
		t.Fatalf("SetOtelExporterEnvs failed: %v", err)
	}

	if os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL") != "http/protobuf" {
		t.Errorf("Expected OTEL_EXPORTER_OTLP_PROTOCOL to be 'http/protobuf', got '%s'", os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL"))
	}
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "localhost:4318" {
		t.Errorf("Expected OTEL_EXPORTER_OTLP_ENDPOINT to be 'localhost:4318', got '%s'", os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	}
	if os.Getenv("OTEL_EXPORTER_OTLP_HEADERS") != "api-key=12345" {
		t.Errorf("Expected OTEL_EXPORTER_OTLP_HEADERS to be 'api-key=12345', got '%s'", os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	}
}
