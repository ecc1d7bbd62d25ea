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
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_POLL_INTERVAL    = 300
	DEFAULT_DOI_BASE_PATH    = "public"
	DEFAULT_LANDING_URL_BASE = "https://public.seescience.org/data"
	DEFAULT_LOG_FILE         = "./logs/beamtime_server.log"
)

var ConfigStore atomic.Value

var doiPrefixPattern = regexp.MustCompile(`^10\.\d{4,9}$`)

type DataSourceConfig struct {
	Dns                string `json:"dns" envconfig:"BEAMTIME_DATA_SOURCE_DNS"`
	MaxOpenConns       int    `json:"max_open_conns" envconfig:"BEAMTIME_DB_POOL_SIZE"`
	MaxIdleConns       int    `json:"max_idle_conns" envconfig:"BEAMTIME_DB_MAX_IDLE"`
	ConnMaxLifetimeSec int    `json:"conn_max_lifetime_sec" envconfig:"BEAMTIME_DB_POOL_RECYCLE"`
	ConnMaxIdleTimeSec int    `json:"conn_max_idle_time_sec" envconfig:"BEAMTIME_DB_POOL_IDLE_TIME"`
	ConnectTimeoutSec  int    `json:"connect_timeout_sec" envconfig:"BEAMTIME_DB_POOL_TIMEOUT"`
}

type DataCiteConfig struct {
	BaseURL        string `json:"base_url" envconfig:"BEAMTIME_DOI_BASE_URL"`
	Username       string `json:"username" envconfig:"BEAMTIME_DOI_USERNAME"`
	Password       string `json:"password" envconfig:"BEAMTIME_DOI_PASSWORD"`
	Prefix         string `json:"prefix" envconfig:"BEAMTIME_DOI_PREFIX"`
	DOIBasePath    string `json:"doi_base_path" envconfig:"BEAMTIME_DOI_BASE_PATH"`
	LandingURLBase string `json:"landing_url_base" envconfig:"BEAMTIME_DOI_LANDING_URL_BASE"`
	TimeoutSec     int    `json:"timeout_sec" envconfig:"BEAMTIME_DOI_TIMEOUT"`
}

type StorageConfig struct {
	BeamtimeFolder string `json:"beamtime_folder" envconfig:"BEAMTIME_FOLDER"`
}

type LogConfig struct {
	File       string `json:"file" envconfig:"BEAMTIME_LOG_FILE"`
	Level      string `json:"level" envconfig:"BEAMTIME_LOG_LEVEL"`
	Format     string `json:"format" envconfig:"BEAMTIME_LOG_FORMAT"`
	MaxSizeMB  int    `json:"max_size_mb" envconfig:"BEAMTIME_LOG_MAX_SIZE_MB"`
	MaxBackups int    `json:"max_backups" envconfig:"BEAMTIME_LOG_MAX_BACKUPS"`
}

type QueueConfig struct {
	PollIntervalSec int    `json:"poll_interval_sec" envconfig:"BEAMTIME_QUEUE_POLL_INTERVAL"`
	LockDir         string `json:"lock_dir" envconfig:"BEAMTIME_QUEUE_LOCK_DIR"`
}

type OtelExporter struct {
	OtelExporterOtlpProtocol string `json:"otel_exporter_otlp_protocol" envconfig:"OTEL_EXPORTER_OTLP_PROTOCOL"`
	OtelExporterOtlpEndpoint string `json:"otel_exporter_otlp_endpoint" envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelExporterOtlpHeaders  string `json:"otel_exporter_otlp_headers" envconfig:"OTEL_EXPORTER_OTLP_HEADERS"`
}

type Configuration struct {
	ProjectName     string           `json:"project_name" envconfig:"BEAMTIME_PROJECT_NAME"`
	EnableTelemetry bool             `json:"enable_telemetry" envconfig:"BEAMTIME_ENABLE_TELEMETRY"`
	DataSource      DataSourceConfig `json:"data_source"`
	DataCite        DataCiteConfig   `json:"datacite"`
	Storage         StorageConfig    `json:"storage"`
	Log             LogConfig        `json:"log"`
	Queue           QueueConfig      `json:"queue"`
	OtelExporter    OtelExporter     `json:"otel_exporter"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("beamtime", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called beamtime.json with your config")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		cnf.ProjectName = "Beamtime Server"
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.DataCite.BaseURL = strings.TrimRight(strings.TrimSpace(cnf.DataCite.BaseURL), "/")
	cnf.DataCite.Username = strings.TrimSpace(cnf.DataCite.Username)
	cnf.DataCite.Prefix = strings.TrimSpace(cnf.DataCite.Prefix)
	cnf.Storage.BeamtimeFolder = strings.TrimSpace(cnf.Storage.BeamtimeFolder)

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if err := validation.ValidateStruct(&cnf.DataCite,
		validation.Field(&cnf.DataCite.BaseURL, validation.Required, is.URL),
		validation.Field(&cnf.DataCite.Username, validation.Required),
		validation.Field(&cnf.DataCite.Password, validation.Required),
		validation.Field(&cnf.DataCite.Prefix, validation.Required, validation.Match(doiPrefixPattern).Error("must look like 10.NNNN")),
	); err != nil {
		return fmt.Errorf("invalid datacite configuration: %w", err)
	}

	if cnf.DataSource.MaxOpenConns <= 0 {
		cnf.DataSource.MaxOpenConns = 5
	}
	if cnf.DataSource.MaxIdleConns <= 0 {
		cnf.DataSource.MaxIdleConns = 2
	}
	if cnf.DataSource.ConnMaxLifetimeSec <= 0 {
		cnf.DataSource.ConnMaxLifetimeSec = 1800
	}
	if cnf.DataSource.ConnMaxIdleTimeSec <= 0 {
		cnf.DataSource.ConnMaxIdleTimeSec = 300
	}
	if cnf.DataSource.ConnectTimeoutSec <= 0 {
		cnf.DataSource.ConnectTimeoutSec = 30
	}

	if cnf.DataCite.DOIBasePath == "" {
		cnf.DataCite.DOIBasePath = DEFAULT_DOI_BASE_PATH
	}
	if cnf.DataCite.LandingURLBase == "" {
		cnf.DataCite.LandingURLBase = DEFAULT_LANDING_URL_BASE
	}
	cnf.DataCite.LandingURLBase = strings.TrimRight(cnf.DataCite.LandingURLBase, "/")
	if cnf.DataCite.TimeoutSec <= 0 {
		cnf.DataCite.TimeoutSec = 30
	}

	if cnf.Log.File == "" {
		cnf.Log.File = DEFAULT_LOG_FILE
	}
	if cnf.Log.Level == "" {
		cnf.Log.Level = "info"
	}
	if cnf.Log.MaxSizeMB <= 0 {
		cnf.Log.MaxSizeMB = 10
	}
	if cnf.Log.MaxBackups <= 0 {
		cnf.Log.MaxBackups = 10
	}

	if cnf.Queue.PollIntervalSec <= 0 {
		cnf.Queue.PollIntervalSec = DEFAULT_POLL_INTERVAL
		log.Printf("Warning: Poll interval not specified in config. Setting default: %d seconds", DEFAULT_POLL_INTERVAL)
	}
	if cnf.Queue.LockDir == "" {
		cnf.Queue.LockDir = os.TempDir()
	}

	return nil
}

// PollInterval returns the configured continuous-mode poll interval.
func (cnf *Configuration) PollInterval() time.Duration {
	return time.Duration(cnf.Queue.PollIntervalSec) * time.Second
}

// SetOtelExporterEnvs exports the OTLP settings for the trace exporter, which
// reads them from the environment.
func SetOtelExporterEnvs() error {
	cnf, err := Fetch()
	if err != nil {
		return err
	}
	envs := map[string]string{
		"OTEL_EXPORTER_OTLP_PROTOCOL": cnf.OtelExporter.OtelExporterOtlpProtocol,
		"OTEL_EXPORTER_OTLP_ENDPOINT": cnf.OtelExporter.OtelExporterOtlpEndpoint,
		"OTEL_EXPORTER_OTLP_HEADERS":  cnf.OtelExporter.OtelExporterOtlpHeaders,
	}
	for key, value := range envs {
		if value == "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
