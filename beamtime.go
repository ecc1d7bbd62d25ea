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

// Package beamtime turns queued beamtime experiments into on-disk folder
// layouts and registered dataset DOIs.
package beamtime

import (
	"context"
	"embed"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/seescience/beamtime-server/config"
	"github.com/seescience/beamtime-server/database"
	"github.com/seescience/beamtime-server/internal/datacite"
	"github.com/seescience/beamtime-server/internal/files"
	"github.com/seescience/beamtime-server/model"
)

//go:embed sql/*.sql
var SQLFiles embed.FS

var tracer = otel.Tracer("beamtime.queue")

// Registry is the DOI registry as seen by the processors and the CLI.
type Registry interface {
	CreateOrUpdate(ctx context.Context, metadata model.DOIMetadata) (*model.DataCiteResponse, error)
	Publish(ctx context.Context, id string) (*model.DataCiteResponse, error)
	Get(ctx context.Context, id string) (*model.DataCiteResponse, error)
	Delete(ctx context.Context, id string) error
}

// Beamtime holds the wired processors for one process.
type Beamtime struct {
	Queue    *QueueProcessor
	Folders  *FolderProcessor
	DOI      *DOIProcessor
	Registry Registry
}

// NewBeamtime wires the processors from configuration. In dry-run mode the
// datasource, registry and filesystem builder only log their mutations.
//
// Parameters:
// - cnf *config.Configuration: The loaded configuration.
// - ds database.IDataSource: The datasource for database operations.
// - dryRun bool: Whether mutations are only logged.
// - logger logrus.FieldLogger: The logger handed to every component.
//
// Returns:
// - *Beamtime: The wired processors.
func NewBeamtime(cnf *config.Configuration, ds database.IDataSource, dryRun bool, logger logrus.FieldLogger) *Beamtime {
	client := datacite.NewClient(datacite.Config{
		BaseURL:  cnf.DataCite.BaseURL,
		Username: cnf.DataCite.Username,
		Password: cnf.DataCite.Password,
		Prefix:   cnf.DataCite.Prefix,
		Timeout:  time.Duration(cnf.DataCite.TimeoutSec) * time.Second,
	}, nil, logger)

	var registry Registry = client
	if dryRun {
		ds = database.NewDryRunDataSource(ds, logger)
		registry = datacite.NewDryRunClient(client, logger)
		logger.Info("Queue processor initialized in DRY RUN mode (no registry writes, folder creation or database updates)")
	}

	builder := files.NewBuilder(cnf.DataCite.DOIBasePath, cnf.Storage.BeamtimeFolder, dryRun, logger)
	opts := DefaultMetadataOptions(cnf.DataCite.Prefix, cnf.DataCite.LandingURLBase)

	folders := NewFolderProcessor(ds, builder, logger)
	dois := NewDOIProcessor(ds, registry, builder, opts, logger)
	return &Beamtime{
		Queue:    NewQueueProcessor(ds, folders, dois, dryRun, logger),
		Folders:  folders,
		DOI:      dois,
		Registry: registry,
	}
}
