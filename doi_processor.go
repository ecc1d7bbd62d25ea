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

package beamtime

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/seescience/beamtime-server/database"
	"github.com/seescience/beamtime-server/internal/apierror"
	"github.com/seescience/beamtime-server/internal/files"
	"github.com/seescience/beamtime-server/model"
)

// DOIProcessor registers the dataset DOI of an experiment and publishes its
// landing page.
type DOIProcessor struct {
	datasource database.IDataSource
	registry   Registry
	builder    *files.Builder
	opts       MetadataOptions
	logger     logrus.FieldLogger
}

func NewDOIProcessor(datasource database.IDataSource, registry Registry, builder *files.Builder, opts MetadataOptions, logger logrus.FieldLogger) *DOIProcessor {
	return &DOIProcessor{
		datasource: datasource,
		registry:   registry,
		builder:    builder,
		opts:       opts,
		logger:     logger,
	}
}

// Process creates or updates the DOI for the entry's experiment and stores
// the resolver link on the experiment. Any failure up to that point is
// returned; the landing page that follows is best effort.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - entry model.QueueEntry: The queue entry that requested a DOI.
//
// Returns:
// - error: An error if the metadata could not be built, the registry rejected it, or the link could not be stored.
func (p *DOIProcessor) Process(ctx context.Context, entry model.QueueEntry) error {
	ctx, span := tracer.Start(ctx, "ProcessDOI", trace.WithAttributes(
		attribute.Int64("queue.id", entry.ID),
		attribute.Int64("experiment.id", entry.ExperimentID),
	))
	defer span.End()

	logger := p.logger.WithFields(logrus.Fields{"queue_id": entry.ID, "experiment_id": entry.ExperimentID})
	logger.Info("Processing DOI")

	snapshot, err := p.datasource.GetExperimentSnapshot(ctx, entry.ExperimentID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	metadata := BuildDOIMetadata(*snapshot, entry.DraftDOI, p.opts)
	logger = logger.WithField("doi", metadata.DOI)

	resp, err := p.registry.CreateOrUpdate(ctx, metadata)
	if err != nil {
		span.RecordError(err)
		return err
	}

	id := metadata.DOI
	if resp != nil && resp.Data.ID != "" {
		id = resp.Data.ID
	}
	if id == "" {
		err = apierror.NewOpError(apierror.ErrRegistry, "create_doi", "DOI creation returned no ID", nil)
		span.RecordError(err)
		return err
	}

	link := DOILink(id)
	ok, err := p.datasource.UpdateExperiment(ctx, entry.ExperimentID, model.ExperimentUpdate{SeesDOI: &link})
	if err != nil {
		span.RecordError(err)
		return err
	}
	if !ok {
		err = apierror.NewOpError(apierror.ErrPersistence, "update_doi_link",
			fmt.Sprintf("failed to update experiment %d DOI link", entry.ExperimentID), nil)
		span.RecordError(err)
		return err
	}
	logger.WithField("sees_doi", link).Info("Updated experiment DOI link")

	p.createLandingPage(ctx, entry, metadata, id, logger)

	kind := "findable DOI"
	if metadata.IsDraft() {
		kind = "draft DOI"
	}
	logger.WithField("url", metadata.URL).Infof("Successfully processed %s", kind)
	span.AddEvent("DOI registered", trace.WithAttributes(attribute.String("doi", id), attribute.String("event", metadata.Event)))
	return nil
}

// createLandingPage writes the public folder and index page. Failures are
// logged only.
func (p *DOIProcessor) createLandingPage(ctx context.Context, entry model.QueueEntry, metadata model.DOIMetadata, id string, logger logrus.FieldLogger) {
	basePath, err := p.datasource.GetBasePath(ctx)
	if err != nil {
		logger.WithError(err).Warn("Skipping DOI landing page")
		return
	}

	if _, err := p.builder.EnsurePublicLandingFolder(entry.ExperimentID, metadata.PublicationYear, basePath); err != nil {
		logger.WithError(err).Warn("Failed to create DOI public folder")
		return
	}

	_, err = p.builder.WriteLandingIndex(files.LandingPage{
		ExperimentID: entry.ExperimentID,
		Year:         metadata.PublicationYear,
		DOI:          id,
		Title:        metadata.PrimaryTitle(),
		Authors:      creatorNames(metadata),
		Version:      metadata.Version,
	}, basePath)
	if err != nil {
		logger.WithError(err).Warn("Failed to create DOI landing index")
	}
}

// Publish makes an existing draft DOI findable.
func (p *DOIProcessor) Publish(ctx context.Context, doi string) (bool, error) {
	ctx, span := tracer.Start(ctx, "PublishDOI", trace.WithAttributes(attribute.String("doi", doi)))
	defer span.End()

	logger := p.logger.WithField("doi", doi)
	if _, err := p.registry.Publish(ctx, doi); err != nil {
		span.RecordError(err)
		logger.WithError(err).Error("Failed to publish DOI")
		return false, err
	}
	logger.Info("Successfully published DOI")
	return true, nil
}
