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
	"github.com/wacul/ptr"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/seescience/beamtime-server/database"
	"github.com/seescience/beamtime-server/internal/files"
	"github.com/seescience/beamtime-server/model"
)

// FolderProcessor lays out the experiment folder for a queue entry and
// records the resulting paths on the experiment.
type FolderProcessor struct {
	datasource database.IDataSource
	builder    *files.Builder
	logger     logrus.FieldLogger
}

func NewFolderProcessor(datasource database.IDataSource, builder *files.Builder, logger logrus.FieldLogger) *FolderProcessor {
	return &FolderProcessor{datasource: datasource, builder: builder, logger: logger}
}

// Process creates the folder tree, writes acknowledgment files and copies the
// ESAF document. Entries without a data path are skipped. The returned error
// is informational: a folder failure never fails the queue entry.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - entry model.QueueEntry: The queue entry being processed.
//
// Returns:
// - error: An error if the folder tree could not be created or recorded.
func (p *FolderProcessor) Process(ctx context.Context, entry model.QueueEntry) error {
	ctx, span := tracer.Start(ctx, "ProcessFolders", trace.WithAttributes(
		attribute.Int64("queue.id", entry.ID),
		attribute.Int64("experiment.id", entry.ExperimentID),
	))
	defer span.End()

	logger := p.logger.WithFields(logrus.Fields{"queue_id": entry.ID, "experiment_id": entry.ExperimentID})
	if !entry.HasDataPath() {
		logger.Info("No data path specified, skipping folder creation")
		span.AddEvent("Skipped: no data path")
		return nil
	}

	basePath, err := p.datasource.GetBasePath(ctx)
	if err != nil {
		span.RecordError(err)
		return err
	}

	var acks []model.Acknowledgment
	if entry.Acknowledgments != nil {
		acks, err = p.datasource.GetAcknowledgments(ctx, *entry.Acknowledgments)
		if err != nil {
			span.RecordError(err)
			return err
		}
		logger.WithField("count", len(acks)).Info("Retrieved acknowledgments")
	}

	folder, err := p.builder.CreateExperimentTree(*entry.DataPath, basePath, acks)
	if err != nil {
		span.RecordError(err)
		return err
	}

	ok, err := p.datasource.UpdateExperiment(ctx, entry.ExperimentID, model.ExperimentUpdate{Folder: ptr.String(folder)})
	if err != nil {
		span.RecordError(err)
		return err
	}
	if !ok {
		err = fmt.Errorf("failed to update experiment %d with folder path", entry.ExperimentID)
		span.RecordError(err)
		return err
	}
	logger.WithField("folder", folder).Info("Created folder structure and updated experiment")
	span.AddEvent("Folder recorded", trace.WithAttributes(attribute.String("folder", folder)))

	p.copyAdministrativeFile(ctx, entry, basePath, folder, logger)
	return nil
}

// copyAdministrativeFile is best effort; every failure is logged and dropped.
func (p *FolderProcessor) copyAdministrativeFile(ctx context.Context, entry model.QueueEntry, basePath, folder string, logger logrus.FieldLogger) {
	source, err := p.datasource.GetEsafSourceFolder(ctx)
	if err != nil {
		logger.WithError(err).Warn("Failed to read ESAF source folder")
		return
	}
	run, err := p.datasource.GetRunName(ctx, entry.ExperimentID)
	if err != nil {
		logger.WithError(err).Warn("Failed to read run name")
		return
	}

	archived, err := p.builder.CopyAdministrativeFile(ctx, entry.ExperimentID, valueOf(run), valueOf(source), files.InfoFolder(basePath, folder), basePath)
	if err != nil {
		logger.WithError(err).Warn("Failed to process ESAF file")
		return
	}
	if archived == nil {
		logger.Info("No archival ESAF path to record")
		return
	}

	ok, err := p.datasource.UpdateExperiment(ctx, entry.ExperimentID, model.ExperimentUpdate{EsafPDFFile: archived})
	switch {
	case err != nil:
		logger.WithError(err).Warn("Failed to update experiment ESAF path")
	case !ok:
		logger.Warn("Experiment not updated with ESAF path")
	default:
		logger.WithField("esaf_pdf_file", *archived).Info("Updated experiment with ESAF path")
	}
}

func valueOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
