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
	"context"

	"github.com/sirupsen/logrus"

	"github.com/seescience/beamtime-server/model"
)

// DryRunDataSource forwards reads to the wrapped datasource and logs writes
// instead of executing them.
type DryRunDataSource struct {
	IDataSource
	logger logrus.FieldLogger
}

func NewDryRunDataSource(ds IDataSource, logger logrus.FieldLogger) *DryRunDataSource {
	return &DryRunDataSource{IDataSource: ds, logger: logger}
}

func (d *DryRunDataSource) UpdateExperiment(_ context.Context, id int64, update model.ExperimentUpdate) (bool, error) {
	fields := logrus.Fields{"experiment_id": id}
	if update.Folder != nil {
		fields["folder"] = *update.Folder
	}
	if update.SeesDOI != nil {
		fields["sees_doi"] = *update.SeesDOI
	}
	if update.EsafPDFFile != nil {
		fields["esaf_pdf_file"] = *update.EsafPDFFile
	}
	if update.ProcessStatusID != nil {
		fields["status"] = update.ProcessStatusID.String()
	}
	d.logger.WithFields(fields).Info("[DRY RUN] Would update experiment")
	return true, nil
}

func (d *DryRunDataSource) DeleteQueueEntry(_ context.Context, id int64) (bool, error) {
	d.logger.WithField("queue_id", id).Info("[DRY RUN] Would delete queue entry")
	return true, nil
}
