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

package datacite

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/seescience/beamtime-server/model"
)

// DryRunClient logs every mutating registry call instead of sending it. Reads
// are forwarded to the wrapped client.
type DryRunClient struct {
	client *Client
	logger logrus.FieldLogger
}

func NewDryRunClient(client *Client, logger logrus.FieldLogger) *DryRunClient {
	return &DryRunClient{client: client, logger: logger}
}

func (d *DryRunClient) Create(_ context.Context, metadata model.DOIMetadata) (*model.DataCiteResponse, error) {
	d.logger.WithFields(logrus.Fields{
		"doi":   metadata.DOI,
		"event": metadata.Event,
		"url":   metadata.URL,
		"title": metadata.PrimaryTitle(),
	}).Info("[DRY RUN] Would create DOI")
	return fakeResponse(metadata.DOI, metadata.Event, metadata.URL), nil
}

func (d *DryRunClient) Update(_ context.Context, id string, metadata model.DOIMetadata) (*model.DataCiteResponse, error) {
	d.logger.WithFields(logrus.Fields{"doi": id, "event": metadata.Event}).Info("[DRY RUN] Would update DOI")
	return fakeResponse(id, metadata.Event, metadata.URL), nil
}

func (d *DryRunClient) CreateOrUpdate(ctx context.Context, metadata model.DOIMetadata) (*model.DataCiteResponse, error) {
	return d.Create(ctx, metadata)
}

func (d *DryRunClient) Publish(_ context.Context, id string) (*model.DataCiteResponse, error) {
	d.logger.WithField("doi", id).Info("[DRY RUN] Would publish DOI")
	return fakeResponse(id, model.EventPublish, ""), nil
}

func (d *DryRunClient) Get(ctx context.Context, id string) (*model.DataCiteResponse, error) {
	return d.client.Get(ctx, id)
}

func (d *DryRunClient) Delete(_ context.Context, id string) error {
	d.logger.WithField("doi", id).Info("[DRY RUN] Would delete DOI")
	return nil
}

func fakeResponse(id, event, url string) *model.DataCiteResponse {
	var resp model.DataCiteResponse
	resp.Data.ID = id
	resp.Data.Type = "dois"
	resp.Data.Attributes.DOI = id
	resp.Data.Attributes.URL = url
	switch event {
	case model.EventDraft:
		resp.Data.Attributes.State = "draft"
	case model.EventPublish:
		resp.Data.Attributes.State = "findable"
	}
	return &resp
}
