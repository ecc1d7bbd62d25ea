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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seescience/beamtime-server/internal/request"
	"github.com/seescience/beamtime-server/model"
)

// Config holds the registry endpoint and credentials.
type Config struct {
	BaseURL  string
	Username string
	Password string
	Prefix   string
	Timeout  time.Duration
}

// RegistryError describes a failed registry call. StatusCode is zero when the
// request never produced a response.
type RegistryError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *RegistryError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("datacite %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("datacite %s: HTTP %d - %s", e.Op, e.StatusCode, e.Body)
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}

// AlreadyExists reports whether the registry rejected a create because the
// identifier is taken.
func (e *RegistryError) AlreadyExists() bool {
	if e.StatusCode != http.StatusUnprocessableEntity {
		return false
	}
	return strings.Contains(strings.ToLower(e.Body), "already been taken")
}

// IsAlreadyExists reports whether err is a registry "already taken" rejection.
func IsAlreadyExists(err error) bool {
	var regErr *RegistryError
	return errors.As(err, &regErr) && regErr.AlreadyExists()
}

// Client talks to the DataCite REST API. It is safe to reuse across items.
type Client struct {
	cfg    Config
	http   *http.Client
	logger logrus.FieldLogger
}

// NewClient creates a registry client. A nil httpClient gets a client with the
// configured timeout.
func NewClient(cfg Config, httpClient *http.Client, logger logrus.FieldLogger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

// Prefix returns the DOI prefix the client registers under.
func (c *Client) Prefix() string {
	return c.cfg.Prefix
}

// Create registers a new DOI. The event in the metadata decides whether it
// starts as a draft or findable.
func (c *Client) Create(ctx context.Context, metadata model.DOIMetadata) (*model.DataCiteResponse, error) {
	c.logger.WithFields(logrus.Fields{"doi": metadata.DOI, "event": metadata.Event}).Info("Creating DOI")
	resp, err := c.send(ctx, "create", http.MethodPost, c.cfg.BaseURL+"/dois", metadata.ToDataCitePayload(c.cfg.Prefix, ""), http.StatusCreated)
	if err != nil {
		return nil, err
	}
	c.logger.WithField("doi", resp.Data.ID).Info("Successfully created DOI")
	return resp, nil
}

// Update replaces the metadata of an existing DOI.
func (c *Client) Update(ctx context.Context, id string, metadata model.DOIMetadata) (*model.DataCiteResponse, error) {
	c.logger.WithFields(logrus.Fields{"doi": id, "event": metadata.Event}).Info("Updating DOI")
	resp, err := c.send(ctx, "update", http.MethodPut, c.doiURL(id), metadata.ToDataCitePayload(c.cfg.Prefix, id), http.StatusOK)
	if err != nil {
		return nil, err
	}
	c.logger.WithField("doi", resp.Data.ID).Info("Successfully updated DOI")
	return resp, nil
}

// CreateOrUpdate creates the DOI and falls back to an update of the same
// identifier when the registry reports it as already taken. Because the
// identifier is derived from the experiment, repeating this call is safe.
func (c *Client) CreateOrUpdate(ctx context.Context, metadata model.DOIMetadata) (*model.DataCiteResponse, error) {
	resp, err := c.Create(ctx, metadata)
	if err == nil {
		return resp, nil
	}
	if !IsAlreadyExists(err) || metadata.DOI == "" {
		return nil, err
	}

	c.logger.WithField("doi", metadata.DOI).Info("DOI already exists, updating instead")
	return c.Update(ctx, metadata.DOI, metadata)
}

// Publish moves a draft DOI to the findable state with an event-only update.
func (c *Client) Publish(ctx context.Context, id string) (*model.DataCiteResponse, error) {
	c.logger.WithField("doi", id).Info("Publishing DOI")
	return c.send(ctx, "publish", http.MethodPut, c.doiURL(id), model.EventPayload(id, model.EventPublish), http.StatusOK)
}

// Get fetches the current registry record of a DOI.
func (c *Client) Get(ctx context.Context, id string) (*model.DataCiteResponse, error) {
	return c.send(ctx, "get", http.MethodGet, c.doiURL(id), nil, http.StatusOK)
}

// Delete removes a draft DOI. Findable DOIs cannot be deleted by the registry.
func (c *Client) Delete(ctx context.Context, id string) error {
	c.logger.WithField("doi", id).Info("Deleting DOI")
	_, err := c.send(ctx, "delete", http.MethodDelete, c.doiURL(id), nil, http.StatusNoContent)
	if err != nil {
		return err
	}
	c.logger.WithField("doi", id).Info("Successfully deleted DOI")
	return nil
}

func (c *Client) doiURL(id string) string {
	return fmt.Sprintf("%s/dois/%s", c.cfg.BaseURL, id)
}

func (c *Client) send(ctx context.Context, op, method, url string, payload interface{}, expected int) (*model.DataCiteResponse, error) {
	var req *http.Request
	var err error
	if payload != nil {
		body, encErr := request.ToJsonReq(payload)
		if encErr != nil {
			return nil, &RegistryError{Op: op, Err: fmt.Errorf("failed to marshal payload: %w", encErr)}
		}
		req, err = http.NewRequestWithContext(ctx, method, url, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
	}
	if err != nil {
		return nil, &RegistryError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Content-Type", request.JSONAPIContentType)
	req.Header.Set("Accept", request.JSONAPIContentType)
	req.Header.Set("Authorization", "Basic "+request.BasicAuth(c.cfg.Username, c.cfg.Password))

	resp, body, err := request.Call(c.http, req)
	if err != nil {
		c.logger.WithFields(logrus.Fields{"op": op, "url": url, "error": err}).Error("Network error while calling DataCite")
		return nil, &RegistryError{Op: op, Err: err}
	}

	if resp.StatusCode != expected {
		regErr := &RegistryError{Op: op, StatusCode: resp.StatusCode, Body: string(body), Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
		if !regErr.AlreadyExists() {
			c.logger.WithFields(logrus.Fields{"op": op, "status_code": resp.StatusCode, "response": string(body)}).Error("DataCite request failed")
		}
		return nil, regErr
	}

	var out model.DataCiteResponse
	if len(body) == 0 {
		return &out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &RegistryError{Op: op, StatusCode: resp.StatusCode, Body: string(body), Err: fmt.Errorf("invalid JSON response: %w", err)}
	}
	return &out, nil
}
