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
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seescience/beamtime-server/internal/logger"
	"github.com/seescience/beamtime-server/model"
)

const testBaseURL = "https://api.test.datacite.org"

func newTestClient() *Client {
	return NewClient(Config{
		BaseURL:  testBaseURL + "/",
		Username: "SEES.TEST",
		Password: "secret",
		Prefix:   "10.8675",
		Timeout:  5 * time.Second,
	}, nil, logger.Discard())
}

func testMetadata() model.DOIMetadata {
	return model.DOIMetadata{
		Creators:        []model.Creator{{Name: "Doe, Jane", NameType: "Personal", GivenName: "Jane", FamilyName: "Doe"}},
		Titles:          []model.Title{{Title: "Iron at pressure"}},
		Publisher:       "University of Chicago",
		PublicationYear: 2025,
		Types:           model.ResourceTypes{ResourceType: "Dataset", ResourceTypeGeneral: "Dataset"},
		Event:           model.EventDraft,
		DOI:             "10.8675/data_42",
		URL:             "https://public.seescience.org/data/2025/42",
	}
}

const createdBody = `{"data":{"id":"10.8675/data_42","type":"dois","attributes":{"doi":"10.8675/data_42","state":"draft","url":"https://public.seescience.org/data/2025/42"}}}`

func TestCreateSendsJSONAPIPayload(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	var captured map[string]interface{}
	httpmock.RegisterResponder("POST", testBaseURL+"/dois",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "application/vnd.api+json", req.Header.Get("Content-Type"))
			user, pass, ok := req.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "SEES.TEST", user)
			assert.Equal(t, "secret", pass)

			body, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(body, &captured))
			return httpmock.NewStringResponse(201, createdBody), nil
		})

	resp, err := newTestClient().Create(context.Background(), testMetadata())
	require.NoError(t, err)
	assert.Equal(t, "10.8675/data_42", resp.Data.ID)
	assert.Equal(t, "draft", resp.Data.Attributes.State)

	data := captured["data"].(map[string]interface{})
	assert.Equal(t, "dois", data["type"])
	_, hasID := data["id"]
	assert.False(t, hasID)
	attrs := data["attributes"].(map[string]interface{})
	assert.Equal(t, "10.8675", attrs["prefix"])
	assert.Equal(t, "10.8675/data_42", attrs["doi"])
	assert.Equal(t, "draft", attrs["event"])
	assert.Equal(t, float64(2025), attrs["publicationYear"])
}

func TestCreateOrUpdateFallsBackToUpdateWhenTaken(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", testBaseURL+"/dois",
		httpmock.NewStringResponder(422, `{"errors":[{"source":"doi","title":"This DOI has already been taken"}]}`))
	httpmock.RegisterResponder("PUT", testBaseURL+"/dois/10.8675/data_42",
		func(req *http.Request) (*http.Response, error) {
			var payload model.DataCitePayload
			require.NoError(t, json.NewDecoder(req.Body).Decode(&payload))
			assert.Equal(t, "10.8675/data_42", payload.Data.ID)
			return httpmock.NewStringResponse(200, createdBody), nil
		})

	resp, err := newTestClient().CreateOrUpdate(context.Background(), testMetadata())
	require.NoError(t, err)
	assert.Equal(t, "10.8675/data_42", resp.Data.ID)

	info := httpmock.GetCallCountInfo()
	assert.Equal(t, 1, info["POST "+testBaseURL+"/dois"])
	assert.Equal(t, 1, info["PUT "+testBaseURL+"/dois/10.8675/data_42"])
}

func TestCreateOrUpdateDoesNotUpdateOnOtherErrors(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", testBaseURL+"/dois",
		httpmock.NewStringResponder(422, `{"errors":[{"title":"Publisher can't be blank"}]}`))

	_, err := newTestClient().CreateOrUpdate(context.Background(), testMetadata())
	require.Error(t, err)

	var regErr *RegistryError
	require.True(t, errors.As(err, &regErr))
	assert.Equal(t, 422, regErr.StatusCode)
	assert.Equal(t, "create", regErr.Op)
	assert.False(t, regErr.AlreadyExists())
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestCreateReportsNetworkFailure(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", testBaseURL+"/dois",
		httpmock.NewErrorResponder(errors.New("connection refused")))

	_, err := newTestClient().Create(context.Background(), testMetadata())
	require.Error(t, err)

	var regErr *RegistryError
	require.True(t, errors.As(err, &regErr))
	assert.Equal(t, 0, regErr.StatusCode)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestPublishSendsEventOnlyUpdate(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("PUT", testBaseURL+"/dois/10.8675/data_42",
		func(req *http.Request) (*http.Response, error) {
			body, _ := io.ReadAll(req.Body)
			assert.JSONEq(t, `{"data":{"type":"dois","id":"10.8675/data_42","attributes":{"event":"publish"}}}`, string(body))
			return httpmock.NewStringResponse(200, `{"data":{"id":"10.8675/data_42","type":"dois","attributes":{"state":"findable"}}}`), nil
		})

	resp, err := newTestClient().Publish(context.Background(), "10.8675/data_42")
	require.NoError(t, err)
	assert.Equal(t, "findable", resp.Data.Attributes.State)
}

func TestDeleteAndGet(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("DELETE", testBaseURL+"/dois/10.8675/data_42",
		httpmock.NewStringResponder(204, ""))
	httpmock.RegisterResponder("GET", testBaseURL+"/dois/10.8675/data_42",
		httpmock.NewStringResponder(200, createdBody))
	httpmock.RegisterResponder("DELETE", testBaseURL+"/dois/10.8675/data_43",
		httpmock.NewStringResponder(405, `{"errors":[{"title":"Method not allowed"}]}`))

	client := newTestClient()
	assert.NoError(t, client.Delete(context.Background(), "10.8675/data_42"))

	resp, err := client.Get(context.Background(), "10.8675/data_42")
	require.NoError(t, err)
	assert.Equal(t, "https://public.seescience.org/data/2025/42", resp.Data.Attributes.URL)

	err = client.Delete(context.Background(), "10.8675/data_43")
	var regErr *RegistryError
	require.True(t, errors.As(err, &regErr))
	assert.Equal(t, 405, regErr.StatusCode)
}

func TestDryRunClientSendsNothing(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	dry := NewDryRunClient(newTestClient(), logger.Discard())
	resp, err := dry.CreateOrUpdate(context.Background(), testMetadata())
	require.NoError(t, err)
	assert.Equal(t, "10.8675/data_42", resp.Data.ID)
	assert.Equal(t, "draft", resp.Data.Attributes.State)

	_, err = dry.Publish(context.Background(), "10.8675/data_42")
	assert.NoError(t, err)
	assert.NoError(t, dry.Delete(context.Background(), "10.8675/data_42"))
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}
