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
	"encoding/json"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wacul/ptr"

	"github.com/seescience/beamtime-server/model"
)

func fixedNow() time.Time {
	return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
}

func testMetadataOptions() MetadataOptions {
	opts := DefaultMetadataOptions("10.8675", "https://public.seescience.org/data/")
	opts.Now = fixedNow
	return opts
}

func janeDoeSnapshot() model.ExperimentSnapshot {
	start := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	return model.ExperimentSnapshot{
		Experiment: model.Experiment{
			ID:        42,
			Title:     ptr.String("Iron at pressure"),
			StartDate: &start,
		},
		Spokesperson: &model.Person{
			ID:        5,
			FirstName: "Jane",
			LastName:  "Doe",
			ORCID:     ptr.String("0000-0002-1825-0097"),
		},
	}
}

func TestBuildDOIMetadata(t *testing.T) {
	m := BuildDOIMetadata(janeDoeSnapshot(), false, testMetadataOptions())

	assert.Equal(t, "10.8675/data_42", m.DOI)
	assert.Equal(t, model.EventPublish, m.Event)
	assert.Equal(t, 2025, m.PublicationYear)
	assert.Equal(t, "https://public.seescience.org/data/2025/42", m.URL)
	assert.Equal(t, "University of Chicago", m.Publisher)
	assert.Equal(t, "0.1", m.Version)
	assert.Equal(t, "en", m.Language)
	assert.Equal(t, "Iron at pressure", m.PrimaryTitle())
	assert.Equal(t, model.ResourceTypes{ResourceType: "Dataset", ResourceTypeGeneral: "Dataset"}, m.Types)

	require.Len(t, m.Creators, 1)
	creator := m.Creators[0]
	assert.Equal(t, "Doe, Jane", creator.Name)
	assert.Equal(t, "Personal", creator.NameType)
	assert.Equal(t, "Jane", creator.GivenName)
	assert.Equal(t, "Doe", creator.FamilyName)
	require.Len(t, creator.NameIdentifiers, 1)
	assert.Equal(t, "ORCID", creator.NameIdentifiers[0].NameIdentifierScheme)
	assert.Equal(t, "https://orcid.org", creator.NameIdentifiers[0].SchemeURI)

	require.Len(t, m.Dates, 1)
	assert.Equal(t, "Issued", m.Dates[0].DateType)
	assert.Equal(t, "2025-03-14T09:30:00", *m.Dates[0].Date)

	require.Len(t, m.RightsList, 1)
	assert.Equal(t, "CC-BY-4.0", m.RightsList[0].RightsIdentifier)
	assert.Equal(t, "SPDX", m.RightsList[0].RightsIdentifierScheme)
}

func TestBuildDOIMetadataDraft(t *testing.T) {
	m := BuildDOIMetadata(janeDoeSnapshot(), true, testMetadataOptions())
	assert.Equal(t, model.EventDraft, m.Event)
	assert.True(t, m.IsDraft())
}

func TestBuildDOIMetadataIsDeterministic(t *testing.T) {
	opts := testMetadataOptions()
	snapshot := janeDoeSnapshot()
	assert.Equal(t, BuildDOIMetadata(snapshot, false, opts), BuildDOIMetadata(snapshot, false, opts))

	for i := 0; i < 5; i++ {
		id := int64(gofakeit.Number(1, 1_000_000))
		snapshot.ID = id
		assert.Equal(t, DOIIdentifier("10.8675", id), BuildDOIMetadata(snapshot, false, opts).DOI)
	}
}

func TestBuildDOIMetadataWithMissingFields(t *testing.T) {
	snapshot := model.ExperimentSnapshot{Experiment: model.Experiment{ID: 43}}
	m := BuildDOIMetadata(snapshot, false, testMetadataOptions())

	assert.Equal(t, "Beamtime Data - Experiment 43", m.PrimaryTitle())
	assert.Equal(t, 2026, m.PublicationYear)
	assert.Equal(t, "https://public.seescience.org/data/2026/43", m.URL)
	assert.NotNil(t, m.Creators)
	assert.Empty(t, m.Creators)
	require.Len(t, m.Dates, 1)
	assert.Nil(t, m.Dates[0].Date)

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"creators":[]`)
	assert.Contains(t, string(raw), `"dates":[{"dateType":"Issued"}]`)
}

func TestBuildDOIMetadataOmitsBlankORCID(t *testing.T) {
	snapshot := janeDoeSnapshot()
	snapshot.Spokesperson.ORCID = ptr.String("  ")
	m := BuildDOIMetadata(snapshot, false, testMetadataOptions())
	require.Len(t, m.Creators, 1)
	assert.Empty(t, m.Creators[0].NameIdentifiers)
}

func TestDOILink(t *testing.T) {
	assert.Equal(t, "https://doi.org/10.8675/data_42", DOILink(DOIIdentifier("10.8675", 42)))
}
