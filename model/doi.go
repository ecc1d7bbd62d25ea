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

package model

const (
	EventDraft   = "draft"
	EventPublish = "publish"
	EventHide    = "hide"
)

type NameIdentifier struct {
	NameIdentifier       string `json:"nameIdentifier"`
	NameIdentifierScheme string `json:"nameIdentifierScheme"`
	SchemeURI            string `json:"schemeUri"`
}

type Creator struct {
	Name            string           `json:"name"`
	NameType        string           `json:"nameType"`
	GivenName       string           `json:"givenName"`
	FamilyName      string           `json:"familyName"`
	NameIdentifiers []NameIdentifier `json:"nameIdentifiers,omitempty"`
}

type Title struct {
	Title string `json:"title"`
}

type ResourceTypes struct {
	ResourceType        string `json:"resourceType"`
	ResourceTypeGeneral string `json:"resourceTypeGeneral"`
}

type Date struct {
	Date     *string `json:"date,omitempty"`
	DateType string  `json:"dateType"`
}

type Rights struct {
	Rights                 string `json:"rights"`
	RightsURI              string `json:"rightsUri"`
	RightsIdentifier       string `json:"rightsIdentifier"`
	RightsIdentifierScheme string `json:"rightsIdentifierScheme"`
	SchemeURI              string `json:"schemeUri"`
}

// DOIMetadata is the registry-ready description of a dataset. It is built
// fresh for every processing attempt.
type DOIMetadata struct {
	Creators        []Creator     `json:"creators"`
	Titles          []Title       `json:"titles"`
	Publisher       string        `json:"publisher"`
	PublicationYear int           `json:"publicationYear"`
	Types           ResourceTypes `json:"types"`
	Event           string        `json:"event"`
	DOI             string        `json:"doi,omitempty"`

	Language    string   `json:"language,omitempty"`
	Version     string   `json:"version,omitempty"`
	Dates       []Date   `json:"dates,omitempty"`
	RightsList  []Rights `json:"rightsList,omitempty"`
	URL         string   `json:"url,omitempty"`
	Sizes       []string `json:"sizes,omitempty"`
	Formats     []string `json:"formats,omitempty"`
	ContentURLs []string `json:"contentUrl,omitempty"`

	AlternateIdentifiers []map[string]interface{} `json:"alternateIdentifiers,omitempty"`
	Subjects             []map[string]interface{} `json:"subjects,omitempty"`
	Contributors         []map[string]interface{} `json:"contributors,omitempty"`
	RelatedIdentifiers   []map[string]interface{} `json:"relatedIdentifiers,omitempty"`
	Descriptions         []map[string]interface{} `json:"descriptions,omitempty"`
	GeoLocations         []map[string]interface{} `json:"geoLocations,omitempty"`
	FundingReferences    []map[string]interface{} `json:"fundingReferences,omitempty"`
}

// PrimaryTitle returns the first title or "Unknown".
func (m DOIMetadata) PrimaryTitle() string {
	if len(m.Titles) == 0 {
		return "Unknown"
	}
	return m.Titles[0].Title
}

// IsDraft reports whether the metadata requests a draft DOI.
func (m DOIMetadata) IsDraft() bool {
	return m.Event == EventDraft
}

// DataCitePayload is the JSON:API envelope accepted by the DataCite REST API.
type DataCitePayload struct {
	Data DataCiteData `json:"data"`
}

type DataCiteData struct {
	Type       string      `json:"type"`
	ID         string      `json:"id,omitempty"`
	Attributes interface{} `json:"attributes"`
}

type dataCiteAttributes struct {
	Prefix string `json:"prefix"`
	DOIMetadata
}

// ToDataCitePayload wraps the metadata in the registry envelope. The id is
// only set for updates.
func (m DOIMetadata) ToDataCitePayload(prefix, id string) DataCitePayload {
	return DataCitePayload{
		Data: DataCiteData{
			Type:       "dois",
			ID:         id,
			Attributes: dataCiteAttributes{Prefix: prefix, DOIMetadata: m},
		},
	}
}

// EventPayload builds the minimal update that only changes the DOI state.
func EventPayload(id, event string) DataCitePayload {
	return DataCitePayload{
		Data: DataCiteData{
			Type:       "dois",
			ID:         id,
			Attributes: map[string]string{"event": event},
		},
	}
}

// DataCiteResponse is the subset of a registry response the server reads.
type DataCiteResponse struct {
	Data struct {
		ID         string `json:"id"`
		Type       string `json:"type"`
		Attributes struct {
			DOI   string `json:"doi"`
			State string `json:"state"`
			URL   string `json:"url"`
		} `json:"attributes"`
	} `json:"data"`
}
