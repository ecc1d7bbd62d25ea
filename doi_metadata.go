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
	"fmt"
	"strings"
	"time"

	"github.com/seescience/beamtime-server/model"
)

const (
	DefaultPublisher = "University of Chicago"
	DefaultVersion   = "0.1"
	DefaultLanguage  = "en"
	doiResolverBase  = "https://doi.org/"
	isoDateLayout    = "2006-01-02T15:04:05"
)

// MetadataOptions carries the site-wide values that go into every DOI.
type MetadataOptions struct {
	Prefix         string
	LandingURLBase string
	Publisher      string
	Version        string
	Language       string
	// Now is consulted only when the experiment has no start date.
	Now func() time.Time
}

func DefaultMetadataOptions(prefix, landingURLBase string) MetadataOptions {
	return MetadataOptions{
		Prefix:         prefix,
		LandingURLBase: strings.TrimRight(landingURLBase, "/"),
		Publisher:      DefaultPublisher,
		Version:        DefaultVersion,
		Language:       DefaultLanguage,
		Now:            time.Now,
	}
}

// DOIIdentifier returns the deterministic identifier of an experiment's
// dataset. Reprocessing the same experiment always targets the same DOI.
func DOIIdentifier(prefix string, experimentID int64) string {
	return fmt.Sprintf("%s/data_%d", prefix, experimentID)
}

// DOILink returns the resolver URL stored on the experiment.
func DOILink(id string) string {
	return doiResolverBase + id
}

// PublicationYear is the start date year, or the current year when the
// experiment has no start date.
func PublicationYear(e model.Experiment, now func() time.Time) int {
	if e.StartDate != nil {
		return e.StartDate.Year()
	}
	if now == nil {
		now = time.Now
	}
	return now().Year()
}

// BuildDOIMetadata derives the registry document for an experiment. It has
// no side effects and is rebuilt on every attempt.
func BuildDOIMetadata(snapshot model.ExperimentSnapshot, draft bool, opts MetadataOptions) model.DOIMetadata {
	year := PublicationYear(snapshot.Experiment, opts.Now)

	event := model.EventPublish
	if draft {
		event = model.EventDraft
	}

	issued := model.Date{DateType: "Issued"}
	if snapshot.StartDate != nil {
		date := snapshot.StartDate.Format(isoDateLayout)
		issued.Date = &date
	}

	return model.DOIMetadata{
		Creators:        creatorsFrom(snapshot.Spokesperson),
		Titles:          []model.Title{{Title: snapshot.DisplayTitle()}},
		Publisher:       opts.Publisher,
		PublicationYear: year,
		Types:           model.ResourceTypes{ResourceType: "Dataset", ResourceTypeGeneral: "Dataset"},
		Language:        opts.Language,
		Version:         opts.Version,
		Dates:           []model.Date{issued},
		RightsList: []model.Rights{{
			Rights:                 "Creative Commons Attribution 4.0 International",
			RightsURI:              "https://creativecommons.org/licenses/by/4.0/legalcode",
			RightsIdentifier:       "CC-BY-4.0",
			RightsIdentifierScheme: "SPDX",
			SchemeURI:              "https://spdx.org/licenses/",
		}},
		URL:   fmt.Sprintf("%s/%d/%d", opts.LandingURLBase, year, snapshot.ID),
		Event: event,
		DOI:   DOIIdentifier(opts.Prefix, snapshot.ID),
	}
}

func creatorsFrom(p *model.Person) []model.Creator {
	if p == nil {
		return []model.Creator{}
	}
	creator := model.Creator{
		Name:       fmt.Sprintf("%s, %s", p.LastName, p.FirstName),
		NameType:   "Personal",
		GivenName:  p.FirstName,
		FamilyName: p.LastName,
	}
	if p.ORCID != nil && strings.TrimSpace(*p.ORCID) != "" {
		creator.NameIdentifiers = []model.NameIdentifier{{
			NameIdentifier:       strings.TrimSpace(*p.ORCID),
			NameIdentifierScheme: "ORCID",
			SchemeURI:            "https://orcid.org",
		}}
	}
	return []model.Creator{creator}
}

// creatorNames joins the creator names for display on the landing page.
func creatorNames(m model.DOIMetadata) string {
	names := make([]string, 0, len(m.Creators))
	for _, c := range m.Creators {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}
