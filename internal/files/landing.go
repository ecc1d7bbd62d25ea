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

package files

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
)

//go:embed templates/doi_index.html
var templateFS embed.FS

var landingTemplate = template.Must(template.ParseFS(templateFS, "templates/doi_index.html"))

const (
	LandingPublisher   = "The University of Chicago"
	LicenseName        = "CC-BY-4.0"
	LicenseURL         = "https://creativecommons.org/licenses/by/4.0/legalcode"
	metadataAPIBaseURL = "https://api.datacite.org/dois/application/vnd.datacite.datacite+json/"
)

// LandingPage holds what the public index page shows for a DOI.
type LandingPage struct {
	ExperimentID int64
	Year         int
	DOI          string
	Title        string
	Authors      string
	Version      string
}

type landingView struct {
	LandingPage
	Publisher   string
	LicenseName string
	LicenseURL  string
	MetadataURL string
}

// LandingFolder returns base/doi_base_path/year/id.
func (b *Builder) LandingFolder(experimentID int64, year int, basePath string) string {
	return filepath.Join(basePath, b.DOIBasePath, strconv.Itoa(year), strconv.FormatInt(experimentID, 10))
}

// EnsurePublicLandingFolder creates the public folder that the DOI URL
// resolves to.
func (b *Builder) EnsurePublicLandingFolder(experimentID int64, year int, basePath string) (string, error) {
	folder := b.LandingFolder(experimentID, year, basePath)
	if exists(folder) {
		return folder, nil
	}
	if err := b.mkdirAll(folder); err != nil {
		return "", opError("ensure_public_landing_folder",
			fmt.Sprintf("failed to create DOI public folder for experiment %d", experimentID), err)
	}
	b.logger.WithField("path", folder).Info("Created DOI public folder")
	return folder, nil
}

// RenderLandingIndex renders the landing page HTML.
func RenderLandingIndex(page LandingPage) ([]byte, error) {
	if page.Authors == "" {
		page.Authors = "Not specified"
	}
	view := landingView{
		LandingPage: page,
		Publisher:   LandingPublisher,
		LicenseName: LicenseName,
		LicenseURL:  LicenseURL,
		MetadataURL: metadataAPIBaseURL + page.DOI,
	}

	var buf bytes.Buffer
	if err := landingTemplate.Execute(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteLandingIndex writes index.html into the landing folder. An existing
// index is never overwritten; the result reports whether a file was written.
func (b *Builder) WriteLandingIndex(page LandingPage, basePath string) (bool, error) {
	const op = "write_landing_index"

	content, err := RenderLandingIndex(page)
	if err != nil {
		return false, opError(op, "failed to render landing page", err)
	}

	target := filepath.Join(b.LandingFolder(page.ExperimentID, page.Year, basePath), "index.html")
	written, err := b.writeIfMissing(target, content)
	if err != nil {
		return false, opError(op, fmt.Sprintf("failed to create index.html for experiment %d", page.ExperimentID), err)
	}

	logger := b.logger.WithFields(logrus.Fields{"experiment_id": page.ExperimentID, "path": target})
	if written {
		logger.Info("Created landing index")
	} else {
		logger.Info("Landing index already exists, skipping")
	}
	return written, nil
}
