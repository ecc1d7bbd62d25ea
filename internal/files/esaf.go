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
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"
)

// FindAdministrativeFiles returns every ESAF-{id}*.pdf below searchPath in
// lexical order. A missing search path yields no matches.
func FindAdministrativeFiles(searchPath string, experimentID int64) ([]string, error) {
	if !exists(searchPath) {
		return nil, nil
	}
	pattern := fmt.Sprintf("**/ESAF-%d*.pdf", experimentID)
	matches, err := doublestar.Glob(os.DirFS(searchPath), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, filepath.Join(searchPath, filepath.FromSlash(m)))
	}
	return out, nil
}

// CopyAdministrativeFile copies the experiment's ESAF PDF from
// sourceFolder/runName into the experiment info folder and, when an archival
// folder is configured, into base/beamtime/esaf/run. It returns the archival
// path relative to basePath, or nil when there is nothing to record.
func (b *Builder) CopyAdministrativeFile(ctx context.Context, experimentID int64, runName, sourceFolder, infoFolder, basePath string) (*string, error) {
	const op = "copy_administrative_file"
	logger := b.logger.WithField("experiment_id", experimentID)

	if sourceFolder == "" || runName == "" {
		logger.WithFields(logrus.Fields{"source_folder": sourceFolder, "run": runName}).Warn("Missing ESAF folder or run name")
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	searchPath := filepath.Join(sourceFolder, runName)
	if !exists(searchPath) {
		logger.WithField("path", searchPath).Warn("ESAF search path does not exist")
		return nil, nil
	}

	matches, err := FindAdministrativeFiles(searchPath, experimentID)
	if err != nil {
		return nil, opError(op, fmt.Sprintf("failed to search %s", searchPath), err)
	}
	if len(matches) == 0 {
		logger.WithField("path", searchPath).Info("No ESAF file found")
		return nil, nil
	}
	if len(matches) > 1 {
		logger.WithField("matches", matches).Warn("Multiple ESAF files found, using first one")
	}

	source := matches[0]
	name := filepath.Base(source)

	copied, err := b.copyIfMissing(source, filepath.Join(infoFolder, name))
	if err != nil {
		return nil, opError(op, fmt.Sprintf("failed to copy %s to info folder", name), err)
	}
	if copied {
		logger.WithField("file", name).Info("Copied ESAF file to info folder")
	} else {
		logger.WithField("file", name).Info("ESAF file already exists in info folder, skipping")
	}

	if b.BeamtimeFolder == "" {
		logger.Info("Beamtime folder not configured, skipping archival ESAF copy")
		return nil, nil
	}

	archive := filepath.Join(basePath, b.BeamtimeFolder, "esaf", runName)
	if err := b.mkdirAll(archive); err != nil {
		logger.WithField("error", err).Warn("Failed to create archival ESAF folder")
		return nil, nil
	}
	target := filepath.Join(archive, name)
	if _, err := b.copyIfMissing(source, target); err != nil {
		logger.WithField("error", err).Warn("Failed to copy ESAF file to beamtime folder")
		return nil, nil
	}

	// Stored relative to base_path without a leading slash, unlike the
	// experiment folder.
	rel, ok := relativePath(target, basePath)
	if !ok {
		rel = target
	}
	logger.WithField("path", rel).Info("ESAF file available in beamtime folder")
	return &rel, nil
}

// InfoFolder returns the info subfolder of an experiment whose path is
// relative to basePath.
func InfoFolder(basePath, experimentPath string) string {
	return filepath.Join(basePath, path.Clean("/"+experimentPath), infoFolder)
}
