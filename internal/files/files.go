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
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/seescience/beamtime-server/internal/apierror"
	"github.com/seescience/beamtime-server/model"
)

const (
	infoFolder            = "info"
	pvlogFolder           = "pvlog"
	acknowledgmentsFolder = "acknowledgments"

	maxSegmentLength = 255
	invalidPathChars = `<>:"|?*\`
)

// Builder creates the on-disk layout of an experiment. Every operation is
// idempotent: existing folders and files are left untouched.
type Builder struct {
	// DOIBasePath is the public landing tree root, relative to the base path.
	DOIBasePath string
	// BeamtimeFolder is the optional archival folder, relative to the base path.
	BeamtimeFolder string
	// DryRun logs every mutation instead of performing it.
	DryRun bool

	logger logrus.FieldLogger
}

func NewBuilder(doiBasePath, beamtimeFolder string, dryRun bool, logger logrus.FieldLogger) *Builder {
	return &Builder{
		DOIBasePath:    doiBasePath,
		BeamtimeFolder: beamtimeFolder,
		DryRun:         dryRun,
		logger:         logger,
	}
}

func opError(op, message string, cause error) error {
	return apierror.NewOpError(apierror.ErrDataManagement, op, message, cause)
}

// ValidateRelativePath checks an experiment path before it is joined to the
// base path. Separators are allowed; parent references and characters that
// are unsafe on common filesystems are not.
func ValidateRelativePath(relPath string) error {
	trimmed := strings.TrimSpace(relPath)
	if strings.Trim(trimmed, "/") == "" {
		return errors.New("path is empty")
	}
	if strings.ContainsAny(trimmed, invalidPathChars) {
		return fmt.Errorf("path %q contains invalid characters", relPath)
	}
	for _, segment := range strings.Split(trimmed, "/") {
		if segment == ".." {
			return fmt.Errorf("path %q escapes the base path", relPath)
		}
		if len(segment) > maxSegmentLength {
			return fmt.Errorf("path segment longer than %d characters", maxSegmentLength)
		}
	}
	return nil
}

// CreateExperimentTree ensures base/rel with its info and pvlog subfolders,
// and writes one text file per acknowledgment. The returned path is relative
// to basePath with a leading slash.
func (b *Builder) CreateExperimentTree(relPath, basePath string, acks []model.Acknowledgment) (string, error) {
	const op = "create_experiment_tree"

	if err := ValidateRelativePath(relPath); err != nil {
		return "", opError(op, "invalid experiment path", err)
	}

	folder := filepath.Join(basePath, strings.TrimSpace(relPath))
	for _, dir := range []string{filepath.Join(folder, infoFolder), filepath.Join(folder, pvlogFolder)} {
		if err := b.mkdirAll(dir); err != nil {
			return "", opError(op, fmt.Sprintf("failed to create folders at %s", folder), err)
		}
	}
	b.logger.WithField("path", folder).Info("Created default subfolders (info, pvlog)")

	if len(acks) > 0 {
		ackFolder := filepath.Join(folder, infoFolder, acknowledgmentsFolder)
		if err := b.mkdirAll(ackFolder); err != nil {
			return "", opError(op, fmt.Sprintf("failed to create folder %s", ackFolder), err)
		}
		b.writeAcknowledgments(ackFolder, acks)
	}

	return relativeToBase(folder, basePath), nil
}

// AcknowledgmentFilename derives a filesystem-safe file name from an
// acknowledgment title.
func AcknowledgmentFilename(ack model.Acknowledgment) string {
	safe := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			return r
		}
		return -1
	}, ack.Title)
	safe = strings.TrimRight(safe, " ")
	if safe == "" {
		safe = fmt.Sprintf("Acknowledgment_%d", ack.ID)
	}
	return safe + ".txt"
}

func (b *Builder) writeAcknowledgments(folder string, acks []model.Acknowledgment) {
	created := 0
	for _, ack := range acks {
		name := AcknowledgmentFilename(ack)
		target := filepath.Join(folder, name)
		content := fmt.Sprintf("Title: %s\n\n%s", ack.Title, ack.Text)

		written, err := b.writeIfMissing(target, []byte(content))
		if err != nil {
			b.logger.WithFields(logrus.Fields{"acknowledgment_id": ack.ID, "error": err}).Warn("Failed to create acknowledgment file")
			continue
		}
		if !written {
			b.logger.WithField("file", name).Info("Acknowledgment file already exists, skipping")
			continue
		}
		created++
	}
	b.logger.WithFields(logrus.Fields{"path": folder, "created": created}).Info("Processed acknowledgment files")
}

func (b *Builder) mkdirAll(dir string) error {
	if b.DryRun {
		b.logger.WithField("path", dir).Info("[DRY RUN] Would create folder")
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// writeIfMissing creates the file with the given content unless it already
// exists. It reports whether a file was written.
func (b *Builder) writeIfMissing(path string, content []byte) (bool, error) {
	if exists(path) {
		return false, nil
	}
	if b.DryRun {
		b.logger.WithField("path", path).Info("[DRY RUN] Would write file")
		return true, nil
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return false, err
	}
	return true, f.Close()
}

// copyIfMissing copies src to dst unless dst exists, keeping the source
// modification time. It reports whether a copy was made.
func (b *Builder) copyIfMissing(src, dst string) (bool, error) {
	if exists(dst) {
		return false, nil
	}
	if b.DryRun {
		b.logger.WithFields(logrus.Fields{"source": src, "target": dst}).Info("[DRY RUN] Would copy file")
		return true, nil
	}

	in, err := os.Open(src)
	if err != nil {
		return false, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return false, err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return false, err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return false, err
	}
	if err := out.Close(); err != nil {
		return false, err
	}
	return true, os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// relativeToBase returns path relative to base with a leading slash, or the
// path unchanged when it does not live under base.
func relativeToBase(path, base string) string {
	rel, ok := relativePath(path, base)
	if !ok {
		return path
	}
	if rel == "." {
		return "/"
	}
	return "/" + rel
}

// relativePath returns path relative to base in slash form. ok is false when
// base is empty or path lies outside it.
func relativePath(path, base string) (string, bool) {
	if base == "" {
		return "", false
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
