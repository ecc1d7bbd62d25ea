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
	"database/sql"
	"errors"
	"strings"

	"github.com/seescience/beamtime-server/internal/apierror"
)

const (
	InfoKeyBasePath   = "base_path"
	InfoKeyEsafFolder  = "esaf_pdf_folder"
)

// GetInfoValue returns the value stored under key, or nil when the key is
// absent or NULL.
func (d Datasource) GetInfoValue(ctx context.Context, key string) (*string, error) {
	var value *string
	err := d.Conn.QueryRowContext(ctx, `SELECT value FROM info WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapError("get_info_value", "failed to read info key "+key, err)
	}
	return value, nil
}

// GetBasePath returns the storage root all experiment paths are relative to.
func (d Datasource) GetBasePath(ctx context.Context) (string, error) {
	value, err := d.GetInfoValue(ctx, InfoKeyBasePath)
	if err != nil {
		return "", err
	}
	if value == nil || strings.TrimSpace(*value) == "" {
		return "", apierror.NewOpError(apierror.ErrNotFound, "get_base_path", "info key base_path is not set", nil)
	}
	return strings.TrimSpace(*value), nil
}

func (d Datasource) GetEsafSourceFolder(ctx context.Context) (*string, error) {
	return d.GetInfoValue(ctx, InfoKeyEsafFolder)
}
