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
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/seescience/beamtime-server/internal/apierror"
)

// wrapError converts driver errors into APIErrors. Missing rows become
// NOT_FOUND, everything else PERSISTENCE.
func wrapError(op, message string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apierror.NewOpError(apierror.ErrNotFound, op, message, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "undefined_table", "undefined_column":
			return apierror.NewOpError(apierror.ErrPersistence, op, fmt.Sprintf("%s: schema mismatch", message), err)
		case "foreign_key_violation":
			return apierror.NewOpError(apierror.ErrPersistence, op, fmt.Sprintf("%s: invalid reference", message), err)
		}
	}
	return apierror.NewOpError(apierror.ErrPersistence, op, message, err)
}
