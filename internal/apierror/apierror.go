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

package apierror

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrPersistence    ErrorCode = "PERSISTENCE"
	ErrDataManagement ErrorCode = "DATA_MANAGEMENT"
	ErrRegistry       ErrorCode = "REGISTRY"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
)

// APIError is the typed error shared by the datasource, the filesystem
// builder and the registry client. Op names the failing operation and
// Details carries the underlying cause.
type APIError struct {
	Code    ErrorCode   `json:"code"`
	Op      string      `json:"op,omitempty"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e APIError) Error() string {
	if cause, ok := e.Details.(error); ok && cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause when Details holds an error.
func (e APIError) Unwrap() error {
	if cause, ok := e.Details.(error); ok {
		return cause
	}
	return nil
}

func NewAPIError(code ErrorCode, message string, details interface{}) APIError {
	return APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewOpError is NewAPIError with the failing operation recorded.
func NewOpError(code ErrorCode, op, message string, details interface{}) APIError {
	return APIError{
		Code:    code,
		Op:      op,
		Message: message,
		Details: details,
	}
}

// CodeOf returns the code of the first APIError in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	return "", false
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
