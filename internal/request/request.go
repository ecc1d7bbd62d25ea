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

package request

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
)

// JSONAPIContentType is the media type DataCite expects on request bodies.
const JSONAPIContentType = "application/vnd.api+json"

// ToJsonReq converts a Go object to a JSON-encoded HTTP request payload.
//
// Parameters:
// - payload interface{}: The data structure to be serialized into JSON.
//
// Returns:
// - *bytes.Buffer: The JSON-encoded payload wrapped in a bytes buffer, ready to be sent in a request.
// - error: An error if the JSON marshalling process fails.
func ToJsonReq(payload interface{}) (*bytes.Buffer, error) {
	c, e := json.Marshal(payload)
	if e != nil {
		return nil, e
	}
	return bytes.NewBuffer(c), nil
}

// Call sends the request with the given client and returns the response with
// its body fully read. The body is closed before returning, so callers work
// with the returned bytes only. The Content-Type header is left untouched when
// the caller already set one.
//
// Parameters:
// - client *http.Client: The client to send the request with.
// - req *http.Request: The prepared HTTP request to send.
//
// Returns:
// - *http.Response: The raw HTTP response object (body already consumed).
// - []byte: The response body.
// - error: An error if sending the request or reading the body fails.
func Call(client *http.Client, req *http.Request) (*http.Response, []byte, error) {
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return resp, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	return resp, body, nil
}

// BasicAuth generates a basic HTTP authentication string by encoding the provided username and password.
//
// Returns:
// - string: A base64-encoded string of "username:password", without the "Basic " scheme prefix.
func BasicAuth(username, password string) string {
	auth := username + ":" + password
	return base64.StdEncoding.EncodeToString([]byte(auth))
}
