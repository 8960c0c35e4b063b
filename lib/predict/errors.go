/*
 * Copyright 2022 Medicines Discovery Catapult
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package predict

import (
	"errors"
	"fmt"
)

// ErrEmptyQuery is returned for blank queries. Nothing is sent upstream.
var ErrEmptyQuery = errors.New("empty query")

const (
	KindEmpty     = "empty"
	KindTooLong   = "too_long"
	KindTransport = "transport"
	KindStatus    = "status"
	KindMalformed = "malformed"
)

// QueryTooLongError is returned when a query has more characters than the
// recognition service accepts.
type QueryTooLongError struct {
	Length int
	Max    int
}

func (e *QueryTooLongError) Error() string {
	return fmt.Sprintf("query is too long: %d characters, maximum %d", e.Length, e.Max)
}

// TransportError wraps a network level failure. Its message is the
// underlying error's message, unchanged.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is returned for any non-success response status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error, status %d", e.Code)
}

// MalformedResponseError is returned when a response body is not the
// expected JSON document.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response: %s", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// Kind names the class of a prediction error, or "" for errors raised
// elsewhere.
func Kind(err error) string {
	var (
		tooLong   *QueryTooLongError
		transport *TransportError
		status    *StatusError
		malformed *MalformedResponseError
	)
	switch {
	case errors.Is(err, ErrEmptyQuery):
		return KindEmpty
	case errors.As(err, &tooLong):
		return KindTooLong
	case errors.As(err, &transport):
		return KindTransport
	case errors.As(err, &status):
		return KindStatus
	case errors.As(err, &malformed):
		return KindMalformed
	}
	return ""
}
