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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

const (
	predictPath = "/api/predict"
	healthPath  = "/api/predict/health"

	DefaultMaxQueryLength = 1000

	// responses larger than this are cut off and fail to decode
	maxResponseBytes = 1 << 20
)

type HttpClient interface {
	Do(*http.Request) (*http.Response, error)
}

type Config struct {
	URL            string        `mapstructure:"url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxQueryLength int           `mapstructure:"max_query_length"`
	Breaker        BreakerConfig `mapstructure:"breaker"`
}

type BreakerConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Failures uint32        `mapstructure:"failures"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Client talks to the recognition service's predict API.
type Client struct {
	url            string
	maxQueryLength int
	httpClient     HttpClient
	breaker        *gobreaker.CircuitBreaker
}

type predictRequest struct {
	Input string `json:"input"`
}

// HealthStatus is the document served by the predict health endpoint.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Message   string                 `json:"message"`
	ModelInfo map[string]interface{} `json:"model_info,omitempty"`
}

// NewClient builds a client for conf. httpClient may be nil, in which case a
// plain *http.Client with conf.Timeout is used.
func NewClient(conf Config, httpClient HttpClient) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: conf.Timeout}
	}

	c := &Client{
		url:            strings.TrimSuffix(conf.URL, "/"),
		maxQueryLength: conf.MaxQueryLength,
		httpClient:     httpClient,
	}
	if conf.Breaker.Enabled {
		c.breaker = newBreaker(conf.Breaker)
	}
	return c
}

func newBreaker(conf BreakerConfig) *gobreaker.CircuitBreaker {
	failures := conf.Failures
	if failures == 0 {
		failures = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "ner-predict",
		Timeout: conf.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Only an unreachable or failing service should trip the breaker,
		// not a body we could not decode.
		IsSuccessful: func(err error) bool {
			var transport *TransportError
			var status *StatusError
			switch {
			case errors.As(err, &transport):
				return false
			case errors.As(err, &status):
				return status.Code < http.StatusInternalServerError
			}
			return true
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
}

// Predict sends the trimmed query to the recognition service and decodes
// the entities it finds. Blank queries are never sent.
func (c *Client) Predict(ctx context.Context, query string) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if length := utf8.RuneCountInString(query); c.maxQueryLength > 0 && length > c.maxQueryLength {
		return nil, &QueryTooLongError{Length: length, Max: c.maxQueryLength}
	}

	if c.breaker == nil {
		return c.predict(ctx, query)
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.predict(ctx, query)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &TransportError{Err: fmt.Errorf("recognition service unavailable: %w", err)}
	} else if err != nil {
		return nil, err
	}
	return res.(*Response), nil
}

func (c *Client) predict(ctx context.Context, query string) (*Response, error) {
	body, err := json.Marshal(predictRequest{Input: query})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+predictPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	b, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return Decode(b)
}

// Health fetches the recognition service's health document. A non-success
// status is returned as a *StatusError alongside whatever document could
// be decoded.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+healthPath, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var status HealthStatus
	decodeErr := json.Unmarshal(b, &status)

	if !success(resp.StatusCode) {
		if decodeErr != nil {
			return nil, &StatusError{Code: resp.StatusCode}
		}
		return &status, &StatusError{Code: resp.StatusCode}
	}
	if decodeErr != nil {
		return nil, &MalformedResponseError{Err: decodeErr}
	}
	return &status, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return b, nil
}

func success(code int) bool {
	return code >= 200 && code < 300
}
