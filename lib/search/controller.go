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

package search

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/cache"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/highlight"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/palette"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/predict"
)

type Client interface {
	Predict(ctx context.Context, query string) (*predict.Response, error)
	Health(ctx context.Context) (*predict.HealthStatus, error)
}

const (
	CacheDisabled    = "disabled"
	CacheReady       = "ready"
	CacheUnavailable = "unavailable"
)

type HealthReport struct {
	Ready         bool                  `json:"ready"`
	Upstream      *predict.HealthStatus `json:"upstream,omitempty"`
	UpstreamError string                `json:"upstream_error,omitempty"`
	Cache         string                `json:"cache"`
}

// Controller serves predictions from the cache when it can and from the
// recognition service otherwise.
type Controller struct {
	client  Client
	cache   cache.Store
	palette palette.Palette
}

// NewController wires a controller. store may be nil to disable caching.
func NewController(client Client, store cache.Store, p palette.Palette) *Controller {
	return &Controller{
		client:  client,
		cache:   store,
		palette: p,
	}
}

func (c *Controller) Predict(ctx context.Context, query string) (*predict.Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, predict.ErrEmptyQuery
	}
	start := time.Now()

	if c.cache != nil {
		resp, ok, err := c.cache.Get(ctx, query)
		if err != nil {
			log.Warn().Err(err).Msg("prediction cache lookup failed")
		} else if ok {
			log.Debug().Int("query_length", len([]rune(query))).Int("entities", len(resp.Entities)).Bool("cached", true).Dur("latency", time.Since(start)).Msg("predicted")
			return c.filter(resp), nil
		}
	}

	resp, err := c.client.Predict(ctx, query)
	if err != nil {
		log.Error().Err(err).Str("kind", predict.Kind(err)).Dur("latency", time.Since(start)).Msg("prediction failed")
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, query, resp); err != nil {
			log.Warn().Err(err).Msg("prediction cache store failed")
		}
	}

	log.Info().Int("query_length", len([]rune(query))).Int("entities", len(resp.Entities)).Bool("cached", false).Dur("latency", time.Since(start)).Msg("predicted")
	return c.filter(resp), nil
}

// filter drops hidden categories from a copy of resp.
func (c *Controller) filter(resp *predict.Response) *predict.Response {
	if resp == nil {
		return &predict.Response{Entities: []predict.Entity{}}
	}
	res := resp.Copy()
	entities := make([]predict.Entity, 0, len(res.Entities))
	for _, entity := range res.Entities {
		category, _ := highlight.ParseTag(entity.Entity)
		if c.palette.Allowed(category) {
			entities = append(entities, entity)
		}
	}
	res.Entities = entities
	return res
}

func (c *Controller) Health(ctx context.Context) HealthReport {
	report := HealthReport{Cache: CacheDisabled}

	status, err := c.client.Health(ctx)
	report.Upstream = status
	if err != nil {
		report.UpstreamError = err.Error()
	}
	report.Ready = err == nil

	if c.cache != nil {
		report.Cache = CacheUnavailable
		if c.cache.Ready(ctx) {
			report.Cache = CacheReady
		}
	}
	return report
}
