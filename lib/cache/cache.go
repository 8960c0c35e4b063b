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

package cache

import (
	"context"
	"time"

	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/predict"
)

// Store caches successful prediction responses keyed by the trimmed query.
// The key is used verbatim because entity offsets depend on the exact text.
type Store interface {
	Get(ctx context.Context, key string) (*predict.Response, bool, error)
	Set(ctx context.Context, key string, resp *predict.Response) error
	Ready(ctx context.Context) bool
}

type Type string

const (
	None          Type = "none"
	Local         Type = "local"
	Redis         Type = "redis"
	Elasticsearch Type = "elasticsearch"
)

type Config struct {
	Type          Type
	Size          int
	TTL           time.Duration
	Redis         RedisConfig
	Elasticsearch ElasticsearchConfig
}

type RedisConfig struct {
	Host string
	Port int
}

type ElasticsearchConfig struct {
	Host  string
	Port  int
	Index string
}
