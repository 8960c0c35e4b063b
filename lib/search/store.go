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
	"fmt"

	"github.com/rs/zerolog/log"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/cache"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/cache/local"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/cache/remote"
)

// OpenCache returns the store named by conf.Type, or nil when caching is
// off.
func OpenCache(conf cache.Config) (cache.Store, error) {
	switch conf.Type {
	case "", cache.None:
		return nil, nil
	case cache.Local:
		log.Info().Int("size", conf.Size).Msg("using local prediction cache")
		return local.New(conf.Size)
	case cache.Redis:
		log.Info().Str("host", conf.Redis.Host).Int("port", conf.Redis.Port).Msg("using redis prediction cache")
		return remote.NewRedisClient(conf.Redis, conf.TTL), nil
	case cache.Elasticsearch:
		log.Info().Str("host", conf.Elasticsearch.Host).Int("port", conf.Elasticsearch.Port).Msg("using elasticsearch prediction cache")
		return remote.NewElasticsearchClient(conf.Elasticsearch, conf.TTL)
	}
	return nil, fmt.Errorf("unknown cache type %q", conf.Type)
}
