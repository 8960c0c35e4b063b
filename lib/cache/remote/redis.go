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

package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/cache"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/predict"
)

const redisKeyPrefix = "predict:"

// NewRedisClient returns a store backed by redis. Entries expire after ttl,
// or never when ttl is zero.
func NewRedisClient(conf cache.RedisConfig, ttl time.Duration) cache.Store {
	return &redisClient{
		Client: redis.NewClient(&redis.Options{
			Addr: fmt.Sprintf("%s:%d", conf.Host, conf.Port)}),
		ttl: ttl,
	}
}

type redisClient struct {
	*redis.Client
	ttl time.Duration
}

func (r *redisClient) Get(ctx context.Context, key string) (*predict.Response, bool, error) {
	b, err := r.WithContext(ctx).Get(redisKeyPrefix + key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}

	var resp predict.Response
	if err := json.Unmarshal(b, &resp); err != nil {
		return nil, false, err
	}
	return &resp, true, nil
}

func (r *redisClient) Set(ctx context.Context, key string, resp *predict.Response) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return r.WithContext(ctx).Set(redisKeyPrefix+key, b, r.ttl).Err()
}

func (r *redisClient) Ready(ctx context.Context) bool {
	return r.WithContext(ctx).Ping().Err() == nil
}
