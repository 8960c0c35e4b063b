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

package local

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/cache"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/predict"
)

const DefaultSize = 1024

// New returns an in-process store holding at most size responses, evicting
// the least recently used.
func New(size int) (cache.Store, error) {
	if size <= 0 {
		size = DefaultSize
	}
	store, err := lru.New[string, *predict.Response](size)
	if err != nil {
		return nil, err
	}
	return &local{store: store}, nil
}

type local struct {
	store *lru.Cache[string, *predict.Response]
}

func (l *local) Get(_ context.Context, key string) (*predict.Response, bool, error) {
	resp, ok := l.store.Get(key)
	if !ok {
		return nil, false, nil
	}
	return resp.Copy(), true, nil
}

func (l *local) Set(_ context.Context, key string, resp *predict.Response) error {
	l.store.Add(key, resp.Copy())
	return nil
}

func (l *local) Ready(context.Context) bool {
	return true
}
