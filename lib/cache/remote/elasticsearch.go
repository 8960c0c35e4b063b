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
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v7"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/cache"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/predict"
)

const defaultIndex = "product-search-predictions"

// esDocument is what we index, one document per query.
type esDocument struct {
	Query    string            `json:"query"`
	Response *predict.Response `json:"response"`
	Created  time.Time         `json:"created"`
}

type esGetResponse struct {
	Found  bool       `json:"found"`
	Source esDocument `json:"_source"`
}

func NewElasticsearchClient(conf cache.ElasticsearchConfig, ttl time.Duration) (cache.Store, error) {
	c, err := newElasticsearchClient([]string{fmt.Sprintf("http://%s:%d", conf.Host, conf.Port)}, conf.Index, ttl)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func newElasticsearchClient(addresses []string, index string, ttl time.Duration) (*esClient, error) {
	c, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
	})
	if err != nil {
		return nil, err
	}
	if index == "" {
		index = defaultIndex
	}
	return &esClient{
		Client: c,
		index:  index,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

type esClient struct {
	*elasticsearch.Client
	index string
	ttl   time.Duration
	now   func() time.Time
}

func (e *esClient) Ready(ctx context.Context) bool {
	res, err := e.Info(e.Info.WithContext(ctx))
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return res.StatusCode == http.StatusOK
}

// Get treats documents older than the ttl as misses; they are overwritten
// on the next Set.
func (e *esClient) Get(ctx context.Context, key string) (*predict.Response, bool, error) {
	res, err := e.Client.Get(e.index, documentID(key), e.Client.Get.WithContext(ctx))
	if err != nil {
		return nil, false, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, false, nil
	} else if res.IsError() {
		return nil, false, errors.New(res.String())
	}

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, false, err
	}
	var doc esGetResponse
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, false, err
	}

	if !doc.Found || doc.Source.Response == nil || doc.Source.Query != key {
		return nil, false, nil
	}
	if e.ttl > 0 && e.now().Sub(doc.Source.Created) > e.ttl {
		return nil, false, nil
	}
	return doc.Source.Response, true, nil
}

func (e *esClient) Set(ctx context.Context, key string, resp *predict.Response) error {
	b, err := json.Marshal(esDocument{
		Query:    key,
		Response: resp,
		Created:  e.now().UTC(),
	})
	if err != nil {
		return err
	}

	res, err := e.Index(e.index, bytes.NewReader(b), e.Index.WithDocumentID(documentID(key)), e.Index.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return errors.New(res.String())
	}
	return nil
}

func documentID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
