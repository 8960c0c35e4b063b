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
	"encoding/json"
	"errors"

	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/highlight"
)

// Entity is one span returned by the recognition service.
type Entity struct {
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
	Entity     string `json:"entity"`
}

func (e Entity) Annotation() highlight.Annotation {
	return highlight.Annotation{
		Start: e.StartIndex,
		End:   e.EndIndex,
		Tag:   e.Entity,
	}
}

type Response struct {
	Entities      []Entity `json:"entities"`
	InputText     string   `json:"input_text,omitempty"`
	TotalEntities int      `json:"total_entities,omitempty"`
}

// Annotations converts the response entities, keeping their order.
func (r *Response) Annotations() []highlight.Annotation {
	if r == nil {
		return nil
	}
	annotations := make([]highlight.Annotation, len(r.Entities))
	for i, entity := range r.Entities {
		annotations[i] = entity.Annotation()
	}
	return annotations
}

// Copy returns a deep copy, so cached responses can be handed out safely.
func (r *Response) Copy() *Response {
	if r == nil {
		return nil
	}
	c := *r
	c.Entities = make([]Entity, len(r.Entities))
	copy(c.Entities, r.Entities)
	return &c
}

/**
	Decode parses a prediction response body.

	The body must be a JSON object. A missing or null "entities" field is an
	empty result, not an error. Anything else that does not match the
	expected shape, such as "entities" not being an array or an offset that
	is not an integer, is a *MalformedResponseError.
**/
func Decode(b []byte) (*Response, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, &MalformedResponseError{Err: err}
	}
	if fields == nil {
		return nil, &MalformedResponseError{Err: errors.New("response is not a JSON object")}
	}

	var response Response
	if err := json.Unmarshal(b, &response); err != nil {
		return nil, &MalformedResponseError{Err: err}
	}
	if response.Entities == nil {
		response.Entities = []Entity{}
	}
	return &response, nil
}
