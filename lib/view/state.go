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

package view

import (
	"strings"
	"unicode/utf8"

	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/highlight"
)

type Status int

const (
	Idle Status = iota
	Loading
	Failed
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Failed:
		return "failed"
	}
	return "idle"
}

// State is everything a page render needs. Transitions return a new State
// and never modify the one they are given.
type State struct {
	Query    string
	Entities []highlight.Annotation
	Status   Status
	Err      error
}

// Row is one line of the entity list.
type Row struct {
	Text     string `json:"text"`
	Category string `json:"category"`
	Start    int    `json:"start_index"`
	End      int    `json:"end_index"`
}

// Result is the serialisable form of a finished search.
type Result struct {
	Query    string              `json:"query"`
	Segments []highlight.Segment `json:"segments"`
	Entities []Row               `json:"entities"`
}

// SubmitRequested starts a search for query. It reports false, and returns
// s unchanged, when the query is blank or a search is already loading.
// Invalid UTF-8 is replaced with U+FFFD, so the query that is sent is the
// same text the segments are cut from.
func SubmitRequested(s State, query string) (State, bool) {
	query = strings.TrimSpace(strings.ToValidUTF8(query, string(utf8.RuneError)))
	if query == "" || s.Status == Loading {
		return s, false
	}
	return State{Query: query, Status: Loading}, true
}

func ResponseReceived(s State, entities []highlight.Annotation) State {
	received := make([]highlight.Annotation, len(entities))
	copy(received, entities)
	return State{Query: s.Query, Entities: received, Status: Idle}
}

func ResponseFailed(s State, err error) State {
	return State{Query: s.Query, Status: Failed, Err: err}
}

func (s State) ErrMessage() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Segments highlights the entities over the query.
func (s State) Segments() []highlight.Segment {
	return highlight.Highlight(s.Query, s.Entities)
}

// Rows lists the entities in the order the service returned them.
func (s State) Rows() []Row {
	rows := make([]Row, 0, len(s.Entities))
	for _, entity := range s.Entities {
		category, _ := highlight.ParseTag(entity.Tag)
		rows = append(rows, Row{
			Text:     highlight.Substring(s.Query, entity.Start, entity.End),
			Category: category,
			Start:    entity.Start,
			End:      entity.End,
		})
	}
	return rows
}

func (s State) Result() Result {
	segments := s.Segments()
	if segments == nil {
		segments = []highlight.Segment{}
	}
	return Result{
		Query:    s.Query,
		Segments: segments,
		Entities: s.Rows(),
	}
}
