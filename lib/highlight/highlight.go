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

package highlight

import (
	"fmt"
	"sort"
	"strings"
)

const (
	beginPrefix  = "B-"
	insidePrefix = "I-"
)

// Annotation is an entity span over a source string. Start and End are
// character (rune) offsets, Start inclusive and End exclusive.
type Annotation struct {
	Start int
	End   int
	Tag   string
}

// Segment is a contiguous run of the source string, either plain text or
// a tagged entity.
type Segment struct {
	Text      string `json:"text"`
	Tagged    bool   `json:"tagged"`
	Category  string `json:"category,omitempty"`
	Beginning bool   `json:"beginning,omitempty"`
}

// ParseTag splits a B-/I- label into its category and whether it marks the
// beginning of an entity. Labels without a recognised prefix are their own
// category.
func ParseTag(tag string) (category string, beginning bool) {
	switch {
	case strings.HasPrefix(tag, beginPrefix):
		return tag[len(beginPrefix):], true
	case strings.HasPrefix(tag, insidePrefix):
		return tag[len(insidePrefix):], false
	}
	return tag, false
}

/**
	Highlight partitions source into plain and tagged segments, left to right,
	with no gaps and no overlaps.

	Annotations are stable-sorted by Start on a copy, so the caller's slice is
	left untouched. Offsets are clamped into the source, an annotation that
	starts inside text which has already been emitted is clipped to begin at
	the cursor, and a span left empty after clamping is skipped. The cursor
	therefore only ever moves forward, and joining the segment texts always
	gives back source, provided source is valid UTF-8.
**/
func Highlight(source string, annotations []Annotation) []Segment {
	runes := []rune(source)
	if len(runes) == 0 {
		return nil
	}

	sorted := make([]Annotation, len(annotations))
	copy(sorted, annotations)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	segments := make([]Segment, 0, 2*len(sorted)+1)
	cursor := 0
	for _, annotation := range sorted {
		start := clamp(annotation.Start, len(runes))
		end := clamp(annotation.End, len(runes))
		if start < cursor {
			start = cursor
		}
		if end <= start {
			continue
		}

		if start > cursor {
			segments = append(segments, Segment{Text: string(runes[cursor:start])})
		}

		category, beginning := ParseTag(annotation.Tag)
		segments = append(segments, Segment{
			Text:      string(runes[start:end]),
			Tagged:    true,
			Category:  category,
			Beginning: beginning,
		})
		cursor = end
	}

	if cursor < len(runes) {
		segments = append(segments, Segment{Text: string(runes[cursor:])})
	}
	return segments
}

// Substring returns source[start:end] in rune offsets, clamped to the source.
func Substring(source string, start, end int) string {
	runes := []rune(source)
	start = clamp(start, len(runes))
	end = clamp(end, len(runes))
	if end <= start {
		return ""
	}
	return string(runes[start:end])
}

// Label is the hover text for a tagged segment.
func Label(segment Segment) string {
	return fmt.Sprintf("%s: %s", segment.Category, segment.Text)
}

// Concat joins the text of every segment. For any valid UTF-8 source,
// Concat(Highlight(source, annotations)) == source.
func Concat(segments []Segment) string {
	var b strings.Builder
	for _, segment := range segments {
		b.WriteString(segment.Text)
	}
	return b.String()
}

func clamp(offset, length int) int {
	if offset < 0 {
		return 0
	}
	if offset > length {
		return length
	}
	return offset
}
