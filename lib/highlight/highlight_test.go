package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTag(t *testing.T) {
	for _, test := range []struct {
		tag               string
		expectedCategory  string
		expectedBeginning bool
	}{
		{tag: "B-PRODUCT", expectedCategory: "PRODUCT", expectedBeginning: true},
		{tag: "I-PRODUCT", expectedCategory: "PRODUCT", expectedBeginning: false},
		{tag: "PRODUCT", expectedCategory: "PRODUCT", expectedBeginning: false},
		{tag: "b-PRODUCT", expectedCategory: "b-PRODUCT", expectedBeginning: false},
		{tag: "B-", expectedCategory: "", expectedBeginning: true},
		{tag: "", expectedCategory: "", expectedBeginning: false},
	} {
		t.Log(test.tag)
		category, beginning := ParseTag(test.tag)
		assert.Equal(t, test.expectedCategory, category)
		assert.Equal(t, test.expectedBeginning, beginning)
	}
}

func TestHighlight(t *testing.T) {
	for _, test := range []struct {
		name        string
		source      string
		annotations []Annotation
		expected    []Segment
	}{
		{
			name:     "no annotations",
			source:   "хлеб",
			expected: []Segment{{Text: "хлеб"}},
		},
		{
			name:   "empty source",
			source: "",
		},
		{
			name:   "two part product",
			source: "сгущенное молоко",
			annotations: []Annotation{
				{Start: 0, End: 9, Tag: "B-PRODUCT"},
				{Start: 10, End: 16, Tag: "I-PRODUCT"},
			},
			expected: []Segment{
				{Text: "сгущенное", Tagged: true, Category: "PRODUCT", Beginning: true},
				{Text: " "},
				{Text: "молоко", Tagged: true, Category: "PRODUCT"},
			},
		},
		{
			name:   "unsorted annotations with leading and trailing text",
			source: "молоко 2.5% 1л Домик",
			annotations: []Annotation{
				{Start: 12, End: 14, Tag: "B-VOLUME"},
				{Start: 7, End: 11, Tag: "B-PERCENT"},
			},
			expected: []Segment{
				{Text: "молоко "},
				{Text: "2.5%", Tagged: true, Category: "PERCENT", Beginning: true},
				{Text: " "},
				{Text: "1л", Tagged: true, Category: "VOLUME", Beginning: true},
				{Text: " Домик"},
			},
		},
		{
			name:   "overlapping annotation is clipped",
			source: "abcdef",
			annotations: []Annotation{
				{Start: 0, End: 4, Tag: "B-X"},
				{Start: 2, End: 6, Tag: "I-X"},
			},
			expected: []Segment{
				{Text: "abcd", Tagged: true, Category: "X", Beginning: true},
				{Text: "ef", Tagged: true, Category: "X"},
			},
		},
		{
			name:   "nested annotation does not move the cursor back",
			source: "abcdef",
			annotations: []Annotation{
				{Start: 0, End: 5, Tag: "B-X"},
				{Start: 1, End: 3, Tag: "B-Y"},
			},
			expected: []Segment{
				{Text: "abcde", Tagged: true, Category: "X", Beginning: true},
				{Text: "f"},
			},
		},
		{
			name:   "out of range offsets are clamped",
			source: "abc",
			annotations: []Annotation{
				{Start: -2, End: 1, Tag: "A"},
				{Start: 2, End: 40, Tag: "B"},
			},
			expected: []Segment{
				{Text: "a", Tagged: true, Category: "A"},
				{Text: "b"},
				{Text: "c", Tagged: true, Category: "B"},
			},
		},
		{
			name:   "inverted span is skipped",
			source: "abc",
			annotations: []Annotation{
				{Start: 2, End: 1, Tag: "B-X"},
			},
			expected: []Segment{{Text: "abc"}},
		},
	} {
		t.Log(test.name)
		actual := Highlight(test.source, test.annotations)
		assert.Equal(t, test.expected, actual)
		assert.Equal(t, test.source, Concat(actual))
	}
}

func TestHighlightIsStableForEqualStarts(t *testing.T) {
	segments := Highlight("ab", []Annotation{
		{Start: 0, End: 1, Tag: "B-FIRST"},
		{Start: 0, End: 2, Tag: "B-SECOND"},
	})

	assert.Equal(t, []Segment{
		{Text: "a", Tagged: true, Category: "FIRST", Beginning: true},
		{Text: "b", Tagged: true, Category: "SECOND", Beginning: true},
	}, segments)
}

func TestHighlightDoesNotMutateInput(t *testing.T) {
	annotations := []Annotation{
		{Start: 4, End: 5, Tag: "B-B"},
		{Start: 0, End: 1, Tag: "B-A"},
	}
	Highlight("a b c", annotations)

	assert.Equal(t, "B-B", annotations[0].Tag)
	assert.Equal(t, "B-A", annotations[1].Tag)
}

func TestSubstring(t *testing.T) {
	assert.Equal(t, "молоко", Substring("сгущенное молоко", 10, 16))
	assert.Equal(t, "око", Substring("сгущенное молоко", 13, 99))
	assert.Equal(t, "", Substring("хлеб", 3, 1))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "PRODUCT: молоко", Label(Segment{Text: "молоко", Tagged: true, Category: "PRODUCT"}))
}
