package view

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/highlight"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/predict"
)

func TestSubmitRequested(t *testing.T) {
	previous := State{
		Query:    "хлеб",
		Entities: []highlight.Annotation{{Start: 0, End: 4, Tag: "B-TYPE"}},
		Status:   Idle,
	}

	for _, test := range []struct {
		name          string
		state         State
		query         string
		expectedState State
		expectedOk    bool
	}{
		{
			name:          "blank query is a no-op",
			state:         previous,
			query:         " \t ",
			expectedState: previous,
		},
		{
			name:          "loading state ignores submits",
			state:         State{Query: "хлеб", Status: Loading},
			query:         "молоко",
			expectedState: State{Query: "хлеб", Status: Loading},
		},
		{
			name:          "new query clears entities and errors",
			state:         State{Query: "хлеб", Status: Failed, Err: errors.New("boom")},
			query:         "  молоко ",
			expectedState: State{Query: "молоко", Status: Loading},
			expectedOk:    true,
		},
	} {
		t.Log(test.name)
		actual, ok := SubmitRequested(test.state, test.query)
		assert.Equal(t, test.expectedOk, ok)
		assert.Equal(t, test.expectedState, actual)
	}
}

func TestSubmitRequestedReplacesInvalidUTF8(t *testing.T) {
	state, ok := SubmitRequested(State{}, "a\xffb")
	assert.True(t, ok)
	assert.Equal(t, "a\uFFFDb", state.Query)

	received := ResponseReceived(state, []highlight.Annotation{{Start: 1, End: 2, Tag: "X"}})
	segments := received.Segments()
	assert.Equal(t, received.Query, highlight.Concat(segments))
	assert.Equal(t, "\uFFFD", segments[1].Text)
}

func TestResponseReceived(t *testing.T) {
	entities := []highlight.Annotation{{Start: 0, End: 4, Tag: "B-TYPE"}}
	loading := State{Query: "хлеб", Status: Loading}

	actual := ResponseReceived(loading, entities)
	entities[0].Tag = "changed"

	assert.Equal(t, Idle, actual.Status)
	assert.Equal(t, "B-TYPE", actual.Entities[0].Tag)
	assert.Equal(t, Loading, loading.Status)
}

func TestResponseFailed(t *testing.T) {
	actual := ResponseFailed(State{Query: "хлеб", Status: Loading}, &predict.StatusError{Code: 500})

	assert.Equal(t, Failed, actual.Status)
	assert.Equal(t, "HTTP error, status 500", actual.ErrMessage())
	assert.Empty(t, actual.Entities)
	assert.Empty(t, actual.Rows())
}

func TestRowsAndSegments(t *testing.T) {
	state := State{
		Query: "сгущенное молоко",
		Entities: []highlight.Annotation{
			{Start: 10, End: 16, Tag: "I-PRODUCT"},
			{Start: 0, End: 9, Tag: "B-PRODUCT"},
		},
	}

	assert.Equal(t, []Row{
		{Text: "молоко", Category: "PRODUCT", Start: 10, End: 16},
		{Text: "сгущенное", Category: "PRODUCT", Start: 0, End: 9},
	}, state.Rows())

	assert.Equal(t, []highlight.Segment{
		{Text: "сгущенное", Tagged: true, Category: "PRODUCT", Beginning: true},
		{Text: " "},
		{Text: "молоко", Tagged: true, Category: "PRODUCT"},
	}, state.Segments())
}

func TestResultOfEmptyStateSerialisesLists(t *testing.T) {
	result := State{}.Result()

	assert.NotNil(t, result.Segments)
	assert.NotNil(t, result.Entities)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "failed", Failed.String())
}
