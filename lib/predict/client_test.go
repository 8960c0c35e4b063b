package predict

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type mockHttpClient struct {
	mock.Mock
}

func (m *mockHttpClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	resp, _ := args.Get(0).(*http.Response)
	return resp, args.Error(1)
}

func jsonResponse(code int, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

type clientSuite struct {
	suite.Suite
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(clientSuite))
}

func (s *clientSuite) TestPredictSendsTrimmedQuery() {
	var received predictRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPost, r.Method)
		s.Equal(predictPath, r.URL.Path)
		s.Equal("application/json", r.Header.Get("Content-Type"))
		s.Require().Nil(json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{
			"entities": [
				{"start_index": 0, "end_index": 6, "entity": "B-TYPE"},
				{"start_index": 7, "end_index": 11, "entity": "B-PERCENT"}
			],
			"input_text": "молоко 2.5%",
			"total_entities": 2
		}`))
	}))
	defer srv.Close()

	client := NewClient(Config{URL: srv.URL + "/"}, nil)
	resp, err := client.Predict(context.Background(), "  молоко 2.5%\n")

	s.Require().Nil(err)
	s.Equal("молоко 2.5%", received.Input)
	s.Equal([]Entity{
		{StartIndex: 0, EndIndex: 6, Entity: "B-TYPE"},
		{StartIndex: 7, EndIndex: 11, Entity: "B-PERCENT"},
	}, resp.Entities)
	s.Equal("молоко 2.5%", resp.InputText)
	s.Equal(2, resp.TotalEntities)
}

func (s *clientSuite) TestPredictBlankQueryIsNotSent() {
	httpClient := &mockHttpClient{}
	client := NewClient(Config{URL: "http://ner"}, httpClient)

	for _, query := range []string{"", "   ", "\t\n"} {
		resp, err := client.Predict(context.Background(), query)
		s.Nil(resp)
		s.True(errors.Is(err, ErrEmptyQuery))
	}
	httpClient.AssertNotCalled(s.T(), "Do", mock.Anything)
}

func (s *clientSuite) TestPredictQueryTooLong() {
	httpClient := &mockHttpClient{}
	client := NewClient(Config{URL: "http://ner", MaxQueryLength: 5}, httpClient)

	_, err := client.Predict(context.Background(), "молоко")

	var tooLong *QueryTooLongError
	s.Require().True(errors.As(err, &tooLong))
	s.Equal(6, tooLong.Length)
	s.Equal(5, tooLong.Max)
	s.Equal(KindTooLong, Kind(err))
	httpClient.AssertNotCalled(s.T(), "Do", mock.Anything)
}

func (s *clientSuite) TestPredictErrors() {
	tests := []struct {
		name            string
		resp            *http.Response
		doErr           error
		expectedKind    string
		expectedMessage string
	}{
		{
			name:            "non-success status",
			resp:            jsonResponse(http.StatusServiceUnavailable, `{"detail": "model not loaded"}`),
			expectedKind:    KindStatus,
			expectedMessage: "HTTP error, status 503",
		},
		{
			name:            "network failure is surfaced verbatim",
			doErr:           errors.New("dial tcp 127.0.0.1:3001: connect: connection refused"),
			expectedKind:    KindTransport,
			expectedMessage: "dial tcp 127.0.0.1:3001: connect: connection refused",
		},
		{
			name:         "body is not json",
			resp:         jsonResponse(http.StatusOK, `<html>`),
			expectedKind: KindMalformed,
		},
		{
			name:         "body is not an object",
			resp:         jsonResponse(http.StatusOK, `[1, 2]`),
			expectedKind: KindMalformed,
		},
		{
			name:         "body is null",
			resp:         jsonResponse(http.StatusOK, `null`),
			expectedKind: KindMalformed,
		},
		{
			name:         "entities is not an array",
			resp:         jsonResponse(http.StatusOK, `{"entities": "B-TYPE"}`),
			expectedKind: KindMalformed,
		},
		{
			name:         "offset is not an integer",
			resp:         jsonResponse(http.StatusOK, `{"entities": [{"start_index": "0", "end_index": 1, "entity": "B-TYPE"}]}`),
			expectedKind: KindMalformed,
		},
	}
	for _, tt := range tests {
		s.T().Log(tt.name)
		httpClient := &mockHttpClient{}
		httpClient.On("Do", mock.AnythingOfType("*http.Request")).Return(tt.resp, tt.doErr).Once()
		client := NewClient(Config{URL: "http://ner"}, httpClient)

		resp, err := client.Predict(context.Background(), "хлеб")

		s.Nil(resp)
		s.Require().NotNil(err)
		s.Equal(tt.expectedKind, Kind(err))
		if tt.expectedMessage != "" {
			s.Equal(tt.expectedMessage, err.Error())
		}
		httpClient.AssertExpectations(s.T())
	}
}

func (s *clientSuite) TestPredictMissingEntitiesIsEmpty() {
	httpClient := &mockHttpClient{}
	httpClient.On("Do", mock.AnythingOfType("*http.Request")).Return(jsonResponse(http.StatusOK, `{"input_text": "хлеб"}`), nil).Once()
	client := NewClient(Config{URL: "http://ner"}, httpClient)

	resp, err := client.Predict(context.Background(), "хлеб")

	s.Require().Nil(err)
	s.NotNil(resp.Entities)
	s.Len(resp.Entities, 0)
	s.Len(resp.Annotations(), 0)
}

func (s *clientSuite) TestPredictOversizedResponseIsMalformed() {
	padding := strings.Repeat(" ", maxResponseBytes)
	httpClient := &mockHttpClient{}
	httpClient.On("Do", mock.AnythingOfType("*http.Request")).Return(jsonResponse(http.StatusOK, `{"entities": []`+padding+`}`), nil).Once()
	client := NewClient(Config{URL: "http://ner"}, httpClient)

	_, err := client.Predict(context.Background(), "хлеб")

	s.Equal(KindMalformed, Kind(err))
}

func (s *clientSuite) TestPredictOpenBreakerFailsFast() {
	httpClient := &mockHttpClient{}
	httpClient.On("Do", mock.AnythingOfType("*http.Request")).Return(jsonResponse(http.StatusBadGateway, ``), nil).Twice()
	client := NewClient(Config{
		URL:     "http://ner",
		Breaker: BreakerConfig{Enabled: true, Failures: 2},
	}, httpClient)

	for i := 0; i < 2; i++ {
		_, err := client.Predict(context.Background(), "хлеб")
		s.Equal(KindStatus, Kind(err))
	}

	_, err := client.Predict(context.Background(), "хлеб")
	s.Equal(KindTransport, Kind(err))
	httpClient.AssertNumberOfCalls(s.T(), "Do", 2)
}

func (s *clientSuite) TestHealth() {
	tests := []struct {
		name           string
		code           int
		body           string
		expectedStatus string
		expectedKind   string
	}{
		{
			name:           "ready",
			code:           http.StatusOK,
			body:           `{"status": "ready", "message": "ok", "model_info": {"is_loaded": true}}`,
			expectedStatus: "ready",
		},
		{
			name:           "model not loaded",
			code:           http.StatusServiceUnavailable,
			body:           `{"status": "unavailable", "message": "model not loaded"}`,
			expectedStatus: "unavailable",
			expectedKind:   KindStatus,
		},
	}
	for _, tt := range tests {
		s.T().Log(tt.name)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.Equal(healthPath, r.URL.Path)
			w.WriteHeader(tt.code)
			_, _ = w.Write([]byte(tt.body))
		}))

		status, err := NewClient(Config{URL: srv.URL}, nil).Health(context.Background())
		srv.Close()

		s.Equal(tt.expectedKind, Kind(err))
		s.Require().NotNil(status)
		s.Equal(tt.expectedStatus, status.Status)
	}
}
