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

package main

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/highlight"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/palette"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/predict"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/search"
	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/view"
	"golang.org/x/text/message"
)

//go:embed templates/*.html
var templateFS embed.FS

type HttpError struct {
	code int
	kind string
	error
}

func (e HttpError) Error() string {
	return e.error.Error()
}

func NewHttpError(code int, err error) HttpError {
	return HttpError{
		code:  code,
		kind:  predict.Kind(err),
		error: err,
	}
}

type searcher interface {
	Predict(ctx context.Context, query string) (*predict.Response, error)
	Health(ctx context.Context) search.HealthReport
}

type server struct {
	searcher  searcher
	palette   palette.Palette
	templates *template.Template
}

type highlightRequest struct {
	Input string `json:"input" binding:"required"`
}

// page is what the index template renders.
type page struct {
	Input    string
	Error    string
	Segments []highlight.Segment
	Rows     []view.Row
	P        *message.Printer
	Lang     string
}

func newServer(s searcher, p palette.Palette) (server, error) {
	templates, err := template.New("").Funcs(template.FuncMap{
		"label":  highlight.Label,
		"colour": func(segment highlight.Segment) string { return p.Colour(segment.Category, segment.Beginning) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return server{}, err
	}
	return server{searcher: s, palette: p, templates: templates}, nil
}

func (s server) RegisterRoutes(r *gin.Engine, limit gin.HandlerFunc) {
	r.GET("/", s.Index)
	r.POST("/", limit, s.Submit)
	r.POST("/api/highlight", limit, s.Highlight)
	r.GET("/healthz", s.Health)
}

func (s server) Index(c *gin.Context) {
	s.render(c, "", view.State{})
}

// Submit handles the search form. A blank query re-renders the idle form
// without calling the recognition service.
func (s server) Submit(c *gin.Context) {
	input := c.PostForm("query")
	state, err := view.NewSession(s.searcher).Submit(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
	}
	s.render(c, input, state)
}

func (s server) Highlight(c *gin.Context) {
	var req highlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, NewHttpError(http.StatusBadRequest, errors.New("request body must be a JSON object with a non-empty input")))
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		handleError(c, NewHttpError(http.StatusBadRequest, predict.ErrEmptyQuery))
		return
	}

	state, err := view.NewSession(s.searcher).Submit(c.Request.Context(), req.Input)
	if err != nil {
		handleError(c, predictionError(err))
		return
	}

	c.JSON(http.StatusOK, state.Result())
}

func (s server) Health(c *gin.Context) {
	report := s.searcher.Health(c.Request.Context())
	code := http.StatusOK
	if !report.Ready {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, report)
}

func (s server) render(c *gin.Context, input string, state view.State) {
	p, lang := printer(c.GetHeader("Accept-Language"))
	data := page{
		Input:    input,
		Segments: state.Segments(),
		Rows:     state.Rows(),
		P:        p,
		Lang:     lang,
	}
	if state.Status == view.Failed {
		data.Error = errorMessage(p, state.Err)
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := s.templates.ExecuteTemplate(c.Writer, "index.html", data); err != nil {
		_ = c.Error(err)
	}
}

// predictionError maps a prediction error onto a status code: the caller's
// mistakes are 400s, an unhealthy recognition service is a 502.
func predictionError(err error) error {
	switch predict.Kind(err) {
	case predict.KindEmpty, predict.KindTooLong:
		return NewHttpError(http.StatusBadRequest, err)
	case predict.KindTransport, predict.KindStatus, predict.KindMalformed:
		return NewHttpError(http.StatusBadGateway, err)
	}
	return err
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		abort(c, 500, "", errors.New("abort called on nil error"))
		return
	}
	switch e := err.(type) {
	case HttpError:
		abort(c, e.code, e.kind, e.error)
	default:
		abort(c, 500, "", e)
	}
}

func abort(c *gin.Context, code int, kind string, err error) {
	_ = c.Error(err)
	body := map[string]interface{}{
		"status":  code,
		"message": err.Error(),
	}
	if kind != "" {
		body["kind"] = kind
	}
	c.AbortWithStatusJSON(code, body)
}
