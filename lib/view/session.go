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
	"context"
	"errors"
	"sync"

	"gitlab.mdcatapult.io/informatics/software-engineering/product-search/lib/predict"
)

var ErrBusy = errors.New("a search is already in progress")

type Predictor interface {
	Predict(ctx context.Context, query string) (*predict.Response, error)
}

// Session holds the view state of one user and runs their searches, one at
// a time.
type Session struct {
	predictor Predictor
	mut       sync.Mutex
	state     State
}

func NewSession(predictor Predictor) *Session {
	return &Session{predictor: predictor}
}

// State returns a snapshot of the session, readable while a search is in
// flight.
func (s *Session) State() State {
	s.mut.Lock()
	defer s.mut.Unlock()
	return s.state
}

/**
	Submit runs a search for query and returns the resulting state together
	with the prediction error, if any.

	A blank query changes nothing and returns a nil error. A submit while
	another one is in flight changes nothing and returns ErrBusy. The lock is
	not held while waiting on the predictor, so State stays readable and
	reports Loading during the call.
**/
func (s *Session) Submit(ctx context.Context, query string) (State, error) {
	s.mut.Lock()
	next, ok := SubmitRequested(s.state, query)
	if !ok {
		busy := s.state.Status == Loading
		s.mut.Unlock()
		if busy {
			return next, ErrBusy
		}
		return next, nil
	}
	s.state = next
	s.mut.Unlock()

	resp, err := s.predictor.Predict(ctx, next.Query)

	s.mut.Lock()
	defer s.mut.Unlock()
	if err != nil {
		s.state = ResponseFailed(s.state, err)
	} else {
		s.state = ResponseReceived(s.state, resp.Annotations())
	}
	return s.state, err
}
