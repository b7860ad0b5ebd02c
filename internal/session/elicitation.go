// Copyright 2026 The Paperbridge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/paperbridge/paperbridge/internal/log"
	"github.com/paperbridge/paperbridge/pkg/errors"
)

// elicitations is the one-slot lease guarding the pending-elicitation state.
// At most one request is current at any instant; under ElicitQueue later
// requests wait in FIFO order for the slot, under ElicitReject they are
// refused immediately.
type elicitations struct {
	mu      sync.Mutex
	policy  ElicitPolicy
	current *PendingElicitation
	waiters []*PendingElicitation
	notify  chan *PendingElicitation
}

func newElicitations(policy ElicitPolicy) *elicitations {
	return &elicitations{
		policy: policy,
		notify: make(chan *PendingElicitation, 16),
	}
}

// admit takes the slot for p, or queues/rejects per policy.
func (e *elicitations) admit(p *PendingElicitation) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		e.current = p
		e.announce(p)
		return nil
	}
	if e.policy == ElicitQueue {
		e.waiters = append(e.waiters, p)
		return nil
	}
	return &errors.ElicitationBusyError{PendingID: e.current.ID}
}

// resolve completes the current request when id matches, and promotes the
// next waiter into the slot.
func (e *elicitations) resolve(id string, out elicitOutcome) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil || e.current.ID != id {
		return &errors.UnknownRequestError{ID: id}
	}
	e.current.done <- out
	e.promote()
	return nil
}

// drop releases the slot or queue position held by p without resolving it,
// used when the peer abandons the request.
func (e *elicitations) drop(p *PendingElicitation) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == p {
		e.promote()
		return
	}
	for i, w := range e.waiters {
		if w == p {
			e.waiters = append(e.waiters[:i], e.waiters[i+1:]...)
			return
		}
	}
}

// promote moves the head waiter into the slot. Caller holds e.mu.
func (e *elicitations) promote() {
	e.current = nil
	if len(e.waiters) > 0 {
		e.current = e.waiters[0]
		e.waiters = e.waiters[1:]
		e.announce(e.current)
	}
}

// announce publishes the now-current request to Elicitations subscribers.
// Non-blocking: a slow consumer can still discover it via Pending.
func (e *elicitations) announce(p *PendingElicitation) {
	select {
	case e.notify <- p:
	default:
	}
}

func (e *elicitations) pending() *PendingElicitation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// handleElicit services the server's user-input requests. The request is
// parked in the pending slot and the peer's call suspends until the operator
// answers through RespondElicitation (or the request is cancelled).
func (s *Session) handleElicit(ctx context.Context, req *mcp.ElicitRequest) (*mcp.ElicitResult, error) {
	p := &PendingElicitation{
		ID:   uuid.NewString(),
		done: make(chan elicitOutcome, 1),
	}
	if req.Params != nil {
		p.Prompt = req.Params.Message
		if req.Params.RequestedSchema != nil {
			if b, err := json.Marshal(req.Params.RequestedSchema); err == nil {
				p.Schema = b
			}
		}
	}

	if err := s.elicit.admit(p); err != nil {
		s.logger.Warn("elicitation request refused", log.Error(err))
		return nil, err
	}
	s.logger.Info("elicitation request pending",
		slog.String(log.RequestIDKey, p.ID))

	select {
	case out := <-p.done:
		if out.cancelled {
			return &mcp.ElicitResult{Action: "cancel"}, nil
		}
		return &mcp.ElicitResult{
			Action:  "accept",
			Content: map[string]any{"response": out.text},
		}, nil
	case <-ctx.Done():
		s.elicit.drop(p)
		return nil, ctx.Err()
	}
}

// PendingElicitation returns the currently pending request, or nil.
func (s *Session) PendingElicitation() *PendingElicitation {
	return s.elicit.pending()
}

// Elicitations delivers each request as it becomes current. Intended for the
// interactive layer; missed notifications can be recovered via
// PendingElicitation.
func (s *Session) Elicitations() <-chan *PendingElicitation {
	return s.elicit.notify
}

// RespondElicitation resumes the peer's suspended request with the
// operator's text. Fails with *errors.UnknownRequestError when id does not
// match the currently pending request.
func (s *Session) RespondElicitation(id, text string) error {
	if err := s.elicit.resolve(id, elicitOutcome{text: text}); err != nil {
		return err
	}
	s.logger.Info("elicitation response sent",
		slog.String(log.RequestIDKey, id))
	return nil
}

// CancelElicitation declines the pending request without an answer, freeing
// the slot for the next one.
func (s *Session) CancelElicitation(id string) error {
	if err := s.elicit.resolve(id, elicitOutcome{cancelled: true}); err != nil {
		return err
	}
	s.logger.Info("elicitation request cancelled",
		slog.String(log.RequestIDKey, id))
	return nil
}
