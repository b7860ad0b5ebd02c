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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/paperbridge/paperbridge/pkg/errors"
)

func elicitRequest(msg string) *mcp.ElicitRequest {
	return &mcp.ElicitRequest{
		Params: &mcp.ElicitParams{Message: msg},
	}
}

// startElicit runs handleElicit in the background and returns the result
// channel plus the request once it is observably pending.
func startElicit(t *testing.T, s *Session, msg string) (<-chan *mcp.ElicitResult, *PendingElicitation) {
	t.Helper()

	results := make(chan *mcp.ElicitResult, 1)
	go func() {
		res, err := s.handleElicit(context.Background(), elicitRequest(msg))
		if err == nil {
			results <- res
		}
		close(results)
	}()

	select {
	case p := <-s.Elicitations():
		return results, p
	case <-time.After(2 * time.Second):
		t.Fatal("elicitation never became pending")
		return nil, nil
	}
}

func TestElicitationAcceptFlow(t *testing.T) {
	s := newTestSession(&fakeConn{})

	results, p := startElicit(t, s, "Which article?")
	assert.Equal(t, "Which article?", p.Prompt)
	assert.Same(t, p, s.PendingElicitation())

	require.NoError(t, s.RespondElicitation(p.ID, "the first one"))

	select {
	case res := <-results:
		require.NotNil(t, res)
		assert.EqualValues(t, "accept", res.Action)
		assert.Equal(t, "the first one", res.Content["response"])
	case <-time.After(2 * time.Second):
		t.Fatal("handleElicit never returned")
	}

	assert.Nil(t, s.PendingElicitation(), "slot must be free after resolution")
}

func TestElicitationCancelFlow(t *testing.T) {
	s := newTestSession(&fakeConn{})

	results, p := startElicit(t, s, "Which article?")
	require.NoError(t, s.CancelElicitation(p.ID))

	select {
	case res := <-results:
		require.NotNil(t, res)
		assert.EqualValues(t, "cancel", res.Action)
	case <-time.After(2 * time.Second):
		t.Fatal("handleElicit never returned")
	}
}

func TestElicitationRespondUnknownID(t *testing.T) {
	s := newTestSession(&fakeConn{})

	// Nothing pending at all.
	err := s.RespondElicitation("nope", "hello")
	var unknown *errors.UnknownRequestError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.ID)

	// Something pending, but the ID does not match.
	results, p := startElicit(t, s, "Which article?")
	err = s.RespondElicitation("wrong-id", "hello")
	require.ErrorAs(t, err, &unknown)

	// The real request is still live and answerable.
	require.NoError(t, s.RespondElicitation(p.ID, "answer"))
	<-results
}

func TestElicitationRejectPolicyRefusesSecond(t *testing.T) {
	s := newTestSession(&fakeConn{})

	results, p := startElicit(t, s, "first")

	_, err := s.handleElicit(context.Background(), elicitRequest("second"))
	var busy *errors.ElicitationBusyError
	require.ErrorAs(t, err, &busy)
	assert.Equal(t, p.ID, busy.PendingID)

	// The first request is unaffected.
	require.NoError(t, s.RespondElicitation(p.ID, "ok"))
	<-results
}

func TestElicitationQueuePolicyServesFIFO(t *testing.T) {
	s := newTestSession(&fakeConn{}, func(c *Config) {
		c.ElicitationPolicy = ElicitQueue
	})

	firstResults, first := startElicit(t, s, "first")

	secondResults := make(chan *mcp.ElicitResult, 1)
	go func() {
		res, err := s.handleElicit(context.Background(), elicitRequest("second"))
		if err == nil {
			secondResults <- res
		}
		close(secondResults)
	}()

	// The second request queues; the first stays current.
	assert.Eventually(t, func() bool {
		return s.PendingElicitation() == first
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, s.RespondElicitation(first.ID, "one"))
	<-firstResults

	// The queued request is promoted and announced.
	var second *PendingElicitation
	select {
	case second = <-s.Elicitations():
	case <-time.After(2 * time.Second):
		t.Fatal("queued elicitation never promoted")
	}
	assert.Equal(t, "second", second.Prompt)

	require.NoError(t, s.RespondElicitation(second.ID, "two"))
	res := <-secondResults
	require.NotNil(t, res)
	assert.Equal(t, "two", res.Content["response"])
}

func TestElicitationAbandonedByPeerFreesSlot(t *testing.T) {
	s := newTestSession(&fakeConn{})

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := s.handleElicit(ctx, elicitRequest("doomed"))
		errs <- err
	}()

	p := <-s.Elicitations()
	require.NotNil(t, p)

	cancel()
	require.Error(t, <-errs)

	assert.Eventually(t, func() bool {
		return s.PendingElicitation() == nil
	}, time.Second, 10*time.Millisecond)

	// A late answer to the abandoned request is rejected.
	var unknown *errors.UnknownRequestError
	assert.ErrorAs(t, s.RespondElicitation(p.ID, "too late"), &unknown)
}
