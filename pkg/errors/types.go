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

// Package errors defines the typed errors used across Paperbridge.
//
// The taxonomy distinguishes three caller reactions: rephrase the request
// (selection errors), accept a failed tool run (remote failures are reported
// in results, not here), and reconnect (connection, handshake and transport
// errors, which are fatal to the session or the in-flight call).
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ConnectionError indicates the tool-server process could not be started.
// Fatal to the session.
type ConnectionError struct {
	// Command is the executable that could not be launched.
	Command string

	// Cause is the underlying error (lookup failure, fork/exec error).
	Cause error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cannot start tool server %q: %v", e.Command, e.Cause)
	}
	return fmt.Sprintf("cannot start tool server %q", e.Command)
}

// Unwrap returns the underlying cause.
func (e *ConnectionError) Unwrap() error { return e.Cause }

// HandshakeError indicates the tool server started but did not complete
// protocol negotiation. Fatal to the session.
type HandshakeError struct {
	// Timeout is the negotiation deadline that was in effect, if any.
	Timeout time.Duration

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *HandshakeError) Error() string {
	msg := "protocol handshake with tool server failed"
	if e.Timeout > 0 {
		msg = fmt.Sprintf("%s (timeout %s)", msg, e.Timeout)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *HandshakeError) Unwrap() error { return e.Cause }

// TransportError indicates the duplex channel failed mid-call. Fatal to that
// call; the session should be considered dead.
type TransportError struct {
	// Op is the operation that was in flight (e.g. "tools/call").
	Op string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	msg := "tool server connection lost"
	if e.Op != "" {
		msg = fmt.Sprintf("%s during %s", msg, e.Op)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error { return e.Cause }

// CallTimeoutError indicates a single remote call exceeded its deadline. The
// channel itself is still healthy; recoverable, the caller may retry.
type CallTimeoutError struct {
	// Op is the operation that timed out (e.g. "tools/call").
	Op string

	// Timeout is the per-call deadline that was in effect, if known.
	Timeout time.Duration

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *CallTimeoutError) Error() string {
	msg := "call to tool server timed out"
	if e.Op != "" {
		msg = fmt.Sprintf("%s during %s", msg, e.Op)
	}
	if e.Timeout > 0 {
		msg = fmt.Sprintf("%s (after %s)", msg, e.Timeout)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *CallTimeoutError) Unwrap() error { return e.Cause }

// UnknownToolError indicates a tool name that is not in the cached catalog.
// Local validation; the remote peer is never contacted.
type UnknownToolError struct {
	// Tool is the name that was requested.
	Tool string

	// Known lists the catalog's tool names, for the error message.
	Known []string
}

// Error implements the error interface.
func (e *UnknownToolError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown tool %q (catalog is empty)", e.Tool)
	}
	return fmt.Sprintf("unknown tool %q (known: %s)", e.Tool, strings.Join(e.Known, ", "))
}

// UnknownRequestError indicates an elicitation response that does not match
// the currently pending request. Local validation; recoverable.
type UnknownRequestError struct {
	// ID is the request identifier that did not match.
	ID string
}

// Error implements the error interface.
func (e *UnknownRequestError) Error() string {
	return fmt.Sprintf("no pending elicitation with id %q", e.ID)
}

// ElicitationBusyError is returned under the reject policy when the peer
// requests input while an earlier request is still unresolved.
type ElicitationBusyError struct {
	// PendingID identifies the request that is still outstanding.
	PendingID string
}

// Error implements the error interface.
func (e *ElicitationBusyError) Error() string {
	return fmt.Sprintf("an elicitation request is already pending (id %s)", e.PendingID)
}

// UpstreamModelError indicates a language-model backend failure or timeout.
// Recoverable; the caller may retry.
type UpstreamModelError struct {
	// Backend is the provider name (e.g. "bedrock").
	Backend string

	// Model is the model identifier, if known.
	Model string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *UpstreamModelError) Error() string {
	msg := fmt.Sprintf("model backend %s failed", e.Backend)
	if e.Model != "" {
		msg = fmt.Sprintf("%s (model %s)", msg, e.Model)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *UpstreamModelError) Unwrap() error { return e.Cause }

// ToolSelectionParseError indicates the model's tool-selection output
// contained no well-formed JSON object. Terminal for the request; the caller
// may rephrase and try again.
type ToolSelectionParseError struct {
	// Output is a snippet of the model output that failed to parse.
	Output string
}

// Error implements the error interface.
func (e *ToolSelectionParseError) Error() string {
	out := e.Output
	if len(out) > 120 {
		out = out[:120] + "..."
	}
	return fmt.Sprintf("no tool selection found in model output: %q", out)
}

// ToolSelectionInvalidError indicates the model selected a tool that is not
// in the catalog. Terminal for the request.
type ToolSelectionInvalidError struct {
	// Tool is the name the model chose.
	Tool string

	// Known lists the catalog's tool names.
	Known []string
}

// Error implements the error interface.
func (e *ToolSelectionInvalidError) Error() string {
	return fmt.Sprintf("model selected tool %q which is not in the catalog (known: %s)",
		e.Tool, strings.Join(e.Known, ", "))
}
