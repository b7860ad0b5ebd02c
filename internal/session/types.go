// Package session implements the MCP client session for Paperbridge: a stdio
// subprocess transport to the tool server, the three client primitives
// (roots, sampling, elicitation), a cached tool catalog, the tool invocation
// wrapper, and resource listing and reading.
package session

import (
	"encoding/json"
)

// Root declares a filesystem boundary the tool server may reference.
// Immutable after session configuration.
type Root struct {
	// URI is the filesystem location identifier (file:// scheme).
	URI string `json:"uri"`

	// Name is a human-readable label.
	Name string `json:"name"`
}

// ToolDescriptor describes one remotely available tool.
type ToolDescriptor struct {
	// Name is the unique identifier for this tool.
	Name string `json:"name"`

	// Description explains what the tool does.
	Description string `json:"description"`

	// InputSchema is the tool's parameter schema as JSON Schema.
	InputSchema json.RawMessage `json:"inputSchema"`
}

// ToolResult is the outcome of one tool invocation. Remote execution
// failures are reported here rather than as Go errors; only transport-level
// faults surface as errors.
type ToolResult struct {
	// OK is false when the server reported the execution as failed.
	OK bool `json:"ok"`

	// Text is the first text content returned by the tool, verbatim.
	Text string `json:"text,omitempty"`

	// Data is the structured form of the result: the server's structured
	// content when present, otherwise Text decoded as JSON when it parses.
	Data any `json:"data,omitempty"`

	// Err is the server's error description when OK is false.
	Err string `json:"error,omitempty"`
}

// String returns the most useful textual rendering of the result.
func (r *ToolResult) String() string {
	if r == nil {
		return ""
	}
	if !r.OK && r.Err != "" {
		return r.Err
	}
	if r.Text != "" {
		return r.Text
	}
	if r.Data != nil {
		b, err := json.Marshal(r.Data)
		if err == nil {
			return string(b)
		}
	}
	return ""
}

// ResourceDescriptor describes one resource the tool server exposes.
type ResourceDescriptor struct {
	// URI identifies the resource for reads.
	URI string `json:"uri"`

	// Name is a human-readable label.
	Name string `json:"name,omitempty"`

	// Description explains what the resource contains.
	Description string `json:"description,omitempty"`

	// MIMEType is the content type, when the server declares one.
	MIMEType string `json:"mimeType,omitempty"`
}

// ResourceContent is one content entry of a read resource. Exactly one of
// Text and Blob is populated.
type ResourceContent struct {
	// URI identifies the entry; usually the requested resource URI.
	URI string `json:"uri,omitempty"`

	// MIMEType is the entry's content type, when declared.
	MIMEType string `json:"mimeType,omitempty"`

	// Text holds textual content.
	Text string `json:"text,omitempty"`

	// Blob holds binary content.
	Blob []byte `json:"blob,omitempty"`
}

// PendingElicitation is the single outstanding user-input request from the
// tool server. Created when the peer asks for input; consumed exactly once
// by RespondElicitation or CancelElicitation.
type PendingElicitation struct {
	// ID is the opaque request identifier a response must match.
	ID string

	// Prompt is the peer's message to show the operator.
	Prompt string

	// Schema is the peer's requested response schema, when it sent one.
	Schema json.RawMessage

	done chan elicitOutcome
}

type elicitOutcome struct {
	text      string
	cancelled bool
}

// ElicitPolicy selects what happens when the peer requests input while an
// earlier request is still unresolved.
type ElicitPolicy string

const (
	// ElicitReject refuses the newer request; the pending one stays live.
	// This is the default.
	ElicitReject ElicitPolicy = "reject"

	// ElicitQueue admits the newer request behind the pending one and
	// serves strictly in arrival order.
	ElicitQueue ElicitPolicy = "queue"
)
