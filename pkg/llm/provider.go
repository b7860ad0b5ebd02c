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

// Package llm provides a provider-agnostic interface for language-model
// completions. Paperbridge uses it in two places: answering the tool server's
// sampling requests, and driving the natural-language dispatch loop.
package llm

import (
	"context"
	"time"
)

// Provider defines the interface a completion backend must implement.
type Provider interface {
	// Name returns the unique identifier for this provider (e.g. "bedrock").
	Name() string

	// Complete sends a synchronous completion request and returns the full
	// response. Blocks until the model response is complete or ctx expires.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest contains all parameters for a completion request.
type CompletionRequest struct {
	// Messages is the conversation, in order. System messages are hoisted
	// into the backend's system slot where the API has one.
	Messages []Message

	// Model overrides the provider's configured model when non-empty.
	Model string

	// Temperature controls randomness (0.0 = deterministic).
	// Nil uses the provider default.
	Temperature *float64

	// MaxTokens limits the response length. Nil uses the provider default.
	MaxTokens *int

	// StopSequences are strings that halt generation when encountered.
	StopSequences []string
}

// Message represents a single message in a conversation.
type Message struct {
	// Role indicates who sent this message.
	Role MessageRole

	// Content is the text content of the message.
	Content string
}

// MessageRole identifies the sender of a message.
type MessageRole string

const (
	// MessageRoleSystem indicates a system message (context, instructions).
	MessageRoleSystem MessageRole = "system"

	// MessageRoleUser indicates a message from the user.
	MessageRoleUser MessageRole = "user"

	// MessageRoleAssistant indicates a message from the model.
	MessageRoleAssistant MessageRole = "assistant"
)

// CompletionResponse contains the full response from a completion.
type CompletionResponse struct {
	// Content is the generated text response.
	Content string

	// Model is the actual model ID that handled this request.
	Model string

	// FinishReason explains why generation stopped.
	FinishReason FinishReason

	// Usage contains token consumption information.
	Usage TokenUsage

	// Created is the timestamp when this response was generated.
	Created time.Time
}

// FinishReason indicates why completion generation stopped.
type FinishReason string

const (
	// FinishReasonStop indicates natural completion.
	FinishReasonStop FinishReason = "stop"

	// FinishReasonLength indicates the max-tokens limit was reached.
	FinishReasonLength FinishReason = "length"

	// FinishReasonContentFilter indicates a content policy stop.
	FinishReasonContentFilter FinishReason = "content_filter"

	// FinishReasonError indicates an error occurred.
	FinishReasonError FinishReason = "error"
)

// TokenUsage tracks token consumption.
type TokenUsage struct {
	// InputTokens is the number of tokens in the prompt.
	InputTokens int

	// OutputTokens is the number of tokens in the completion.
	OutputTokens int

	// TotalTokens is the sum of input and output tokens.
	TotalTokens int
}

// UserText is a convenience constructor for a user message.
func UserText(content string) Message {
	return Message{Role: MessageRoleUser, Content: content}
}
