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

// Package bedrock implements the llm.Provider interface on top of the AWS
// Bedrock Converse API. Credentials come from the ambient AWS configuration
// chain (environment, shared config, instance metadata).
package bedrock

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"github.com/paperbridge/paperbridge/pkg/errors"
	"github.com/paperbridge/paperbridge/pkg/llm"
)

const (
	// DefaultModelID is the Bedrock model used when none is configured.
	DefaultModelID = "anthropic.claude-3-haiku-20240307-v1:0"

	// DefaultRegion is used when neither config nor environment names one.
	DefaultRegion = "us-west-2"

	defaultTemperature = 0.1
	defaultMaxTokens   = 512
)

// Config configures the Bedrock provider.
type Config struct {
	// Region is the AWS region hosting the model. Default: us-west-2.
	Region string

	// ModelID is the Bedrock model identifier.
	// Default: anthropic.claude-3-haiku-20240307-v1:0.
	ModelID string

	// Temperature is the default sampling temperature. Default: 0.1.
	Temperature float64

	// MaxTokens is the default response length limit. Default: 512.
	MaxTokens int
}

// converseAPI is the subset of the Bedrock runtime client used here.
// It exists so tests can substitute a recorded implementation.
type converseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Provider is a Bedrock-backed llm.Provider.
type Provider struct {
	client      converseAPI
	modelID     string
	temperature float64
	maxTokens   int
}

// New creates a Bedrock provider using the ambient AWS credential chain.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	applyDefaults(&cfg)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, errors.Wrap(err, "loading AWS configuration")
	}

	return &Provider{
		client:      bedrockruntime.NewFromConfig(awsCfg),
		modelID:     cfg.ModelID,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	if cfg.ModelID == "" {
		cfg.ModelID = DefaultModelID
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "bedrock"
}

// Complete sends a synchronous completion request to the Converse API.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	modelID := req.Model
	if modelID == "" {
		modelID = p.modelID
	}

	messages, system := convertMessages(req.Messages)
	if len(messages) == 0 {
		return nil, errors.New("completion request must have at least one non-system message")
	}

	temperature := p.temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := p.maxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	input := &bedrockruntime.ConverseInput{
		ModelId:  aws.String(modelID),
		Messages: messages,
		System:   system,
		InferenceConfig: &types.InferenceConfiguration{
			Temperature: aws.Float32(float32(temperature)),
			MaxTokens:   aws.Int32(int32(maxTokens)),
		},
	}
	if len(req.StopSequences) > 0 {
		input.InferenceConfig.StopSequences = req.StopSequences
	}

	out, err := p.client.Converse(ctx, input)
	if err != nil {
		return nil, &errors.UpstreamModelError{Backend: "bedrock", Model: modelID, Cause: err}
	}

	resp := &llm.CompletionResponse{
		Content:      outputText(out),
		Model:        modelID,
		FinishReason: finishReason(out.StopReason),
		Created:      time.Now(),
	}
	if out.Usage != nil {
		resp.Usage = llm.TokenUsage{
			InputTokens:  int(aws.ToInt32(out.Usage.InputTokens)),
			OutputTokens: int(aws.ToInt32(out.Usage.OutputTokens)),
			TotalTokens:  int(aws.ToInt32(out.Usage.TotalTokens)),
		}
	}
	return resp, nil
}

// convertMessages maps llm messages to Converse messages, hoisting system
// messages into the dedicated system slot.
func convertMessages(msgs []llm.Message) ([]types.Message, []types.SystemContentBlock) {
	var out []types.Message
	var system []types.SystemContentBlock

	for _, m := range msgs {
		switch m.Role {
		case llm.MessageRoleSystem:
			system = append(system, &types.SystemContentBlockMemberText{Value: m.Content})
		case llm.MessageRoleAssistant:
			out = append(out, types.Message{
				Role:    types.ConversationRoleAssistant,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Content}},
			})
		default:
			out = append(out, types.Message{
				Role:    types.ConversationRoleUser,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Content}},
			})
		}
	}
	return out, system
}

// outputText extracts the concatenated text blocks from a Converse response.
func outputText(out *bedrockruntime.ConverseOutput) string {
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return ""
	}
	var text string
	for _, block := range msg.Value.Content {
		if tb, ok := block.(*types.ContentBlockMemberText); ok {
			text += tb.Value
		}
	}
	return text
}

func finishReason(reason types.StopReason) llm.FinishReason {
	switch reason {
	case types.StopReasonEndTurn, types.StopReasonStopSequence:
		return llm.FinishReasonStop
	case types.StopReasonMaxTokens:
		return llm.FinishReasonLength
	case types.StopReasonContentFiltered:
		return llm.FinishReasonContentFilter
	default:
		return llm.FinishReasonStop
	}
}

var _ llm.Provider = (*Provider)(nil)
