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

// Package commands wires the paperbridge CLI: session setup shared by every
// subcommand, plus the chat, tools, call, search, resources, and version
// commands.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/paperbridge/paperbridge/internal/config"
	"github.com/paperbridge/paperbridge/internal/log"
	"github.com/paperbridge/paperbridge/internal/session"
	"github.com/paperbridge/paperbridge/pkg/llm"
	"github.com/paperbridge/paperbridge/pkg/llm/bedrock"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// SetVersion records build metadata (called from main via ldflags).
func SetVersion(v, c, b string) {
	version, commit, buildDate = v, c, b
}

type rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCommand creates the paperbridge root command.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "paperbridge",
		Short: "Paperbridge - chat with the arXiv tool server",
		Long: `Paperbridge connects a language model to an arXiv MCP tool server.
It launches the server as a subprocess, advertises filesystem roots,
answers the server's sampling and elicitation requests, and dispatches
natural-language requests to the server's tools.

Run 'paperbridge chat' for the interactive loop, or 'paperbridge tools'
to inspect what the server offers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Path to config file (YAML)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "Log format (text, json)")

	cmd.AddCommand(
		newChatCommand(flags),
		newToolsCommand(flags),
		newCallCommand(flags),
		newSearchCommand(flags),
		newResourcesCommand(flags),
		newVersionCommand(),
	)
	return cmd
}

// setup loads configuration, builds the logger and the Bedrock backend, and
// opens the session. The caller owns the returned session.
func setup(ctx context.Context, flags *rootFlags) (*session.Session, llm.Provider, *config.Config, *slog.Logger, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	logCfg := log.FromEnv()
	if cfg.Log.Level != "" {
		logCfg.Level = cfg.Log.Level
	}
	if cfg.Log.Format != "" {
		logCfg.Format = log.Format(cfg.Log.Format)
	}
	if flags.logLevel != "" {
		logCfg.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		logCfg.Format = log.Format(flags.logFormat)
	}
	logger := log.New(logCfg)
	slog.SetDefault(logger)

	modelCfg := bedrock.Config{
		Region:  cfg.Model.Region,
		ModelID: cfg.Model.ModelID,
	}
	if cfg.Model.Temperature != nil {
		modelCfg.Temperature = *cfg.Model.Temperature
	}
	if cfg.Model.MaxTokens != nil {
		modelCfg.MaxTokens = *cfg.Model.MaxTokens
	}
	model, err := bedrock.New(ctx, modelCfg)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	var roots []session.Root
	for _, r := range cfg.DefaultRoots() {
		roots = append(roots, session.Root{URI: r.URI, Name: r.Name})
	}

	sess, err := session.Connect(ctx, session.Config{
		Command:           cfg.Server.Command,
		Args:              cfg.Server.Args,
		Env:               cfg.BuildEnv(),
		Roots:             roots,
		Sampler:           model,
		ElicitationPolicy: session.ElicitPolicy(cfg.Session.ElicitationPolicy),
		HandshakeTimeout:  cfg.Session.HandshakeTimeout,
		CallTimeout:       cfg.Session.CallTimeout,
		Logger:            logger,
	})
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return sess, model, cfg, logger, nil
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
