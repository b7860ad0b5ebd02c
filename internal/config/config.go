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

// Package config loads paperbridge configuration from a YAML file and the
// environment. Environment variables win over the file so the same config can
// move between machines.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when configuration validation fails.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Environment variables recognized during Load.
const (
	EnvServerPath  = "ARXIV_SERVER_PATH"
	EnvDownloadDir = "DOWNLOAD_PATH"
	EnvSSLVerify   = "SSL_VERIFY"
	EnvAWSRegion   = "AWS_REGION"
	EnvModelID     = "BEDROCK_MODEL"
)

// Config is the complete paperbridge configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Model   ModelConfig   `yaml:"model"`
	Session SessionConfig `yaml:"session"`
	Roots   []RootConfig  `yaml:"roots,omitempty"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig describes how to launch the arXiv MCP server subprocess.
type ServerConfig struct {
	// Command is the executable to launch, e.g. "python".
	Command string `yaml:"command"`

	// Args are the command arguments, e.g. the server script path.
	Args []string `yaml:"args,omitempty"`

	// DownloadDir is where the server saves article PDFs. Exported to the
	// subprocess as DOWNLOAD_PATH. Default: ./downloads.
	DownloadDir string `yaml:"download_dir,omitempty"`

	// SSLVerify controls certificate verification in the server's outbound
	// requests. Exported as SSL_VERIFY. Default: true.
	SSLVerify *bool `yaml:"ssl_verify,omitempty"`

	// Env adds extra environment variables to the subprocess.
	Env map[string]string `yaml:"env,omitempty"`
}

// ModelConfig selects and tunes the Bedrock backend.
type ModelConfig struct {
	Region      string   `yaml:"region,omitempty"`
	ModelID     string   `yaml:"model_id,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
	MaxTokens   *int     `yaml:"max_tokens,omitempty"`
}

// SessionConfig tunes session behavior.
type SessionConfig struct {
	// HandshakeTimeout bounds connect + initialize. Default: 20s.
	HandshakeTimeout time.Duration `yaml:"handshake_timeout,omitempty"`

	// CallTimeout bounds each remote call. Default: 30s.
	CallTimeout time.Duration `yaml:"call_timeout,omitempty"`

	// ElicitationPolicy is "reject" (default) or "queue": what happens to a
	// server input request that arrives while another is pending.
	ElicitationPolicy string `yaml:"elicitation_policy,omitempty"`
}

// RootConfig declares one filesystem root advertised to the server.
type RootConfig struct {
	URI  string `yaml:"uri"`
	Name string `yaml:"name,omitempty"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Default returns the configuration used when no file is present: roots at
// the working directory and the download directory, the Haiku model in
// us-west-2, reject-if-busy elicitation.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			DownloadDir: "downloads",
		},
		Model: ModelConfig{
			Region:  "us-west-2",
			ModelID: "anthropic.claude-3-haiku-20240307-v1:0",
		},
		Session: SessionConfig{
			HandshakeTimeout:  20 * time.Second,
			CallTimeout:       30 * time.Second,
			ElicitationPolicy: "reject",
		},
	}
}

// Load reads path (optional), applies environment overrides, and validates.
// An empty path loads defaults plus environment only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv layers environment overrides onto the loaded values.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvServerPath); v != "" {
		// The variable names the server directory; the standard server.py
		// entry point inside it is launched with the directory on
		// PYTHONPATH. A path to a .py script also works.
		script := filepath.Join(v, "server.py")
		pythonPath := v
		if strings.HasSuffix(v, ".py") {
			script = v
			pythonPath = filepath.Dir(v)
		}
		c.Server.Command = "python"
		c.Server.Args = []string{script}
		if c.Server.Env == nil {
			c.Server.Env = map[string]string{}
		}
		if _, ok := c.Server.Env["PYTHONPATH"]; !ok {
			c.Server.Env["PYTHONPATH"] = pythonPath
		}
	}
	if v := os.Getenv(EnvDownloadDir); v != "" {
		c.Server.DownloadDir = v
	}
	if v := os.Getenv(EnvSSLVerify); v != "" {
		verify := !isFalsy(v)
		c.Server.SSLVerify = &verify
	}
	if v := os.Getenv(EnvAWSRegion); v != "" {
		c.Model.Region = v
	}
	if v := os.Getenv(EnvModelID); v != "" {
		c.Model.ModelID = v
	}
}

// Validate checks the configuration for launch.
func (c *Config) Validate() error {
	if c.Server.Command == "" {
		return fmt.Errorf("%w: server.command is required (or set %s)", ErrInvalidConfig, EnvServerPath)
	}
	switch c.Session.ElicitationPolicy {
	case "", "reject", "queue":
	default:
		return fmt.Errorf("%w: session.elicitation_policy must be \"reject\" or \"queue\", got %q",
			ErrInvalidConfig, c.Session.ElicitationPolicy)
	}
	if c.Model.Temperature != nil && (*c.Model.Temperature < 0 || *c.Model.Temperature > 1) {
		return fmt.Errorf("%w: model.temperature must be in [0, 1]", ErrInvalidConfig)
	}
	if c.Model.MaxTokens != nil && *c.Model.MaxTokens <= 0 {
		return fmt.Errorf("%w: model.max_tokens must be positive", ErrInvalidConfig)
	}
	return nil
}

// BuildEnv renders the subprocess environment entries the server expects:
// DOWNLOAD_PATH, SSL_VERIFY, and any extras from server.env.
func (c *Config) BuildEnv() []string {
	var env []string

	if c.Server.DownloadDir != "" {
		env = append(env, "DOWNLOAD_PATH="+c.Server.DownloadDir)
	}
	verify := true
	if c.Server.SSLVerify != nil {
		verify = *c.Server.SSLVerify
	}
	if verify {
		env = append(env, "SSL_VERIFY=true")
	} else {
		env = append(env, "SSL_VERIFY=false")
	}

	for k, v := range c.Server.Env {
		env = append(env, k+"="+v)
	}
	return env
}

// DefaultRoots returns the roots to advertise when none are configured: the
// working directory and the download directory.
func (c *Config) DefaultRoots() []RootConfig {
	if len(c.Roots) > 0 {
		return c.Roots
	}

	var roots []RootConfig
	if cwd, err := os.Getwd(); err == nil {
		roots = append(roots, RootConfig{
			URI:  "file://" + filepath.ToSlash(cwd),
			Name: "Current Working Directory",
		})
	}
	if c.Server.DownloadDir != "" {
		abs, err := filepath.Abs(c.Server.DownloadDir)
		if err == nil {
			roots = append(roots, RootConfig{
				URI:  "file://" + filepath.ToSlash(abs),
				Name: "Downloads",
			})
		}
	}
	return roots
}

func isFalsy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "false", "no", "off":
		return true
	}
	return false
}
