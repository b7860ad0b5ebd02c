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
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/paperbridge/paperbridge/internal/log"
	"github.com/paperbridge/paperbridge/pkg/errors"
	"github.com/paperbridge/paperbridge/pkg/llm"
)

const (
	clientName    = "paperbridge"
	clientVersion = "0.1.0"

	defaultHandshakeTimeout = 20 * time.Second
	defaultCallTimeout      = 30 * time.Second
)

// Config configures a session to a tool server.
type Config struct {
	// Command is the executable to run.
	Command string

	// Args are the command-line arguments.
	Args []string

	// Env are KEY=VALUE pairs appended to the inherited environment
	// (download directory, SSL-verification toggle, etc.). Passed through
	// unvalidated.
	Env []string

	// Roots are the filesystem boundaries declared to the server.
	// Defaults to the current working directory.
	Roots []Root

	// Sampler answers the server's sampling requests. When nil, sampling
	// requests are refused with an UpstreamModelError.
	Sampler llm.Provider

	// ElicitationPolicy selects the behavior for overlapping elicitation
	// requests. Defaults to ElicitReject.
	ElicitationPolicy ElicitPolicy

	// HandshakeTimeout bounds protocol negotiation (default 20s).
	HandshakeTimeout time.Duration

	// CallTimeout bounds each remote call (default 30s).
	CallTimeout time.Duration

	// Logger receives structured session logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// conn is the subset of the SDK client session the Session drives. Tests
// substitute a recording implementation.
type conn interface {
	ListTools(ctx context.Context, params *mcp.ListToolsParams) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, params *mcp.CallToolParams) (*mcp.CallToolResult, error)
	ListResources(ctx context.Context, params *mcp.ListResourcesParams) (*mcp.ListResourcesResult, error)
	ReadResource(ctx context.Context, params *mcp.ReadResourceParams) (*mcp.ReadResourceResult, error)
	Close() error
}

// Session owns the transport connection, the tool catalog, and the single
// pending-elicitation slot. All three share its lifetime.
type Session struct {
	cfg    Config
	logger *slog.Logger
	roots  []Root

	conn    conn
	catalog atomic.Pointer[catalogSnapshot]
	elicit  *elicitations

	// down is set on Close and on transport loss; calls observe it as a
	// TransportError.
	down      atomic.Bool
	closeOnce sync.Once
}

// Connect launches the tool-server process, performs the protocol handshake,
// and registers the three callback handlers plus the declared roots.
//
// Returns *errors.ConnectionError when the executable cannot be found or
// started, and *errors.HandshakeError when negotiation does not complete
// within Config.HandshakeTimeout.
func Connect(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.Command == "" {
		return nil, &errors.ConnectionError{Command: cfg.Command, Cause: errors.New("command is required")}
	}
	if _, err := exec.LookPath(cfg.Command); err != nil {
		return nil, &errors.ConnectionError{Command: cfg.Command, Cause: err}
	}

	s := newSession(nil, cfg)

	client := mcp.NewClient(&mcp.Implementation{Name: clientName, Version: clientVersion}, &mcp.ClientOptions{
		CreateMessageHandler: s.handleCreateMessage,
		ElicitationHandler:   s.handleElicit,
	})
	for _, r := range s.roots {
		client.AddRoots(&mcp.Root{URI: r.URI, Name: r.Name})
	}

	cmd := exec.Command(cfg.Command, cfg.Args...)
	cmd.Env = append(os.Environ(), cfg.Env...)
	cmd.Stderr = os.Stderr

	hctx, cancel := context.WithTimeout(ctx, s.handshakeTimeout())
	defer cancel()

	cs, err := client.Connect(hctx, &mcp.CommandTransport{Command: cmd}, nil)
	if err != nil {
		if execErr := asStartError(err); execErr != nil {
			return nil, &errors.ConnectionError{Command: cfg.Command, Cause: execErr}
		}
		return nil, &errors.HandshakeError{Timeout: s.handshakeTimeout(), Cause: err}
	}

	s.conn = cs
	go func() {
		// Wait returns when the server closes the channel or the process
		// exits; either way the session is dead for callers.
		_ = cs.Wait()
		s.down.Store(true)
	}()

	s.logger.Info("connected to tool server",
		slog.String(log.ServerKey, cfg.Command),
		slog.Int("roots", len(s.roots)))
	return s, nil
}

// newSession wires the non-transport state. Connect attaches the real conn;
// tests attach fakes.
func newSession(c conn, cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	roots := cfg.Roots
	if len(roots) == 0 {
		roots = defaultRoots()
	}
	// Private copy: the handler must return the configured list verbatim for
	// the session's lifetime, no matter what the caller does with its slice.
	owned := make([]Root, len(roots))
	copy(owned, roots)

	policy := cfg.ElicitationPolicy
	if policy == "" {
		policy = ElicitReject
	}

	return &Session{
		cfg:    cfg,
		logger: log.WithComponent(logger, "session"),
		roots:  owned,
		conn:   c,
		elicit: newElicitations(policy),
	}
}

func (s *Session) handshakeTimeout() time.Duration {
	if s.cfg.HandshakeTimeout > 0 {
		return s.cfg.HandshakeTimeout
	}
	return defaultHandshakeTimeout
}

func (s *Session) callTimeout() time.Duration {
	if s.cfg.CallTimeout > 0 {
		return s.cfg.CallTimeout
	}
	return defaultCallTimeout
}

// Close tears down the subprocess and the duplex channel. Idempotent; any
// in-flight call observes a TransportError. Close after transport loss
// returns nil.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		alreadyDown := s.down.Swap(true)
		if s.conn == nil {
			return
		}
		if cerr := s.conn.Close(); cerr != nil && !alreadyDown {
			err = errors.Wrap(cerr, "closing tool server connection")
		}
		s.logger.Info("tool server connection closed")
	})
	return err
}

// transportDown reports whether the session can no longer reach the server.
func (s *Session) transportDown() bool {
	return s.down.Load()
}

// asStartError extracts a process-startup failure (missing executable,
// fork/exec fault) from a connect error, or returns nil when the failure
// happened after the process came up.
func asStartError(err error) error {
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return execErr
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr
	}
	return nil
}
