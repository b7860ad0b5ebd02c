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

package errors

import (
	"errors"
	"fmt"
)

// Wrap creates a new error that wraps the given error with additional context.
// If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf creates a new error that wraps the given error with formatted context.
// If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target type.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new error with a formatted message.
func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// IsSessionFatal reports whether the session should be considered dead:
// connection, handshake, or transport failures.
func IsSessionFatal(err error) bool {
	var connErr *ConnectionError
	var hsErr *HandshakeError
	var tpErr *TransportError
	return errors.As(err, &connErr) || errors.As(err, &hsErr) || errors.As(err, &tpErr)
}

// IsRecoverable reports whether the caller can meaningfully retry or rephrase
// without reconnecting.
func IsRecoverable(err error) bool {
	var unknownTool *UnknownToolError
	var unknownReq *UnknownRequestError
	var busy *ElicitationBusyError
	var upstream *UpstreamModelError
	var parse *ToolSelectionParseError
	var invalid *ToolSelectionInvalidError
	var timeout *CallTimeoutError
	return errors.As(err, &unknownTool) ||
		errors.As(err, &unknownReq) ||
		errors.As(err, &busy) ||
		errors.As(err, &upstream) ||
		errors.As(err, &parse) ||
		errors.As(err, &invalid) ||
		errors.As(err, &timeout)
}

// UserMessage renders err as a message for the end user, distinguishing
// "rephrase your request", "the tool failed", and "the connection is broken".
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var parse *ToolSelectionParseError
	var invalid *ToolSelectionInvalidError
	if errors.As(err, &parse) || errors.As(err, &invalid) {
		return "Your request could not be understood. Try rephrasing it, or pick a tool directly with the call command."
	}

	var unknownTool *UnknownToolError
	if errors.As(err, &unknownTool) {
		return fmt.Sprintf("There is no tool named %q. Run the tools command to see what the server offers.", unknownTool.Tool)
	}

	var upstream *UpstreamModelError
	if errors.As(err, &upstream) {
		return "The language model backend is unavailable. Check your AWS credentials and region, then retry."
	}

	var timeout *CallTimeoutError
	if errors.As(err, &timeout) {
		return "The tool call timed out. The server may be busy; retry, or try a narrower request."
	}

	if IsSessionFatal(err) {
		return "The connection to the tool server is broken. Restart the session to continue."
	}

	return err.Error()
}
