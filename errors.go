// Copyright 2018 Andrew Bates
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package insteon

import (
	"errors"
	"fmt"
)

var (
	// ErrAckTimeout indicates the PLM never acknowledged a command.
	ErrAckTimeout = errors.New("timeout waiting for PLM ack")
	// ErrWriteTimeout names a command write the PLM never accepted. No
	// operation in this module returns it; writes are not timed.
	ErrWriteTimeout = errors.New("timeout writing command to PLM")
	// ErrReadTimeout indicates no matching frame arrived before the
	// caller's deadline.
	ErrReadTimeout = errors.New("timeout waiting for response")
	// ErrNotImplemented marks an operation the PLM core does not perform.
	ErrNotImplemented = errors.New("not implemented")
	// ErrUnknownCommand names a device NAK with the unknown-command low
	// byte (0xfd). No operation in this module decodes device NAKs, so
	// none returns it.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrNotLinked names a device NAK with the not-linked low byte
	// (0xff). No operation in this module decodes device NAKs, so none
	// returns it.
	ErrNotLinked = errors.New("device is not linked")
	// ErrUnexpectedResponse is returned when a response frame does not
	// match any recognized shape for the command that was sent.
	ErrUnexpectedResponse = errors.New("unexpected response")
	// ErrCancelled is returned by a wait that is abandoned because its
	// cancel channel was closed.
	ErrCancelled = errors.New("operation cancelled")
)

// CommandFailure wraps a NAK epilogue (0x15) received in response to a
// command byte. write_read treats this as transient and retries;
// higher-level session/linking callers see it surface as an error.
type CommandFailure struct {
	Command byte
}

func (e *CommandFailure) Error() string {
	return fmt.Sprintf("command 0x%02x was NAK'd", e.Command)
}

// TraceError marks a violated wire invariant (a protocol assertion
// failure), such as a standard message whose flags advertise the
// extended bit. It wraps the failing sentinel with call-site context.
type TraceError struct {
	Err   error
	Trace string
}

func newTraceError(err error, trace string) error {
	return &TraceError{Err: err, Trace: trace}
}

func (e *TraceError) Error() string {
	if e.Trace == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Trace, e.Err.Error())
}

func (e *TraceError) Unwrap() error { return e.Err }
