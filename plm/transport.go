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

package plm

import (
	"io"
	"time"

	"github.com/tarm/serial"
)

// DefaultBaud is the PLM's fixed serial rate: 19200 8N1.
const DefaultBaud = 19200

// DefaultReadTimeout is the per-read deadline used when a caller does not
// override it with WithTimeout.
const DefaultReadTimeout = time.Second

// port wraps a *serial.Port so it satisfies io.ReadWriteCloser with a Flush
// method; New accepts it as its io.ReadWriter.
type port struct {
	*serial.Port
}

func (p *port) Flush() error {
	return p.Port.Flush()
}

// OpenPort opens the named serial device (e.g. "/dev/ttyUSB0") at the PLM's
// fixed 19200-8N1 framing and returns an io.ReadWriteCloser suitable for
// passing to New.
func OpenPort(name string) (io.ReadWriteCloser, error) {
	c := &serial.Config{
		Name:        name,
		Baud:        DefaultBaud,
		ReadTimeout: DefaultReadTimeout,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
	}
	p, err := serial.OpenPort(c)
	if err != nil {
		return nil, err
	}
	return &port{p}, nil
}
