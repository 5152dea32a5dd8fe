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
	"bytes"
	"fmt"

	"github.com/abates/insteon-plm"
)

// Command bytes the host sends to the modem. Each carries an ACK(0x06) or
// NAK(0x15) epilogue byte after its response body.
const (
	CmdGetInfo          byte = 0x60
	CmdSendAllLink      byte = 0x61
	CmdSendMessage      byte = 0x62
	CmdStartAllLinking  byte = 0x64
	CmdCancelAllLinking byte = 0x65
	CmdResetIM          byte = 0x67
	CmdGetFirstAllLink  byte = 0x69
	CmdGetNextAllLink   byte = 0x6A
	CmdSetIMConfig         byte = 0x6B
	CmdLEDOn               byte = 0x6D
	CmdLEDOff              byte = 0x6E
	CmdManageAllLinkRecord byte = 0x6F
	CmdGetIMConfig         byte = 0x73
)

// Command bytes the modem sends unsolicited. These carry no ACK/NAK
// epilogue.
const (
	CmdStandardMessageReceived     byte = 0x50
	CmdExtendedMessageReceived     byte = 0x51
	CmdAllLinkingCompleted         byte = 0x53
	CmdButtonEventReport           byte = 0x54
	CmdUserResetDetected           byte = 0x55
	CmdAllLinkCleanupFailureReport byte = 0x56
	CmdAllLinkRecordResponse       byte = 0x57
	CmdAllLinkCleanupStatusReport  byte = 0x58
)

type frameSpec struct {
	bodyLen   int
	hasAckNak bool
}

// frameSpecs gives the body length (excluding the leading 0x02, the command
// byte, and any trailing ack/nak byte) for every command this driver
// recognizes. CmdSendMessage's entry is a placeholder; its real length
// depends on the echoed flags byte and is resolved in parseOneFrame.
var frameSpecs = map[byte]frameSpec{
	CmdGetInfo:          {6, true},
	CmdSendAllLink:      {3, true},
	CmdSendMessage:      {6, true},
	CmdStartAllLinking:  {2, true},
	CmdCancelAllLinking: {0, true},
	CmdResetIM:          {0, true},
	CmdGetFirstAllLink:  {0, true},
	CmdGetNextAllLink:   {0, true},
	CmdSetIMConfig:         {1, true},
	CmdLEDOn:               {0, true},
	CmdLEDOff:              {0, true},
	CmdManageAllLinkRecord: {9, true},
	CmdGetIMConfig:         {3, true},

	CmdStandardMessageReceived:     {9, false},
	CmdExtendedMessageReceived:     {23, false},
	CmdAllLinkingCompleted:         {8, false},
	CmdButtonEventReport:           {1, false},
	CmdUserResetDetected:           {0, false},
	CmdAllLinkCleanupFailureReport: {5, false},
	CmdAllLinkRecordResponse:       {8, false},
	CmdAllLinkCleanupStatusReport:  {1, false},
}

// Frame is one fully decoded wire frame: the command byte, its body (with
// the leading 0x02 and command byte stripped, and the ack/nak epilogue
// stripped), and the ack/nak outcome for commands that carry one.
type Frame struct {
	Command byte
	Body    []byte
	Ack     bool
	Nak     bool
}

func (f Frame) String() string {
	return fmt.Sprintf("Frame{Cmd: 0x%02x Body: % x Ack: %v Nak: %v}", f.Command, f.Body, f.Ack, f.Nak)
}

// EncodeFrame builds the bytes to write to the port for an outbound
// command: 0x02, the command byte, and its body. The ack/nak epilogue is
// never written by the host, only read back.
func EncodeFrame(cmd byte, body []byte) []byte {
	buf := make([]byte, 0, 2+len(body))
	buf = append(buf, 0x02, cmd)
	buf = append(buf, body...)
	return buf
}

// discardUntilStart drops bytes from buf up to (but not including) the next
// 0x02, the frame start marker. Leading runs of 0x00 are a known modem idle
// artifact and are discarded silently; any other discarded byte is logged
// at warning level.
func discardUntilStart(buf *bytes.Buffer) {
	b := buf.Bytes()
	i := 0
	for i < len(b) && b[i] != 0x02 {
		i++
	}
	if i == 0 {
		return
	}
	discarded := append([]byte(nil), b[:i]...)
	allZero := true
	for _, bb := range discarded {
		if bb != 0 {
			allZero = false
			break
		}
	}
	if !allZero {
		insteon.Log.Warningf("PLM resync: discarding %d unexpected byte(s): % x", i, discarded)
	}
	buf.Next(i)
}

// parseOneFrame attempts to pull one complete frame off the front of buf.
// If a complete frame isn't yet buffered, it returns ok == false and
// expected, the minimum additional byte count the caller should read
// before trying again. Unknown command bytes are discarded and resynced
// internally rather than surfaced as an error, per the framer's totality
// guarantee: it always makes forward progress or asks for more data.
func parseOneFrame(buf *bytes.Buffer) (frame Frame, ok bool, expected int) {
	for {
		discardUntilStart(buf)
		b := buf.Bytes()
		if len(b) < 2 {
			return Frame{}, false, 2 - len(b)
		}

		cmd := b[1]
		spec, known := frameSpecs[cmd]
		if !known {
			insteon.Log.Warningf("PLM received unknown command 0x%02x", cmd)
			buf.Next(2)
			continue
		}

		bodyLen := spec.bodyLen
		if cmd == CmdSendMessage {
			// body is [target(3) flags(1) cmd(2) [userdata(14)]]; the
			// flags byte at body offset 3 decides whether this is the
			// 6-byte standard echo or the 20-byte extended echo.
			if len(b) < 2+4 {
				return Frame{}, false, (2 + 4) - len(b)
			}
			if insteon.IsExtendedFlags(b[2+3]) {
				bodyLen = 20
			} else {
				bodyLen = 6
			}
		}

		total := 2 + bodyLen
		if spec.hasAckNak {
			total++
		}
		if len(b) < total {
			return Frame{}, false, total - len(b)
		}

		body := append([]byte(nil), b[2:2+bodyLen]...)
		frame = Frame{Command: cmd, Body: body}
		if spec.hasAckNak {
			switch b[2+bodyLen] {
			case 0x06:
				frame.Ack = true
			case 0x15:
				frame.Nak = true
			default:
				insteon.Log.Warningf("PLM frame 0x%02x missing ack/nak byte, got 0x%02x", cmd, b[2+bodyLen])
			}
		}
		buf.Next(total)
		return frame, true, 2
	}
}

// ParseFrames drains every complete frame currently buffered in buf,
// leaving any trailing partial frame in place. It returns the frames found
// (possibly none) and expected, the minimum number of additional bytes the
// caller should read before calling ParseFrames again.
func ParseFrames(buf *bytes.Buffer) (frames []Frame, expected int) {
	for {
		frame, ok, exp := parseOneFrame(buf)
		if !ok {
			return frames, exp
		}
		frames = append(frames, frame)
	}
}
