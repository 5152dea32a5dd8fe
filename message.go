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

import "fmt"

// MessageFlags is the set of boolean flags carried in every standard or
// extended Insteon message's flags byte, alongside the 2-bit max-hops
// and hops-left counters (which are modeled as separate InsteonMessage
// fields, not part of this set).
type MessageFlags struct {
	Extended  bool
	Ack       bool
	AllLink   bool
	Broadcast bool
}

// encodeFlags and parseFlags are the pure, mutually inverse halves of
// the flags byte codec: maxHops occupies bits 0-1, hopsLeft bits 2-3,
// and Extended/Ack/AllLink/Broadcast occupy bits 4/5/6/7 respectively.
func encodeFlags(maxHops, hopsLeft byte, flags MessageFlags) byte {
	b := (maxHops & 0x03) | ((hopsLeft & 0x03) << 2)
	if flags.Extended {
		b |= 0x10
	}
	if flags.Ack {
		b |= 0x20
	}
	if flags.AllLink {
		b |= 0x40
	}
	if flags.Broadcast {
		b |= 0x80
	}
	return b
}

// IsExtendedFlags reports the extended bit (0x10) of a raw flags byte.
// The frame codec uses this to size the 0x62 echo body before a full
// message decode is possible; message decoding itself trusts the command
// code over this bit (see decodeMessage).
func IsExtendedFlags(b byte) bool {
	return b&0x10 != 0
}

func parseFlags(b byte) (maxHops, hopsLeft byte, flags MessageFlags) {
	maxHops = b & 0x03
	hopsLeft = (b >> 2) & 0x03
	flags = MessageFlags{
		Extended:  b&0x10 != 0,
		Ack:       b&0x20 != 0,
		AllLink:   b&0x40 != 0,
		Broadcast: b&0x80 != 0,
	}
	return maxHops, hopsLeft, flags
}

// InsteonMessage is the structured representation of a standard or
// extended Insteon message. UserData is either empty (standard message)
// or exactly 14 bytes (extended message), with the 14th byte holding
// the extended-payload checksum.
type InsteonMessage struct {
	Sender       Identity
	Target       Identity
	MaxHops      byte
	HopsLeft     byte
	Flags        MessageFlags
	CommandBytes [2]byte
	UserData     []byte
}

// NewStandardMessage builds a standard (11-byte payload) message.
func NewStandardMessage(target Identity, maxHops, hopsLeft byte, flags MessageFlags, cmd [2]byte) InsteonMessage {
	flags.Extended = false
	return InsteonMessage{
		Target:       target,
		MaxHops:      maxHops,
		HopsLeft:     hopsLeft,
		Flags:        flags,
		CommandBytes: cmd,
	}
}

// NewExtendedMessage builds an extended (25-byte payload) message. Only
// the first 13 bytes of payload are meaningful; payload is padded with
// zeros to 13 bytes if shorter, and the 14th checksum byte is computed
// automatically.
func NewExtendedMessage(target Identity, maxHops, hopsLeft byte, flags MessageFlags, cmd [2]byte, payload []byte) (InsteonMessage, error) {
	if len(payload) > 13 {
		return InsteonMessage{}, fmt.Errorf("extended payload must be at most 13 bytes, got %d", len(payload))
	}
	userData := make([]byte, 14)
	copy(userData, payload)
	userData[13] = checksum(cmd, userData[:13])

	flags.Extended = true
	return InsteonMessage{
		Target:       target,
		MaxHops:      maxHops,
		HopsLeft:     hopsLeft,
		Flags:        flags,
		CommandBytes: cmd,
		UserData:     userData,
	}, nil
}

// checksum computes the extended-message checksum: ((0xFF XOR sum) + 1)
// mod 256, summed over the two command bytes plus the first 13 payload
// bytes.
func checksum(cmd [2]byte, payload13 []byte) byte {
	var sum byte
	sum += cmd[0]
	sum += cmd[1]
	for _, b := range payload13 {
		sum += b
	}
	return byte((0xFF^sum)+1) & 0xFF
}

// VerifyChecksum reports whether the message's 14th user-data byte
// satisfies the extended-message checksum invariant.
func (m InsteonMessage) VerifyChecksum() bool {
	if !m.Flags.Extended || len(m.UserData) != 14 {
		return false
	}
	return m.UserData[13] == checksum(m.CommandBytes, m.UserData[:13])
}

// EncodeOutbound serializes the message as the body of a 0x62
// send-standard-or-extended-message command. The sender is omitted: the
// PLM is always the implicit sender of an outbound message.
func (m InsteonMessage) EncodeOutbound() []byte {
	body := make([]byte, 0, 20)
	body = append(body, m.Target.Bytes()...)
	body = append(body, encodeFlags(m.MaxHops, m.HopsLeft, m.Flags))
	body = append(body, m.CommandBytes[0], m.CommandBytes[1])
	if m.Flags.Extended {
		body = append(body, m.UserData...)
	}
	return body
}

// DecodeStandardMessage decodes a 9-byte 0x50 standard-message-received
// body: from(3), to(3), flags(1), cmd0, cmd1.
func DecodeStandardMessage(body []byte) (InsteonMessage, error) {
	if len(body) != 9 {
		return InsteonMessage{}, fmt.Errorf("standard message body must be 9 bytes, got %d", len(body))
	}
	return decodeMessage(body, false)
}

// DecodeExtendedMessage decodes a 23-byte 0x51
// extended-message-received body: from(3), to(3), flags(1), cmd0, cmd1,
// ud0..ud13.
func DecodeExtendedMessage(body []byte) (InsteonMessage, error) {
	if len(body) != 23 {
		return InsteonMessage{}, fmt.Errorf("extended message body must be 23 bytes, got %d", len(body))
	}
	return decodeMessage(body, true)
}

func decodeMessage(body []byte, extended bool) (InsteonMessage, error) {
	sender, err := NewIdentity(body[0:3])
	if err != nil {
		return InsteonMessage{}, err
	}
	target, err := NewIdentity(body[3:6])
	if err != nil {
		return InsteonMessage{}, err
	}
	maxHops, hopsLeft, flags := parseFlags(body[6])
	// The command code (0x50 vs 0x51) is authoritative for extended-ness:
	// real devices do not reliably mirror it in the flags byte bit.
	flags.Extended = extended

	msg := InsteonMessage{
		Sender:       sender,
		Target:       target,
		MaxHops:      maxHops,
		HopsLeft:     hopsLeft,
		Flags:        flags,
		CommandBytes: [2]byte{body[7], body[8]},
	}
	if extended {
		msg.UserData = append([]byte(nil), body[9:23]...)
	}
	return msg, nil
}

func (m InsteonMessage) String() string {
	if m.Flags.Extended {
		return fmt.Sprintf("%s -> %s ext cmd=%02x%02x ud=%x", m.Sender, m.Target, m.CommandBytes[0], m.CommandBytes[1], m.UserData)
	}
	return fmt.Sprintf("%s -> %s std cmd=%02x%02x", m.Sender, m.Target, m.CommandBytes[0], m.CommandBytes[1])
}
