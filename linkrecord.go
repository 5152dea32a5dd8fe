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
	"bytes"
	"fmt"
	"sort"
)

// AllLinkRole distinguishes a PLM link record's role: whether the PLM
// controls the remote device, or responds to it.
type AllLinkRole byte

const (
	RoleResponder AllLinkRole = iota
	RoleController
)

func (r AllLinkRole) String() string {
	if r == RoleController {
		return "controller"
	}
	return "responder"
}

// roleFromFlags derives the role from bit 6 of a link-record flags byte:
// clear means controller, set means responder. (Worked out from the
// link-enumeration scenario's numeric flags bytes, 0xa2/controller vs
// 0xe2/responder, rather than from the bit's name alone.)
func roleFromFlags(flags byte) AllLinkRole {
	if flags&0x40 != 0 {
		return RoleResponder
	}
	return RoleController
}

// AllLinkMode selects the behavior of an all-linking session.
type AllLinkMode byte

const (
	LinkModeResponder AllLinkMode = 0x00
	LinkModeController AllLinkMode = 0x01
	LinkModeAuto        AllLinkMode = 0x03
	LinkModeUnknown     AllLinkMode = 0xFE
	LinkModeDelete      AllLinkMode = 0xFF
)

var linkModeNames = map[string]AllLinkMode{
	"responder":  LinkModeResponder,
	"controller": LinkModeController,
	"auto":       LinkModeAuto,
	"unknown":    LinkModeUnknown,
	"delete":     LinkModeDelete,
}

// ParseAllLinkMode parses a lowercase mode name such as "auto" or
// "delete" into an AllLinkMode.
func ParseAllLinkMode(s string) (AllLinkMode, error) {
	if mode, ok := linkModeNames[s]; ok {
		return mode, nil
	}
	return 0, fmt.Errorf("unknown all-link mode %q", s)
}

func (m AllLinkMode) String() string {
	for name, mode := range linkModeNames {
		if mode == m {
			return name
		}
	}
	return fmt.Sprintf("AllLinkMode(0x%02x)", byte(m))
}

// AllLinkModeFromByte decodes a mode byte from an all-linking-completed
// frame. A byte outside the known enumeration means "no match found"
// (deletion of a nonexistent entry failed) and is reported as ok=false.
func AllLinkModeFromByte(b byte) (mode AllLinkMode, ok bool) {
	switch AllLinkMode(b) {
	case LinkModeResponder, LinkModeController, LinkModeAuto, LinkModeUnknown, LinkModeDelete:
		return AllLinkMode(b), true
	default:
		return 0, false
	}
}

// AllLinkRecord is a single row of the PLM's link database.
type AllLinkRecord struct {
	Role     AllLinkRole
	Identity Identity
	Group    byte
	Data     [3]byte
}

func newAllLinkRecord(flags byte, group byte, identity Identity, data []byte) AllLinkRecord {
	rec := AllLinkRecord{
		Role:     roleFromFlags(flags),
		Identity: identity,
		Group:    group,
	}
	copy(rec.Data[:], data)
	return rec
}

// DecodeAllLinkRecord decodes an 8-byte all-link-record-response body:
// flags(1), group(1), identity(3), data(3).
func DecodeAllLinkRecord(body []byte) (AllLinkRecord, error) {
	if len(body) != 8 {
		return AllLinkRecord{}, fmt.Errorf("all-link record body must be 8 bytes, got %d", len(body))
	}
	identity, err := NewIdentity(body[2:5])
	if err != nil {
		return AllLinkRecord{}, err
	}
	return newAllLinkRecord(body[0], body[1], identity, body[5:8]), nil
}

func (r AllLinkRecord) String() string {
	return fmt.Sprintf("%s %s group %d, data %02x %02x %02x", r.Role, r.Identity, r.Group, r.Data[0], r.Data[1], r.Data[2])
}

// SortAllLinkRecords sorts records by (role, identity bytes, group), the
// order the PLM façade returns controllers and responders in.
func SortAllLinkRecords(records []AllLinkRecord) {
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Role != b.Role {
			return a.Role < b.Role
		}
		if c := bytes.Compare(a.Identity[:], b.Identity[:]); c != 0 {
			return c < 0
		}
		return a.Group < b.Group
	})
}

// SplitAllLinkRecords partitions records by role and returns each group
// sorted per SortAllLinkRecords.
func SplitAllLinkRecords(records []AllLinkRecord) (controllers, responders []AllLinkRecord) {
	for _, r := range records {
		if r.Role == RoleController {
			controllers = append(controllers, r)
		} else {
			responders = append(responders, r)
		}
	}
	SortAllLinkRecords(controllers)
	SortAllLinkRecords(responders)
	return controllers, responders
}
