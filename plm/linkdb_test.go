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
	"testing"
	"time"

	"github.com/abates/insteon-plm"
)

func TestAddLinkControllerWire(t *testing.T) {
	port := newFakePort()
	port.onWrite(CmdManageAllLinkRecord, append(EncodeFrame(CmdManageAllLinkRecord, make([]byte, 9)), 0x06))
	p := New(port, time.Second)

	identity, _ := insteon.NewIdentity([]byte{0x0a, 0x0b, 0x0c})
	rec := insteon.AllLinkRecord{Role: insteon.RoleController, Identity: identity, Group: 1, Data: [3]byte{1, 2, 3}}
	if err := p.AddLink(rec); err != nil {
		t.Fatal(err)
	}

	writes := port.Writes()
	if len(writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(writes))
	}
	want := []byte{0x02, 0x6f, linkCmdModFirstCtrl, 0x40, 0x01, 0x0a, 0x0b, 0x0c, 0x01, 0x02, 0x03}
	got := writes[0]
	if len(got) != len(want) {
		t.Fatalf("wire = % x, want % x", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("wire = % x, want % x", got, want)
		}
	}
}

func TestAddLinkResponderWire(t *testing.T) {
	port := newFakePort()
	port.onWrite(CmdManageAllLinkRecord, append(EncodeFrame(CmdManageAllLinkRecord, make([]byte, 9)), 0x06))
	p := New(port, time.Second)

	identity, _ := insteon.NewIdentity([]byte{0x0a, 0x0b, 0x0c})
	rec := insteon.AllLinkRecord{Role: insteon.RoleResponder, Identity: identity, Group: 2, Data: [3]byte{4, 5, 6}}
	if err := p.AddLink(rec); err != nil {
		t.Fatal(err)
	}

	writes := port.Writes()
	got := writes[0]
	if got[2] != linkCmdModFirstResp {
		t.Errorf("control code = 0x%02x, want 0x%02x", got[2], linkCmdModFirstResp)
	}
	if got[3] != 0x00 {
		t.Errorf("flags = 0x%02x, want 0x00 (responder: controller bit clear)", got[3])
	}
}

func TestRemoveLinksWire(t *testing.T) {
	port := newFakePort()
	port.onWrite(CmdManageAllLinkRecord,
		append(EncodeFrame(CmdManageAllLinkRecord, make([]byte, 9)), 0x06),
		append(EncodeFrame(CmdManageAllLinkRecord, make([]byte, 9)), 0x06),
	)
	p := New(port, time.Second)

	id1, _ := insteon.NewIdentity([]byte{1, 2, 3})
	id2, _ := insteon.NewIdentity([]byte{4, 5, 6})
	recs := []insteon.AllLinkRecord{
		{Role: insteon.RoleController, Identity: id1, Group: 1},
		{Role: insteon.RoleResponder, Identity: id2, Group: 2},
	}
	if err := p.RemoveLinks(recs...); err != nil {
		t.Fatal(err)
	}

	writes := port.Writes()
	if len(writes) != 2 {
		t.Fatalf("writes = %d, want 2", len(writes))
	}
	for _, w := range writes {
		if w[2] != linkCmdDeleteFirst {
			t.Errorf("control code = 0x%02x, want 0x%02x", w[2], linkCmdDeleteFirst)
		}
	}
}
