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
	"testing"
	"time"

	"github.com/abates/insteon-plm"
)

// TestGetInfoS1 is spec.md §8 S1.
func TestGetInfoS1(t *testing.T) {
	port := newFakePort()
	port.onWrite(CmdGetInfo, []byte{0x02, 0x60, 0x1a, 0x2b, 0x3c, 0x03, 0x2a, 0x07, 0x06})
	p := New(port, time.Second)

	info, err := p.GetInfo()
	if err != nil {
		t.Fatal(err)
	}
	wantIdentity, _ := insteon.NewIdentity([]byte{0x1a, 0x2b, 0x3c})
	if info.Identity != wantIdentity {
		t.Errorf("Identity = %s, want %s", info.Identity, wantIdentity)
	}
	if info.Category != insteon.CategoryNetworkBridges {
		t.Errorf("Category = %v, want CategoryNetworkBridges", info.Category)
	}
	if info.Subcategory != 0x2a {
		t.Errorf("Subcategory = 0x%02x, want 0x2a", byte(info.Subcategory))
	}
	if info.FirmwareVersion != 0x07 {
		t.Errorf("FirmwareVersion = 0x%02x, want 0x07", info.FirmwareVersion)
	}
}

// TestGetAllLinkRecordsS2 is spec.md §8 S2.
func TestGetAllLinkRecordsS2(t *testing.T) {
	port := newFakePort()
	firstResp := append(
		[]byte{0x02, 0x69, 0x06},
		[]byte{0x02, 0x57, 0xe2, 0x01, 0xaa, 0xbb, 0xcc, 0x01, 0x02, 0x03}...,
	)
	port.onWrite(CmdGetFirstAllLink, firstResp)

	secondResp := append(
		[]byte{0x02, 0x6a, 0x06},
		[]byte{0x02, 0x57, 0xa2, 0x02, 0xdd, 0xee, 0xff, 0x04, 0x05, 0x06}...,
	)
	nakResp := []byte{0x02, 0x6a, 0x15}
	port.onWrite(CmdGetNextAllLink, secondResp, nakResp)

	p := New(port, time.Second)
	controllers, responders, err := p.GetAllLinkRecords()
	if err != nil {
		t.Fatal(err)
	}
	if len(controllers) != 1 {
		t.Fatalf("len(controllers) = %d, want 1", len(controllers))
	}
	if len(responders) != 1 {
		t.Fatalf("len(responders) = %d, want 1", len(responders))
	}
	wantControllerIdentity, _ := insteon.NewIdentity([]byte{0xdd, 0xee, 0xff})
	if controllers[0].Identity != wantControllerIdentity || controllers[0].Data != [3]byte{0x04, 0x05, 0x06} {
		t.Errorf("controller = %v, want identity %s data 04 05 06", controllers[0], wantControllerIdentity)
	}
	wantResponderIdentity, _ := insteon.NewIdentity([]byte{0xaa, 0xbb, 0xcc})
	if responders[0].Identity != wantResponderIdentity || responders[0].Data != [3]byte{0x01, 0x02, 0x03} {
		t.Errorf("responder = %v, want identity %s data 01 02 03", responders[0], wantResponderIdentity)
	}
}

// TestLightOnS5Wire is spec.md §8 S5, exercised through the façade and
// mux down to the wire bytes actually written.
func TestLightOnS5Wire(t *testing.T) {
	port := newFakePort()
	target, _ := insteon.NewIdentity([]byte{0x01, 0x02, 0x03})
	echoBody := []byte{0x01, 0x02, 0x03, 0x0f, 0x11, 0x7f}
	port.onWrite(CmdSendMessage, append(EncodeFrame(CmdSendMessage, echoBody), 0x06))

	p := New(port, time.Second)
	if _, err := p.LightOn(target, 50.0, false); err != nil {
		t.Fatal(err)
	}

	writes := port.Writes()
	if len(writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(writes))
	}
	want := []byte{0x02, 0x62, 0x01, 0x02, 0x03, 0x0f, 0x11, 0x7f}
	if !bytes.Equal(writes[0], want) {
		t.Errorf("wire = % x, want % x", writes[0], want)
	}
}

// TestRemoteEnterLinkingChecksumS6 is spec.md §8 S6.
func TestRemoteEnterLinkingChecksumS6(t *testing.T) {
	port := newFakePort()
	target, _ := insteon.NewIdentity([]byte{0x01, 0x02, 0x03})
	// echo body: target(3) flags(1, extended) cmd(2) userdata(14)
	echoBody := append([]byte{0x01, 0x02, 0x03, 0x1f, 0x09, 0x01}, make([]byte, 13)...)
	echoBody = append(echoBody, checksumFor([2]byte{0x09, 0x01}, make([]byte, 13)))
	port.onWrite(CmdSendMessage, append(EncodeFrame(CmdSendMessage, echoBody), 0x06))

	p := New(port, time.Second)
	if err := p.RemoteEnterLinking(target, 0x01); err != nil {
		t.Fatal(err)
	}

	writes := port.Writes()
	if len(writes) != 1 {
		t.Fatalf("writes = %d, want 1", len(writes))
	}
	wire := writes[0]
	if len(wire) != 2+20 {
		t.Fatalf("len(wire) = %d, want 22", len(wire))
	}
	gotChecksum := wire[len(wire)-1]
	wantChecksum := checksumFor([2]byte{0x09, 0x01}, make([]byte, 13))
	if gotChecksum != wantChecksum {
		t.Errorf("checksum = 0x%02x, want 0x%02x", gotChecksum, wantChecksum)
	}
}

// checksumFor mirrors the package-private checksum formula for test
// fixture construction: ((0xFF XOR sum) + 1) mod 256 over the two
// command bytes plus 13 payload bytes.
func checksumFor(cmd [2]byte, payload13 []byte) byte {
	var sum byte
	sum += cmd[0]
	sum += cmd[1]
	for _, b := range payload13 {
		sum += b
	}
	return byte((0xff^sum)+1) & 0xff
}

// waitForWrites polls port until it has recorded at least n writes, for
// tests that need to push an unsolicited frame only once a prior write's
// subscription is guaranteed to be live.
func waitForWrites(t *testing.T, port *fakePort, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		if len(port.Writes()) >= n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d writes", n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestRemoteSetWire(t *testing.T) {
	port := newFakePort()
	target, _ := insteon.NewIdentity([]byte{0x01, 0x02, 0x03})
	echoBody := []byte{0x01, 0x02, 0x03, 0x0f, 0x25, 0x00}
	port.onWrite(CmdSendMessage, append(EncodeFrame(CmdSendMessage, echoBody), 0x06))

	p := New(port, time.Second)
	if err := p.RemoteSet(target); err != nil {
		t.Fatal(err)
	}

	writes := port.Writes()
	want := []byte{0x02, 0x62, 0x01, 0x02, 0x03, 0x0f, 0x25, 0x00}
	if !bytes.Equal(writes[0], want) {
		t.Errorf("wire = % x, want % x", writes[0], want)
	}
}

// TestIDRequestDecodesBroadcastReply is spec.md §4.D's id_request: the
// request's own echo is not the answer; the device's subsequent
// broadcast, whose target field carries [category, subcategory,
// firmware] rather than a real address, is.
func TestIDRequestDecodesBroadcastReply(t *testing.T) {
	port := newFakePort()
	own := []byte{0xaa, 0xbb, 0xcc}
	infoWire := []byte{0x02, 0x60, own[0], own[1], own[2], 0x03, 0x2a, 0x07, 0x06}
	port.onWrite(CmdGetInfo, infoWire)

	target, _ := insteon.NewIdentity([]byte{0x01, 0x02, 0x03})
	echoBody := []byte{0x01, 0x02, 0x03, 0x0f, 0x10, 0x00}
	port.onWrite(CmdSendMessage, append(EncodeFrame(CmdSendMessage, echoBody), 0x06))

	p := New(port, time.Second)

	type result struct {
		res IDRequestResult
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		res, err := p.IDRequest(target)
		resultCh <- result{res, err}
	}()

	waitForWrites(t, port, 2)

	replyBody := []byte{0x01, 0x02, 0x03, 0x11, 0x22, 0x33, 0x8f, 0x01, 0x00}
	port.push(EncodeFrame(CmdStandardMessageReceived, replyBody))

	select {
	case r := <-resultCh:
		if r.err != nil {
			t.Fatal(r.err)
		}
		if r.res.Category != insteon.DeviceCategory(0x11) {
			t.Errorf("Category = 0x%02x, want 0x11", byte(r.res.Category))
		}
		if r.res.Subcategory != insteon.Subcategory(0x22) {
			t.Errorf("Subcategory = 0x%02x, want 0x22", byte(r.res.Subcategory))
		}
		if r.res.Firmware != 0x33 {
			t.Errorf("Firmware = 0x%02x, want 0x33", r.res.Firmware)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for IDRequest result")
	}
}

// TestGetDeviceInfoDecodesSecondMessage is spec.md §4.D's get_device_info:
// the modem's echo of the outbound request is only the ack; the decoded
// fields arrive on a distinct, later inbound message.
func TestGetDeviceInfoDecodesSecondMessage(t *testing.T) {
	port := newFakePort()
	target, _ := insteon.NewIdentity([]byte{0x01, 0x02, 0x03})
	echoBody := append([]byte{0x01, 0x02, 0x03, 0x1f, 0x2e, 0x00}, make([]byte, 14)...)
	port.onWrite(CmdSendMessage, append(EncodeFrame(CmdSendMessage, echoBody), 0x06))

	p := New(port, time.Second)

	type outcome struct {
		info DeviceInfo
		err  error
	}
	resultCh := make(chan outcome, 1)
	go func() {
		info, err := p.GetDeviceInfo(target)
		resultCh <- outcome{info, err}
	}()

	waitForWrites(t, port, 1)

	userData := make([]byte, 14)
	userData[4] = 0x09                                 // x10 house
	userData[5] = 0x01                                 // x10 unit
	userData[6] = 0x1c                                 // ramp rate byte -> 0.5s
	userData[7] = insteon.OnLevelFromPercent(50.0)      // on level
	userData[8] = insteon.LEDBrightnessFromPercent(25.0) // led level
	replyBody := append(append([]byte{0x01, 0x02, 0x03, 0x0a, 0x0b, 0x0c, 0x1f, 0x2e, 0x00}), userData...)
	port.push(EncodeFrame(CmdExtendedMessageReceived, replyBody))

	select {
	case r := <-resultCh:
		if r.err != nil {
			t.Fatal(r.err)
		}
		if r.info.X10House != 0x09 {
			t.Errorf("X10House = 0x%02x, want 0x09", r.info.X10House)
		}
		if r.info.X10Unit != 0x01 {
			t.Errorf("X10Unit = 0x%02x, want 0x01", r.info.X10Unit)
		}
		if r.info.RampRate != 0.5 {
			t.Errorf("RampRate = %v, want 0.5", r.info.RampRate)
		}
		if r.info.OnLevel != insteon.OnLevelToPercent(userData[7]) {
			t.Errorf("OnLevel = %v, want %v", r.info.OnLevel, insteon.OnLevelToPercent(userData[7]))
		}
		if r.info.LEDLevel != insteon.LEDBrightnessToPercent(userData[8]) {
			t.Errorf("LEDLevel = %v, want %v", r.info.LEDLevel, insteon.LEDBrightnessToPercent(userData[8]))
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for GetDeviceInfo result")
	}
}

// TestSetDeviceInfoWire asserts the field selector and encoded value land
// in user_data bytes 1 and 2.
func TestSetDeviceInfoWire(t *testing.T) {
	port := newFakePort()
	target, _ := insteon.NewIdentity([]byte{0x01, 0x02, 0x03})
	echoBody := append([]byte{0x01, 0x02, 0x03, 0x1f, 0x2e, 0x00}, make([]byte, 14)...)
	port.onWrite(CmdSendMessage, append(EncodeFrame(CmdSendMessage, echoBody), 0x06))

	p := New(port, time.Second)
	if err := p.SetDeviceInfo(target, FieldOnLevel, 50.0); err != nil {
		t.Fatal(err)
	}

	writes := port.Writes()
	wire := writes[0]
	// wire: 0x02 0x62 target(3) flags(1) cmd(2) userdata(14)
	userData := wire[8:22]
	if userData[1] != byte(FieldOnLevel) {
		t.Errorf("field selector = 0x%02x, want 0x%02x", userData[1], byte(FieldOnLevel))
	}
	wantValue := insteon.OnLevelFromPercent(50.0)
	if userData[2] != wantValue {
		t.Errorf("value = 0x%02x, want 0x%02x", userData[2], wantValue)
	}
}
