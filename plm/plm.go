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
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/abates/insteon-plm"
)

// DefaultRetryDelay is how long WriteRead waits between a NAK and its
// retry, matching the modem's documented settle time.
const DefaultRetryDelay = 500 * time.Millisecond

// Option configures a PLM at construction time.
type Option func(*PLM)

// WithTimeout overrides the default 1-second ack/response deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(p *PLM) { p.mux.timeout = timeout }
}

// WithRetryDelay overrides the default delay between a NAK and its retry.
func WithRetryDelay(delay time.Duration) Option {
	return func(p *PLM) { p.mux.retryDelay = delay }
}

// PLM is the façade over a single PowerLine Modem: every operation a
// caller performs against the modem goes through here, backed by the
// frame codec and the request/response multiplexer.
type PLM struct {
	mux *Mux

	identityOnce sync.Once
	identity     insteon.Identity
	identityErr  error
}

// New wraps an already-open port (real or faked) as a PLM, starting the
// mux's reader and dispatcher goroutines.
func New(port io.ReadWriter, timeout time.Duration, opts ...Option) *PLM {
	p := &PLM{mux: NewMux(port, timeout, DefaultRetryDelay)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Open opens the named serial device at the PLM's fixed framing and
// returns a ready PLM.
func Open(name string, opts ...Option) (*PLM, error) {
	port, err := OpenPort(name)
	if err != nil {
		return nil, err
	}
	return New(port, DefaultReadTimeout, opts...), nil
}

// Info is the decoded response to CmdGetInfo.
type Info struct {
	Identity        insteon.Identity
	Category        insteon.DeviceCategory
	Subcategory     insteon.Subcategory
	FirmwareVersion byte
}

func (i Info) String() string {
	return fmt.Sprintf("%s cat=%s subcat=%s firmware=0x%02x", i.Identity, i.Category, i.Subcategory, i.FirmwareVersion)
}

// GetInfo retrieves the modem's own identity, device category/subcategory,
// and firmware version.
func (p *PLM) GetInfo() (Info, error) {
	frame, err := p.mux.WriteRead(CmdGetInfo, nil, 0)
	if err != nil {
		return Info{}, err
	}
	if len(frame.Body) != 6 {
		return Info{}, insteon.ErrUnexpectedResponse
	}
	identity, err := insteon.NewIdentity(frame.Body[0:3])
	if err != nil {
		return Info{}, err
	}
	return Info{
		Identity:        identity,
		Category:        insteon.DeviceCategory(frame.Body[3]),
		Subcategory:     insteon.Subcategory(frame.Body[4]),
		FirmwareVersion: frame.Body[5],
	}, nil
}

// ownIdentity lazily fetches and caches the modem's own identity, needed
// to tell a broadcast reply apart from a message addressed to the modem
// itself.
func (p *PLM) ownIdentity() (insteon.Identity, error) {
	p.identityOnce.Do(func() {
		info, err := p.GetInfo()
		p.identity = info.Identity
		p.identityErr = err
	})
	return p.identity, p.identityErr
}

// Reset performs a factory reset of the modem. Not implemented by this
// driver: a reset invalidates every link record and identity the caller
// may be holding, with no recovery path offered here.
func (p *PLM) Reset() error {
	return insteon.ErrNotImplemented
}

// GetAllLinkRecords retrieves the modem's full link database via the
// get-first/get-next command pair, terminating when the modem NAKs
// (no more records). Each successful get is followed by an unsolicited
// all-link-record-response frame carrying the record itself. Records are
// partitioned by role into controllers and responders, each sorted.
func (p *PLM) GetAllLinkRecords() (controllers, responders []insteon.AllLinkRecord, err error) {
	sub := p.mux.ReadFrames(CmdAllLinkRecordResponse)
	defer sub.Close()

	var records []insteon.AllLinkRecord
	cmd := byte(CmdGetFirstAllLink)
	for {
		frame, err := p.mux.WriteRead(cmd, nil, 0)
		if err != nil {
			if _, ok := err.(*insteon.CommandFailure); ok {
				break
			}
			return nil, nil, err
		}
		if frame.Nak {
			break
		}

		select {
		case recordFrame := <-sub.C:
			rec, err := insteon.DecodeAllLinkRecord(recordFrame.Body)
			if err != nil {
				return nil, nil, err
			}
			records = append(records, rec)
		case <-time.After(p.mux.timeout):
			return nil, nil, insteon.ErrReadTimeout
		}
		cmd = CmdGetNextAllLink
	}
	controllers, responders = insteon.SplitAllLinkRecords(records)
	return controllers, responders, nil
}

// StartAllLinkingSession puts the modem into all-linking mode for the
// given mode and group. Call CancelAllLinkingSession to abort it; use
// AllLinkingSession instead to also wait for the outcome.
func (p *PLM) StartAllLinkingSession(mode insteon.AllLinkMode, group byte) error {
	_, err := p.mux.WriteRead(CmdStartAllLinking, []byte{byte(mode), group}, 0)
	return err
}

// CancelAllLinkingSession aborts an in-progress all-linking session.
func (p *PLM) CancelAllLinkingSession() error {
	_, err := p.mux.WriteRead(CmdCancelAllLinking, nil, 0)
	return err
}

// AllLinkingResult is the decoded all-linking-completed frame.
type AllLinkingResult struct {
	Mode        insteon.AllLinkMode
	Group       byte
	Identity    insteon.Identity
	Category    insteon.DeviceCategory
	Subcategory insteon.Subcategory
	Firmware    byte
}

// AllLinkingSession starts an all-linking session and blocks until it
// completes or cancel is closed, cancelling the session itself if the
// caller gives up first.
func (p *PLM) AllLinkingSession(mode insteon.AllLinkMode, group byte, cancel <-chan struct{}) (AllLinkingResult, error) {
	if err := p.StartAllLinkingSession(mode, group); err != nil {
		return AllLinkingResult{}, err
	}
	frame, err := p.mux.WaitAllLinkingCompleted(cancel)
	if err != nil {
		p.CancelAllLinkingSession()
		return AllLinkingResult{}, err
	}
	return decodeAllLinkingCompleted(frame)
}

func decodeAllLinkingCompleted(frame Frame) (AllLinkingResult, error) {
	if len(frame.Body) != 8 {
		return AllLinkingResult{}, insteon.ErrUnexpectedResponse
	}
	modeByte := frame.Body[0]
	mode, ok := insteon.AllLinkModeFromByte(modeByte)
	if !ok {
		mode = insteon.LinkModeUnknown
	}
	identity, err := insteon.NewIdentity(frame.Body[2:5])
	if err != nil {
		return AllLinkingResult{}, err
	}
	return AllLinkingResult{
		Mode:        mode,
		Group:       frame.Body[1],
		Identity:    identity,
		Category:    insteon.DeviceCategory(frame.Body[5]),
		Subcategory: insteon.Subcategory(frame.Body[6]),
		Firmware:    frame.Body[7],
	}, nil
}

// SendMessage transmits a standard or extended Insteon message and
// returns the modem's local echo of what it put on the wire (the target,
// flags, and command bytes it actually sent; not a reply from the
// target device, which arrives separately on a ReadInsteonMessages
// subscription).
func (p *PLM) SendMessage(msg insteon.InsteonMessage) (insteon.InsteonMessage, error) {
	frame, err := p.mux.WriteRead(CmdSendMessage, msg.EncodeOutbound(), 3)
	if err != nil {
		return insteon.InsteonMessage{}, err
	}
	echo := append([]byte{}, msg.Sender.Bytes()...)
	echo = append(echo, frame.Body...)
	if msg.Flags.Extended {
		return insteon.DecodeExtendedMessage(echo)
	}
	return insteon.DecodeStandardMessage(echo)
}

// ReadInsteonMessages opens a subscription to every standard and extended
// message the modem receives, for automation dispatch or general
// monitoring.
func (p *PLM) ReadInsteonMessages() *Subscription {
	return p.mux.ReadInsteonMessages()
}

// IDRequestResult is the category/subcategory/firmware a device
// self-reports in response to IDRequest.
type IDRequestResult struct {
	Category    insteon.DeviceCategory
	Subcategory insteon.Subcategory
	Firmware    byte
}

// IDRequest asks a device to re-broadcast its identity, category,
// subcategory, and firmware version, and waits for that broadcast reply.
// The reply's sender matches target, but its target field carries
// [category, subcategory, firmware] in place of a real address; a
// message whose target is the modem's own identity is a direct echo, not
// the broadcast, and is skipped.
func (p *PLM) IDRequest(target insteon.Identity) (IDRequestResult, error) {
	own, err := p.ownIdentity()
	if err != nil {
		return IDRequestResult{}, err
	}

	sub := p.mux.ReadInsteonMessages()
	defer sub.Close()

	msg := insteon.NewStandardMessage(target, 3, 3, insteon.MessageFlags{}, [2]byte{0x10, 0x00})
	if _, err := p.SendMessage(msg); err != nil {
		return IDRequestResult{}, err
	}

	for {
		select {
		case frame := <-sub.C:
			reply, err := DecodeMessageFrame(frame)
			if err != nil {
				continue
			}
			if reply.Sender != target || reply.Target == own {
				continue
			}
			return IDRequestResult{
				Category:    insteon.DeviceCategory(reply.Target[0]),
				Subcategory: insteon.Subcategory(reply.Target[1]),
				Firmware:    reply.Target[2],
			}, nil
		case <-time.After(p.mux.timeout):
			return IDRequestResult{}, insteon.ErrReadTimeout
		}
	}
}

// LightOn sends a direct on command at the given percent level (instant
// skips the device's ramp rate), returning the on-level actually applied
// after quantization, projected back to percent.
func (p *PLM) LightOn(target insteon.Identity, percent float64, instant bool) (float64, error) {
	cmd := byte(0x11)
	if instant {
		cmd = 0x12
	}
	level := insteon.OnLevelFromPercent(percent)
	msg := insteon.NewStandardMessage(target, 3, 3, insteon.MessageFlags{}, [2]byte{cmd, level})
	_, err := p.SendMessage(msg)
	return insteon.OnLevelToPercent(level), err
}

// LightOff sends a direct off command (instant skips the device's ramp
// rate).
func (p *PLM) LightOff(target insteon.Identity, instant bool) (float64, error) {
	cmd := byte(0x13)
	if instant {
		cmd = 0x14
	}
	msg := insteon.NewStandardMessage(target, 3, 3, insteon.MessageFlags{}, [2]byte{cmd, 0x00})
	_, err := p.SendMessage(msg)
	return 0, err
}

// RemoteEnterLinking puts a remote device into linking mode on behalf of
// the modem, the direct-message equivalent of pressing its set button.
// Sent as an extended message: the group rides in cmd1 and the checksum
// covers a zero-filled payload.
func (p *PLM) RemoteEnterLinking(target insteon.Identity, group byte) error {
	msg, err := insteon.NewExtendedMessage(target, 3, 3, insteon.MessageFlags{}, [2]byte{0x09, group}, nil)
	if err != nil {
		return err
	}
	_, err = p.SendMessage(msg)
	return err
}

// RemoteEnterUnlinking is the unlinking counterpart to RemoteEnterLinking.
func (p *PLM) RemoteEnterUnlinking(target insteon.Identity, group byte) error {
	msg, err := insteon.NewExtendedMessage(target, 3, 3, insteon.MessageFlags{}, [2]byte{0x0a, group}, nil)
	if err != nil {
		return err
	}
	_, err = p.SendMessage(msg)
	return err
}

// RemoteSet sends the low-level "set button pressed" command a physical
// set-button tap would generate, for devices driven entirely through the
// modem (no local button to press).
func (p *PLM) RemoteSet(target insteon.Identity) error {
	msg := insteon.NewStandardMessage(target, 3, 3, insteon.MessageFlags{}, [2]byte{0x25, 0x00})
	_, err := p.SendMessage(msg)
	return err
}

// Beep asks a device to sound its local beeper, if it has one.
func (p *PLM) Beep(target insteon.Identity) error {
	msg := insteon.NewStandardMessage(target, 3, 3, insteon.MessageFlags{}, [2]byte{0x30, 0x00})
	_, err := p.SendMessage(msg)
	return err
}

// DeviceInfoField selects which field of a device's extended data block
// set_device_info writes. Its value is the byte offset that field
// occupies in a GetDeviceInfo reply's user data, which doubles as the
// field selector the device expects in a set request.
type DeviceInfoField byte

const (
	FieldX10House DeviceInfoField = 0x04
	FieldX10Unit  DeviceInfoField = 0x05
	FieldRampRate DeviceInfoField = 0x06
	FieldOnLevel  DeviceInfoField = 0x07
	FieldLEDLevel DeviceInfoField = 0x08
)

// DeviceInfo is a device's decoded extended data block.
type DeviceInfo struct {
	X10House byte
	X10Unit  byte
	RampRate float64 // seconds
	OnLevel  float64 // percent
	LEDLevel float64 // percent
}

// GetDeviceInfo reads a device's extended data block. The modem's echo of
// the outbound request is just the ack; the decoded fields arrive on a
// second, separate inbound message from target.
func (p *PLM) GetDeviceInfo(target insteon.Identity) (DeviceInfo, error) {
	msg, err := insteon.NewExtendedMessage(target, 3, 3, insteon.MessageFlags{}, [2]byte{0x2e, 0x00}, nil)
	if err != nil {
		return DeviceInfo{}, err
	}

	sub := p.mux.ReadInsteonMessages()
	defer sub.Close()

	if _, err := p.SendMessage(msg); err != nil {
		return DeviceInfo{}, err
	}

	for {
		select {
		case frame := <-sub.C:
			reply, err := DecodeMessageFrame(frame)
			if err != nil {
				continue
			}
			if reply.Sender != target || len(reply.UserData) != 14 {
				continue
			}
			return DeviceInfo{
				X10House: reply.UserData[4],
				X10Unit:  reply.UserData[5],
				RampRate: insteon.RampRateToSeconds(reply.UserData[6]),
				OnLevel:  insteon.OnLevelToPercent(reply.UserData[7]),
				LEDLevel: insteon.LEDBrightnessToPercent(reply.UserData[8]),
			}, nil
		case <-time.After(p.mux.timeout):
			return DeviceInfo{}, insteon.ErrReadTimeout
		}
	}
}

// encodeDeviceInfoValue applies field's unit conversion (seconds/percent)
// to value, or passes it through unconverted for the raw X10 fields.
func encodeDeviceInfoValue(field DeviceInfoField, value float64) byte {
	switch field {
	case FieldRampRate:
		return insteon.RampRateFromSeconds(value)
	case FieldOnLevel:
		return insteon.OnLevelFromPercent(value)
	case FieldLEDLevel:
		return insteon.LEDBrightnessFromPercent(value)
	default:
		return byte(value)
	}
}

// SetDeviceInfo writes a single field of a device's extended data block:
// user_data byte 1 carries the field selector, byte 2 the encoded value.
func (p *PLM) SetDeviceInfo(target insteon.Identity, field DeviceInfoField, value float64) error {
	payload := []byte{0x00, byte(field), encodeDeviceInfoValue(field, value)}
	msg, err := insteon.NewExtendedMessage(target, 3, 3, insteon.MessageFlags{}, [2]byte{0x2e, 0x00}, payload)
	if err != nil {
		return err
	}
	_, err = p.SendMessage(msg)
	return err
}
