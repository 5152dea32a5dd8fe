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

import "sync"

// Known security/health/safety subcategories used by the motion- and
// open/close-sensor automation predicates below.
const (
	SubcatOpenCloseSensor Subcategory = 0x02
	SubcatMotionSensor    Subcategory = 0x05
)

// Predicate decides whether an inbound Insteon message, once resolved
// to its directory record, should fire a subscriber's handler.
type Predicate func(device DeviceRecord, cmd0, cmd1 byte) bool

// Handler receives a matched inbound message. group is the message's
// second command byte, which conventionally carries the all-link group
// for broadcast-style device reports (motion, open/close, remotes).
type Handler func(device DeviceRecord, command, group byte)

// Token identifies a registered subscription for later Unsubscribe.
type Token uint64

type subscription struct {
	token     Token
	predicate Predicate
	handler   Handler
}

// Automation is the event-subscription registry by which user-defined
// automation rules receive decoded inbound Insteon messages. It is the
// only automation surface this core specifies: rule *evaluation* and
// *persistence* are external collaborators.
type Automation struct {
	mu          sync.Mutex
	nextToken   Token
	subscribers []subscription
}

// NewAutomation constructs an empty subscription registry.
func NewAutomation() *Automation {
	return &Automation{}
}

// Subscribe registers a predicate+handler pair and returns a token that
// can later be passed to Unsubscribe.
func (a *Automation) Subscribe(predicate Predicate, handler Handler) Token {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.nextToken++
	token := a.nextToken
	a.subscribers = append(a.subscribers, subscription{token: token, predicate: predicate, handler: handler})
	return token
}

// Unsubscribe removes a previously registered subscription. It is a
// no-op if the token is not (or no longer) registered.
func (a *Automation) Unsubscribe(token Token) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, s := range a.subscribers {
		if s.token == token {
			a.subscribers = append(a.subscribers[:i], a.subscribers[i+1:]...)
			return
		}
	}
}

// Dispatch resolves msg's sender against directory and invokes every
// subscriber whose predicate matches. Messages from unknown senders are
// silently dropped, matching the original automation dispatcher's
// behavior of ignoring devices it has no record for.
func (a *Automation) Dispatch(directory DeviceDirectory, msg InsteonMessage) {
	device, ok := directory.Get(msg.Sender)
	if !ok {
		return
	}

	a.mu.Lock()
	subscribers := append([]subscription(nil), a.subscribers...)
	a.mu.Unlock()

	cmd0, cmd1 := msg.CommandBytes[0], msg.CommandBytes[1]
	for _, s := range subscribers {
		if s.predicate(device, cmd0, cmd1) {
			s.handler(device, cmd0, cmd1)
		}
	}
}

func categoryIn(category DeviceCategory, choices ...DeviceCategory) bool {
	for _, c := range choices {
		if category == c {
			return true
		}
	}
	return false
}

func commandIn(cmd byte, choices ...byte) bool {
	for _, c := range choices {
		if cmd == c {
			return true
		}
	}
	return false
}

// OnMotionSensorActivated matches a security/health/safety motion
// sensor's "on" command (0x11 direct, 0x12 fast-on).
func OnMotionSensorActivated() Predicate {
	return func(d DeviceRecord, cmd0, _ byte) bool {
		return d.Category == CategorySecurityHealthSafety &&
			d.Subcategory == SubcatMotionSensor &&
			commandIn(cmd0, 0x11, 0x12)
	}
}

// OnMotionSensorDeactivated matches a motion sensor's "off" command.
func OnMotionSensorDeactivated() Predicate {
	return func(d DeviceRecord, cmd0, _ byte) bool {
		return d.Category == CategorySecurityHealthSafety &&
			d.Subcategory == SubcatMotionSensor &&
			commandIn(cmd0, 0x13, 0x14)
	}
}

// OnOpenCloseSensorOpened matches an open/close sensor's "open" report.
func OnOpenCloseSensorOpened() Predicate {
	return func(d DeviceRecord, cmd0, _ byte) bool {
		return d.Category == CategorySecurityHealthSafety &&
			d.Subcategory == SubcatOpenCloseSensor &&
			commandIn(cmd0, 0x11, 0x12)
	}
}

// OnOpenCloseSensorClosed matches an open/close sensor's "close" report.
func OnOpenCloseSensorClosed() Predicate {
	return func(d DeviceRecord, cmd0, _ byte) bool {
		return d.Category == CategorySecurityHealthSafety &&
			d.Subcategory == SubcatOpenCloseSensor &&
			commandIn(cmd0, 0x13, 0x14)
	}
}

// OnLightTurnedOn matches a dimmable or switched lighting device
// reporting it was turned on.
func OnLightTurnedOn() Predicate {
	return func(d DeviceRecord, cmd0, _ byte) bool {
		return categoryIn(d.Category, CategoryDimmableLightingControl, CategorySwitchedLightingControl) &&
			commandIn(cmd0, 0x11, 0x12)
	}
}

// OnLightTurnedOff matches a dimmable or switched lighting device
// reporting it was turned off.
func OnLightTurnedOff() Predicate {
	return func(d DeviceRecord, cmd0, _ byte) bool {
		return categoryIn(d.Category, CategoryDimmableLightingControl, CategorySwitchedLightingControl) &&
			commandIn(cmd0, 0x13, 0x14)
	}
}

// OnRemotePressedOn matches a generalized controller (remote) reporting
// its "on" button was pressed.
func OnRemotePressedOn() Predicate {
	return func(d DeviceRecord, cmd0, _ byte) bool {
		return d.Category == CategoryGeneralizedControllers && commandIn(cmd0, 0x11, 0x12)
	}
}

// OnRemotePressedOff matches a generalized controller (remote)
// reporting its "off" button was pressed.
func OnRemotePressedOff() Predicate {
	return func(d DeviceRecord, cmd0, _ byte) bool {
		return d.Category == CategoryGeneralizedControllers && commandIn(cmd0, 0x13, 0x14)
	}
}
