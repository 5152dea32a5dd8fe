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
	"github.com/abates/insteon-plm"
)

// DecodeMessageFrame decodes a standard or extended message-received
// frame into an insteon.InsteonMessage.
func DecodeMessageFrame(f Frame) (insteon.InsteonMessage, error) {
	if f.Command == CmdExtendedMessageReceived {
		return insteon.DecodeExtendedMessage(f.Body)
	}
	return insteon.DecodeStandardMessage(f.Body)
}

// RunAutomation feeds every inbound Insteon message to automation.Dispatch
// until done is closed or the underlying subscription ends. It owns its
// own ReadInsteonMessages subscription and closes it on return.
func (p *PLM) RunAutomation(directory insteon.DeviceDirectory, automation *insteon.Automation, done <-chan struct{}) {
	sub := p.ReadInsteonMessages()
	defer sub.Close()

	for {
		select {
		case frame, ok := <-sub.C:
			if !ok {
				return
			}
			msg, err := DecodeMessageFrame(frame)
			if err != nil {
				insteon.Log.Infof("dropping undecodable message frame: %v", err)
				continue
			}
			automation.Dispatch(directory, msg)
		case <-done:
			return
		}
	}
}
