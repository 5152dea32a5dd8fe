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

	"github.com/abates/insteon-plm"
)

// Manage All-Link Record (0x6F) control codes.
const (
	linkCmdModFirstCtrl byte = 0x40
	linkCmdModFirstResp byte = 0x41
	linkCmdDeleteFirst  byte = 0x80
)

func (p *PLM) manageLinkRecord(controlCode byte, rec insteon.AllLinkRecord) error {
	var flags byte
	if rec.Role == insteon.RoleController {
		flags |= 0x40
	}
	body := make([]byte, 0, 8)
	body = append(body, controlCode, flags, rec.Group)
	body = append(body, rec.Identity.Bytes()...)
	body = append(body, rec.Data[:]...)

	frame, err := p.mux.WriteRead(CmdManageAllLinkRecord, body, 0)
	if err != nil {
		return err
	}
	if frame.Nak {
		return &insteon.CommandFailure{Command: CmdManageAllLinkRecord}
	}
	return nil
}

// AddLink writes rec into the modem's link database, adding a new entry
// or updating the first matching one for rec's role.
func (p *PLM) AddLink(rec insteon.AllLinkRecord) error {
	code := linkCmdModFirstResp
	if rec.Role == insteon.RoleController {
		code = linkCmdModFirstCtrl
	}
	return p.manageLinkRecord(code, rec)
}

// RemoveLinks deletes each given record from the modem's link database.
func (p *PLM) RemoveLinks(records ...insteon.AllLinkRecord) error {
	for _, rec := range records {
		if err := p.manageLinkRecord(linkCmdDeleteFirst, rec); err != nil {
			return err
		}
	}
	return nil
}

func linkKey(r insteon.AllLinkRecord) string {
	return fmt.Sprintf("%s-%d-%s", r.Role, r.Group, r.Identity)
}

// CleanupDuplicateLinks retrieves the full link database and removes
// every record after the first occurrence of each (role, group, identity)
// combination.
func (p *PLM) CleanupDuplicateLinks() error {
	controllers, responders, err := p.GetAllLinkRecords()
	if err != nil {
		return err
	}
	records := append(append([]insteon.AllLinkRecord(nil), controllers...), responders...)

	seen := make(map[string]bool, len(records))
	var dups []insteon.AllLinkRecord
	for _, rec := range records {
		key := linkKey(rec)
		if seen[key] {
			dups = append(dups, rec)
			continue
		}
		seen[key] = true
	}
	return p.RemoveLinks(dups...)
}
