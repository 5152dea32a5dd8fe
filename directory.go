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

// DeviceRecord is the directory's value type for one known device.
type DeviceRecord struct {
	Identity        Identity
	Alias           string
	Description     string
	Category        DeviceCategory
	Subcategory     Subcategory
	FirmwareVersion byte
}

// DeviceDirectory is the abstract contract the PLM core depends on for
// looking up known devices by identity or alias. Its persistent storage
// format (flat file, embedded SQL, etc) is an external collaborator and
// out of scope here; the core only calls through this interface and
// serializes its own use of it.
type DeviceDirectory interface {
	// Get looks up a device by its Identity. ok is false if no such
	// device is known.
	Get(id Identity) (record DeviceRecord, ok bool)

	// GetByAlias looks up a device by its human-assigned alias. ok is
	// false if no device has that alias.
	GetByAlias(alias string) (record DeviceRecord, ok bool)

	// Set creates or updates a device record.
	Set(id Identity, alias, description string, category DeviceCategory, subcategory Subcategory, firmwareVersion byte) DeviceRecord

	// List returns every known device, keyed by Identity.
	List() map[Identity]DeviceRecord
}
