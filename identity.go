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

// Identity is a device's 3-byte Insteon address. It is immutable and
// comparable, so it can be used directly as a map key.
type Identity [3]byte

// ZeroIdentity is the identity value the PLM uses to mean "no address",
// e.g. as the Dst of an all-link broadcast message.
var ZeroIdentity = Identity{}

// NewIdentity builds an Identity from a 3-byte slice.
func NewIdentity(b []byte) (Identity, error) {
	var id Identity
	if len(b) != 3 {
		return id, fmt.Errorf("identity requires 3 bytes, got %d", len(b))
	}
	copy(id[:], b)
	return id, nil
}

// Bytes returns the identity's 3 raw bytes.
func (id Identity) Bytes() []byte {
	return []byte{id[0], id[1], id[2]}
}

// String formats the identity as "hh.hh.hh".
func (id Identity) String() string {
	return fmt.Sprintf("%02x.%02x.%02x", id[0], id[1], id[2])
}
