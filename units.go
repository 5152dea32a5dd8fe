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
	"math"
	"sort"
)

// rampRateEntry pairs a ramp rate in seconds with its protocol byte.
type rampRateEntry struct {
	seconds float64
	value   byte
}

// rampRates is sorted descending in value (ascending in seconds), as
// the wire table is defined.
var rampRates = []rampRateEntry{
	{0.1, 0x1F}, {0.2, 0x1E}, {0.3, 0x1D}, {0.5, 0x1C}, {2.0, 0x1B},
	{4.5, 0x1A}, {6.5, 0x19}, {8.5, 0x18}, {19.0, 0x17}, {21.5, 0x16},
	{23.5, 0x15}, {26.0, 0x14}, {28.0, 0x13}, {30.0, 0x12}, {32.0, 0x11},
	{34.0, 0x10}, {38.5, 0x0F}, {43.0, 0x0E}, {47.0, 0x0D}, {60.0, 0x0C},
	{90.0, 0x0B}, {120.0, 0x0A}, {150.0, 0x09}, {180.0, 0x08}, {210.0, 0x07},
	{240.0, 0x06}, {270.0, 0x05}, {300.0, 0x04}, {360.0, 0x03}, {420.0, 0x02},
	{480.0, 0x01},
}

// projectOnto walks a table of (key, value) pairs sorted ascending by
// key, finds the first key after the first entry that is strictly
// greater than value, and returns the value of the entry just before
// it; if no such key exists it returns the last entry's value. A table
// key therefore maps to its own value.
func projectOnto(value float64, keys []float64, values []byte) byte {
	for i := 1; i < len(keys); i++ {
		if keys[i] > value {
			return values[i-1]
		}
	}
	return values[len(values)-1]
}

// RampRateFromSeconds converts a ramp-rate duration in seconds to its
// protocol byte.
func RampRateFromSeconds(seconds float64) byte {
	keys := make([]float64, len(rampRates))
	values := make([]byte, len(rampRates))
	for i, e := range rampRates {
		keys[i] = e.seconds
		values[i] = e.value
	}
	return projectOnto(seconds, keys, values)
}

// RampRateToSeconds converts a protocol ramp-rate byte to seconds. The
// table is re-sorted ascending by byte value (descending seconds order
// inverted) before projection, per the "invert" behavior of the
// original table walk.
func RampRateToSeconds(value byte) float64 {
	entries := append([]rampRateEntry(nil), rampRates...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].value < entries[j].value })

	keys := make([]float64, len(entries))
	secondsByKey := make([]float64, len(entries))
	for i, e := range entries {
		keys[i] = float64(e.value)
		secondsByKey[i] = e.seconds
	}

	for i := 1; i < len(keys); i++ {
		if keys[i] > float64(value) {
			return secondsByKey[i-1]
		}
	}
	return secondsByKey[len(secondsByKey)-1]
}

func clamp(value, min, max float64) float64 {
	if value < min {
		value = min
	}
	if value > max {
		value = max
	}
	return value
}

// fpEpsilon absorbs floating-point noise from the percent/byte roundtrip
// so a value that should land exactly on an integer byte doesn't floor
// down to one less.
const fpEpsilon = 1e-9

// LEDBrightnessFromPercent scales a percent (0..100, clamped) to the
// protocol's 0..0x7F LED-brightness byte. Scaling truncates rather than
// rounds, matching the modem's own on-level convention (50% is 0x7F,
// not 0x80).
func LEDBrightnessFromPercent(percent float64) byte {
	percent = clamp(percent, 0, 100)
	return byte(math.Floor((percent/100.0)*0x7F + fpEpsilon))
}

// LEDBrightnessToPercent scales a 0..0x7F LED-brightness byte (clamped)
// to a percent, as an unrounded float so LEDBrightnessFromPercent can
// recover the exact byte.
func LEDBrightnessToPercent(value byte) float64 {
	v := clamp(float64(value), 0, 0x7F)
	return (v / 0x7F) * 100.0
}

// OnLevelFromPercent scales a percent (0..100, clamped) to the
// protocol's 0..0xFF on-level byte, truncating rather than rounding.
func OnLevelFromPercent(percent float64) byte {
	percent = clamp(percent, 0, 100)
	return byte(math.Floor((percent/100.0)*0xFF + fpEpsilon))
}

// OnLevelToPercent scales a 0..0xFF on-level byte (clamped) to a
// percent, as an unrounded float so OnLevelFromPercent(OnLevelToPercent(b))
// recovers b exactly for every b in 0..0xFF.
func OnLevelToPercent(value byte) float64 {
	v := clamp(float64(value), 0, 0xFF)
	return (v / 0xFF) * 100.0
}
