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

// DeviceCategory is one of the 0x00-0x16 Insteon device classes, or 0xFF
// for unassigned devices. A byte value outside the known set never fails
// to parse: Title() falls back to a synthesized title and Examples()
// returns the empty string.
type DeviceCategory byte

// Subcategory is a devcat-scoped subcategory byte. Its title is looked
// up relative to the owning DeviceCategory.
type Subcategory byte

const (
	CategoryGeneralizedControllers  DeviceCategory = 0x00
	CategoryDimmableLightingControl DeviceCategory = 0x01
	CategorySwitchedLightingControl DeviceCategory = 0x02
	CategoryNetworkBridges          DeviceCategory = 0x03
	CategoryIrrigationControl       DeviceCategory = 0x04
	CategoryClimateControl          DeviceCategory = 0x05
	CategoryPoolAndSpaControl       DeviceCategory = 0x06
	CategorySensorsAndActuators     DeviceCategory = 0x07
	CategoryHomeEntertainment       DeviceCategory = 0x08
	CategoryEnergyManagement        DeviceCategory = 0x09
	CategoryBuiltInApplianceControl DeviceCategory = 0x0A
	CategoryPlumbing                DeviceCategory = 0x0B
	CategoryCommunication           DeviceCategory = 0x0C
	CategoryComputerControl         DeviceCategory = 0x0D
	CategoryWindowCoverings         DeviceCategory = 0x0E
	CategoryAccessControl           DeviceCategory = 0x0F
	CategorySecurityHealthSafety    DeviceCategory = 0x10
	CategorySurveillance            DeviceCategory = 0x11
	CategoryAutomotive              DeviceCategory = 0x12
	CategoryPetCare                 DeviceCategory = 0x13
	CategoryToys                    DeviceCategory = 0x14
	CategoryTimekeeping             DeviceCategory = 0x15
	CategoryHoliday                 DeviceCategory = 0x16
	CategoryUnassigned              DeviceCategory = 0xFF
)

var categoryTitles = map[DeviceCategory]string{
	CategoryGeneralizedControllers:  "Generalized Controllers",
	CategoryDimmableLightingControl: "Dimmable Lighting Control",
	CategorySwitchedLightingControl: "Switched Lighting Control",
	CategoryNetworkBridges:          "Network Bridges",
	CategoryIrrigationControl:       "Irrigation Control",
	CategoryClimateControl:          "Climate Control",
	CategoryPoolAndSpaControl:       "Pool and Spa Control",
	CategorySensorsAndActuators:     "Sensors and Actuators",
	CategoryHomeEntertainment:       "Home Entertainment",
	CategoryEnergyManagement:        "Energy Management",
	CategoryBuiltInApplianceControl: "Built-In Appliance Control",
	CategoryPlumbing:                "Plumbing",
	CategoryCommunication:           "Communication",
	CategoryComputerControl:         "Computer Control",
	CategoryWindowCoverings:         "Window Coverings",
	CategoryAccessControl:           "Access Control",
	CategorySecurityHealthSafety:    "Security, Health, Safety",
	CategorySurveillance:            "Surveillance",
	CategoryAutomotive:              "Automotive",
	CategoryPetCare:                 "Pet Care",
	CategoryToys:                    "Toys",
	CategoryTimekeeping:             "Timekeeping",
	CategoryHoliday:                 "Holiday",
	CategoryUnassigned:              "Unassigned",
}

var categoryExamples = map[DeviceCategory]string{
	CategoryGeneralizedControllers:  "ControLinc, RemoteLinc, SignaLinc, etc",
	CategoryDimmableLightingControl: "Dimmable Light Switches, Dimmable Plug-In Module",
	CategorySwitchedLightingControl: "Relay Switches, Relay Plug-In Module",
	CategoryNetworkBridges:          "PowerLinc Controllers, TRex, Lonworks, ZigBee, etc",
	CategoryIrrigationControl:       "Irrigation Management, Sprinkler Controller",
	CategoryClimateControl:          "Heating, Air Conditioning, Exhaust Fans, Ceiling Fans, Indoor Air Quality",
	CategoryPoolAndSpaControl:       "Pumps, Heaters, Chemicals",
	CategorySensorsAndActuators:     "Sensors, Contact Closure",
	CategoryHomeEntertainment:       "Audio/Video Equipment",
	CategoryEnergyManagement:        "Electricity, Water, Gas Consumption, Leak Monitor",
	CategoryBuiltInApplianceControl: "White Goods, Brown Goods",
	CategoryPlumbing:                "Faucets, Showers, Toilets",
	CategoryCommunication:           "Telephone System Controls, Intercom",
	CategoryComputerControl:         "PC On/Off, UPS Control, App Activation, Remote Mouse, Keyboard",
	CategoryWindowCoverings:         "Drapes, Blinds, Awnings",
	CategoryAccessControl:           "Automatic Doors, Gates, Windows, Locks",
	CategorySecurityHealthSafety:    "Door and Window Sensors, Motion Sensors, Scales",
	CategorySurveillance:            "Video Camera Control, Time-lapse Recorders, Security System Link",
	CategoryAutomotive:              "Remote Starters, Car Alarms, Car Door Locks",
	CategoryPetCare:                 "Pet Feeders, Trackers",
	CategoryToys:                    "Model Trains, Robots",
	CategoryTimekeeping:             "Clocks, Alarms, Timers",
	CategoryHoliday:                 "Christmas Lights, Displays",
	CategoryUnassigned:              "For devices that will be assigned a DevCat and SubCat by software",
}

// Title returns the category's human-readable name, synthesizing one
// for unrecognized byte values rather than failing.
func (c DeviceCategory) Title() string {
	if title, ok := categoryTitles[c]; ok {
		return title
	}
	return fmt.Sprintf("Unknown device category (0x%02x)", byte(c))
}

// Examples returns a human-readable list of representative devices for
// the category, or the empty string for unrecognized byte values.
func (c DeviceCategory) Examples() string {
	return categoryExamples[c]
}

// String formats the category as its title.
func (c DeviceCategory) String() string {
	return c.Title()
}

var subcategoryTitles = map[DeviceCategory]map[Subcategory]string{
	CategoryGeneralizedControllers: {
		0x04: "ControLinc [2430]",
		0x05: "RemoteLinc [2440]",
		0x06: "Icon Tabletop Controller [2830]",
		0x09: "SignaLinc RF Signal Enhancer",
		0x0a: "Balboa Instruments Poolux LCD Controller",
		0x0b: "Access Point",
		0x0c: "IES Color Touchscreen",
	},
	CategoryDimmableLightingControl: {
		0x00: "LampLinc V2 [2456D3]",
		0x01: "SwitchLinc V2 Dimmer 600W [2476D]",
		0x02: "In-LineLinc Dimmer [2475D]",
		0x03: "Icon Switch Dimmer [2876D]",
		0x04: "SwitchLinc V2 Dimmer 1000W [2476DH]",
		0x06: "LampLinc 2-Pin [2456D2]",
		0x07: "Icon LampLinc V2 2-Pin [2456D2]",
		0x09: "KeypadLinc Dimmer [2486D]",
		0x0a: "Icon In-Wall Controller [2886D]",
		0x0d: "SocketLinc [2454D]",
		0x13: "Icon SwitchLinc Dimmer for Lixar/Bell Canada [2676D-B]",
		0x17: "ToggleLinc Dimmer [2466D]",
	},
	CategorySwitchedLightingControl: {
		0x09: "ApplianceLinc [2456S3]",
		0x0a: "SwitchLinc Relay [2476S]",
		0x0b: "Icon On Off Switch [2876S]",
		0x0c: "Icon Appliance Adapter [2856S3]",
		0x0d: "ToggleLinc Relay [2466S]",
		0x0e: "SwitchLinc Relay Countdown Timer [2476ST]",
		0x10: "In-LineLinc Relay [2475S]",
		0x13: "Icon SwitchLinc Relay for Lixar/Bell Canada [2676R-B]",
	},
	CategoryNetworkBridges: {
		0x01: "PowerLinc Serial [2414S]",
		0x02: "PowerLinc USB [2414U]",
		0x03: "Icon PowerLinc Serial [2814S]",
		0x04: "Icon PowerLinc USB [2814U]",
		0x05: "Smartlabs Power Line Modem Serial [2412S]",
	},
	CategoryIrrigationControl: {
		0x00: "Compacta EZRain Sprinkler Controller",
	},
	CategoryClimateControl: {
		0x00: "Broan SMSC080 Exhaust Fan",
		0x01: "Compacta EZTherm",
		0x02: "Broan SMSC110 Exhaust Fan",
		0x03: "Venstar RF Thermostat Module",
		0x04: "Compacta EZThermx Thermostat",
	},
	CategoryPoolAndSpaControl: {
		0x00: "Compacta EZPool",
	},
	CategorySensorsAndActuators: {
		0x00: "IOLinc",
	},
	CategorySecurityHealthSafety: {
		0x01: "TriggerLinc",
		0x02: "Open/Close Sensor",
		0x05: "Motion Sensor",
		0x07: "Leak Sensor",
	},
}

// SubcategoryTitle returns the human-readable name for a subcategory
// byte scoped to this category, synthesizing one for unrecognized
// (devcat, subcat) pairs rather than failing.
func (c DeviceCategory) SubcategoryTitle(s Subcategory) string {
	if table, ok := subcategoryTitles[c]; ok {
		if title, ok := table[s]; ok {
			return title
		}
	}
	return fmt.Sprintf("Unknown subcategory (0x%02x)", byte(s))
}
