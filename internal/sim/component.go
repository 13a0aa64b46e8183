package sim

import (
	"fmt"
	"strings"
)

// Slot is a fixed mount point on the chassis.
type Slot string

const (
	SlotFront Slot = "front"
	SlotBack  Slot = "back"
	SlotLeft  Slot = "left"
	SlotRight Slot = "right"
)

var Slots = []Slot{SlotFront, SlotBack, SlotLeft, SlotRight}

func (s Slot) Valid() bool {
	switch s {
	case SlotFront, SlotBack, SlotLeft, SlotRight:
		return true
	}
	return false
}

// Capability is a behaviour a component contributes.
type Capability uint8

const (
	Motion Capability = 1 << iota
	DistanceSensing
	LightSensing
	ThermalSensing
	Compute
)

var capabilityNames = []struct {
	c    Capability
	name string
}{
	{Motion, "motion"},
	{DistanceSensing, "distance"},
	{LightSensing, "light"},
	{ThermalSensing, "thermal"},
	{Compute, "compute"},
}

// CapabilitySet is a bit set of capabilities.
type CapabilitySet uint8

func NewCapabilitySet(caps ...Capability) CapabilitySet {
	var s CapabilitySet
	for _, c := range caps {
		s |= CapabilitySet(c)
	}
	return s
}

func (s CapabilitySet) Has(c Capability) bool {
	return s&CapabilitySet(c) != 0
}

func (s CapabilitySet) String() string {
	var parts []string
	for _, n := range capabilityNames {
		if s.Has(n.c) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

func (s CapabilitySet) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *CapabilitySet) UnmarshalText(b []byte) error {
	set, err := ParseCapabilities(string(b))
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// ParseCapabilities parses "motion|distance" style lists; ',' also separates.
func ParseCapabilities(text string) (CapabilitySet, error) {
	var s CapabilitySet
	fields := strings.FieldsFunc(text, func(r rune) bool { return r == '|' || r == ',' || r == ' ' })
	for _, f := range fields {
		found := false
		for _, n := range capabilityNames {
			if strings.EqualFold(f, n.name) {
				s |= CapabilitySet(n.c)
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown capability %q", f)
		}
	}
	return s, nil
}

// CapabilitiesForType maps the historical component type tags onto capabilities.
// Unknown tags have no capability.
func CapabilitiesForType(typeTag string) CapabilitySet {
	switch strings.ToLower(strings.TrimSpace(typeTag)) {
	case "motor", "dc-motor", "servo", "servo-motor", "stepper", "wheel":
		return NewCapabilitySet(Motion)
	case "sensor-dist", "sensor-distance", "distance", "ultrasonic", "sensor-ultrasonic", "lidar", "sensor-lidar", "ir-distance":
		return NewCapabilitySet(DistanceSensing)
	case "camera", "sensor-light", "light", "photoresistor":
		return NewCapabilitySet(LightSensing)
	case "sensor-temp", "thermal", "thermometer":
		return NewCapabilitySet(ThermalSensing)
	case "processor", "cpu", "microcontroller", "mcu":
		return NewCapabilitySet(Compute)
	}
	return 0
}

// ComponentDescriptor describes one installable hardware part.
type ComponentDescriptor struct {
	ID           string        `json:"id"`
	Type         string        `json:"type"`
	Name         string        `json:"name"`
	PowerDraw    float64       `json:"powerDraw"`
	Capabilities CapabilitySet `json:"capabilities,omitempty"`
}

// Caps returns the explicit capability set, falling back to the type tag.
func (c ComponentDescriptor) Caps() CapabilitySet {
	if c.Capabilities != 0 {
		return c.Capabilities
	}
	return CapabilitiesForType(c.Type)
}

// Processor is the advisory compute unit. Movement logic never consults it.
type Processor struct {
	Component ComponentDescriptor `json:"component"`
	Mount     string              `json:"mount,omitempty"`
}

// PowerBudget drains ConsumptionPerTick from the battery on every step.
type PowerBudget struct {
	TotalCapacity      float64 `json:"totalCapacity"`
	Current            float64 `json:"current"`
	ConsumptionPerTick float64 `json:"consumptionPerTick"`
}

// Configuration is the installed hardware of one robot.
type Configuration struct {
	Processor *Processor                   `json:"processor,omitempty"`
	Slots     map[Slot]ComponentDescriptor `json:"slots"`
	Power     PowerBudget                  `json:"power"`
}

func (c Configuration) clone() Configuration {
	out := c
	out.Slots = make(map[Slot]ComponentDescriptor, len(c.Slots))
	for k, v := range c.Slots {
		out.Slots[k] = v
	}
	if c.Processor != nil {
		p := *c.Processor
		out.Processor = &p
	}
	return out
}

// SlotHas reports whether the component mounted at slot provides capability c.
func (c Configuration) SlotHas(slot Slot, capability Capability) bool {
	comp, ok := c.Slots[slot]
	return ok && comp.Caps().Has(capability)
}

// CanMove reports whether a motion component sits in the left or right slot.
func (c Configuration) CanMove() bool {
	return c.SlotHas(SlotLeft, Motion) || c.SlotHas(SlotRight, Motion)
}

// CanRange reports whether a distance sensor faces forward.
func (c Configuration) CanRange() bool {
	return c.SlotHas(SlotFront, DistanceSensing)
}

// PowerDraw sums the draw of every installed part, processor included.
func (c Configuration) PowerDraw() float64 {
	total := 0.0
	for _, comp := range c.Slots {
		total += comp.PowerDraw
	}
	if c.Processor != nil {
		total += c.Processor.Component.PowerDraw
	}
	return total
}
