package domain

import "math"

// AttributeDefault is the starting value for every attribute on a new sheet.
const AttributeDefault = 10

// Attribute is a named numeric stat. Values carry no bound beyond the int
// range; adjustments saturate at its limits instead of wrapping.
type Attribute struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Attributes is an ordered attribute set. Methods never mutate the receiver;
// they return the next set so callers can swap state wholesale.
type Attributes []Attribute

// NewAttributes creates one attribute per name at AttributeDefault, keeping
// the input order.
func NewAttributes(names []string) Attributes {
	out := make(Attributes, 0, len(names))
	for _, name := range names {
		out = append(out, Attribute{Name: name, Value: AttributeDefault})
	}
	return out
}

// ReplaceAttributes returns a set holding exactly the incoming attributes.
// Absent input yields an empty set, not the defaults.
func ReplaceAttributes(in []Attribute) Attributes {
	if len(in) == 0 {
		return Attributes{}
	}
	out := make(Attributes, len(in))
	copy(out, in)
	return out
}

// Modifier derives the adjustment for a raw attribute value:
// floor((value-10)/2), rounding toward negative infinity. The arithmetic
// shift floors, and AttributeDefault is even, so no intermediate overflows.
func Modifier(value int) int {
	return value>>1 - AttributeDefault/2
}

// Adjust adds delta to the named attribute, saturating at the int range.
// Unknown names leave the set unchanged.
func (a Attributes) Adjust(name string, delta int) Attributes {
	idx := a.index(name)
	if idx < 0 {
		return a
	}
	out := a.Clone()
	out[idx].Value = addSaturated(out[idx].Value, delta)
	return out
}

// Find returns the named attribute.
func (a Attributes) Find(name string) (Attribute, bool) {
	idx := a.index(name)
	if idx < 0 {
		return Attribute{}, false
	}
	return a[idx], true
}

// ModifierOf returns the current modifier for the named attribute.
func (a Attributes) ModifierOf(name string) (int, bool) {
	attr, ok := a.Find(name)
	if !ok {
		return 0, false
	}
	return Modifier(attr.Value), true
}

// Clone returns an independent copy.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	copy(out, a)
	return out
}

func (a Attributes) index(name string) int {
	for i := range a {
		if a[i].Name == name {
			return i
		}
	}
	return -1
}

// addSaturated returns a+b clamped to [math.MinInt, math.MaxInt].
func addSaturated(a, b int) int {
	sum := a + b
	switch {
	case b > 0 && sum < a:
		return math.MaxInt
	case b < 0 && sum > a:
		return math.MinInt
	}
	return sum
}
