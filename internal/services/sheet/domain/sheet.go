// Package domain holds the character sheet rules: attributes and their
// modifiers, skill point budgets, and class eligibility.
//
// All state types are values. Transitions return the next value and leave
// the previous one intact, so an owner can publish snapshots without copying.
package domain

// Sheet is the full mutable state of one character.
type Sheet struct {
	Attributes Attributes
	Skills     Skills
}

// Document is the persisted JSON shape of a sheet.
type Document struct {
	Attributes []Attribute `json:"attributes"`
	Skills     []Skill     `json:"skills"`
}

// Envelope wraps a Document as returned by the persistence endpoint.
type Envelope struct {
	Body *Document `json:"body"`
}

// AttributeRow is the read-side view of one attribute.
type AttributeRow struct {
	Name     string
	Value    int
	Modifier int
}

// SkillRow is the read-side view of one skill.
type SkillRow struct {
	Name            string
	Attribute       string
	PointsSpent     int
	PointsAvailable int
	Modifier        int
	Total           int
}

// Adjust applies an attribute delta.
func (s Sheet) Adjust(name string, delta int) Sheet {
	s.Attributes = s.Attributes.Adjust(name, delta)
	return s
}

// Allocate applies a skill point delta against the current attributes.
func (s Sheet) Allocate(name string, delta int) Sheet {
	s.Skills = s.Skills.Allocate(name, delta, s.Attributes)
	return s
}

// ReplaceAll swaps both collections wholesale.
func (s Sheet) ReplaceAll(attrs []Attribute, skills []Skill) Sheet {
	return Sheet{
		Attributes: ReplaceAttributes(attrs),
		Skills:     ReplaceSkills(skills),
	}
}

// Document returns the persisted shape of the sheet. Empty collections
// encode as [] rather than null.
func (s Sheet) Document() Document {
	doc := Document{
		Attributes: []Attribute(s.Attributes.Clone()),
		Skills:     []Skill(s.Skills.Clone()),
	}
	if doc.Attributes == nil {
		doc.Attributes = []Attribute{}
	}
	if doc.Skills == nil {
		doc.Skills = []Skill{}
	}
	return doc
}

// AttributeRows derives modifiers for display.
func (s Sheet) AttributeRows() []AttributeRow {
	out := make([]AttributeRow, 0, len(s.Attributes))
	for _, attr := range s.Attributes {
		out = append(out, AttributeRow{
			Name:     attr.Name,
			Value:    attr.Value,
			Modifier: Modifier(attr.Value),
		})
	}
	return out
}

// SkillRows derives budgets and totals for display. A skill whose governing
// attribute is missing uses modifier 0 for its budget and shows a total of 0.
func (s Sheet) SkillRows() []SkillRow {
	out := make([]SkillRow, 0, len(s.Skills))
	for _, skill := range s.Skills {
		modifier, ok := skill.GoverningModifier(s.Attributes)
		total := 0
		if ok {
			total = skill.EffectiveTotal(modifier)
		}
		out = append(out, SkillRow{
			Name:            skill.Name,
			Attribute:       skill.Attribute,
			PointsSpent:     skill.PointsSpent,
			PointsAvailable: PointsAvailable(modifier),
			Modifier:        modifier,
			Total:           total,
		})
	}
	return out
}
