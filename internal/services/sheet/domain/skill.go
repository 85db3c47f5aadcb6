package domain

import "math"

// Skill budget constants.
const (
	SkillBaseBudget        = 10
	SkillBudgetPerModifier = 4
)

// SkillDefinition names a skill and the attribute that governs it.
type SkillDefinition struct {
	Name      string `json:"name" yaml:"name"`
	Attribute string `json:"attributeModifier" yaml:"attribute"`
}

// Skill is a skill with allocated points. Attribute is a name lookup into
// the attribute set, never an owning link. The wire name attributeModifier
// is kept for compatibility with stored documents.
type Skill struct {
	Name        string `json:"name"`
	Attribute   string `json:"attributeModifier"`
	PointsSpent int    `json:"pointsSpent"`
}

// Skills is an ordered skill set. Like Attributes, every method returns the
// next set and leaves the receiver alone.
type Skills []Skill

// NewSkills creates one skill per definition with no points spent.
func NewSkills(defs []SkillDefinition) Skills {
	out := make(Skills, 0, len(defs))
	for _, def := range defs {
		out = append(out, Skill{Name: def.Name, Attribute: def.Attribute})
	}
	return out
}

// ReplaceSkills returns a set holding exactly the incoming skills. Absent
// input yields an empty set. Negative loaded points are raised to 0.
func ReplaceSkills(in []Skill) Skills {
	if len(in) == 0 {
		return Skills{}
	}
	out := make(Skills, len(in))
	copy(out, in)
	for i := range out {
		out[i].PointsSpent = max(out[i].PointsSpent, 0)
	}
	return out
}

// Modifier bounds outside which the budget saturates.
const (
	maxBudgetModifier = (math.MaxInt - SkillBaseBudget) / SkillBudgetPerModifier
	minBudgetModifier = (math.MinInt - SkillBaseBudget) / SkillBudgetPerModifier
)

// PointsAvailable is the spendable budget for a skill whose governing
// attribute has the given modifier, saturating at the int range.
func PointsAvailable(modifier int) int {
	switch {
	case modifier > maxBudgetModifier:
		return math.MaxInt
	case modifier < minBudgetModifier:
		return math.MinInt
	}
	return SkillBaseBudget + SkillBudgetPerModifier*modifier
}

// EffectiveTotal combines spent points with the governing modifier.
func (s Skill) EffectiveTotal(modifier int) int {
	return addSaturated(s.PointsSpent, modifier)
}

// GoverningModifier reads the skill's governing modifier from attrs. A
// missing attribute reports modifier 0 and false.
func (s Skill) GoverningModifier(attrs Attributes) (int, bool) {
	return attrs.ModifierOf(s.Attribute)
}

// Allocate changes the points spent on the named skill.
//
// Spending (delta > 0) is applied only when the result stays within
// PointsAvailable for the current governing modifier; otherwise the set is
// returned unchanged. Refunding (delta < 0) is clamped at zero.
func (s Skills) Allocate(name string, delta int, attrs Attributes) Skills {
	idx := s.index(name)
	if idx < 0 || delta == 0 {
		return s
	}
	current := s[idx]
	var next int
	if delta > 0 {
		modifier, _ := current.GoverningModifier(attrs)
		budget := PointsAvailable(modifier)
		// budget-PointsSpent cannot overflow once budget >= PointsSpent >= 0.
		if budget < current.PointsSpent || delta > budget-current.PointsSpent {
			return s
		}
		next = current.PointsSpent + delta
	} else {
		next = max(addSaturated(current.PointsSpent, delta), 0)
	}
	if next == current.PointsSpent {
		return s
	}
	out := s.Clone()
	out[idx].PointsSpent = next
	return out
}

// Find returns the named skill.
func (s Skills) Find(name string) (Skill, bool) {
	idx := s.index(name)
	if idx < 0 {
		return Skill{}, false
	}
	return s[idx], true
}

// Clone returns an independent copy.
func (s Skills) Clone() Skills {
	if s == nil {
		return nil
	}
	out := make(Skills, len(s))
	copy(out, s)
	return out
}

func (s Skills) index(name string) int {
	for i := range s {
		if s[i].Name == name {
			return i
		}
	}
	return -1
}
