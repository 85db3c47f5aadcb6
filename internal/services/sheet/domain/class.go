package domain

// ClassDefinition is a static class entry with minimum attribute values.
type ClassDefinition struct {
	Name         string         `yaml:"name"`
	Requirements map[string]int `yaml:"requirements"`
	// order preserves the ruleset file order of requirement keys for display.
	order []string
}

// Requirement is one attribute threshold of a class.
type Requirement struct {
	Attribute string
	Minimum   int
}

// ClassEligibility is the evaluated state of one class.
type ClassEligibility struct {
	Name     string
	Eligible bool
}

// IsEligible reports whether every requirement names a present attribute
// whose value is at least the minimum. An empty requirement map is always
// satisfied.
func IsEligible(requirements map[string]int, attrs Attributes) bool {
	for name, minimum := range requirements {
		attr, ok := attrs.Find(name)
		if !ok || attr.Value < minimum {
			return false
		}
	}
	return true
}

// EvaluateClasses evaluates every class against the current attributes in
// class order. Results are not cached; callers re-run it after each change.
func EvaluateClasses(classes []ClassDefinition, attrs Attributes) []ClassEligibility {
	out := make([]ClassEligibility, 0, len(classes))
	for _, class := range classes {
		out = append(out, ClassEligibility{
			Name:     class.Name,
			Eligible: IsEligible(class.Requirements, attrs),
		})
	}
	return out
}

// RequirementList returns the class requirements in declaration order.
// Classes built in code without an order fall back to the attribute order
// given, then to any remaining keys sorted by name.
func (c ClassDefinition) RequirementList(attributeOrder []string) []Requirement {
	keys := c.order
	if len(keys) != len(c.Requirements) {
		keys = orderedKeys(c.Requirements, attributeOrder)
	}
	out := make([]Requirement, 0, len(keys))
	for _, key := range keys {
		out = append(out, Requirement{Attribute: key, Minimum: c.Requirements[key]})
	}
	return out
}
