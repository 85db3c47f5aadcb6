package domain

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	apperrors "github.com/louisbranch/charsheet/internal/platform/errors"
	"gopkg.in/yaml.v3"
)

//go:embed rulesets/default.yaml
var defaultRulesetYAML []byte

var (
	// ErrRulesetEmpty indicates a ruleset without attributes.
	ErrRulesetEmpty = apperrors.New(apperrors.CodeRulesetEmpty, "ruleset must define at least one attribute")
	// ErrRulesetDuplicateName indicates a repeated attribute, skill, or class name.
	ErrRulesetDuplicateName = apperrors.New(apperrors.CodeRulesetDuplicateName, "ruleset names must be unique")
	// ErrRulesetUnknownAttribute indicates a reference to an undefined attribute.
	ErrRulesetUnknownAttribute = apperrors.New(apperrors.CodeRulesetUnknownAttribute, "ruleset references an unknown attribute")
)

// Ruleset is the static configuration of a sheet: the attribute list, the
// skill list with governing attributes, and the class requirement table.
type Ruleset struct {
	Attributes []string          `yaml:"attributes"`
	Skills     []SkillDefinition `yaml:"skills"`
	Classes    []ClassDefinition `yaml:"classes"`
}

// DefaultRuleset returns the built-in ruleset.
func DefaultRuleset() Ruleset {
	rs, err := ParseRuleset(defaultRulesetYAML)
	if err != nil {
		panic(fmt.Sprintf("default ruleset: %v", err))
	}
	return rs
}

// LoadRuleset reads a ruleset file. An empty path returns the default.
func LoadRuleset(path string) (Ruleset, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultRuleset(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Ruleset{}, fmt.Errorf("read ruleset %s: %w", path, err)
	}
	rs, err := ParseRuleset(data)
	if err != nil {
		return Ruleset{}, fmt.Errorf("ruleset %s: %w", path, err)
	}
	return rs, nil
}

// ParseRuleset decodes and validates a YAML ruleset.
func ParseRuleset(data []byte) (Ruleset, error) {
	var rs Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return Ruleset{}, fmt.Errorf("parse ruleset: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return Ruleset{}, err
	}
	return rs, nil
}

// Validate checks name uniqueness and that every skill and requirement
// references a defined attribute.
func (r Ruleset) Validate() error {
	if len(r.Attributes) == 0 {
		return ErrRulesetEmpty
	}
	attrs := make(map[string]struct{}, len(r.Attributes))
	for _, name := range r.Attributes {
		if _, dup := attrs[name]; dup || strings.TrimSpace(name) == "" {
			return duplicateName("attribute", name)
		}
		attrs[name] = struct{}{}
	}

	skills := make(map[string]struct{}, len(r.Skills))
	for _, skill := range r.Skills {
		if _, dup := skills[skill.Name]; dup || strings.TrimSpace(skill.Name) == "" {
			return duplicateName("skill", skill.Name)
		}
		skills[skill.Name] = struct{}{}
		if _, ok := attrs[skill.Attribute]; !ok {
			return unknownAttribute("skill", skill.Name, skill.Attribute)
		}
	}

	classes := make(map[string]struct{}, len(r.Classes))
	for _, class := range r.Classes {
		if _, dup := classes[class.Name]; dup || strings.TrimSpace(class.Name) == "" {
			return duplicateName("class", class.Name)
		}
		classes[class.Name] = struct{}{}
		for attr := range class.Requirements {
			if _, ok := attrs[attr]; !ok {
				return unknownAttribute("class", class.Name, attr)
			}
		}
	}
	return nil
}

// Class returns the named class definition.
func (r Ruleset) Class(name string) (ClassDefinition, bool) {
	for _, class := range r.Classes {
		if strings.EqualFold(class.Name, strings.TrimSpace(name)) {
			return class, true
		}
	}
	return ClassDefinition{}, false
}

// NewSheet builds a fresh sheet from the ruleset defaults.
func (r Ruleset) NewSheet() Sheet {
	return Sheet{
		Attributes: NewAttributes(r.Attributes),
		Skills:     NewSkills(r.Skills),
	}
}

// UnmarshalYAML keeps requirement keys in file order.
func (c *ClassDefinition) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Name         string    `yaml:"name"`
		Requirements yaml.Node `yaml:"requirements"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	c.Name = raw.Name
	c.Requirements = map[string]int{}
	c.order = nil
	if raw.Requirements.Kind == 0 {
		return nil
	}
	if raw.Requirements.Kind != yaml.MappingNode {
		return fmt.Errorf("class %q: requirements must be a mapping", raw.Name)
	}
	content := raw.Requirements.Content
	for i := 0; i+1 < len(content); i += 2 {
		key := content[i].Value
		var minimum int
		if err := content[i+1].Decode(&minimum); err != nil {
			return fmt.Errorf("class %q requirement %q: %w", raw.Name, key, err)
		}
		if _, dup := c.Requirements[key]; !dup {
			c.order = append(c.order, key)
		}
		c.Requirements[key] = minimum
	}
	return nil
}

func duplicateName(kind, name string) error {
	return apperrors.WrapWithMetadata(
		apperrors.CodeRulesetDuplicateName,
		fmt.Sprintf("%s name %q is empty or repeated", kind, name),
		map[string]string{"Kind": kind, "Name": name},
		ErrRulesetDuplicateName,
	)
}

func unknownAttribute(kind, name, attr string) error {
	return apperrors.WrapWithMetadata(
		apperrors.CodeRulesetUnknownAttribute,
		fmt.Sprintf("%s %q references unknown attribute %q", kind, name, attr),
		map[string]string{"Kind": kind, "Name": name, "Attribute": attr},
		ErrRulesetUnknownAttribute,
	)
}

func orderedKeys(requirements map[string]int, attributeOrder []string) []string {
	keys := make([]string, 0, len(requirements))
	seen := make(map[string]struct{}, len(requirements))
	for _, name := range attributeOrder {
		if _, ok := requirements[name]; ok {
			if _, dup := seen[name]; !dup {
				keys = append(keys, name)
				seen[name] = struct{}{}
			}
		}
	}
	var rest []string
	for name := range requirements {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
