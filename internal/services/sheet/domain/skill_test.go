package domain

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testAttributes() Attributes {
	return NewAttributes([]string{"Strength", "Dexterity", "Intelligence"})
}

func testSkills() Skills {
	return NewSkills([]SkillDefinition{
		{Name: "Athletics", Attribute: "Strength"},
		{Name: "Acrobatics", Attribute: "Dexterity"},
		{Name: "Tracking", Attribute: "Luck"},
	})
}

func TestNewSkillsStartAtZero(t *testing.T) {
	want := Skills{
		{Name: "Athletics", Attribute: "Strength"},
		{Name: "Acrobatics", Attribute: "Dexterity"},
		{Name: "Tracking", Attribute: "Luck"},
	}
	if diff := cmp.Diff(want, testSkills()); diff != "" {
		t.Fatalf("skills mismatch (-want +got):\n%s", diff)
	}
}

func TestPointsAvailable(t *testing.T) {
	tests := []struct {
		modifier int
		want     int
	}{
		{modifier: 0, want: 10},
		{modifier: 1, want: 14},
		{modifier: 5, want: 30},
		{modifier: -1, want: 6},
		{modifier: -3, want: -2},
	}
	for _, tt := range tests {
		if got := PointsAvailable(tt.modifier); got != tt.want {
			t.Errorf("PointsAvailable(%d) = %d, want %d", tt.modifier, got, tt.want)
		}
	}
}

func TestPointsAvailableTracksGoverningAttribute(t *testing.T) {
	attrs := testAttributes()
	skill, _ := testSkills().Find("Athletics")

	mod, _ := skill.GoverningModifier(attrs)
	if got := PointsAvailable(mod); got != 10 {
		t.Fatalf("points available at 10 = %d, want 10", got)
	}

	attrs = attrs.Adjust("Strength", 2)
	mod, _ = skill.GoverningModifier(attrs)
	if got := PointsAvailable(mod); got != 14 {
		t.Fatalf("points available at 12 = %d, want 14", got)
	}
}

func TestEffectiveTotal(t *testing.T) {
	skill := Skill{Name: "Arcana", Attribute: "Intelligence", PointsSpent: 3}
	if got := skill.EffectiveTotal(2); got != 5 {
		t.Fatalf("total = %d, want 5", got)
	}
	if got := skill.EffectiveTotal(-4); got != -1 {
		t.Fatalf("total = %d, want -1", got)
	}
}

func TestAllocateCapsAtBudget(t *testing.T) {
	attrs := testAttributes()
	skills := testSkills()

	for i := 0; i < 25; i++ {
		skills = skills.Allocate("Athletics", 1, attrs)
	}
	got, _ := skills.Find("Athletics")
	if got.PointsSpent != 10 {
		t.Fatalf("points spent = %d, want 10", got.PointsSpent)
	}

	again := skills.Allocate("Athletics", 1, attrs)
	if diff := cmp.Diff(skills, again); diff != "" {
		t.Fatalf("over-budget allocate changed state (-want +got):\n%s", diff)
	}
}

func TestAllocateRejectsWholeDeltaOverBudget(t *testing.T) {
	attrs := testAttributes()
	skills := testSkills().Allocate("Athletics", 8, attrs)
	skills = skills.Allocate("Athletics", 3, attrs)
	if got, _ := skills.Find("Athletics"); got.PointsSpent != 8 {
		t.Fatalf("points spent = %d, want 8 (delta rejected, not partially applied)", got.PointsSpent)
	}
	skills = skills.Allocate("Athletics", 2, attrs)
	if got, _ := skills.Find("Athletics"); got.PointsSpent != 10 {
		t.Fatalf("points spent = %d, want 10", got.PointsSpent)
	}
}

func TestAllocateRefundClampsAtZero(t *testing.T) {
	attrs := testAttributes()
	skills := testSkills().Allocate("Acrobatics", 2, attrs)

	for i := 0; i < 5; i++ {
		skills = skills.Allocate("Acrobatics", -1, attrs)
	}
	if got, _ := skills.Find("Acrobatics"); got.PointsSpent != 0 {
		t.Fatalf("points spent = %d, want 0", got.PointsSpent)
	}

	skills = skills.Allocate("Acrobatics", 4, attrs).Allocate("Acrobatics", -10, attrs)
	if got, _ := skills.Find("Acrobatics"); got.PointsSpent != 0 {
		t.Fatalf("large refund: points spent = %d, want 0", got.PointsSpent)
	}
}

func TestAllocateUsesCurrentModifier(t *testing.T) {
	attrs := testAttributes().Adjust("Dexterity", 2)
	skills := testSkills()
	for i := 0; i < 14; i++ {
		skills = skills.Allocate("Acrobatics", 1, attrs)
	}
	if got, _ := skills.Find("Acrobatics"); got.PointsSpent != 14 {
		t.Fatalf("points spent = %d, want 14", got.PointsSpent)
	}

	lowered := attrs.Adjust("Dexterity", -2)
	skills = skills.Allocate("Acrobatics", 1, lowered)
	if got, _ := skills.Find("Acrobatics"); got.PointsSpent != 14 {
		t.Fatalf("spending past a lowered budget: points spent = %d, want 14", got.PointsSpent)
	}
	skills = skills.Allocate("Acrobatics", -1, lowered)
	if got, _ := skills.Find("Acrobatics"); got.PointsSpent != 13 {
		t.Fatalf("refund past a lowered budget: points spent = %d, want 13", got.PointsSpent)
	}
}

func TestAllocateMissingGoverningAttributeUsesZeroModifier(t *testing.T) {
	attrs := testAttributes()
	skills := testSkills()
	for i := 0; i < 12; i++ {
		skills = skills.Allocate("Tracking", 1, attrs)
	}
	if got, _ := skills.Find("Tracking"); got.PointsSpent != 10 {
		t.Fatalf("points spent = %d, want 10", got.PointsSpent)
	}
}

func TestAllocateNegativeBudgetRejectsSpending(t *testing.T) {
	attrs := testAttributes().Adjust("Strength", -5)
	skills := testSkills().Allocate("Athletics", 1, attrs)
	if got, _ := skills.Find("Athletics"); got.PointsSpent != 0 {
		t.Fatalf("points spent = %d, want 0", got.PointsSpent)
	}
}

func TestAllocateNoops(t *testing.T) {
	attrs := testAttributes()
	skills := testSkills()
	if diff := cmp.Diff(skills, skills.Allocate("Swimming", 1, attrs)); diff != "" {
		t.Fatalf("unknown skill changed state:\n%s", diff)
	}
	if diff := cmp.Diff(skills, skills.Allocate("Athletics", 0, attrs)); diff != "" {
		t.Fatalf("zero delta changed state:\n%s", diff)
	}
}

func TestReplaceSkills(t *testing.T) {
	in := []Skill{{Name: "Stealth", Attribute: "Dexterity", PointsSpent: 4}}
	got := ReplaceSkills(in)
	if diff := cmp.Diff(Skills{{Name: "Stealth", Attribute: "Dexterity", PointsSpent: 4}}, got); diff != "" {
		t.Fatalf("replace mismatch (-want +got):\n%s", diff)
	}
	negative := ReplaceSkills([]Skill{{Name: "Stealth", Attribute: "Dexterity", PointsSpent: -3}})
	if got := negative[0].PointsSpent; got != 0 {
		t.Fatalf("loaded negative points = %d, want 0", got)
	}
	if got := ReplaceSkills(nil); got == nil || len(got) != 0 {
		t.Fatalf("ReplaceSkills(nil) = %#v, want empty non-nil set", got)
	}
}

func TestPointsAvailableSaturates(t *testing.T) {
	if got := PointsAvailable(Modifier(math.MaxInt)); got != math.MaxInt {
		t.Fatalf("PointsAvailable(max modifier) = %d, want MaxInt", got)
	}
	if got := PointsAvailable(Modifier(math.MinInt)); got != math.MinInt {
		t.Fatalf("PointsAvailable(min modifier) = %d, want MinInt", got)
	}
}

func TestAllocateNeverWraps(t *testing.T) {
	attrs := Attributes{{Name: "Strength", Value: 10}, {Name: "Dexterity", Value: math.MaxInt}}
	skills := Skills{
		{Name: "Athletics", Attribute: "Strength", PointsSpent: 4},
		{Name: "Stealth", Attribute: "Dexterity", PointsSpent: math.MaxInt - 1},
	}

	got := skills.Allocate("Athletics", math.MaxInt, attrs)
	if diff := cmp.Diff(skills, got); diff != "" {
		t.Fatalf("huge spend over budget changed state:\n%s", diff)
	}
	got = skills.Allocate("Athletics", math.MinInt, attrs)
	if athletics, _ := got.Find("Athletics"); athletics.PointsSpent != 0 {
		t.Fatalf("huge refund = %d, want 0", athletics.PointsSpent)
	}
	got = skills.Allocate("Stealth", 5, attrs)
	if diff := cmp.Diff(skills, got); diff != "" {
		t.Fatalf("spend past MaxInt changed state:\n%s", diff)
	}
	got = skills.Allocate("Stealth", 1, attrs)
	if stealth, _ := got.Find("Stealth"); stealth.PointsSpent != math.MaxInt {
		t.Fatalf("spend to MaxInt = %d, want MaxInt", stealth.PointsSpent)
	}
}

func TestEffectiveTotalSaturates(t *testing.T) {
	skill := Skill{Name: "Stealth", Attribute: "Dexterity", PointsSpent: math.MaxInt}
	if got := skill.EffectiveTotal(3); got != math.MaxInt {
		t.Fatalf("EffectiveTotal = %d, want MaxInt", got)
	}
}
