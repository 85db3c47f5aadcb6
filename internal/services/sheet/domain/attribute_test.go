package domain

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestModifier(t *testing.T) {
	tests := []struct {
		value int
		want  int
	}{
		{value: 20, want: 5},
		{value: 12, want: 1},
		{value: 11, want: 0},
		{value: 10, want: 0},
		{value: 9, want: -1},
		{value: 8, want: -1},
		{value: 5, want: -3},
		{value: 0, want: -5},
		{value: -1, want: -6},
		{value: -7, want: -9},
		{value: math.MaxInt, want: math.MaxInt/2 - 5},
		{value: math.MaxInt - 1, want: math.MaxInt/2 - 5},
		{value: math.MinInt, want: math.MinInt/2 - 5},
		{value: math.MinInt + 9, want: math.MinInt/2 - 1},
	}
	for _, tt := range tests {
		if got := Modifier(tt.value); got != tt.want {
			t.Errorf("Modifier(%d) = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestNewAttributesDefaultsInOrder(t *testing.T) {
	got := NewAttributes([]string{"Strength", "Dexterity", "Wisdom"})
	want := Attributes{
		{Name: "Strength", Value: 10},
		{Name: "Dexterity", Value: 10},
		{Name: "Wisdom", Value: 10},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("attributes mismatch (-want +got):\n%s", diff)
	}
}

func TestAdjustIsUnbounded(t *testing.T) {
	attrs := NewAttributes([]string{"Strength"})
	for i := 0; i < 10; i++ {
		attrs = attrs.Adjust("Strength", 1)
	}
	if got, _ := attrs.Find("Strength"); got.Value != 20 {
		t.Fatalf("after ten increments value = %d, want 20", got.Value)
	}
	for i := 0; i < 15; i++ {
		attrs = attrs.Adjust("Strength", -1)
	}
	if got, _ := attrs.Find("Strength"); got.Value != 5 {
		t.Fatalf("after fifteen decrements value = %d, want 5", got.Value)
	}
	attrs = attrs.Adjust("Strength", -30)
	if got, _ := attrs.Find("Strength"); got.Value != -25 {
		t.Fatalf("value = %d, want -25", got.Value)
	}
	if mod, _ := attrs.ModifierOf("Strength"); mod != -18 {
		t.Fatalf("modifier = %d, want -18", mod)
	}
}

func TestAdjustSaturatesAtIntRange(t *testing.T) {
	attrs := Attributes{{Name: "Strength", Value: math.MaxInt - 1}, {Name: "Wisdom", Value: math.MinInt + 1}}

	attrs = attrs.Adjust("Strength", 5).Adjust("Wisdom", -5)
	if got, _ := attrs.Find("Strength"); got.Value != math.MaxInt {
		t.Fatalf("Strength = %d, want MaxInt", got.Value)
	}
	if got, _ := attrs.Find("Wisdom"); got.Value != math.MinInt {
		t.Fatalf("Wisdom = %d, want MinInt", got.Value)
	}
}

func TestAdjustUnknownNameIsNoop(t *testing.T) {
	attrs := NewAttributes([]string{"Strength"})
	got := attrs.Adjust("Luck", 3)
	if diff := cmp.Diff(attrs, got); diff != "" {
		t.Fatalf("unexpected change (-want +got):\n%s", diff)
	}
}

func TestAdjustLeavesReceiverUntouched(t *testing.T) {
	before := NewAttributes([]string{"Strength", "Charisma"})
	after := before.Adjust("Charisma", 2)
	if got, _ := before.Find("Charisma"); got.Value != 10 {
		t.Fatalf("receiver mutated: Charisma = %d", got.Value)
	}
	if got, _ := after.Find("Charisma"); got.Value != 12 {
		t.Fatalf("Charisma = %d, want 12", got.Value)
	}
}

func TestModifierTracksAdjust(t *testing.T) {
	attrs := NewAttributes([]string{"Wisdom"})
	if mod, ok := attrs.ModifierOf("Wisdom"); !ok || mod != 0 {
		t.Fatalf("modifier = %d (ok=%v), want 0", mod, ok)
	}
	attrs = attrs.Adjust("Wisdom", 2)
	if mod, _ := attrs.ModifierOf("Wisdom"); mod != 1 {
		t.Fatalf("modifier after +2 = %d, want 1", mod)
	}
	if _, ok := attrs.ModifierOf("Luck"); ok {
		t.Fatal("expected missing attribute to report !ok")
	}
}

func TestReplaceAttributes(t *testing.T) {
	in := []Attribute{{Name: "Strength", Value: 17}}
	got := ReplaceAttributes(in)
	in[0].Value = 3
	if diff := cmp.Diff(Attributes{{Name: "Strength", Value: 17}}, got); diff != "" {
		t.Fatalf("replace mismatch (-want +got):\n%s", diff)
	}

	for _, empty := range [][]Attribute{nil, {}} {
		got := ReplaceAttributes(empty)
		if got == nil || len(got) != 0 {
			t.Fatalf("ReplaceAttributes(%v) = %#v, want empty non-nil set", empty, got)
		}
	}
}
