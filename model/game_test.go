package model

import "testing"

func testGame() Game {
	return Game{
		Meta:      Meta{ID: "g-1"},
		Name:      "vs Lightning",
		Personnel: []string{"per-1", "per-2"},
		Events: []GameEvent{
			{ID: "e-1", Kind: "fieldGoal", PlayerID: "p-1", Value: 2},
		},
		Roster: []RosterSpot{
			{PlayerID: "p-1", Number: "23", Starter: true},
		},
		Assessments: []Assessment{
			{ID: "a-1", PersonnelID: "per-1", PlayerID: "p-1", Rating: 4},
			{ID: "a-2", PersonnelID: "per-3", Rating: 5},
		},
	}
}

func TestGameClone_NoSharedSlices(t *testing.T) {
	g := testGame()
	c := g.Clone()

	c.Personnel[0] = "mutated"
	c.Events[0].Value = 99
	c.Roster[0].Number = "00"
	c.Assessments[0].Rating = 1

	if g.Personnel[0] != "per-1" {
		t.Errorf("expected original personnel untouched, got %q", g.Personnel[0])
	}
	if g.Events[0].Value != 2 {
		t.Errorf("expected original event untouched, got %d", g.Events[0].Value)
	}
	if g.Roster[0].Number != "23" {
		t.Errorf("expected original roster untouched, got %q", g.Roster[0].Number)
	}
	if g.Assessments[0].Rating != 4 {
		t.Errorf("expected original assessment untouched, got %d", g.Assessments[0].Rating)
	}
}

func TestGameReferencesPersonnel(t *testing.T) {
	g := testGame()

	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"OnCrew", "per-1", true},
		{"OnlyViaAssessment", "per-3", true},
		{"Unknown", "per-9", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.ReferencesPersonnel(tt.id); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestGameStripPersonnel(t *testing.T) {
	g := testGame()

	stripped, changed := g.StripPersonnel("per-1")
	if !changed {
		t.Fatal("expected change")
	}
	if len(stripped.Personnel) != 1 || stripped.Personnel[0] != "per-2" {
		t.Errorf("expected [per-2], got %v", stripped.Personnel)
	}
	if len(stripped.Assessments) != 1 || stripped.Assessments[0].ID != "a-2" {
		t.Errorf("expected only a-2 to survive, got %v", stripped.Assessments)
	}

	// The original must not be mutated.
	if len(g.Personnel) != 2 || len(g.Assessments) != 2 {
		t.Errorf("expected original untouched, got %v / %v", g.Personnel, g.Assessments)
	}
}

func TestGameStripPersonnel_NoReference(t *testing.T) {
	g := testGame()
	_, changed := g.StripPersonnel("per-9")
	if changed {
		t.Error("expected no change for unknown id")
	}
}
