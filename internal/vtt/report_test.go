package vtt

import (
	"strings"
	"testing"
)

func TestSessionReport_Summary(t *testing.T) {
	s := NewSession(testSessionConfig(t))
	a, err := s.DropToken(s.TokenPaths[0], 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	a.Squad = 2
	a.ToggleCondition(CondSlowed)
	b, err := s.DropToken(s.TokenPaths[0], 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	b.Hidden = true
	s.World.Fog.Set(0, 0, false)

	got := s.Report()
	for _, want := range []string{
		"a_cave.png",
		"192x128 px",
		"cell=64",
		"5/6 visible",
		"tokens: 2",
		"squad 2: 1",
		"unassigned: 1",
		"hidden: 1",
		"Slowed: 1",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("report missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Dazed") {
		t.Fatalf("report lists an absent condition:\n%s", got)
	}
}

func TestSessionReport_EmptySession(t *testing.T) {
	s := &Session{World: NewWorldState(), Assets: NewAssetStore()}
	got := s.Report()
	if !strings.Contains(got, "map: (none)") {
		t.Fatalf("empty session report:\n%s", got)
	}
	if !strings.Contains(got, "tokens: 0") {
		t.Fatalf("empty session report:\n%s", got)
	}
}
