package scattergories

import (
	"errors"
	"slices"
	"testing"
)

func TestSetupParticipants(t *testing.T) {
	var s Setup

	for _, name := range []string{" Alice ", "Bob", "Bob"} {
		if err := s.AddParticipant(name); err != nil {
			t.Fatalf("add %q failed: %v", name, err)
		}
	}
	if err := s.AddParticipant("   "); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}

	if got := s.Participants(); !slices.Equal(got, []string{"Alice", "Bob", "Bob"}) {
		t.Fatalf("unexpected participants %v", got)
	}

	if err := s.RemoveParticipant(1); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := s.RemoveParticipant(5); !errors.Is(err, ErrNoSuchParticipant) {
		t.Fatalf("expected ErrNoSuchParticipant, got %v", err)
	}
	if got := s.Participants(); !slices.Equal(got, []string{"Alice", "Bob"}) {
		t.Fatalf("unexpected participants after remove %v", got)
	}
}

func TestSetupGenerateTeams(t *testing.T) {
	var s Setup
	rules := DefaultRules()

	for _, name := range names(2) {
		_ = s.AddParticipant(name)
	}
	if _, err := s.GenerateTeams(nil, rules); !errors.Is(err, ErrNotEnoughParticipants) {
		t.Fatalf("expected ErrNotEnoughParticipants, got %v", err)
	}
	if s.Teams() != nil {
		t.Fatal("refused generation left teams behind")
	}

	for _, name := range names(5) {
		_ = s.AddParticipant(name)
	}
	teams, err := s.GenerateTeams(NewSeededSource(1, 2), rules)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("expected 2 teams for 7 players, got %d", len(teams))
	}

	if _, err := s.GenerateTeams(nil, rules); !errors.Is(err, ErrTeamsGenerated) {
		t.Fatalf("expected ErrTeamsGenerated, got %v", err)
	}

	s.ResetTeams()
	if s.Teams() != nil {
		t.Fatal("reset kept teams")
	}
	if len(s.Participants()) != 7 {
		t.Fatal("reset dropped participants")
	}
}
