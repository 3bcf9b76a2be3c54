package scattergories

import (
	"errors"
	"slices"
	"testing"
)

func twoTeams(t *testing.T) []Team {
	t.Helper()

	teams, err := Balance(NewSeededSource(1, 1), names(6), 3, 3, 3)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	return teams
}

func newMatch(t *testing.T, rules Rules) *Session {
	t.Helper()

	s := NewSession(NewSeededSource(4, 4), rules)
	if err := s.NewMatch(twoTeams(t)); err != nil {
		t.Fatalf("new match failed: %v", err)
	}
	return s
}

func TestSessionEndToEnd(t *testing.T) {
	rules := DefaultRules()
	rules.RoundDuration = 30
	s := newMatch(t, rules)

	if err := s.StartTurn(testPool(24)); err != nil {
		t.Fatalf("start turn failed: %v", err)
	}

	turn, ok := s.Turn()
	if !ok || turn.Remaining != 30 {
		t.Fatalf("expected a 30s turn, got %+v", turn)
	}
	for _, cat := range turn.Categories[:5] {
		if err := s.SetDraft(cat, "answer"); err != nil {
			t.Fatalf("set draft failed: %v", err)
		}
		if err := s.Submit(cat); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	score, err := s.EndTurn()
	if err != nil || score != 5 {
		t.Fatalf("expected score 5, got %d (%v)", score, err)
	}
	if s.CurrentTeamIndex() != 0 {
		t.Fatal("turn advanced before finalize")
	}

	score, err = s.FinalizeTurn()
	if err != nil || score != 5 {
		t.Fatalf("finalize: expected 5, got %d (%v)", score, err)
	}
	if s.CurrentTeamIndex() != 1 {
		t.Fatalf("expected team 2 to be up, got index %d", s.CurrentTeamIndex())
	}

	roster := s.Roster()
	if !slices.Equal(roster[0].RoundScores, []int{5}) || roster[0].Score != 5 {
		t.Fatalf("team 1 expected [5]/5, got %v/%d", roster[0].RoundScores, roster[0].Score)
	}
	if _, ok := s.Turn(); ok {
		t.Fatal("turn still live after finalize")
	}
}

func TestSessionExpiryPath(t *testing.T) {
	rules := DefaultRules()
	rules.RoundDuration = 3
	s := newMatch(t, rules)
	_ = s.StartTurn(testPool(24))

	turn, _ := s.Turn()
	_ = s.SetDraft(turn.Categories[1], "Go")
	_ = s.Submit(turn.Categories[1])

	expired := false
	for range 3 {
		expired = s.Tick()
	}
	if !expired {
		t.Fatal("expected the third tick to expire the turn")
	}

	if _, err := s.FinalizeTurn(); !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("expected finalize before acknowledge to be refused, got %v", err)
	}
	if score, err := s.AcknowledgeExpiry(); err != nil || score != 1 {
		t.Fatalf("acknowledge: expected 1, got %d (%v)", score, err)
	}
	if _, err := s.FinalizeTurn(); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if got := s.Roster()[0].Score; got != 1 {
		t.Fatalf("expected team 1 score 1, got %d", got)
	}
}

func TestSessionOneTurnAtATime(t *testing.T) {
	s := newMatch(t, DefaultRules())

	if err := s.StartTurn(testPool(24)); err != nil {
		t.Fatalf("start turn failed: %v", err)
	}
	if err := s.StartTurn(testPool(24)); !errors.Is(err, ErrTurnInProgress) {
		t.Fatalf("expected ErrTurnInProgress, got %v", err)
	}

	_ = s.Pause()
	if err := s.StartTurn(testPool(24)); !errors.Is(err, ErrTurnInProgress) {
		t.Fatalf("expected ErrTurnInProgress while paused, got %v", err)
	}

	_, _ = s.EndTurn()
	if err := s.StartTurn(testPool(24)); !errors.Is(err, ErrTurnInProgress) {
		t.Fatalf("expected ErrTurnInProgress before finalize, got %v", err)
	}
}

func TestSessionRefusesWithoutMatchOrTurn(t *testing.T) {
	s := NewSession(nil, DefaultRules())

	if err := s.StartTurn(testPool(24)); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
	if err := s.NewMatch(nil); !errors.Is(err, ErrEmptyRoster) {
		t.Fatalf("expected ErrEmptyRoster, got %v", err)
	}

	s = newMatch(t, DefaultRules())
	if err := s.Pause(); !errors.Is(err, ErrNoTurn) {
		t.Fatalf("expected ErrNoTurn, got %v", err)
	}
	if _, err := s.FinalizeTurn(); !errors.Is(err, ErrNoTurn) {
		t.Fatalf("expected ErrNoTurn, got %v", err)
	}
	if s.Tick() {
		t.Fatal("tick without a turn reported expiry")
	}
}

func TestSessionRefusesEmptyTeam(t *testing.T) {
	s := newMatch(t, DefaultRules())
	before := s.Roster()

	roster := twoTeams(t)
	roster[1].Members = nil

	if err := s.NewMatch(roster); !errors.Is(err, ErrEmptyTeam) {
		t.Fatalf("expected ErrEmptyTeam, got %v", err)
	}
	if len(s.Roster()) != len(before) || s.Roster()[1].Name != before[1].Name || len(s.Roster()[1].Members) == 0 {
		t.Fatal("refused roster replaced the match")
	}

	fresh := NewSession(nil, DefaultRules())
	if err := fresh.NewMatch(roster); !errors.Is(err, ErrEmptyTeam) {
		t.Fatalf("expected ErrEmptyTeam, got %v", err)
	}
	if fresh.Started() {
		t.Fatal("refused roster started a match")
	}
}

func TestSessionSmallPoolLeavesNoTurn(t *testing.T) {
	s := newMatch(t, DefaultRules())

	if err := s.StartTurn(testPool(5)); !errors.Is(err, ErrPoolTooSmall) {
		t.Fatalf("expected ErrPoolTooSmall, got %v", err)
	}
	if _, ok := s.Turn(); ok {
		t.Fatal("failed start left a live turn")
	}
}

func TestSessionLetterChangeAllowance(t *testing.T) {
	teams, err := Balance(nil, names(6), 3, 3, 2)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	s := NewSession(NewSeededSource(8, 8), DefaultRules())
	_ = s.NewMatch(teams)
	_ = s.StartTurn(testPool(24))

	for i := range 2 {
		if _, err := s.ChangeLetter(); err != nil {
			t.Fatalf("change %d failed: %v", i+1, err)
		}
	}
	for range 3 {
		if _, err := s.ChangeLetter(); !errors.Is(err, ErrNoLetterChanges) {
			t.Fatalf("expected ErrNoLetterChanges, got %v", err)
		}
	}

	team, _ := s.CurrentTeam()
	if team.LetterChangesLeft != 0 {
		t.Fatalf("expected allowance 0, got %d", team.LetterChangesLeft)
	}

	// The allowance is per match, not per turn.
	_, _ = s.EndTurn()
	_, _ = s.FinalizeTurn()
	_ = s.StartTurn(testPool(24))
	_, _ = s.EndTurn()
	_, _ = s.FinalizeTurn()
	_ = s.StartTurn(testPool(24))
	if _, err := s.ChangeLetter(); !errors.Is(err, ErrNoLetterChanges) {
		t.Fatalf("expected exhausted allowance to persist, got %v", err)
	}

	if got := s.Roster()[1].LetterChangesLeft; got != 2 {
		t.Fatalf("team 2 allowance touched: %d", got)
	}
}

func TestSessionRotationWraps(t *testing.T) {
	s := newMatch(t, DefaultRules())

	want := []int{1, 0, 1, 0}
	for i, next := range want {
		if err := s.StartTurn(testPool(24)); err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
		_, _ = s.EndTurn()
		_, _ = s.FinalizeTurn()
		if s.CurrentTeamIndex() != next {
			t.Fatalf("turn %d: expected index %d, got %d", i, next, s.CurrentTeamIndex())
		}
	}

	for _, team := range s.Roster() {
		if !slices.Equal(team.RoundScores, []int{0, 0}) {
			t.Fatalf("%s: expected [0 0], got %v", team.Name, team.RoundScores)
		}
	}
}

func TestSessionRoundDuration(t *testing.T) {
	s := newMatch(t, DefaultRules())

	if err := s.AdjustRoundDuration(-1); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}
	if s.RoundDuration() != 110 {
		t.Fatalf("expected 110s, got %d", s.RoundDuration())
	}
	if err := s.ChangeRoundDuration(0); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}

	_ = s.StartTurn(testPool(24))
	if err := s.ChangeRoundDuration(60); !errors.Is(err, ErrTurnInProgress) {
		t.Fatalf("expected ErrTurnInProgress, got %v", err)
	}
	if turn, _ := s.Turn(); turn.Duration != 110 {
		t.Fatalf("live turn duration changed to %d", turn.Duration)
	}

	_, _ = s.EndTurn()
	_, _ = s.FinalizeTurn()
	if err := s.ChangeRoundDuration(60); err != nil {
		t.Fatalf("change failed: %v", err)
	}
	_ = s.StartTurn(testPool(24))
	if turn, _ := s.Turn(); turn.Remaining != 60 {
		t.Fatalf("expected 60s turn, got %d", turn.Remaining)
	}
}

func TestSessionRestart(t *testing.T) {
	s := newMatch(t, DefaultRules())
	_ = s.StartTurn(testPool(24))
	turn, _ := s.Turn()
	_ = s.SetDraft(turn.Categories[0], "x")
	_ = s.Submit(turn.Categories[0])
	_, _ = s.ChangeLetter()
	_, _ = s.EndTurn()
	_, _ = s.FinalizeTurn()
	_ = s.StartTurn(testPool(24))

	s.Restart()

	if s.CurrentTeamIndex() != 0 {
		t.Fatalf("expected index 0, got %d", s.CurrentTeamIndex())
	}
	if _, ok := s.Turn(); ok {
		t.Fatal("restart kept the live turn")
	}
	for _, team := range s.Roster() {
		if team.Score != 0 || len(team.RoundScores) != 0 {
			t.Fatalf("%s not cleared: %d %v", team.Name, team.Score, team.RoundScores)
		}
	}
	if got := s.Roster()[0].LetterChangesLeft; got != 2 {
		t.Fatalf("letter changes should not be restored, got %d", got)
	}
}

func TestSessionOwnsRoster(t *testing.T) {
	teams := twoTeams(t)
	s := NewSession(nil, DefaultRules())
	_ = s.NewMatch(teams)

	teams[0].Members[0].Name = "mutated"
	teams[0].Score = 99

	got := s.Roster()
	if got[0].Members[0].Name == "mutated" || got[0].Score != 0 {
		t.Fatal("session shares memory with the caller's roster")
	}

	got[1].Score = 50
	if s.Roster()[1].Score != 0 {
		t.Fatal("roster query exposes internal state")
	}
}

func TestSessionLeaders(t *testing.T) {
	s := newMatch(t, DefaultRules())
	if !slices.Equal(s.Leaders(), []int{0, 1}) {
		t.Fatalf("expected a tie, got %v", s.Leaders())
	}

	_ = s.StartTurn(testPool(24))
	turn, _ := s.Turn()
	_ = s.SetDraft(turn.Categories[0], "Go")
	_ = s.Submit(turn.Categories[0])
	_, _ = s.EndTurn()
	_, _ = s.FinalizeTurn()

	if !slices.Equal(s.Leaders(), []int{0}) {
		t.Fatalf("expected team 1 ahead, got %v", s.Leaders())
	}
}
