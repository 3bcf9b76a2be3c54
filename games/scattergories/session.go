/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package scattergories

import (
	"fmt"
)

// Rules are the tunable parameters of a match.
type Rules struct {
	MinTeamSize   int
	MaxTeamSize   int
	LetterChanges int
	RoundDuration int // seconds
	DurationStep  int // seconds per adjust step
	Letters       string
}

// DefaultRules returns the house rules: teams of 3-4, three letter changes
// per team, two-minute turns adjusted in ten-second steps.
func DefaultRules() Rules {
	return Rules{
		MinTeamSize:   3,
		MaxTeamSize:   4,
		LetterChanges: 3,
		RoundDuration: 120,
		DurationStep:  10,
		Letters:       DefaultLetters,
	}
}

// Session runs a match: it owns the roster, rotates turns and folds each
// finished turn's score into the team totals. A Session is not safe for
// concurrent use.
type Session struct {
	rng   Source
	rules Rules

	roster   []Team
	current  int
	duration int
	round    *Round
}

func NewSession(rng Source, rules Rules) *Session {
	if rules.RoundDuration <= 0 {
		rules.RoundDuration = DefaultRules().RoundDuration
	}
	return &Session{
		rng:      orDefault(rng),
		rules:    rules,
		duration: rules.RoundDuration,
	}
}

// NewMatch installs roster, clears every score and discards any live turn.
// Every team must have at least one member.
func (s *Session) NewMatch(roster []Team) error {
	if len(roster) == 0 {
		return ErrEmptyRoster
	}
	for _, t := range roster {
		if len(t.Members) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyTeam, t.Name)
		}
	}

	teams := make([]Team, len(roster))
	for i, t := range roster {
		teams[i] = t.clone()
	}
	s.roster = teams
	s.Restart()

	return nil
}

// Restart clears scores and round histories and hands the next turn back to
// the first team. Letter-change allowances are not restored.
func (s *Session) Restart() {
	for i := range s.roster {
		s.roster[i].Score = 0
		s.roster[i].RoundScores = []int{}
	}
	s.current = 0
	s.round = nil
}

// Started reports whether a roster is installed.
func (s *Session) Started() bool {
	return len(s.roster) > 0
}

// StartTurn begins a turn for the current team using the session's round
// duration.
func (s *Session) StartTurn(pool []string) error {
	if !s.Started() {
		return ErrNoMatch
	}
	if s.round != nil {
		return fmt.Errorf("%w: %s is still playing", ErrTurnInProgress, s.roster[s.current].Name)
	}

	r := NewRound(s.rng)
	if err := r.Start(s.duration, s.rules.Letters, pool); err != nil {
		return err
	}
	s.round = r

	return nil
}

func (s *Session) live() (*Round, error) {
	if s.round == nil {
		return nil, ErrNoTurn
	}
	return s.round, nil
}

// Tick forwards a one-second tick to the live turn, if any, and reports
// whether the turn expired on it.
func (s *Session) Tick() bool {
	if s.round == nil {
		return false
	}
	return s.round.Tick()
}

func (s *Session) Pause() error {
	r, err := s.live()
	if err != nil {
		return err
	}
	return r.Pause()
}

func (s *Session) Resume() error {
	r, err := s.live()
	if err != nil {
		return err
	}
	return r.Resume()
}

// ChangeLetter redraws the turn's letter and spends one of the current team's
// letter changes.
func (s *Session) ChangeLetter() (string, error) {
	r, err := s.live()
	if err != nil {
		return "", err
	}

	team := &s.roster[s.current]
	letter, err := r.ChangeLetter(team.LetterChangesLeft)
	if err != nil {
		return "", err
	}
	team.LetterChangesLeft--

	return letter, nil
}

func (s *Session) SetDraft(category, text string) error {
	r, err := s.live()
	if err != nil {
		return err
	}
	return r.SetDraft(category, text)
}

func (s *Session) Submit(category string) error {
	r, err := s.live()
	if err != nil {
		return err
	}
	return r.Submit(category)
}

func (s *Session) Retract(category string) error {
	r, err := s.live()
	if err != nil {
		return err
	}
	return r.Retract(category)
}

func (s *Session) AcknowledgeExpiry() (int, error) {
	r, err := s.live()
	if err != nil {
		return 0, err
	}
	return r.AcknowledgeExpiry()
}

// EndTurn finishes the live turn early.
func (s *Session) EndTurn() (int, error) {
	r, err := s.live()
	if err != nil {
		return 0, err
	}
	return r.End()
}

// FinalizeTurn records a completed turn's score against the current team and
// passes play to the next team.
func (s *Session) FinalizeTurn() (int, error) {
	r, err := s.live()
	if err != nil {
		return 0, err
	}
	if r.Phase() != PhaseCompleted {
		return 0, fmt.Errorf("%w: turn is %s, not %s", ErrInvalidPhase, r.Phase(), PhaseCompleted)
	}

	score := r.Score()
	team := &s.roster[s.current]
	team.RoundScores = append(team.RoundScores, score)
	team.Score += score

	s.current = (s.current + 1) % len(s.roster)
	s.round = nil

	return score, nil
}

// ChangeRoundDuration sets the length of subsequent turns.
func (s *Session) ChangeRoundDuration(seconds int) error {
	if s.round != nil {
		return ErrTurnInProgress
	}
	if seconds <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDuration, seconds)
	}
	s.duration = seconds
	return nil
}

// AdjustRoundDuration moves the turn length by steps multiples of the
// configured step.
func (s *Session) AdjustRoundDuration(steps int) error {
	step := s.rules.DurationStep
	if step <= 0 {
		step = DefaultRules().DurationStep
	}
	return s.ChangeRoundDuration(s.duration + steps*step)
}

func (s *Session) RoundDuration() int {
	return s.duration
}

func (s *Session) Rules() Rules {
	return s.rules
}

func (s *Session) CurrentTeamIndex() int {
	return s.current
}

// CurrentTeam returns a copy of the team whose turn it is.
func (s *Session) CurrentTeam() (Team, bool) {
	if !s.Started() {
		return Team{}, false
	}
	return s.roster[s.current].clone(), true
}

// Roster returns a deep copy of every team.
func (s *Session) Roster() []Team {
	out := make([]Team, len(s.roster))
	for i, t := range s.roster {
		out[i] = t.clone()
	}
	return out
}

// Turn returns the live turn's state, if a turn exists.
func (s *Session) Turn() (TurnState, bool) {
	if s.round == nil {
		return TurnState{}, false
	}
	return s.round.State(), true
}

// Leaders returns the indices of the teams sharing the highest score.
func (s *Session) Leaders() []int {
	if !s.Started() {
		return nil
	}

	best := s.roster[0].Score
	for _, t := range s.roster[1:] {
		best = max(best, t.Score)
	}

	var idx []int
	for i, t := range s.roster {
		if t.Score == best {
			idx = append(idx, i)
		}
	}
	return idx
}
