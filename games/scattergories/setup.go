/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package scattergories

import (
	"slices"
	"strings"
)

// Setup collects participants ahead of a match and turns them into teams.
type Setup struct {
	participants []string
	teams        []Team
}

// AddParticipant appends a trimmed name. Duplicates are allowed.
func (s *Setup) AddParticipant(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	s.participants = append(s.participants, name)
	return nil
}

// RemoveParticipant removes the participant at index.
func (s *Setup) RemoveParticipant(index int) error {
	if index < 0 || index >= len(s.participants) {
		return ErrNoSuchParticipant
	}
	s.participants = slices.Delete(s.participants, index, index+1)
	return nil
}

// GenerateTeams balances the current participants under rules. Teams stay
// fixed until ResetTeams.
func (s *Setup) GenerateTeams(rng Source, rules Rules) ([]Team, error) {
	if s.teams != nil {
		return nil, ErrTeamsGenerated
	}

	teams, err := Balance(rng, s.participants, rules.MinTeamSize, rules.MaxTeamSize, rules.LetterChanges)
	if err != nil {
		return nil, err
	}
	s.teams = teams

	return s.Teams(), nil
}

// ResetTeams discards generated teams, keeping the participants.
func (s *Setup) ResetTeams() {
	s.teams = nil
}

func (s *Setup) Participants() []string {
	return slices.Clone(s.participants)
}

// Teams returns a copy of the generated teams, or nil.
func (s *Setup) Teams() []Team {
	if s.teams == nil {
		return nil
	}
	out := make([]Team, len(s.teams))
	for i, t := range s.teams {
		out[i] = t.clone()
	}
	return out
}
