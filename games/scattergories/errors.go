/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package scattergories

import "errors"

var (
	ErrInvalidTeamBounds     = errors.New("team size bounds must satisfy 0 < min <= max")
	ErrNotEnoughParticipants = errors.New("not enough participants to form a team")

	ErrInvalidPhase    = errors.New("invalid phase for action")
	ErrInvalidDuration = errors.New("round duration must be positive")
	ErrPoolTooSmall    = errors.New("category pool too small")
	ErrUnknownCategory = errors.New("category is not active this turn")
	ErrEmptyAnswer     = errors.New("answer is empty")
	ErrNoLetterChanges = errors.New("no letter changes left")

	ErrNoMatch        = errors.New("no match in progress")
	ErrEmptyRoster    = errors.New("roster has no teams")
	ErrEmptyTeam      = errors.New("team has no members")
	ErrTurnInProgress = errors.New("a turn is already in progress")
	ErrNoTurn         = errors.New("no turn in progress")

	ErrEmptyName         = errors.New("participant name is empty")
	ErrNoSuchParticipant = errors.New("no such participant")
	ErrTeamsGenerated    = errors.New("teams have already been generated")
	ErrNoTeams           = errors.New("teams have not been generated")
)
