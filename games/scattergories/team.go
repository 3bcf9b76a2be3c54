/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package scattergories

import (
	"fmt"
	"slices"
)

// Member is one participant placed on a team.
type Member struct {
	Name     string `json:"name"`
	IsLeader bool   `json:"is_leader"`
}

// Team holds a team's members and its running score.
type Team struct {
	Name              string   `json:"name"`
	Members           []Member `json:"members"`
	Score             int      `json:"score"`
	RoundScores       []int    `json:"round_scores"`
	LetterChangesLeft int      `json:"letter_changes_left"`
}

// Leader returns the name of the team's leader.
func (t Team) Leader() string {
	for _, m := range t.Members {
		if m.IsLeader {
			return m.Name
		}
	}
	return ""
}

func (t Team) clone() Team {
	t.Members = slices.Clone(t.Members)
	t.RoundScores = slices.Clone(t.RoundScores)
	return t
}

// Balance shuffles participants and splits them into ceil(n/maxTeamSize)
// teams whose sizes differ by at most one. The first n mod k teams get the
// extra member. The first member of each team is its leader. Duplicate names
// are kept as distinct participants.
func Balance(rng Source, participants []string, minTeamSize, maxTeamSize, letterChanges int) ([]Team, error) {
	if minTeamSize <= 0 || maxTeamSize < minTeamSize {
		return nil, fmt.Errorf("%w: min %d, max %d", ErrInvalidTeamBounds, minTeamSize, maxTeamSize)
	}

	n := len(participants)
	if n < minTeamSize {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughParticipants, n, minTeamSize)
	}

	shuffled := slices.Clone(participants)
	shuffle(orDefault(rng), shuffled)

	k := (n + maxTeamSize - 1) / maxTeamSize
	base := n / k
	extra := n % k

	teams := make([]Team, 0, k)
	next := 0
	for i := range k {
		size := base
		if i < extra {
			size++
		}

		members := make([]Member, size)
		for j, name := range shuffled[next : next+size] {
			members[j] = Member{Name: name, IsLeader: j == 0}
		}
		next += size

		teams = append(teams, Team{
			Name:              fmt.Sprintf("Team %d", i+1),
			Members:           members,
			RoundScores:       []int{},
			LetterChangesLeft: max(letterChanges, 0),
		})
	}

	return teams, nil
}
