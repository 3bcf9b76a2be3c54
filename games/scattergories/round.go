/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package scattergories

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Phase is the lifecycle stage of a single turn.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseActive    Phase = "active"
	PhasePaused    Phase = "paused"
	PhaseExpired   Phase = "expired"
	PhaseCompleted Phase = "completed"
)

const (
	// CategoriesPerTurn is how many categories a turn draws from the pool.
	CategoriesPerTurn = 12

	// DefaultLetters is the alphabet starting letters are drawn from.
	DefaultLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// TurnState is a read-only snapshot of a Round.
type TurnState struct {
	Phase      Phase             `json:"phase"`
	Letter     string            `json:"letter"`
	Categories []string          `json:"categories"`
	Remaining  int               `json:"remaining"`
	Duration   int               `json:"duration"`
	Drafts     map[string]string `json:"drafts"`
	Answers    map[string]string `json:"answers"`
	Score      int               `json:"score"`
}

// Round drives one team's timed attempt. A Round is not safe for concurrent
// use; its owner serializes ticks and actions.
type Round struct {
	rng Source

	phase      Phase
	letters    []rune
	letter     rune
	categories []string
	active     map[string]bool
	drafts     map[string]string
	answers    map[string]string
	duration   int
	remaining  int
}

// NewRound returns an idle round drawing from rng.
func NewRound(rng Source) *Round {
	return &Round{
		rng:   orDefault(rng),
		phase: PhaseIdle,
	}
}

// Start draws a letter and CategoriesPerTurn distinct categories, then starts
// the countdown. An empty letters string means A-Z.
func (r *Round) Start(duration int, letters string, pool []string) error {
	if r.phase != PhaseIdle && r.phase != PhaseCompleted {
		return fmt.Errorf("%w: cannot start while %s", ErrInvalidPhase, r.phase)
	}
	if duration <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDuration, duration)
	}

	if letters == "" {
		letters = DefaultLetters
	}
	alphabet := []rune(strings.ToUpper(letters))

	distinct := make([]string, 0, len(pool))
	seen := make(map[string]bool, len(pool))
	for _, c := range pool {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		distinct = append(distinct, c)
	}
	if len(distinct) < CategoriesPerTurn {
		return fmt.Errorf("%w: have %d distinct categories, need %d", ErrPoolTooSmall, len(distinct), CategoriesPerTurn)
	}

	// Partial Fisher-Yates: only the first CategoriesPerTurn slots are drawn.
	for i := range CategoriesPerTurn {
		j := i + r.rng.IntN(len(distinct)-i)
		distinct[i], distinct[j] = distinct[j], distinct[i]
	}
	selected := distinct[:CategoriesPerTurn:CategoriesPerTurn]

	r.letters = alphabet
	r.letter = r.drawLetter()
	r.categories = selected
	r.active = make(map[string]bool, len(selected))
	for _, c := range selected {
		r.active[c] = true
	}
	r.drafts = make(map[string]string)
	r.answers = make(map[string]string)
	r.duration = duration
	r.remaining = duration
	r.phase = PhaseActive

	return nil
}

func (r *Round) drawLetter() rune {
	return r.letters[r.rng.IntN(len(r.letters))]
}

// Tick advances the countdown by one second. It reports whether this tick
// expired the turn.
func (r *Round) Tick() bool {
	if r.phase != PhaseActive {
		return false
	}

	if r.remaining > 0 {
		r.remaining--
	}
	if r.remaining == 0 {
		r.phase = PhaseExpired
		return true
	}

	return false
}

func (r *Round) Pause() error {
	if r.phase != PhaseActive {
		return fmt.Errorf("%w: cannot pause while %s", ErrInvalidPhase, r.phase)
	}
	r.phase = PhasePaused
	return nil
}

func (r *Round) Resume() error {
	if r.phase != PhasePaused {
		return fmt.Errorf("%w: cannot resume while %s", ErrInvalidPhase, r.phase)
	}
	r.phase = PhaseActive
	return nil
}

// ChangeLetter redraws the letter. The previous letter may come up again.
// changesLeft is the owning team's remaining allowance; decrementing it is the
// caller's job.
func (r *Round) ChangeLetter(changesLeft int) (string, error) {
	if r.phase != PhaseActive {
		return "", fmt.Errorf("%w: cannot change letter while %s", ErrInvalidPhase, r.phase)
	}
	if changesLeft <= 0 {
		return "", ErrNoLetterChanges
	}

	r.letter = r.drawLetter()
	return string(r.letter), nil
}

func (r *Round) editable() bool {
	return r.phase == PhaseActive || r.phase == PhasePaused
}

// SetDraft overwrites the pending text for an active category.
func (r *Round) SetDraft(category, text string) error {
	if !r.editable() {
		return fmt.Errorf("%w: cannot edit while %s", ErrInvalidPhase, r.phase)
	}
	if !r.active[category] {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	r.drafts[category] = text
	return nil
}

// Submit moves the trimmed draft for category into the submitted answers,
// replacing any earlier answer, and clears the draft.
func (r *Round) Submit(category string) error {
	if !r.editable() {
		return fmt.Errorf("%w: cannot submit while %s", ErrInvalidPhase, r.phase)
	}
	if !r.active[category] {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	answer := strings.TrimSpace(r.drafts[category])
	if answer == "" {
		return fmt.Errorf("%w: %q", ErrEmptyAnswer, category)
	}

	r.answers[category] = answer
	delete(r.drafts, category)
	return nil
}

// Retract drops the submitted answer for category. The draft is not restored.
func (r *Round) Retract(category string) error {
	if !r.editable() {
		return fmt.Errorf("%w: cannot retract while %s", ErrInvalidPhase, r.phase)
	}
	if !r.active[category] {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	delete(r.answers, category)
	return nil
}

// AcknowledgeExpiry completes an expired turn and returns its score.
func (r *Round) AcknowledgeExpiry() (int, error) {
	if r.phase != PhaseExpired {
		return 0, fmt.Errorf("%w: cannot acknowledge expiry while %s", ErrInvalidPhase, r.phase)
	}
	r.phase = PhaseCompleted
	return r.Score(), nil
}

// End completes the turn early and returns its score.
func (r *Round) End() (int, error) {
	if !r.editable() {
		return 0, fmt.Errorf("%w: cannot end while %s", ErrInvalidPhase, r.phase)
	}
	r.phase = PhaseCompleted
	return r.Score(), nil
}

// Score counts the categories holding a non-empty submitted answer. Answers
// are never checked against the letter.
func (r *Round) Score() int {
	score := 0
	for _, a := range r.answers {
		if a != "" {
			score++
		}
	}
	return score
}

func (r *Round) Phase() Phase {
	return r.phase
}

func (r *Round) Remaining() int {
	return r.remaining
}

// Letter returns the current starting letter, or "" before Start.
func (r *Round) Letter() string {
	if r.letter == 0 {
		return ""
	}
	return string(r.letter)
}

// State returns a snapshot that shares no memory with the round.
func (r *Round) State() TurnState {
	return TurnState{
		Phase:      r.phase,
		Letter:     r.Letter(),
		Categories: slices.Clone(r.categories),
		Remaining:  r.remaining,
		Duration:   r.duration,
		Drafts:     maps.Clone(r.drafts),
		Answers:    maps.Clone(r.answers),
		Score:      r.Score(),
	}
}
