package match

import (
	"fmt"
	"time"
)

// Transition names one edge of the clock state machine.
type Transition string

const (
	TransitionStartFirstHalf  Transition = "START_FIRST_HALF"
	TransitionStartHalftime   Transition = "START_HALFTIME"
	TransitionStartSecondHalf Transition = "START_SECOND_HALF"
	TransitionEndMatch        Transition = "END_MATCH"
)

var transitionTable = map[Transition]struct {
	from Status
	to   Status
}{
	TransitionStartFirstHalf:  {from: StatusNotStarted, to: StatusFirstHalf},
	TransitionStartHalftime:   {from: StatusFirstHalf, to: StatusHalftime},
	TransitionStartSecondHalf: {from: StatusHalftime, to: StatusSecondHalf},
	TransitionEndMatch:        {from: StatusSecondHalf, to: StatusFullTime},
}

// Source returns the only status the transition may fire from.
func (t Transition) Source() (Status, bool) {
	edge, ok := transitionTable[t]
	return edge.from, ok
}

// Target returns the status reached once the transition fires.
func (t Transition) Target() (Status, bool) {
	edge, ok := transitionTable[t]
	return edge.to, ok
}

// ValidateHalfDuration checks the closed range accepted at kickoff.
func ValidateHalfDuration(minutes int) error {
	if minutes < MinHalfDurationMinutes || minutes > MaxHalfDurationMinutes {
		return fmt.Errorf("%w: half_duration_minutes must be between %d and %d, got %d",
			ErrInvalidHalfDuration, MinHalfDurationMinutes, MaxHalfDurationMinutes, minutes)
	}
	return nil
}

// Apply fires t against m and returns the updated match. m itself is never modified.
// halfDuration is only read for TransitionStartFirstHalf.
func (m Match) Apply(t Transition, now time.Time, halfDuration int) (Match, error) {
	edge, ok := transitionTable[t]
	if !ok {
		return Match{}, fmt.Errorf("%w: unknown transition %q", ErrInvalidTransition, t)
	}
	if m.Status != edge.from {
		return Match{}, fmt.Errorf("%w: %s not allowed while %s", ErrInvalidTransition, t, m.Status)
	}

	next := m.Clone()
	stamp := now.UTC()
	if latest := m.latestTimestamp(); latest != nil && stamp.Before(*latest) {
		stamp = *latest
	}

	switch t {
	case TransitionStartFirstHalf:
		if err := ValidateHalfDuration(halfDuration); err != nil {
			return Match{}, err
		}
		next.HalfDurationMinutes = halfDuration
		next.KickoffAt = &stamp
	case TransitionStartHalftime:
		next.HalftimeStartedAt = &stamp
	case TransitionStartSecondHalf:
		next.SecondHalfStartedAt = &stamp
	case TransitionEndMatch:
		next.EndedAt = &stamp
	}
	next.Status = edge.to

	return next, nil
}

func (m Match) latestTimestamp() *time.Time {
	var latest *time.Time
	for _, ts := range []*time.Time{m.KickoffAt, m.HalftimeStartedAt, m.SecondHalfStartedAt, m.EndedAt} {
		if ts == nil {
			continue
		}
		if latest == nil || ts.After(*latest) {
			latest = ts
		}
	}
	return latest
}
