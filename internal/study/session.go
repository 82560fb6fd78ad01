// Package study implements the sequential study session over a fixed list of cards.
//
// A session is either browsing card Index (front or back showing) or complete. The
// state is small enough to round-trip through the client, so nothing is stored
// server-side; Restore rebuilds a session from a posted State.
package study

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNoCards is returned when a session is started over zero cards.
	ErrNoCards = errors.New("study: no cards")
	// ErrComplete is returned for any action other than restart once the session ended.
	ErrComplete = errors.New("study: session complete")
	// ErrUnknownAction is returned by ParseAction and Apply for unrecognized actions.
	ErrUnknownAction = errors.New("study: unknown action")
	// ErrInvalidState is returned by Restore when a posted state does not fit the deck.
	ErrInvalidState = errors.New("study: invalid state")
)

// Action is a user input on the study page.
type Action string

const (
	Flip      Action = "flip"
	Next      Action = "next"
	Previous  Action = "previous"
	Correct   Action = "correct"
	Incorrect Action = "incorrect"
	Restart   Action = "restart"
)

// ParseAction maps a form value to an Action.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case Flip, Next, Previous, Correct, Incorrect, Restart:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// State is the serializable snapshot of a session.
type State struct {
	Total     int
	Index     int
	Flipped   bool
	Correct   int
	Incorrect int
	Complete  bool
}

// Session is the study state machine. The zero value is not usable; use New or Restore.
type Session struct {
	st State
}

// New starts a session at the first card, front side up.
func New(total int) (*Session, error) {
	if total <= 0 {
		return nil, ErrNoCards
	}
	return &Session{st: State{Total: total}}, nil
}

// Restore rebuilds a session from a client-held state for a deck of total cards.
func Restore(total int, st State) (*Session, error) {
	if total <= 0 {
		return nil, ErrNoCards
	}
	switch {
	case st.Total != total,
		st.Index < 0 || st.Index >= total,
		st.Correct < 0 || st.Incorrect < 0:
		return nil, ErrInvalidState
	}
	return &Session{st: st}, nil
}

// State returns a copy of the current state.
func (s *Session) State() State { return s.st }

// Complete reports whether the session reached the summary screen.
func (s *Session) Complete() bool { return s.st.Complete }

// Apply performs one transition.
func (s *Session) Apply(a Action) error {
	if a == Restart {
		s.restart()
		return nil
	}
	if s.st.Complete {
		return ErrComplete
	}
	switch a {
	case Flip:
		s.st.Flipped = !s.st.Flipped
	case Next:
		s.advance()
	case Previous:
		if s.st.Index > 0 {
			s.st.Index--
			s.st.Flipped = false
		}
	case Correct:
		s.st.Correct++
		s.advance()
	case Incorrect:
		s.st.Incorrect++
		s.advance()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, string(a))
	}
	return nil
}

// advance moves to the next card or, from the last one, to the summary. Counters are
// untouched, so a plain Next leaves the card unscored.
func (s *Session) advance() {
	if s.st.Index >= s.st.Total-1 {
		s.st.Complete = true
		s.st.Flipped = false
		return
	}
	s.st.Index++
	s.st.Flipped = false
}

func (s *Session) restart() {
	s.st = State{Total: s.st.Total}
}

// Accuracy is correct answers over all cards, as a rounded percentage.
func (s *Session) Accuracy() int {
	return int(math.Round(float64(s.st.Correct) / float64(s.st.Total) * 100))
}

// Progress is the position of the current card, as a rounded percentage.
func (s *Session) Progress() int {
	return int(math.Round(float64(s.st.Index+1) / float64(s.st.Total) * 100))
}

// CanPrevious reports whether Previous would move.
func (s *Session) CanPrevious() bool { return !s.st.Complete && s.st.Index > 0 }

// IsLast reports whether the current card is the last one.
func (s *Session) IsLast() bool { return s.st.Index == s.st.Total-1 }

// CanFinish reports whether the Next/Finish button is offered: on the last card only
// after the answer was revealed.
func (s *Session) CanFinish() bool { return !s.st.Complete && (!s.IsLast() || s.st.Flipped) }
