// Package session holds per-user quiz progress and serializes access to it.
package session

import (
	"github.com/example/quizbot/internal/screen"
	"github.com/example/quizbot/pkg/models"
)

// Phase is the controller state of a session
type Phase int

const (
	// Idle means no test is chosen
	Idle Phase = iota
	// InProgress means a test is being answered
	InProgress
	// Completed means every question of the active test was answered
	Completed
)

func (p Phase) String() string {
	switch p {
	case InProgress:
		return "in_progress"
	case Completed:
		return "completed"
	default:
		return "idle"
	}
}

// State is one user's progress. The zero value is a valid idle session.
type State struct {
	// TestSlug is empty until a test is chosen
	TestSlug string
	// Index is the next question to answer; it equals the question count once completed
	Index int
	// Trail holds the answers given so far, keyed by question index
	Trail models.Trail
	// Finished marks the terminal sub-state reached when Index hits the question count
	Finished bool
	// Screen is what is currently displayed for this session
	Screen screen.Displayed
	// Lagging is set while Screen shows an earlier step because the last
	// render failed
	Lagging bool
}

// Phase reports the controller state
func (s State) Phase() Phase {
	switch {
	case s.TestSlug == "":
		return Idle
	case s.Finished:
		return Completed
	default:
		return InProgress
	}
}

// Start resets the session onto the first question of slug
func (s *State) Start(slug string) {
	s.TestSlug = slug
	s.Index = 0
	s.Trail = make(models.Trail)
	s.Finished = false
}

// Record stores an answer for the current question and advances.
// It reports whether the answer completed the test.
func (s *State) Record(a models.Answer, questionCount int) bool {
	if s.Trail == nil {
		s.Trail = make(models.Trail)
	}
	s.Trail[s.Index] = a
	s.Index++
	if s.Index >= questionCount {
		s.Index = questionCount
		s.Finished = true
	}
	return s.Finished
}

// Clear returns the session to Idle. The displayed screen is kept.
func (s *State) Clear() {
	s.TestSlug = ""
	s.Index = 0
	s.Trail = nil
	s.Finished = false
}

// Clone returns a deep copy
func (s State) Clone() State {
	s.Trail = s.Trail.Clone()
	return s
}
