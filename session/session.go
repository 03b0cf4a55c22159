// Package session models the drawing workflow around the match engine: a
// canvas that can be edited until it is sent for matching, and cleared to
// start over.
package session

import (
	"errors"

	"sketchmatch/bitmap"
	"sketchmatch/matcher"
)

// State is the phase a session is in
type State int

const (
	Editing State = iota
	Matched
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Matched:
		return "matched"
	default:
		return "unknown"
	}
}

// ErrNotEditing is returned by Send once the canvas has been matched
var ErrNotEditing = errors.New("canvas already sent; clear it to draw again")

// Ranker is the part of the match engine a session needs
type Ranker interface {
	Rank(query bitmap.Bitmap, k int) ([]matcher.Match, error)
}

// Session holds one canvas and the results of its last match
type Session struct {
	ranker  Ranker
	topK    int
	canvas  bitmap.Bitmap
	state   State
	matches []matcher.Match
}

// New starts a session in the editing state with an empty canvas. Send
// reports the topK best matches; topK <= 0 selects matcher.DefaultTopK
// rather than the empty result Rank gives for such k.
func New(ranker Ranker, topK int) *Session {
	if topK <= 0 {
		topK = matcher.DefaultTopK
	}
	return &Session{
		ranker: ranker,
		topK:   topK,
		canvas: bitmap.Empty(),
		state:  Editing,
	}
}

// State returns the current phase
func (s *Session) State() State { return s.state }

// Canvas returns a copy of the current drawing
func (s *Session) Canvas() bitmap.Bitmap { return s.canvas.Clone() }

// Matches returns the results of the last Send, nil while editing
func (s *Session) Matches() []matcher.Match { return s.matches }

// Paint turns a cell on. Ignored outside the grid or after Send.
func (s *Session) Paint(x, y int) bool { return s.draw(x, y, true) }

// Erase turns a cell off. Ignored outside the grid or after Send.
func (s *Session) Erase(x, y int) bool { return s.draw(x, y, false) }

func (s *Session) draw(x, y int, on bool) bool {
	if s.state != Editing {
		return false
	}
	return s.canvas.Set(x, y, on)
}

// Send freezes the canvas and ranks it against the references
func (s *Session) Send() ([]matcher.Match, error) {
	if s.state != Editing {
		return nil, ErrNotEditing
	}

	matches, err := s.ranker.Rank(s.canvas.Clone(), s.topK)
	if err != nil {
		return nil, err
	}
	s.matches = matches
	s.state = Matched
	return matches, nil
}

// Clear discards the drawing and any results and returns to editing
func (s *Session) Clear() {
	s.canvas = bitmap.Empty()
	s.matches = nil
	s.state = Editing
}
