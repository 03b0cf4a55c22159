package session

import (
	"errors"
	"testing"

	"sketchmatch/bitmap"
	"sketchmatch/matcher"
)

type countingRanker struct {
	calls int
	last  bitmap.Bitmap
	err   error
}

func (r *countingRanker) Rank(query bitmap.Bitmap, k int) ([]matcher.Match, error) {
	r.calls++
	r.last = query
	if r.err != nil {
		return nil, r.err
	}
	return []matcher.Match{{ID: "stub", Score: float64(query.Count())}}, nil
}

func TestNewSessionStartsEditing(t *testing.T) {
	s := New(&countingRanker{}, 0)
	if s.State() != Editing {
		t.Errorf("State() = %s, want editing", s.State())
	}
	if s.topK != matcher.DefaultTopK {
		t.Errorf("topK = %d, want %d", s.topK, matcher.DefaultTopK)
	}
	if s.Canvas().Count() != 0 {
		t.Error("new canvas should be blank")
	}
}

func TestPaintAndErase(t *testing.T) {
	s := New(&countingRanker{}, 2)
	if !s.Paint(1, 1) {
		t.Fatal("Paint(1, 1) = false, want true")
	}
	s.Paint(2, 1)
	s.Erase(1, 1)
	c := s.Canvas()
	if c.At(1, 1) != 0 || c.At(2, 1) != 1 {
		t.Errorf("canvas = %v, want only (2,1) on", c.String())
	}
	if s.Paint(bitmap.GridSize, 0) {
		t.Error("Paint outside the grid should be ignored")
	}
}

func TestSendTransitionsToMatched(t *testing.T) {
	r := &countingRanker{}
	s := New(r, 2)
	s.Paint(0, 0)
	s.Paint(5, 5)

	matches, err := s.Send()
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if s.State() != Matched {
		t.Errorf("State() = %s, want matched", s.State())
	}
	if len(matches) != 1 || matches[0].Score != 2 {
		t.Errorf("Send() = %+v, want the ranker's result", matches)
	}
	if r.last.Count() != 2 {
		t.Errorf("ranked canvas has %d cells on, want 2", r.last.Count())
	}

	if s.Paint(9, 9) || s.Erase(0, 0) {
		t.Error("drawing after Send should be ignored")
	}
	if s.Canvas().Count() != 2 {
		t.Error("canvas changed while matched")
	}

	if _, err := s.Send(); !errors.Is(err, ErrNotEditing) {
		t.Errorf("second Send() error = %v, want ErrNotEditing", err)
	}
	if r.calls != 1 {
		t.Errorf("ranker called %d times, want 1", r.calls)
	}
}

func TestClearResets(t *testing.T) {
	s := New(&countingRanker{}, 2)
	s.Paint(3, 3)
	if _, err := s.Send(); err != nil {
		t.Fatal(err)
	}

	s.Clear()
	if s.State() != Editing {
		t.Errorf("State() = %s after Clear, want editing", s.State())
	}
	if s.Canvas().Count() != 0 {
		t.Error("Clear should blank the canvas")
	}
	if s.Matches() != nil {
		t.Error("Clear should drop previous matches")
	}
	if !s.Paint(3, 3) {
		t.Error("Paint should work again after Clear")
	}
}

func TestSendErrorStaysEditing(t *testing.T) {
	boom := errors.New("boom")
	s := New(&countingRanker{err: boom}, 2)
	if _, err := s.Send(); !errors.Is(err, boom) {
		t.Fatalf("Send() error = %v, want %v", err, boom)
	}
	if s.State() != Editing {
		t.Errorf("State() = %s after failed Send, want editing", s.State())
	}
}

func TestSessionWithEngine(t *testing.T) {
	e := matcher.NewEngine()
	blank := bitmap.Empty()
	dot := bitmap.Empty()
	dot.Set(0, 0, true)
	e.AddReference("blank", blank, nil)
	e.AddReference("dot", dot, nil)

	s := New(e, 2)
	s.Paint(0, 0)
	matches, err := s.Send()
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(matches) != 2 || matches[0].ID != "dot" || matches[0].Score != 100 {
		t.Errorf("Send() = %+v, want dot first at 100%%", matches)
	}
}

func TestNewDefaultsTopK(t *testing.T) {
	e := matcher.NewEngine()
	for _, id := range []string{"a", "b", "c"} {
		e.AddReference(id, bitmap.Empty(), nil)
	}

	for _, k := range []int{0, -1} {
		matches, err := New(e, k).Send()
		if err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		if len(matches) != matcher.DefaultTopK {
			t.Errorf("New(e, %d).Send() returned %d matches, want %d", k, len(matches), matcher.DefaultTopK)
		}
	}
}
