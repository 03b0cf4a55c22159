// Package matcher ranks reference bitmaps against a query drawing by the
// percentage of grid cells on which they agree.
package matcher

import (
	"errors"
	"fmt"
	"image"
	"sort"

	"sketchmatch/bitmap"
)

// DefaultTopK is the number of matches reported for a drawing
const DefaultTopK = 2

// ErrShapeMismatch is matched by every *ShapeMismatchError via errors.Is
var ErrShapeMismatch = errors.New("bitmap shape mismatch")

// ShapeMismatchError reports a bitmap that is not GridSize x GridSize.
// ID is empty when the offending bitmap is the query.
type ShapeMismatchError struct {
	ID     string
	Width  int
	Height int
}

func (e *ShapeMismatchError) Error() string {
	who := "query"
	if e.ID != "" {
		who = fmt.Sprintf("reference %q", e.ID)
	}
	return fmt.Sprintf("%s is %dx%d, want %dx%d", who, e.Width, e.Height, bitmap.GridSize, bitmap.GridSize)
}

func (e *ShapeMismatchError) Is(target error) bool { return target == ErrShapeMismatch }

// ReferenceEntry is one known drawing in the reference set
type ReferenceEntry struct {
	ID      string
	Bitmap  bitmap.Bitmap
	Preview image.Image
}

// Render returns the display image for the entry: the preview supplied at
// insertion, or the bitmap upscaled PreviewScale times.
func (e *ReferenceEntry) Render() image.Image {
	if e.Preview != nil {
		return e.Preview
	}
	return e.Bitmap.Render(bitmap.PreviewScale)
}

// Match is one ranked result
type Match struct {
	ID      string
	Score   float64
	Preview image.Image
}

// Label formats the match for display at the given 1-based rank
func (m Match) Label(rank int) string {
	return fmt.Sprintf("%d. %s - %.2f%%", rank, m.ID, m.Score)
}

// Engine holds the reference set. It is filled once during loading and only
// read afterwards; it is not safe for concurrent mutation.
type Engine struct {
	entries []*ReferenceEntry
	index   map[string]int
}

// NewEngine creates an empty engine
func NewEngine() *Engine {
	return &Engine{index: make(map[string]int)}
}

// AddReference inserts an entry, or replaces the bitmap and preview of an
// existing entry with the same id. A replaced entry keeps its original
// position in insertion order. preview may be nil.
func (e *Engine) AddReference(id string, b bitmap.Bitmap, preview image.Image) {
	entry := &ReferenceEntry{ID: id, Bitmap: b.Clone(), Preview: preview}
	if i, ok := e.index[id]; ok {
		e.entries[i] = entry
		return
	}
	e.index[id] = len(e.entries)
	e.entries = append(e.entries, entry)
}

// Len returns the number of distinct references
func (e *Engine) Len() int { return len(e.entries) }

// Get returns the entry stored under id
func (e *Engine) Get(id string) (*ReferenceEntry, bool) {
	i, ok := e.index[id]
	if !ok {
		return nil, false
	}
	return e.entries[i], true
}

// IDs returns the reference ids in insertion order
func (e *Engine) IDs() []string {
	ids := make([]string, len(e.entries))
	for i, entry := range e.entries {
		ids[i] = entry.ID
	}
	return ids
}

// Score returns the percentage of cells on which a and b agree. Both must
// be GridSize x GridSize.
func Score(a, b bitmap.Bitmap) (float64, error) {
	if !a.IsGrid() {
		return 0, &ShapeMismatchError{Width: a.Width(), Height: a.Height()}
	}
	if !b.IsGrid() {
		return 0, &ShapeMismatchError{Width: b.Width(), Height: b.Height()}
	}
	return percent(a.Agreement(b), a.Len()), nil
}

func percent(agree, total int) float64 {
	return float64(agree) / float64(total) * 100
}

// Rank scores every reference against query and returns the k best,
// highest score first. Equal scores keep insertion order. Fewer than k
// references yields all of them; k <= 0 yields none.
func (e *Engine) Rank(query bitmap.Bitmap, k int) ([]Match, error) {
	if !query.IsGrid() {
		return nil, &ShapeMismatchError{Width: query.Width(), Height: query.Height()}
	}

	type scored struct {
		entry *ReferenceEntry
		score float64
	}
	ranked := make([]scored, 0, len(e.entries))
	for _, entry := range e.entries {
		if !entry.Bitmap.SameShape(query) {
			return nil, &ShapeMismatchError{ID: entry.ID, Width: entry.Bitmap.Width(), Height: entry.Bitmap.Height()}
		}
		ranked = append(ranked, scored{entry: entry, score: percent(query.Agreement(entry.Bitmap), query.Len())})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if k < 0 {
		k = 0
	}
	if k < len(ranked) {
		ranked = ranked[:k]
	}

	matches := make([]Match, len(ranked))
	for i, r := range ranked {
		matches[i] = Match{ID: r.entry.ID, Score: r.score, Preview: r.entry.Render()}
	}
	return matches, nil
}
