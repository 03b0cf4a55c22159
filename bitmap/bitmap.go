// Package bitmap provides the binary pixel grid that drawings and reference
// images are compared on.
package bitmap

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	xdraw "golang.org/x/image/draw"
)

const (
	// GridSize is the edge length every normalized bitmap has
	GridSize = 32

	// PreviewScale is the integer upscale factor used for on-screen previews
	PreviewScale = 4
)

// Bitmap is a width x height grid of cells that are either on (1) or off (0).
// The zero value has no cells; use New or Empty.
type Bitmap struct {
	width  int
	height int
	cells  []uint8
}

// New creates an all-off bitmap of the given size
func New(width, height int) Bitmap {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return Bitmap{
		width:  width,
		height: height,
		cells:  make([]uint8, width*height),
	}
}

// Empty creates an all-off GridSize x GridSize bitmap
func Empty() Bitmap {
	return New(GridSize, GridSize)
}

// Width returns the number of columns
func (b Bitmap) Width() int { return b.width }

// Height returns the number of rows
func (b Bitmap) Height() int { return b.height }

// Len returns the total number of cells
func (b Bitmap) Len() int { return len(b.cells) }

// IsGrid reports whether the bitmap has the fixed GridSize x GridSize shape
func (b Bitmap) IsGrid() bool {
	return b.width == GridSize && b.height == GridSize
}

// SameShape reports whether both bitmaps have identical dimensions
func (b Bitmap) SameShape(other Bitmap) bool {
	return b.width == other.width && b.height == other.height
}

// At returns the cell value at (x, y), or 0 outside the grid
func (b Bitmap) At(x, y int) uint8 {
	if !b.inBounds(x, y) {
		return 0
	}
	return b.cells[y*b.width+x]
}

// Set turns the cell at (x, y) on or off. It returns false when (x, y) lies
// outside the grid.
func (b *Bitmap) Set(x, y int, on bool) bool {
	if !b.inBounds(x, y) {
		return false
	}
	var v uint8
	if on {
		v = 1
	}
	b.cells[y*b.width+x] = v
	return true
}

func (b Bitmap) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.width && y < b.height
}

// Clone returns an independent copy
func (b Bitmap) Clone() Bitmap {
	cells := make([]uint8, len(b.cells))
	copy(cells, b.cells)
	return Bitmap{width: b.width, height: b.height, cells: cells}
}

// Equal reports whether both bitmaps have the same shape and cells
func (b Bitmap) Equal(other Bitmap) bool {
	if !b.SameShape(other) {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Count returns the number of cells that are on
func (b Bitmap) Count() int {
	n := 0
	for _, c := range b.cells {
		n += int(c)
	}
	return n
}

// Agreement counts the cells where both bitmaps hold the same value.
// Callers must check SameShape first; mismatched shapes return -1.
func (b Bitmap) Agreement(other Bitmap) int {
	if !b.SameShape(other) {
		return -1
	}
	n := 0
	for i := range b.cells {
		if b.cells[i] == other.cells[i] {
			n++
		}
	}
	return n
}

// Render draws the bitmap as a grayscale image (on = white, off = black)
// upscaled by an integer factor with nearest-neighbour sampling.
func (b Bitmap) Render(scale int) *image.Gray {
	if scale < 1 {
		scale = 1
	}

	base := image.NewGray(image.Rect(0, 0, b.width, b.height))
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if b.cells[y*b.width+x] == 1 {
				base.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	if scale == 1 {
		return base
	}

	out := image.NewGray(image.Rect(0, 0, b.width*scale, b.height*scale))
	xdraw.NearestNeighbor.Scale(out, out.Bounds(), base, base.Bounds(), xdraw.Src, nil)
	return out
}

// String renders the bitmap as text, one row per line, '#' for on and '.' for off
func (b Bitmap) String() string {
	var sb strings.Builder
	sb.Grow((b.width + 1) * b.height)
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			if b.cells[y*b.width+x] == 1 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Parse reads a text grid as written by String. '#', '1', 'x', 'X' and '*'
// mark on cells, '.', '0', '-' and '_' mark off cells. Blank lines are
// skipped and every row must have the same length.
func Parse(r io.Reader) (Bitmap, error) {
	var rows [][]uint8
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r \t")
		if text == "" {
			continue
		}

		row := make([]uint8, 0, len(text))
		for col, ch := range text {
			switch ch {
			case '#', '1', 'x', 'X', '*':
				row = append(row, 1)
			case '.', '0', '-', '_':
				row = append(row, 0)
			default:
				return Bitmap{}, fmt.Errorf("line %d, column %d: unexpected character %q", line, col+1, ch)
			}
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return Bitmap{}, fmt.Errorf("line %d: row has %d cells, expected %d", line, len(row), len(rows[0]))
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return Bitmap{}, fmt.Errorf("reading grid: %w", err)
	}
	if len(rows) == 0 {
		return Bitmap{}, fmt.Errorf("grid is empty")
	}

	b := New(len(rows[0]), len(rows))
	for y, row := range rows {
		copy(b.cells[y*b.width:], row)
	}
	return b, nil
}

// MarshalBinary packs the bitmap into a 4-byte big-endian width/height header
// followed by the cells, eight per byte, most significant bit first.
func (b Bitmap) MarshalBinary() ([]byte, error) {
	if b.width > 0xFFFF || b.height > 0xFFFF {
		return nil, fmt.Errorf("bitmap %dx%d too large to encode", b.width, b.height)
	}
	out := make([]byte, 4+(len(b.cells)+7)/8)
	binary.BigEndian.PutUint16(out[0:2], uint16(b.width))
	binary.BigEndian.PutUint16(out[2:4], uint16(b.height))
	for i, c := range b.cells {
		if c == 1 {
			out[4+i/8] |= 0x80 >> (i % 8)
		}
	}
	return out, nil
}

// UnmarshalBinary decodes the format written by MarshalBinary
func (b *Bitmap) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("bitmap data too short: %d bytes", len(data))
	}
	width := int(binary.BigEndian.Uint16(data[0:2]))
	height := int(binary.BigEndian.Uint16(data[2:4]))
	n := width * height
	if want := 4 + (n+7)/8; len(data) != want {
		return fmt.Errorf("bitmap data for %dx%d has %d bytes, expected %d", width, height, len(data), want)
	}

	decoded := New(width, height)
	for i := 0; i < n; i++ {
		if data[4+i/8]&(0x80>>(i%8)) != 0 {
			decoded.cells[i] = 1
		}
	}
	*b = decoded
	return nil
}
