package bitmap

import (
	"strings"
	"testing"
)

func checkerboard(size int) Bitmap {
	b := New(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			b.Set(x, y, (x+y)%2 == 0)
		}
	}
	return b
}

func TestEmptyIsGrid(t *testing.T) {
	b := Empty()
	if !b.IsGrid() {
		t.Fatalf("Empty() shape = %dx%d, want %dx%d", b.Width(), b.Height(), GridSize, GridSize)
	}
	if b.Count() != 0 {
		t.Errorf("Empty().Count() = %d, want 0", b.Count())
	}
	if b.Len() != GridSize*GridSize {
		t.Errorf("Empty().Len() = %d, want %d", b.Len(), GridSize*GridSize)
	}
}

func TestSetOutOfBounds(t *testing.T) {
	b := Empty()
	cases := [][2]int{{-1, 0}, {0, -1}, {GridSize, 0}, {0, GridSize}}
	for _, c := range cases {
		if b.Set(c[0], c[1], true) {
			t.Errorf("Set(%d, %d) = true, want false", c[0], c[1])
		}
	}
	if b.Count() != 0 {
		t.Errorf("Count() = %d after out-of-bounds sets, want 0", b.Count())
	}
	if b.At(-1, -1) != 0 {
		t.Error("At outside the grid should be 0")
	}
}

func TestSetAndClear(t *testing.T) {
	b := Empty()
	b.Set(3, 4, true)
	if b.At(3, 4) != 1 {
		t.Fatalf("At(3, 4) = %d, want 1", b.At(3, 4))
	}
	b.Set(3, 4, false)
	if b.At(3, 4) != 0 {
		t.Errorf("At(3, 4) = %d after clearing, want 0", b.At(3, 4))
	}
}

func TestCloneIsIndependent(t *testing.T) {
	b := Empty()
	c := b.Clone()
	c.Set(0, 0, true)
	if b.At(0, 0) != 0 {
		t.Error("mutating a clone changed the original")
	}
	if b.Equal(c) {
		t.Error("Equal() = true for bitmaps that differ in one cell")
	}
}

func TestAgreement(t *testing.T) {
	on := New(GridSize, GridSize)
	for y := 0; y < GridSize; y++ {
		for x := 0; x < GridSize; x++ {
			on.Set(x, y, true)
		}
	}
	off := Empty()

	if got := off.Agreement(off); got != GridSize*GridSize {
		t.Errorf("self agreement = %d, want %d", got, GridSize*GridSize)
	}
	if got := off.Agreement(on); got != 0 {
		t.Errorf("agreement of inverse bitmaps = %d, want 0", got)
	}
	if got := off.Agreement(New(8, 8)); got != -1 {
		t.Errorf("agreement across shapes = %d, want -1", got)
	}
}

func TestRenderScale(t *testing.T) {
	b := checkerboard(GridSize)
	img := b.Render(PreviewScale)

	bounds := img.Bounds()
	if bounds.Dx() != GridSize*PreviewScale || bounds.Dy() != GridSize*PreviewScale {
		t.Fatalf("Render() size = %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(),
			GridSize*PreviewScale, GridSize*PreviewScale)
	}

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			want := uint8(0)
			if b.At(x/PreviewScale, y/PreviewScale) == 1 {
				want = 255
			}
			if got := img.GrayAt(x, y).Y; got != want {
				t.Fatalf("pixel (%d, %d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestRenderUnscaled(t *testing.T) {
	b := Empty()
	b.Set(1, 2, true)
	img := b.Render(0)
	if img.Bounds().Dx() != GridSize {
		t.Fatalf("Render(0) width = %d, want %d", img.Bounds().Dx(), GridSize)
	}
	if img.GrayAt(1, 2).Y != 255 || img.GrayAt(2, 1).Y != 0 {
		t.Error("Render(0) did not map cells to white/black")
	}
}

func TestStringParseRoundTrip(t *testing.T) {
	b := checkerboard(GridSize)
	parsed, err := Parse(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !parsed.Equal(b) {
		t.Error("Parse(String()) did not reproduce the bitmap")
	}
}

func TestParseAlternateCharacters(t *testing.T) {
	input := "\n1x0\r\n-*_\n\n"
	b, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if b.Width() != 3 || b.Height() != 2 {
		t.Fatalf("Parse() shape = %dx%d, want 3x2", b.Width(), b.Height())
	}
	want := "##.\n.#.\n"
	if b.String() != want {
		t.Errorf("Parse() = %q, want %q", b.String(), want)
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"empty":   "\n\n",
		"ragged":  "##\n###\n",
		"unknown": "#?#\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(input)); err == nil {
				t.Errorf("Parse(%q) error = nil, want error", input)
			}
		})
	}
}

func TestBinaryEncoding(t *testing.T) {
	b := checkerboard(GridSize)
	b.Set(31, 31, true)

	data, err := b.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary() error = %v", err)
	}
	if want := 4 + GridSize*GridSize/8; len(data) != want {
		t.Fatalf("encoded length = %d, want %d", len(data), want)
	}

	var decoded Bitmap
	if err := decoded.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary() error = %v", err)
	}
	if !decoded.Equal(b) {
		t.Error("decoded bitmap differs from the original")
	}

	odd := New(3, 3)
	odd.Set(2, 2, true)
	data, _ = odd.MarshalBinary()
	var decodedOdd Bitmap
	if err := decodedOdd.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary(3x3) error = %v", err)
	}
	if !decodedOdd.Equal(odd) {
		t.Error("3x3 bitmap did not survive encoding")
	}
}

func TestUnmarshalRejectsBadLength(t *testing.T) {
	var b Bitmap
	if err := b.UnmarshalBinary([]byte{0, 32}); err == nil {
		t.Error("expected error for truncated header")
	}
	if err := b.UnmarshalBinary([]byte{0, 32, 0, 32, 0xFF}); err == nil {
		t.Error("expected error for truncated cell data")
	}
}
