package session

import (
	"bytes"
	"strings"
	"testing"

	"sketchmatch/bitmap"
	"sketchmatch/matcher"
)

func TestRunScript(t *testing.T) {
	e := matcher.NewEngine()
	dot := bitmap.Empty()
	dot.Set(0, 0, true)
	e.AddReference("blank.png", bitmap.Empty(), nil)
	e.AddReference("dot.png", dot, nil)

	script := `
# one dot in the corner
paint 0 0
paint 5 5
erase 5 5
paint 99 99
send
send
paint 1 1
clear
send
`
	var out bytes.Buffer
	if err := RunScript(New(e, 2), strings.NewReader(script), &out); err != nil {
		t.Fatalf("RunScript() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	want := []string{
		"1. dot.png - 100.00%",
		"2. blank.png - 99.90%",
		ErrNotEditing.Error(),
		"1. blank.png - 100.00%",
		"2. dot.png - 99.90%",
	}
	if len(lines) != len(want) {
		t.Fatalf("output = %q, want %d lines", out.String(), len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRunScriptShow(t *testing.T) {
	var out bytes.Buffer
	if err := RunScript(New(matcher.NewEngine(), 2), strings.NewReader("paint 2 0\nshow\n"), &out); err != nil {
		t.Fatal(err)
	}
	first := strings.SplitN(out.String(), "\n", 2)[0]
	if first != "..#"+strings.Repeat(".", bitmap.GridSize-3) {
		t.Errorf("first canvas row = %q", first)
	}
}

func TestRunScriptErrors(t *testing.T) {
	cases := []string{"paint 1\n", "erase a b\n", "jump\n"}
	for _, script := range cases {
		var out bytes.Buffer
		if err := RunScript(New(matcher.NewEngine(), 2), strings.NewReader(script), &out); err == nil {
			t.Errorf("RunScript(%q) error = nil, want error", script)
		}
	}
}
