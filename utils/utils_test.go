package utils

import (
	"path/filepath"
	"testing"
)

func TestParseArgs(t *testing.T) {
	args := ParseArgs([]string{"--debug", "match", "--image=a.png", "--top", "3", "--preview-dir", "out", "--force"})

	want := map[string]string{
		"command":     "match",
		"debug":       "true",
		"image":       "a.png",
		"top":         "3",
		"preview-dir": "out",
		"force":       "true",
	}
	if len(args) != len(want) {
		t.Errorf("ParseArgs() = %v, want %v", args, want)
	}
	for k, v := range want {
		if args[k] != v {
			t.Errorf("args[%q] = %q, want %q", k, args[k], v)
		}
	}
}

func TestParseArgsFlagBeforeCommand(t *testing.T) {
	args := ParseArgs([]string{"--force", "scan", "--folder=x"})
	if args["force"] != "true" || args["command"] != "scan" {
		t.Errorf("ParseArgs() = %v, want force=true and command=scan", args)
	}
}

func TestParseArgsNoCommand(t *testing.T) {
	args := ParseArgs([]string{"--folder=x"})
	if _, ok := args["command"]; ok {
		t.Errorf("ParseArgs() command = %q, want none", args["command"])
	}
}

func TestParseTopK(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{"5", 5, false},
		{"0", 2, true},
		{"-3", 2, true},
		{"two", 2, true},
	}
	for _, c := range cases {
		got, err := ParseTopK(c.in)
		if got != c.want || (err != nil) != c.wantErr {
			t.Errorf("ParseTopK(%q) = %d, %v, want %d, error %v", c.in, got, err, c.want, c.wantErr)
		}
	}
}

func TestGetDefaultDatabasePath(t *testing.T) {
	custom := filepath.Join(t.TempDir(), "custom.db")
	t.Setenv(DatabaseEnv, custom)
	if got := GetDefaultDatabasePath(); got != custom {
		t.Errorf("GetDefaultDatabasePath() = %s, want %s", got, custom)
	}

	t.Setenv(DatabaseEnv, "")
	if got := filepath.Base(GetDefaultDatabasePath()); got != "sketches.db" {
		t.Errorf("GetDefaultDatabasePath() base = %s, want sketches.db", got)
	}
}
