package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// RunScript replays a drawing session from r, one command per line:
//
//	paint X Y   turn a cell on
//	erase X Y   turn a cell off
//	send        rank the canvas and print the matches
//	clear       start over
//	show        print the canvas
//
// Blank lines and lines starting with '#' are ignored. Sending twice
// without a clear is reported and the script continues.
func RunScript(s *Session, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch cmd := strings.ToLower(fields[0]); cmd {
		case "paint", "erase":
			if len(fields) != 3 {
				return fmt.Errorf("line %d: %s needs X and Y", line, cmd)
			}
			x, errX := strconv.Atoi(fields[1])
			y, errY := strconv.Atoi(fields[2])
			if errX != nil || errY != nil {
				return fmt.Errorf("line %d: invalid coordinates %q %q", line, fields[1], fields[2])
			}
			if cmd == "paint" {
				s.Paint(x, y)
			} else {
				s.Erase(x, y)
			}

		case "send":
			matches, err := s.Send()
			if errors.Is(err, ErrNotEditing) {
				fmt.Fprintf(w, "%v\n", err)
				continue
			}
			if err != nil {
				return fmt.Errorf("line %d: %w", line, err)
			}
			if len(matches) == 0 {
				fmt.Fprintln(w, "No matches found.")
			}
			for i, m := range matches {
				fmt.Fprintln(w, m.Label(i+1))
			}

		case "clear":
			s.Clear()

		case "show":
			fmt.Fprint(w, s.Canvas().String())

		default:
			return fmt.Errorf("line %d: unknown command %q", line, fields[0])
		}
	}
	return scanner.Err()
}
