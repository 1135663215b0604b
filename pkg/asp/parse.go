package asp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// CommentMarker starts a comment running to the end of the line.
const CommentMarker = "%"

// Terminator ends every statement.
const Terminator = "."

// IncompleteStatementError reports input that ended in the middle of
// a statement.
type IncompleteStatementError struct {
	File      string
	Statement string
}

func (e *IncompleteStatementError) Error() string {
	return fmt.Sprintf("incomplete statement in %s: %s", e.File, e.Statement)
}

// Line is a scrubbed line along with its 1-based position in the
// source.
type Line struct {
	Number int
	Text   string
}

// ScrubFile reads the file at path and returns its scrubbed lines.
func ScrubFile(path string) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening %s", path)
	}
	defer f.Close()

	lines, err := Scrub(f)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %s", path)
	}
	return lines, nil
}

// Scrub drops comments, surrounding whitespace and blank lines from r.
func Scrub(r io.Reader) ([]Line, error) {
	reader := bufio.NewReader(r)

	var lines []Line
	number := 0
	for {
		raw, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		if raw != "" {
			number++
			if text := scrubLine(raw); text != "" {
				lines = append(lines, Line{Number: number, Text: text})
			}
		}
		if err != nil {
			break
		}
	}
	return lines, nil
}

func scrubLine(raw string) string {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, CommentMarker) {
		return ""
	}
	line, _, _ = strings.Cut(line, CommentMarker)
	return strings.TrimSpace(line)
}

// ParseFiles parses every file in order into a single Program.
func ParseFiles(paths ...string) (*Program, error) {
	program := &Program{}
	for _, path := range paths {
		lines, err := ScrubFile(path)
		if err != nil {
			return nil, err
		}
		p, err := ParseLines(path, lines)
		if err != nil {
			return nil, err
		}
		program.Append(p)
	}
	return program, nil
}

// Parse scrubs and parses the program text read from r. name is used
// in statement positions and errors.
func Parse(name string, r io.Reader) (*Program, error) {
	lines, err := Scrub(r)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %s", name)
	}
	return ParseLines(name, lines)
}

// ParseLines joins scrubbed lines into statements. Lines are
// concatenated without a separator until the accumulated text ends in
// a period.
func ParseLines(name string, lines []Line) (*Program, error) {
	program := &Program{}
	for i := 0; i < len(lines); i++ {
		start := lines[i].Number
		var statement strings.Builder
		statement.WriteString(lines[i].Text)
		for !strings.HasSuffix(statement.String(), Terminator) {
			if i == len(lines)-1 {
				return nil, &IncompleteStatementError{File: name, Statement: statement.String()}
			}
			i++
			statement.WriteString(lines[i].Text)
		}
		program.Add(NewStatement(statement.String(), name, start))
	}
	return program, nil
}
