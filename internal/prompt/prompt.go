package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Terminal reads operator answers line by line. One buffered reader is kept
// for the whole run so piped answers are not swallowed between prompts.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

func New(r io.Reader, w io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(r), out: w}
}

// Line prints msg and returns the trimmed answer. EOF with a partial line is
// returned as that line; EOF with nothing reads as an empty answer.
func (t *Terminal) Line(msg string) (string, error) {
	if msg != "" {
		_, _ = fmt.Fprint(t.out, msg)
	}
	line, err := t.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a [y/N] question; only "y" and "yes" count as consent.
func (t *Terminal) Confirm(msg string) (bool, error) {
	ans, err := t.Line(msg + " [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(ans) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
