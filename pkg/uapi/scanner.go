package uapi

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEndOfMessage is returned by Scanner.Next when the blank line ending
// a message is reached
var ErrEndOfMessage = errors.New("end of uapi message")

// Pair is a single key=value line
type Pair struct {
	Key   string
	Value string
}

// Scanner reads uapi response lines
type Scanner struct {
	r *bufio.Reader
}

func NewScanner(r io.Reader) *Scanner {
	if br, ok := r.(*bufio.Reader); ok {
		return &Scanner{r: br}
	}

	return &Scanner{r: bufio.NewReader(r)}
}

// Line reads one raw line, the trailing line break is removed
//
// a final line without line break is still returned as a line, io.EOF is
// only reported when nothing is left
func (s *Scanner) Line() (string, error) {
	line, err := s.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) != 0) {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// Next returns the next key=value pair of current message, ErrEndOfMessage
// is returned at the blank line
func (s *Scanner) Next() (Pair, error) {
	line, err := s.Line()
	if err != nil {
		return Pair{}, err
	}

	if line == "" {
		return Pair{}, ErrEndOfMessage
	}

	return ParsePair(line)
}

// Find scans current message until the key is found, the rest of the
// message is left unread
func (s *Scanner) Find(key string) (value string, found bool, err error) {
	for {
		p, err := s.Next()
		switch {
		case errors.Is(err, ErrEndOfMessage):
			return "", false, nil
		case errors.Is(err, ErrInvalidLine):
			// tolerate unknown lines, only the key we want matters
			continue
		case err != nil:
			return "", false, err
		}

		if p.Key == key {
			return p.Value, true, nil
		}
	}
}

var ErrInvalidLine = errors.New("invalid uapi line")

func ParsePair(line string) (Pair, error) {
	idx := strings.IndexByte(line, '=')
	if idx <= 0 {
		return Pair{}, fmt.Errorf("%w: %q", ErrInvalidLine, line)
	}

	return Pair{Key: line[:idx], Value: line[idx+1:]}, nil
}
