package uapi

import (
	"fmt"
	"strings"
)

const (
	KeyErrno = "errno"

	// ResultOK is the only acceptable content of a set response
	ResultOK = "errno=0"
)

// RejectedError is returned when the implementation did not acknowledge
// a request with errno=0
type RejectedError struct {
	Response string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("uapi returns unexpected result: %q", e.Response)
}

// CheckSetResponse reads exactly one line and checks it contains errno=0
func CheckSetResponse(s *Scanner) error {
	line, err := s.Line()
	if err != nil {
		return fmt.Errorf("failed to read uapi response: %w", err)
	}

	if !strings.Contains(line, ResultOK) {
		return &RejectedError{Response: line}
	}

	return nil
}
