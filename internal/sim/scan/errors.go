package scan

import "fmt"

const (
	CodeArrayLengthMismatch = "E_ARRAY_LENGTH_MISMATCH"
	CodeInvalidBounds       = "E_INVALID_BOUNDS"
)

var knownCodes = map[string]struct{}{
	CodeArrayLengthMismatch: {},
	CodeInvalidBounds:       {},
}

func IsKnownCode(code string) bool {
	_, ok := knownCodes[code]
	return ok
}

// ValidationError is returned before any scanning starts. Two errors are equal
// under errors.Is when their codes match.
type ValidationError struct {
	Code string
	Msg  string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Code == e.Code
}

var (
	ErrArrayLengthMismatch = &ValidationError{Code: CodeArrayLengthMismatch, Msg: "input arrays must have the same length"}
	ErrInvalidBounds       = &ValidationError{Code: CodeInvalidBounds, Msg: "invalid bounds (min > max)"}
)

func lengthMismatch(c Constraints) error {
	return &ValidationError{
		Code: CodeArrayLengthMismatch,
		Msg: fmt.Sprintf("input arrays must have the same length (dx=%d dy=%d dz=%d packed=%d mask=%d drip=%d)",
			len(c.DX), len(c.DY), len(c.DZ), len(c.Packed), len(c.Mask), len(c.Drip)),
	}
}

func invalidBounds(axis string, lo, hi int32) error {
	return &ValidationError{
		Code: CodeInvalidBounds,
		Msg:  fmt.Sprintf("invalid bounds (min > max): %s %d > %d", axis, lo, hi),
	}
}
