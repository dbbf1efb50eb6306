package register

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by ParseError.
var (
	ErrInvalidRegisterName = errors.New("invalid register name")
	ErrUnknownVerb         = errors.New("unknown verb")
)

// ErrorKind classifies a ParseError.
type ErrorKind int

// Parse error kinds.
const (
	InvalidRegisterName ErrorKind = iota
	UnknownVerb
)

// ParseError reports a token that could not be turned into a command.
type ParseError struct {
	Kind  ErrorKind
	Token string
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case UnknownVerb:
		return fmt.Sprintf("unknown verb %q (expected add, subtract or multiply)", e.Token)
	default:
		if e.Token == "" {
			return "invalid register name: empty"
		}
		return fmt.Sprintf("invalid register name %q: register names must not be numeric", e.Token)
	}
}

// Is lets errors.Is match the sentinel for the error's kind.
func (e *ParseError) Is(target error) bool {
	switch e.Kind {
	case UnknownVerb:
		return target == ErrUnknownVerb
	default:
		return target == ErrInvalidRegisterName
	}
}
