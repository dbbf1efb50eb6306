package engine

import (
	"errors"
	"strings"

	"github.com/leapstack-labs/regcalc/internal/register"
)

// ErrCycleDetected is matched by *CycleError.
var ErrCycleDetected = errors.New("cycle detected")

// CycleError reports that resolving a register required its own value.
type CycleError struct {
	// Registers being resolved when the cycle was found, sorted by name.
	Registers []register.Name
}

func (e *CycleError) Error() string {
	names := make([]string, len(e.Registers))
	for i, n := range e.Registers {
		names[i] = n.String()
	}
	return "cycle detected with the following registers: " + strings.Join(names, ", ")
}

// Is reports whether target is ErrCycleDetected.
func (e *CycleError) Is(target error) bool {
	return target == ErrCycleDetected
}
