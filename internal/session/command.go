package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/leapstack-labs/regcalc/internal/register"
)

// ErrMalformedLine is matched by errors for lines that are not a command.
var ErrMalformedLine = errors.New("malformed line")

// Kind is the type of a parsed command line.
type Kind int

// Command kinds.
const (
	KindEmpty Kind = iota
	KindQuit
	KindPrint
	KindApply
)

// Command is a parsed command line.
type Command struct {
	Kind Kind
	// Name is the register to print for KindPrint.
	Name register.Name
	// Op is the operation to queue for KindApply.
	Op register.Operation
}

// NewLineScanner returns a scanner over the lines of r. Lines may be of any
// length; an overlong line is handed to the parser like any other.
func NewLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), math.MaxInt)
	return scanner
}

// ParseLine parses one line of the protocol. Surrounding whitespace is
// ignored and, when lowercase is set, the line is folded to lower case first.
func ParseLine(line string, lowercase bool) (Command, error) {
	line = strings.TrimSpace(line)
	if lowercase {
		line = strings.ToLower(line)
	}
	if line == "" {
		return Command{Kind: KindEmpty}, nil
	}
	if strings.EqualFold(line, "quit") {
		return Command{Kind: KindQuit}, nil
	}

	parts := strings.Fields(line)
	switch len(parts) {
	case 2:
		if parts[0] != "print" {
			return Command{}, fmt.Errorf("%w: unknown command %q: two-word lines must start with print", ErrMalformedLine, parts[0])
		}
		name, err := register.ParseName(parts[1])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindPrint, Name: name}, nil
	case 3:
		op, err := register.ParseOperation(parts[0], parts[1], parts[2])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: KindApply, Op: op}, nil
	default:
		return Command{}, fmt.Errorf("%w: unexpected input %q: expected \"<register> <verb> <value>\", \"print <register>\" or \"quit\"", ErrMalformedLine, line)
	}
}
