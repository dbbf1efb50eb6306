// Package register defines the register calculator's command model: validated
// register names, operands and deferred arithmetic operations, together with
// the parser that builds them from textual tokens.
package register

import (
	"fmt"
	"strconv"
)

// Name identifies a register. A Name never parses as an integer, so it can
// always be told apart from a literal operand.
type Name string

// ParseName validates token as a register name.
func ParseName(token string) (Name, error) {
	if token == "" {
		return "", &ParseError{Kind: InvalidRegisterName, Token: token}
	}
	if _, err := strconv.ParseInt(token, 10, 32); err == nil {
		return "", &ParseError{Kind: InvalidRegisterName, Token: token}
	}
	return Name(token), nil
}

// String returns the register name.
func (n Name) String() string {
	return string(n)
}

// Operand is the second operand of an operation: a literal or a register.
type Operand struct {
	ref    Name
	number int32
	isRef  bool
}

// Number returns a literal operand.
func Number(v int32) Operand {
	return Operand{number: v}
}

// Ref returns an operand that refers to the eventual value of register n.
func Ref(n Name) Operand {
	return Operand{ref: n, isRef: true}
}

// Register reports the referenced register, if the operand is a reference.
func (o Operand) Register() (Name, bool) {
	return o.ref, o.isRef
}

// Value returns the literal value. It is zero for register references.
func (o Operand) Value() int32 {
	return o.number
}

func (o Operand) String() string {
	if o.isRef {
		return string(o.ref)
	}
	return strconv.FormatInt(int64(o.number), 10)
}

// Verb is the arithmetic applied by an operation.
type Verb int

// Supported verbs.
const (
	Add Verb = iota
	Subtract
	Multiply
)

var verbNames = map[Verb]string{
	Add:      "add",
	Subtract: "subtract",
	Multiply: "multiply",
}

// Verbs lists the textual verbs in their canonical order.
func Verbs() []string {
	return []string{verbNames[Add], verbNames[Subtract], verbNames[Multiply]}
}

// ParseVerb maps the textual verb to a Verb.
func ParseVerb(s string) (Verb, error) {
	switch s {
	case "add":
		return Add, nil
	case "subtract":
		return Subtract, nil
	case "multiply":
		return Multiply, nil
	}
	return 0, &ParseError{Kind: UnknownVerb, Token: s}
}

func (v Verb) String() string {
	if s, ok := verbNames[v]; ok {
		return s
	}
	return fmt.Sprintf("Verb(%d)", int(v))
}

// Apply computes v applied to the current value and the operand value.
// Results wrap around on int32 overflow.
func (v Verb) Apply(current, operand int32) int32 {
	switch v {
	case Subtract:
		return current - operand
	case Multiply:
		return current * operand
	default:
		return current + operand
	}
}

// Operation is a deferred arithmetic operation on Target. The first operand
// is always Target's own value.
type Operation struct {
	Target  Name
	Verb    Verb
	Operand Operand
}

// ParseOperation builds an Operation from the three tokens of a command line.
func ParseOperation(target, verb, operand string) (Operation, error) {
	name, err := ParseName(target)
	if err != nil {
		return Operation{}, err
	}
	v, err := ParseVerb(verb)
	if err != nil {
		return Operation{}, err
	}
	op, err := ParseOperand(operand)
	if err != nil {
		return Operation{}, err
	}
	return Operation{Target: name, Verb: v, Operand: op}, nil
}

// ParseOperand parses a literal int32, falling back to a register name.
func ParseOperand(token string) (Operand, error) {
	if n, err := strconv.ParseInt(token, 10, 32); err == nil {
		return Number(int32(n)), nil
	}
	name, err := ParseName(token)
	if err != nil {
		return Operand{}, err
	}
	return Ref(name), nil
}

func (op Operation) String() string {
	return fmt.Sprintf("%s %s %s", op.Target, op.Verb, op.Operand)
}
