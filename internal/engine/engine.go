// Package engine provides the lazy evaluation engine of the register calculator.
// Operations are queued per register and only applied when the register's
// value is requested, resolving referenced registers recursively.
package engine

import (
	"log/slog"
	"slices"
	"sort"

	"github.com/leapstack-labs/regcalc/internal/dag"
	"github.com/leapstack-labs/regcalc/internal/register"
)

// Engine owns every register and evaluates their pending operations on demand.
// It is not safe for concurrent use; callers serialize access.
type Engine struct {
	registers  map[register.Name]*registerState
	inProgress map[register.Name]struct{}

	// journal holds the pre-resolve state of registers touched by the current
	// top-level Resolve call. It is nil between calls.
	journal map[register.Name]savedRegister

	logger *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// registerState is a named integer cell with a queue of deferred operations.
type registerState struct {
	name    register.Name
	value   int32
	pending []register.Operation
}

type savedRegister struct {
	value   int32
	pending []register.Operation
}

// Snapshot describes a register without evaluating it.
type Snapshot struct {
	Name register.Name
	// Value is the stored value. It is final only when Pending is zero.
	Value   int32
	Pending int
}

// New creates an engine with no registers.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		registers:  make(map[register.Name]*registerState),
		inProgress: make(map[register.Name]struct{}),
		logger:     logger,
	}
}

func (e *Engine) register(name register.Name) *registerState {
	reg, ok := e.registers[name]
	if !ok {
		reg = &registerState{name: name}
		e.registers[name] = reg
	}
	return reg
}

// Apply queues op on its target register. Nothing is evaluated.
func (e *Engine) Apply(op register.Operation) {
	reg := e.register(op.Target)
	reg.pending = append(reg.pending, op)
	e.logger.Debug("operation queued", "op", op.String(), "pending", len(reg.pending))
}

// Resolve applies every pending operation of name in arrival order,
// resolving referenced registers first, and returns the resulting value.
//
// If a register's value ends up depending on itself, Resolve returns a
// *CycleError and every register touched by the call is restored to the
// value and queue it had before the call.
func (e *Engine) Resolve(name register.Name) (int32, error) {
	e.journal = make(map[register.Name]savedRegister)
	defer func() { e.journal = nil }()

	value, err := e.resolve(name)
	if err != nil {
		e.rollback()
		e.logger.Info("resolve failed", "register", name.String(), "error", err)
		return 0, err
	}
	e.logger.Debug("register resolved", "register", name.String(), "value", value)
	return value, nil
}

func (e *Engine) resolve(name register.Name) (int32, error) {
	if _, busy := e.inProgress[name]; busy {
		return 0, &CycleError{Registers: e.resolving()}
	}
	e.inProgress[name] = struct{}{}
	defer delete(e.inProgress, name)

	reg := e.register(name)
	e.save(reg)

	for len(reg.pending) > 0 {
		op := reg.pending[0]
		reg.pending = reg.pending[1:]

		operand := op.Operand.Value()
		if ref, ok := op.Operand.Register(); ok {
			v, err := e.resolve(ref)
			if err != nil {
				return 0, err
			}
			operand = v
		}
		reg.value = op.Verb.Apply(reg.value, operand)
	}
	return reg.value, nil
}

func (e *Engine) resolving() []register.Name {
	names := make([]register.Name, 0, len(e.inProgress))
	for n := range e.inProgress {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (e *Engine) save(reg *registerState) {
	if e.journal == nil {
		return
	}
	if _, ok := e.journal[reg.name]; ok {
		return
	}
	e.journal[reg.name] = savedRegister{value: reg.value, pending: slices.Clone(reg.pending)}
}

func (e *Engine) rollback() {
	for name, saved := range e.journal {
		reg := e.registers[name]
		reg.value = saved.value
		reg.pending = saved.pending
	}
}

// Registers returns a snapshot of every known register, sorted by name.
// Pending operations are not applied.
func (e *Engine) Registers() []Snapshot {
	out := make([]Snapshot, 0, len(e.registers))
	for _, reg := range e.registers {
		out = append(out, Snapshot{Name: reg.name, Value: reg.value, Pending: len(reg.pending)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Graph returns the dependency graph of pending operations: an edge B -> A
// means a pending operation on A needs the value of B. Node data holds the
// node's pending operations as strings. Registers are visited in name order
// and operations in queue order, so the result is the same for equal state.
func (e *Engine) Graph() *dag.Graph {
	names := make([]register.Name, 0, len(e.registers))
	for name := range e.registers {
		names = append(names, name)
	}
	slices.Sort(names)

	g := dag.NewGraph()
	for _, name := range names {
		reg := e.registers[name]
		ops := make([]string, len(reg.pending))
		for i, op := range reg.pending {
			ops[i] = op.String()
		}
		g.AddNode(name.String(), ops)
	}
	for _, name := range names {
		for _, op := range e.registers[name].pending {
			ref, ok := op.Operand.Register()
			if !ok {
				continue
			}
			if _, exists := g.GetNode(ref.String()); !exists {
				g.AddNode(ref.String(), []string{})
			}
			// Both endpoints exist at this point, so AddEdge cannot fail.
			_ = g.AddEdge(ref.String(), name.String())
		}
	}
	return g
}
