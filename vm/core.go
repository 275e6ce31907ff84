package vm

import (
	"math/rand/v2"
	"time"
)

// Option configures an Instance at construction time, mirroring the
// teacher's functional-options constructor (`vm.Option` in the
// reference Forth VM).
type Option func(*Instance)

// Console sets the ConsoleHost used for PRINT/INPUT.
func Console(c ConsoleHost) Option {
	return func(i *Instance) { i.console = c }
}

// Graphics sets the GraphicsHost used for graphics opcodes.
func Graphics(g GraphicsHost) Option {
	return func(i *Instance) { i.graphics = g }
}

// WithStore seeds the Instance with a pre-populated Store, used to
// carry variable state forward across successive RUNs (spec.md §3
// "Lifecycle").
func WithStore(s *Store) Option {
	return func(i *Instance) { i.store = s }
}

// Instance is a running (or runnable) VM: the opcode array, the
// evaluation stack, the four value stores, the return stack, the
// loop-frame stack, and the injected hosts. A new RUN either creates a
// fresh Instance or reuses a carried-forward Store via WithStore.
type Instance struct {
	Program *Program

	pc    int
	stack []Value

	store    *Store
	returns  returnStack
	loops    loopStack
	print    printState

	console  ConsoleHost
	graphics GraphicsHost

	lastLine int
	insCount int64

	startTime time.Time
	rng       *rand.Rand

	// last pen position set by PSET/LINE, recorded here alongside the
	// graphics host's own pen; LINE's shorthand form draws from the
	// host's pen (LineTo), not from these fields.
	penX, penY int
}

// New creates a VM instance bound to program, ready to Run.
func New(program *Program, opts ...Option) *Instance {
	i := &Instance{
		Program:   program,
		console:   NullConsole{},
		graphics:  NullGraphics{},
		startTime: time.Now(),
		rng:       rand.New(rand.NewPCG(1, 2)),
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.store == nil {
		c := program.Symbols
		i.store = NewStore(c.NumScalars, c.StrScalars, c.NumArrays, c.StrArrays)
	}
	return i
}

// Depth returns the current evaluation-stack depth.
func (i *Instance) Depth() int { return len(i.stack) }

// LastLine returns the source line the VM was executing when it most
// recently faulted or halted, for error reporting (spec.md §4.5).
func (i *Instance) LastLine() int { return i.lastLine }

// InstructionCount returns the number of opcodes executed so far.
func (i *Instance) InstructionCount() int64 { return i.insCount }

// ExportStore returns a snapshot of the instance's value stores,
// suitable for passing to WithStore on the next VM instance.
func (i *Instance) ExportStore() *Store { return i.store.Export() }

func (i *Instance) push(v Value) { i.stack = append(i.stack, v) }

func (i *Instance) pop() (Value, bool) {
	n := len(i.stack)
	if n == 0 {
		return Value{}, false
	}
	v := i.stack[n-1]
	i.stack = i.stack[:n-1]
	return v, true
}

func (i *Instance) popNum() (float64, error) {
	v, ok := i.pop()
	if !ok {
		return 0, &Error{Kind: TypeMismatch, Msg: "stack underflow"}
	}
	if v.IsString() {
		return 0, errTypeMismatch("expected number")
	}
	return v.NumVal(), nil
}

func (i *Instance) popInt() (int, error) {
	n, err := i.popNum()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// seedRNG reseeds the instance's random source, used by RANDOMIZE.
func (i *Instance) seedRNG(seed int64) {
	i.rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// timeSince returns elapsed seconds since start, backing the TIMER
// built-in.
func timeSince(start time.Time) float64 {
	return time.Since(start).Seconds()
}
