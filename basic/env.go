package basic

import (
	"github.com/pkg/errors"

	"github.com/retrobas/rbasic/compiler"
	"github.com/retrobas/rbasic/vm"
)

// Env bundles a stored program with its host bindings and, optionally,
// state carried forward across successive RUNs (spec.md §3 "Lifecycle",
// §5 "Shared resources").
type Env struct {
	Source Source

	console  vm.ConsoleHost
	graphics vm.GraphicsHost

	carryStore *vm.Store
	lastRun    *vm.Instance
}

// EnvOption configures an Env at construction.
type EnvOption func(*Env)

// WithConsole sets the ConsoleHost used for PRINT/INPUT.
func WithConsole(c vm.ConsoleHost) EnvOption {
	return func(e *Env) { e.console = c }
}

// WithGraphics sets the GraphicsHost used for graphics statements.
func WithGraphics(g vm.GraphicsHost) EnvOption {
	return func(e *Env) { e.graphics = g }
}

// New returns an Env over an empty stored program.
func New(opts ...EnvOption) *Env {
	e := &Env{
		Source:   make(Source),
		console:  vm.NullConsole{},
		graphics: vm.NullGraphics{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// New resets to a fresh empty stored program and clears any carried
// state, as the REPL's `NEW` command does.
func (e *Env) New() {
	e.Source = make(Source)
	e.carryStore = nil
	e.lastRun = nil
}

// Compile compiles the current stored program.
func (e *Env) Compile() (*vm.Program, error) {
	return compiler.Compile(e.Source)
}

// Run compiles and executes the stored program from a clean VM
// instance (fresh memory), returning the finished Instance for
// inspection (LastLine, InstructionCount) and errors.
func (e *Env) Run() (*vm.Instance, error) {
	prog, err := e.Compile()
	if err != nil {
		return nil, errors.Wrap(err, "compile")
	}
	inst := vm.New(prog, vm.Console(e.console), vm.Graphics(e.graphics))
	if err := inst.Run(); err != nil {
		return inst, err
	}
	return inst, nil
}

// RunCarryingState compiles and executes the stored program, reusing
// the Store exported from the previous run (if any) so that immediate
// statements and successive RUNs observe prior variable values
// (spec.md §5 "Shared resources").
func (e *Env) RunCarryingState() (*vm.Instance, error) {
	prog, err := e.Compile()
	if err != nil {
		return nil, errors.Wrap(err, "compile")
	}
	opts := []vm.Option{vm.Console(e.console), vm.Graphics(e.graphics)}
	if e.carryStore != nil {
		opts = append(opts, vm.WithStore(e.carryStore))
	}
	inst := vm.New(prog, opts...)
	runErr := inst.Run()
	e.carryStore = inst.ExportStore()
	e.lastRun = inst
	return inst, runErr
}

// LastRun returns the Instance from the most recent RunCarryingState
// call, or nil if none has run yet.
func (e *Env) LastRun() *vm.Instance { return e.lastRun }
