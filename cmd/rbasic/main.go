// Command rbasic loads a stored BASIC program and runs it once to
// completion (no REPL; the interactive shell is an out-of-scope
// collaborator per spec.md §1). Grounded on the teacher's cmd/retro
// driver: flag-based CLI, github.com/pkg/errors for wrapping, and a
// single atExit-style error reporter.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"

	"github.com/retrobas/rbasic/basic"
	"github.com/retrobas/rbasic/internal/console"
	"github.com/retrobas/rbasic/internal/graphics"
)

var (
	dump  = flag.Bool("dump", false, "print the compiled opcode listing instead of running")
	stats = flag.Bool("stats", false, "print instruction count after running")
	image = flag.String("image", "", "save the final graphics screen to this PNG path before exiting")
	debug = flag.Bool("debug", false, "log compile/run lifecycle events to stderr")
)

var log *slog.Logger

func main() {
	flag.Parse()
	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: rbasic [-dump] [-stats] [-debug] [-image path.png] <program.bas>")
		os.Exit(2)
	}

	if err := run(flag.Arg(0)); err != nil {
		log.Error("run failed", "err", err)
		os.Exit(1)
	}
}

func run(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open program")
	}
	defer f.Close()

	src, err := basic.Load(f)
	if err != nil {
		return errors.Wrap(err, "load program")
	}
	log.Debug("loaded program", "path", path, "lines", len(src))

	gfx := graphics.New(*image == "")
	env := basic.New(
		basic.WithConsole(console.New(os.Stdout, os.Stdin)),
		basic.WithGraphics(gfx),
	)
	env.Source = src

	if *dump {
		return dumpProgram(env)
	}

	log.Debug("starting run")
	inst, runErr := env.RunCarryingState()
	if *image != "" {
		if err := gfx.Save(*image); err != nil {
			log.Warn("could not save image", "path", *image, "err", err)
		}
	}
	if inst != nil {
		log.Debug("run finished", "instructions", inst.InstructionCount())
	}
	if *stats && inst != nil {
		fmt.Fprintf(os.Stderr, "instructions executed: %d\n", inst.InstructionCount())
	}
	if runErr != nil {
		line := 0
		if inst != nil {
			line = inst.LastLine()
		}
		return errors.Errorf("program, line %d: %v", line, runErr)
	}
	return nil
}

func dumpProgram(env *basic.Env) error {
	prog, err := env.Compile()
	if err != nil {
		return errors.Wrap(err, "compile")
	}
	for pc, instr := range prog.Code {
		fmt.Printf("%4d  line %-5d %s a=%d b=%d d=%g s=%q\n",
			pc, prog.PCToLine[pc], instr.Op, instr.A, instr.B, instr.D, instr.S)
	}
	return nil
}
