// Package host connects an Intcode Machine to the outside world: input and
// output devices, a debugger, and program reloading.
package host

import (
	"errors"
	"log"

	"github.com/nf/intcode/intcode"
)

// StateKind describes why a StateFunc is being called.
type StateKind int

const (
	ClearState StateKind = iota // machine (re)started or resumed
	QuietState                  // periodic update while running
	BreakState                  // stopped at a break address
	DebugState                  // passed a debug address
	PauseState                  // paused or single-stepped
	WaitState                   // waiting for input
	HaltState                   // halted, or stopped by an error
)

// StateFunc is called by Run, from Run's goroutine, to report the state of
// the machine. It must not retain m.
type StateFunc func(m *intcode.Machine, k StateKind)

// ErrInputClosed is returned by Run if the program waits for input after
// the input channel has been closed.
var ErrInputClosed = errors.New("program waiting for input after end of input")

// pollInterval is the number of instructions executed between checks for
// debugger commands and program swaps.
const pollInterval = 1 << 12

// Runner executes a program on a Machine, feeding it values from an input
// channel and passing its output to a function.
type Runner struct {
	in    <-chan int64
	out   func(int64)
	dev   bool
	state StateFunc
	patch intcode.Patch
	trace func(string, ...any)

	debug    chan debugCmd
	swap     chan []int64
	swapDone chan bool
	done     chan bool
}

type debugCmd struct {
	cmd  string
	addr int64
}

// NewRunner returns a Runner that reads input from in and writes output to
// out. A nil in provides no input. In dev mode Run keeps serving Debug and
// Swap requests after the program halts or fails, until an "exit" command.
// The StateFunc may be nil.
func NewRunner(in <-chan int64, out func(int64), devMode bool, sf StateFunc) *Runner {
	return &Runner{
		in:       in,
		out:      out,
		dev:      devMode,
		state:    sf,
		debug:    make(chan debugCmd),
		swap:     make(chan []int64),
		swapDone: make(chan bool),
		done:     make(chan bool),
	}
}

// SetPatch sets a patch that is applied to every program before it runs.
func (r *Runner) SetPatch(p intcode.Patch) { r.patch = p }

// SetTrace sets a function to log every executed instruction.
func (r *Runner) SetTrace(logf func(string, ...any)) { r.trace = logf }

// Debug sends a command to the running program. Commands are
//
//	b, break   set the break address (addr < 0 clears it)
//	d, debug   set the debug address (addr < 0 clears it)
//	p, pause   pause execution
//	c, cont    continue execution
//	s, step    execute one instruction and pause
//	r, reset   reset the machine (see intcode.Machine.Reset)
//	i, input   add addr to the input queue
//	exit       stop Run
//
// Debug does nothing once Run has returned.
func (r *Runner) Debug(cmd string, addr int64) {
	select {
	case r.debug <- debugCmd{cmd, addr}:
	case <-r.done:
	}
}

// Swap replaces the running program with a new one.
// It may only be called in dev mode.
func (r *Runner) Swap(program []int64) {
	if !r.dev {
		panic("Swap called while not running in dev mode")
	}
	select {
	case r.swap <- program:
		<-r.swapDone
	case <-r.done:
	}
}

type runState struct {
	m        *intcode.Machine
	brk, dbg int64
	paused   bool
	stopped  bool // halted or failed
	waiting  bool
	exit     bool
}

// Run executes program until it halts, returning nil, or fails, returning
// the error. In dev mode Run returns only when it receives an "exit" debug
// command.
func (r *Runner) Run(program []int64) error {
	defer close(r.done)

	m, err := r.newMachine(program)
	if err != nil {
		return err
	}
	var (
		s     = &runState{m: m, brk: -1, dbg: -1}
		in    = r.in
		steps = 0
	)
	r.report(s.m, ClearState)
	for !s.exit {
		if !s.paused && !s.stopped && !s.waiting {
			if done, err := r.exec(s); done {
				return err
			}
			if steps++; steps%pollInterval != 0 {
				continue
			}
			r.report(s.m, QuietState)
			select {
			case c := <-r.debug:
				if done, err := r.command(s, c); done {
					return err
				}
			case p := <-r.swap:
				r.swapIn(s, p)
			default:
			}
			continue
		}

		if s.waiting && in == nil && !r.dev {
			return ErrInputClosed
		}
		var inCh <-chan int64 // nil unless the program is waiting
		if s.waiting {
			inCh = in
		}
		select {
		case v, ok := <-inCh:
			if !ok {
				in = nil
				continue
			}
			s.m.AddInput(v)
			s.waiting = false
		case c := <-r.debug:
			if done, err := r.command(s, c); done {
				return err
			}
		case p := <-r.swap:
			r.swapIn(s, p)
		}
	}
	return nil
}

// exec executes one instruction. It reports whether Run should return,
// and with what error.
func (r *Runner) exec(s *runState) (done bool, err error) {
	err = s.m.Step()
	r.flush(s.m)
	switch err {
	case nil:
		switch pc := s.m.PC(); pc {
		case s.brk:
			s.paused = true
			r.report(s.m, BreakState)
		case s.dbg:
			r.report(s.m, DebugState)
		}
	case intcode.ErrWaiting:
		s.waiting = true
		r.report(s.m, WaitState)
	case intcode.ErrHalted:
		if !r.dev {
			return true, nil
		}
		s.stopped = true
		r.report(s.m, HaltState)
	default:
		if !r.dev {
			return true, err
		}
		log.Printf("intcode: %v", err)
		s.stopped = true
		r.report(s.m, HaltState)
	}
	return false, nil
}

// command carries out a debug command. Like exec, it reports whether Run
// should return.
func (r *Runner) command(s *runState, c debugCmd) (done bool, err error) {
	switch c.cmd {
	case "b", "break":
		s.brk = c.addr
	case "d", "debug":
		s.dbg = c.addr
	case "p", "pause":
		s.paused = true
		r.report(s.m, PauseState)
	case "c", "cont":
		s.paused = false
		r.report(s.m, ClearState)
	case "s", "step":
		s.paused = true
		if !s.stopped && !s.waiting {
			if done, err := r.exec(s); done {
				return true, err
			}
		}
		if !s.stopped && !s.waiting {
			r.report(s.m, PauseState)
		}
	case "r", "reset":
		s.m.Reset()
		s.stopped, s.waiting = false, false
		r.report(s.m, ClearState)
	case "i", "input":
		s.m.AddInput(c.addr)
		s.waiting = false
	case "exit":
		s.exit = true
	default:
		log.Printf("unknown debug command %q", c.cmd)
	}
	return false, nil
}

func (r *Runner) swapIn(s *runState, program []int64) {
	defer func() { r.swapDone <- true }()
	m, err := r.newMachine(program)
	if err != nil {
		log.Printf("swap: %v", err)
		return
	}
	s.m = m
	s.stopped, s.waiting = false, false
	r.report(s.m, ClearState)
}

func (r *Runner) newMachine(program []int64) (*intcode.Machine, error) {
	m := intcode.New(program)
	if err := r.patch.Apply(m); err != nil {
		return nil, err
	}
	m.SetTrace(r.trace)
	return m, nil
}

func (r *Runner) flush(m *intcode.Machine) {
	for _, v := range m.Outputs() {
		if r.out != nil {
			r.out(v)
		}
	}
}

func (r *Runner) report(m *intcode.Machine, k StateKind) {
	if r.state != nil {
		r.state(m, k)
	}
}
