// Package intcode provides an implementation of an Intcode computer,
// called Machine, that can be used to execute Intcode programs.
package intcode

import (
	"errors"
	"fmt"
	"strings"
)

// MaxMemory is the number of words a Machine may address.
// Accessing memory at or beyond MaxMemory is an AddressError.
const MaxMemory = 1 << 24

// Machine is an implementation of an Intcode computer.
//
// The zero value is not usable; create a Machine with New.
type Machine struct {
	mem     []int64
	pc      int64
	base    int64
	input   []int64
	output  []int64
	halted  bool
	waiting bool
	logf    func(string, ...any) // nil when not tracing
}

// New returns a Machine loaded with a copy of program.
func New(program []int64) *Machine {
	m := &Machine{mem: make([]int64, len(program))}
	copy(m.mem, program)
	return m
}

var (
	// ErrHalted is returned by Step when the machine executes HLT, and for
	// every Step after that until Reset.
	ErrHalted = errors.New("halted")

	// ErrWaiting is returned by Step when the instruction at PC is IN and
	// the input queue is empty. Nothing is changed, so the same
	// instruction executes on the next Step once input is available.
	ErrWaiting = errors.New("waiting for input")
)

// SetTrace sets a function that is called with a disassembly of each
// instruction before it executes. A nil logf disables tracing.
func (m *Machine) SetTrace(logf func(format string, args ...any)) { m.logf = logf }

// AddInput appends v to the input queue.
func (m *Machine) AddInput(v int64) { m.input = append(m.input, v) }

// PopOutput removes and returns the oldest value in the output queue.
// It returns false if the queue is empty.
func (m *Machine) PopOutput() (int64, bool) {
	if len(m.output) == 0 {
		return 0, false
	}
	v := m.output[0]
	m.output = m.output[1:]
	return v, true
}

// Outputs removes and returns all values in the output queue.
func (m *Machine) Outputs() []int64 {
	out := m.output
	m.output = nil
	return out
}

// Pending reports the lengths of the input and output queues.
func (m *Machine) Pending() (in, out int) { return len(m.input), len(m.output) }

// Halted reports whether the machine has executed HLT.
func (m *Machine) Halted() bool { return m.halted }

// Waiting reports whether the last Step stopped at an IN instruction
// because the input queue was empty.
func (m *Machine) Waiting() bool { return m.waiting }

// PC returns the address of the next instruction.
func (m *Machine) PC() int64 { return m.pc }

// RelBase returns the relative base.
func (m *Machine) RelBase() int64 { return m.base }

// Len returns the current length of memory.
func (m *Machine) Len() int { return len(m.mem) }

// Reset sets PC to zero, discards pending input and clears the halted
// state. Memory, the relative base and pending output are left as they
// are.
func (m *Machine) Reset() {
	m.pc = 0
	m.input = nil
	m.halted = false
	m.waiting = false
}

// Peek returns the word at addr, growing memory to include addr.
// Addresses outside [0, MaxMemory) read as zero and do not grow memory.
func (m *Machine) Peek(addr int64) int64 {
	if addr < 0 || addr >= MaxMemory {
		return 0
	}
	return m.load(addr)
}

// Poke sets the word at addr to v, growing memory to include addr.
func (m *Machine) Poke(addr, v int64) error {
	if addr < 0 || addr >= MaxMemory {
		return fmt.Errorf("poke: address %d out of range", addr)
	}
	m.store(addr, v)
	return nil
}

// Run executes instructions until the machine halts, waits for input, or
// encounters an error. Halting and waiting are not errors: check Halted
// and Waiting to tell them apart. Calling Run again after adding input
// resumes at the waiting instruction.
func (m *Machine) Run() error {
	for {
		switch err := m.Step(); err {
		case nil:
		case ErrHalted, ErrWaiting:
			return nil
		default:
			return err
		}
	}
}

// Step executes the instruction at PC. It returns ErrHalted or ErrWaiting
// as described by those errors, and otherwise only returns a non-nil error
// if the instruction is invalid. An invalid instruction has no effect.
func (m *Machine) Step() error {
	if m.halted {
		return ErrHalted
	}
	m.waiting = false

	if m.pc >= MaxMemory {
		return AddressError{PC: m.pc, Addr: m.pc}
	}
	var (
		pc = m.pc
		op = Op(m.read(pc))
	)
	n, ok := op.Params()
	if !ok {
		return OpcodeError{PC: pc, Word: int64(op)}
	}
	for i := 0; i < n; i++ {
		switch mode := op.Mode(i); mode {
		case Position, Relative:
		case Immediate:
			if op.Writes() && i == n-1 {
				return ModeError{PC: pc, Word: int64(op), Param: i, Mode: mode}
			}
		default:
			return ModeError{PC: pc, Word: int64(op), Param: i, Mode: mode}
		}
	}

	switch op.Code() {
	case HLT:
		if m.logf != nil {
			m.logf("%d\t%s", pc, op)
		}
		m.halted = true
		return ErrHalted
	case IN:
		if len(m.input) == 0 {
			m.waiting = true
			return ErrWaiting
		}
	}

	var (
		args [3]int64
		top  = min(pc+int64(n), MaxMemory-1) // highest address accessed
	)
	for i := 0; i < n; i++ {
		v, addr, err := m.operand(op, pc, i)
		if err != nil {
			return err
		}
		if op.Writes() && i == n-1 {
			v = addr
		}
		args[i] = v
		top = max(top, addr)
	}
	m.grow(top)
	if m.logf != nil {
		s, _ := m.Disasm(pc)
		m.logf("%d\t%s", pc, s)
	}

	next := pc + int64(n) + 1
	switch op.Code() {
	case ADD:
		m.store(args[2], args[0]+args[1])
	case MUL:
		m.store(args[2], args[0]*args[1])
	case IN:
		m.store(args[0], m.input[0])
		m.input = m.input[1:]
	case OUT:
		m.output = append(m.output, args[0])
	case JNZ, JZ:
		if (args[0] != 0) == (op.Code() == JNZ) {
			if t := args[1]; t < 0 || t >= MaxMemory {
				return AddressError{PC: pc, Word: int64(op), Addr: t}
			}
			next = args[1]
		}
	case LT:
		m.store(args[2], boolWord(args[0] < args[1]))
	case EQ:
		m.store(args[2], boolWord(args[0] == args[1]))
	case ARB:
		m.base += args[0]
	default:
		panic(fmt.Errorf("internal error: %v not implemented", op))
	}
	m.pc = next
	return nil
}

// operand returns the value of parameter i of the instruction at pc and
// the address it designates, which is -1 for an immediate parameter.
// It does not grow memory.
func (m *Machine) operand(op Op, pc int64, i int) (v, addr int64, err error) {
	p := m.read(pc + 1 + int64(i))
	switch op.Mode(i) {
	case Immediate:
		return p, -1, nil
	case Position:
		addr = p
	case Relative:
		addr = m.base + p
	}
	if addr < 0 || addr >= MaxMemory {
		return 0, 0, AddressError{PC: pc, Word: int64(op), Addr: addr}
	}
	return m.read(addr), addr, nil
}

func (m *Machine) grow(addr int64) {
	if n := addr + 1 - int64(len(m.mem)); n > 0 {
		m.mem = append(m.mem, make([]int64, n)...)
	}
}

func (m *Machine) load(addr int64) int64 {
	m.grow(addr)
	return m.mem[addr]
}

func (m *Machine) store(addr, v int64) {
	m.grow(addr)
	m.mem[addr] = v
}

// read is like load but does not grow memory.
func (m *Machine) read(addr int64) int64 {
	if addr < 0 || addr >= int64(len(m.mem)) {
		return 0
	}
	return m.mem[addr]
}

func boolWord(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// Disasm returns a textual form of the instruction at addr and its length
// in words. Position parameters are shown as [n], relative parameters as
// [r+n] and immediate parameters as plain numbers. Disasm does not grow
// memory.
func (m *Machine) Disasm(addr int64) (string, int) {
	op := Op(m.read(addr))
	n, ok := op.Params()
	if !ok {
		return op.String(), 1
	}
	var b strings.Builder
	b.WriteString(op.String())
	for i := 0; i < n; i++ {
		p := m.read(addr + 1 + int64(i))
		b.WriteByte(' ')
		switch mode := op.Mode(i); mode {
		case Position:
			fmt.Fprintf(&b, "[%d]", p)
		case Immediate:
			fmt.Fprintf(&b, "%d", p)
		case Relative:
			fmt.Fprintf(&b, "[r%+d]", p)
		default:
			fmt.Fprintf(&b, "<%d>%d", byte(mode), p)
		}
	}
	return b.String(), n + 1
}

// OpcodeError is returned by Step if the instruction code at PC is not
// defined.
type OpcodeError struct {
	PC   int64
	Word int64
}

func (e OpcodeError) Error() string {
	return fmt.Sprintf("invalid opcode %d at %d", e.Word, e.PC)
}

// ModeError is returned by Step if a parameter of the instruction at PC has
// an undefined addressing mode, or is a write target in immediate mode.
type ModeError struct {
	PC    int64
	Word  int64
	Param int
	Mode  Mode
}

func (e ModeError) Error() string {
	return fmt.Sprintf("invalid %v for parameter %d of %s (%d) at %d",
		e.Mode, e.Param+1, Op(e.Word), e.Word, e.PC)
}

// AddressError is returned by Step if the instruction at PC reads from,
// writes to, or jumps to an address outside [0, MaxMemory).
type AddressError struct {
	PC   int64
	Word int64
	Addr int64
}

func (e AddressError) Error() string {
	return fmt.Sprintf("address %d out of range executing %s at %d", e.Addr, Op(e.Word), e.PC)
}
