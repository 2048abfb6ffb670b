package intcode

import "fmt"

// Op represents an Intcode instruction word: a two-digit instruction code
// in the low decimal digits and one addressing mode digit per parameter
// above it.
type Op int64

// Code returns the instruction code without any mode digits.
func (o Op) Code() Op { return o % 100 }

// Mode returns the addressing mode of parameter i (counting from zero).
// Modes are defined for up to five parameters; higher positions are
// computed the same way even though no instruction uses them.
func (o Op) Mode(i int) Mode {
	d := int64(o) / 100
	for ; i > 0; i-- {
		d /= 10
	}
	return Mode(d % 10)
}

// Params reports the number of parameters taken by the instruction, and
// whether the instruction code is defined at all.
func (o Op) Params() (int, bool) {
	n, ok := params[o.Code()]
	if o < 0 {
		return 0, false
	}
	return n, ok
}

// Writes reports whether the last parameter of the instruction is a write
// target.
func (o Op) Writes() bool {
	switch o.Code() {
	case ADD, MUL, IN, LT, EQ:
		return true
	}
	return false
}

func (o Op) String() string {
	if o < 0 {
		return fmt.Sprintf("?? %d", int64(o))
	}
	if s, ok := opStrings[o.Code()]; ok {
		return s
	}
	return fmt.Sprintf("?? %d", int64(o))
}

// Instruction codes.
const (
	ADD Op = 1
	MUL Op = 2
	IN  Op = 3
	OUT Op = 4
	JNZ Op = 5 // jump if true
	JZ  Op = 6 // jump if false
	LT  Op = 7
	EQ  Op = 8
	ARB Op = 9 // adjust relative base
	HLT Op = 99
)

var params = map[Op]int{
	ADD: 3,
	MUL: 3,
	IN:  1,
	OUT: 1,
	JNZ: 2,
	JZ:  2,
	LT:  3,
	EQ:  3,
	ARB: 1,
	HLT: 0,
}

var opStrings = map[Op]string{
	ADD: "add",
	MUL: "mul",
	IN:  "in",
	OUT: "out",
	JNZ: "jnz",
	JZ:  "jz",
	LT:  "lt",
	EQ:  "eq",
	ARB: "arb",
	HLT: "hlt",
}

// Mode is a parameter addressing mode.
type Mode byte

// Addressing modes.
const (
	Position  Mode = 0 // x = mem[p]
	Immediate Mode = 1 // x = p
	Relative  Mode = 2 // x = mem[base+p]
)

func (m Mode) String() string {
	switch m {
	case Position:
		return "position"
	case Immediate:
		return "immediate"
	case Relative:
		return "relative"
	}
	return fmt.Sprintf("mode(%d)", byte(m))
}
