package intcode_test

import (
	"fmt"

	"github.com/nf/intcode/intcode"
)

// A program that echoes its input is suspended until input is added.
func ExampleMachine_Run() {
	m := intcode.New([]int64{3, 0, 4, 0, 99})
	m.Run()
	fmt.Println(m.Halted(), m.Waiting())

	m.AddInput(42)
	m.Run()
	v, ok := m.PopOutput()
	fmt.Println(m.Halted(), v, ok)

	// Output:
	// false true
	// true 42 true
}

// The classic setup: patch positions 1 and 2 before running.
func ExamplePatch_Apply() {
	prog, err := intcode.Parse("1,9,10,3,2,3,11,0,99,30,40,50")
	if err != nil {
		panic(err)
	}
	m := intcode.New(prog)
	intcode.Patch{{Addr: 1, Value: 10}, {Addr: 2, Value: 9}}.Apply(m)
	if err := m.Run(); err != nil {
		panic(err)
	}
	fmt.Println(m.Peek(0))

	// Output:
	// 3500
}
