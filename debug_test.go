package main

import (
	"testing"

	"github.com/nf/intcode/host"
	"github.com/nf/intcode/intcode"
)

func TestStateMsg(t *testing.T) {
	m := intcode.New([]int64{1, 0, 0, 0, 99})
	m.AddInput(7)
	syms := symbols{{addr: 0, label: "start"}}
	for _, c := range []struct {
		k    host.StateKind
		want string
	}{
		{host.PauseState, "     0 [pause] start: add [0] [0] [0]\nbase: 0  in: 1  out: 0  mem: 5\n"},
		{host.ClearState, "     0         start: add [0] [0] [0]\nbase: 0  in: 1  out: 0  mem: 5\n"},
	} {
		if g := stateMsg(syms, m, c.k); g != c.want {
			t.Errorf("stateMsg(%v) ==\n%q\nwant\n%q", c.k, g, c.want)
		}
	}
	if err := m.Step(); err != nil {
		t.Fatal(err)
	}
	want := "     4 [HALT!] hlt\nbase: 0  in: 1  out: 0  mem: 5\n"
	if g := stateMsg(syms, m, host.HaltState); g != want {
		t.Errorf("stateMsg after step ==\n%q\nwant\n%q", g, want)
	}
}

func TestWatchContent(t *testing.T) {
	m := intcode.New([]int64{1, 0, 0, 0, 99})
	d := &debugger{
		brk:     &symbol{addr: 4, label: "end"},
		watches: []symbol{{addr: 0, label: "first"}, {addr: 100, label: "far"}},
	}
	want := "end [4] brk!\nfirst [0] 1\nfar [100] 0"
	if g := d.watchContent(m); g != want {
		t.Errorf("watchContent ==\n%q\nwant\n%q", g, want)
	}
	if g, w := m.Len(), 5; g != w {
		t.Errorf("Len() == %d after watchContent, want %d", g, w)
	}

	d.brk = nil
	if g, w := d.watchContent(m), "first [0] 1\nfar [100] 0"; g != w {
		t.Errorf("watchContent without break ==\n%q\nwant\n%q", g, w)
	}
}
