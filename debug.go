package main

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/intcode/host"
	"github.com/nf/intcode/intcode"
)

// debugger is a terminal user interface for a host.Runner. It shows the log,
// watched memory words, and the machine state, and accepts commands:
//
//	b <addr>    break at addr (b alone clears)
//	d <addr>    report reaching addr (d alone clears)
//	w <addr>    watch the word at addr (w alone clears all watches)
//	i <value>   add value to the input queue
//	p, c, s, r  pause, continue, step, reset
//	exit        quit
//
// Addresses may be given as labels from the program's symbol file.
type debugger struct {
	run *host.Runner

	log   *tview.TextView
	watch *tview.TextView
	state *tview.TextView
	input *tview.InputField
	cols  *tview.Flex
	rows  *tview.Flex
	app   *tview.Application

	mu       sync.Mutex
	dbg, brk *symbol
	syms     symbols
	watches  []symbol
}

func (d *debugger) symbols() symbols {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.syms
}

func (d *debugger) setSymbols(s symbols) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.syms = s
}

func newDebugger() *debugger {
	d := &debugger{
		log: tview.NewTextView().
			SetMaxLines(1000),
		watch: tview.NewTextView().
			SetWrap(false).
			SetTextAlign(tview.AlignRight),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		cols:  tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app: tview.NewApplication(),
	}
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.watch.SetBackgroundColor(tcell.ColorDarkBlue)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.cols.
		AddItem(d.watch, 0, 1, false).
		AddItem(d.log, 0, 2, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 2, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetAutocompleteFunc(func(t string) (entries []string) {
		if cmd, arg, ok := strings.Cut(t, " "); ok {
			switch cmd {
			case "b", "break", "d", "debug", "w", "watch":
				for _, s := range d.symbols().withLabelPrefix(arg) {
					entries = append(entries, cmd+" "+s.label)
				}
			}
		}
		return
	})
	d.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			d.input.SetText(t)
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		cmd := strings.TrimSpace(d.input.GetText())
		if cmd == "" {
			return
		}
		d.input.SetText("")
		if cmd == "exit" {
			d.app.Stop()
			return
		}
		d.command(cmd)
	})
	return d
}

func (d *debugger) command(cmd string) {
	cmd, arg, hasArg := strings.Cut(cmd, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "b", "break", "d", "debug", "w", "watch":
		if !hasArg {
			d.clear(cmd)
			return
		}
		s, ok := d.symbols().resolve(arg)
		if !ok {
			log.Printf("invalid address %q", arg)
			return
		}
		d.mu.Lock()
		switch cmd[0] {
		case 'b':
			d.brk = &s
		case 'd':
			d.dbg = &s
		case 'w':
			d.watches = append(d.watches, s)
		}
		d.mu.Unlock()
		if cmd[0] == 'w' {
			log.Printf("watching %v", s)
			return
		}
		d.run.Debug(cmd, s.addr)
		log.Printf("set %s %v", cmd, s)
	case "i", "input":
		for _, f := range strings.Fields(arg) {
			v, err := strconv.ParseInt(f, 10, 64)
			if err != nil {
				log.Printf("invalid input %q", f)
				return
			}
			d.run.Debug(cmd, v)
		}
	default:
		d.run.Debug(cmd, 0)
	}
}

func (d *debugger) clear(cmd string) {
	d.mu.Lock()
	switch cmd[0] {
	case 'b':
		d.brk = nil
	case 'd':
		d.dbg = nil
	case 'w':
		d.watches = nil
	}
	d.mu.Unlock()
	if cmd[0] != 'w' {
		d.run.Debug(cmd, -1)
	}
	log.Printf("cleared %s", cmd)
}

func (d *debugger) Run() error { return d.app.Run() }

// StateFunc implements host.StateFunc.
func (d *debugger) StateFunc(m *intcode.Machine, k host.StateKind) {
	var (
		watch = d.watchContent(m)
		state string
	)
	if k != host.QuietState {
		state = stateMsg(d.symbols(), m, k)
	}
	d.app.QueueUpdateDraw(func() {
		switch k {
		case host.DebugState, host.ClearState:
			d.state.SetTextColor(tcell.ColorBlack)
			d.state.SetBackgroundColor(tcell.ColorDarkGrey)
		case host.BreakState:
			d.state.SetTextColor(tcell.ColorYellow)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case host.PauseState, host.WaitState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case host.HaltState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkRed)
		}
		d.watch.SetText(watch)
		if k != host.QuietState {
			d.state.SetText(state)
		}
	})
}

func stateMsg(syms symbols, m *intcode.Machine, k host.StateKind) string {
	var (
		pc     = m.PC()
		ins, _ = m.Disasm(pc)
		pcSym  string
	)
	if s := syms.forAddr(pc); len(s) > 0 {
		pcSym = s[0].label + ": "
	}
	kind := "       "
	switch k {
	case host.BreakState:
		kind = "[break]"
	case host.DebugState:
		kind = "[debug]"
	case host.PauseState:
		kind = "[pause]"
	case host.WaitState:
		kind = "[input]"
	case host.HaltState:
		kind = "[HALT!]"
	}
	in, out := m.Pending()
	return fmt.Sprintf("%6d %s %s%s\nbase: %d  in: %d  out: %d  mem: %d\n",
		pc, kind, pcSym, ins, m.RelBase(), in, out, m.Len())
}

func (d *debugger) watchContent(m *intcode.Machine) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var b strings.Builder
	if s := d.brk; s != nil {
		fmt.Fprintf(&b, "%s [%d] brk!\n", s.label, s.addr)
	}
	if s := d.dbg; s != nil {
		fmt.Fprintf(&b, "%s [%d] dbg?\n", s.label, s.addr)
	}
	for i, w := range d.watches {
		if i > 0 {
			b.WriteByte('\n')
		}
		var v int64
		if w.addr < int64(m.Len()) {
			v = m.Peek(w.addr)
		}
		fmt.Fprintf(&b, "%s [%d] %d", w.label, w.addr, v)
	}
	return b.String()
}
