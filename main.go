// Command intcode executes Intcode programs.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/nf/intcode/host"
	"github.com/nf/intcode/intcode"
)

func main() {
	log.SetPrefix("intcode: ")
	log.SetFlags(0)

	var (
		asciiFlag  = flag.Bool("ascii", false, "read and write ASCII text instead of integers")
		inputFlag  = flag.String("input", "", "comma-separated `values` to input before reading stdin")
		screenFlag = flag.Bool("screen", false, "draw output (x, y, tile) triples in a window")
		traceFlag  = flag.Bool("trace", false, "log each executed instruction")
		devFlag    = flag.Bool("dev", false, "enable developer mode (reload and re-run the program when it changes)")
		debugFlag  = flag.Bool("debug", false, "enable debugger (implies -dev)")
		configFlag = flag.String("config", "", "read settings from TOML `file`")
		patchFlag  intcode.Patch

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)
	flag.Var(&patchFlag, "patch", "comma-separated `addr=value` pairs to write before running")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <program.ic>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s [flags] -config <file.toml> [program.ic]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() > 1 || (flag.NArg() == 0 && *configFlag == "") {
		flag.Usage()
	}

	c, err := loadConfig(*configFlag)
	if err != nil {
		log.Fatal(err)
	}
	if flag.NArg() == 1 {
		c.Program = flag.Arg(0)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ascii":
			c.ASCII = *asciiFlag
		case "screen":
			c.Screen = *screenFlag
		case "trace":
			c.Trace = *traceFlag
		case "input":
			in, err := intcode.Parse(*inputFlag)
			if err != nil {
				log.Fatalf("-input: %v", err)
			}
			c.Input = in
		}
	})
	c.patch = patchFlag
	if err := c.resolve(); err != nil {
		log.Fatal(err)
	}

	if *devFlag || *debugFlag {
		if err := devMode(c, *debugFlag); err != nil {
			log.Fatal(err)
		}
		return
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	err = run(c)

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
}

func run(c *config) error {
	prog, err := intcode.Load(c.Program)
	if err != nil {
		return err
	}
	r, g := newRunner(c, false, false, nil)
	return drive(g, func() error { return r.Run(prog) })
}

// newRunner returns a Runner wired to the devices selected by c, and the
// GUI if the screen is enabled. When the debugger owns the terminal, output
// is logged and input comes only from c.Input and the debugger.
func newRunner(c *config, dev, debugger bool, sf host.StateFunc) (*host.Runner, *host.GUI) {
	var (
		in  <-chan int64
		out func(int64)
		g   *host.GUI
	)
	switch {
	case c.Screen:
		scr := host.NewScreen(c.palette)
		g = host.NewGUI(scr, "intcode: "+filepath.Base(c.Program))
		in, out = g.Input(), scr.Output
	case debugger:
		in = host.NewConsole(nil, nil, c.ASCII).Input(c.Input)
		out = func(v int64) { log.Printf("output: %d", v) }
	default:
		con := host.NewConsole(os.Stdin, os.Stdout, c.ASCII)
		in, out = con.Input(c.Input), con.Output
	}
	r := host.NewRunner(in, out, dev, sf)
	r.SetPatch(c.patch)
	if c.Trace {
		r.SetTrace(log.Printf)
	}
	return r, g
}

// drive calls run, while running the GUI on the main goroutine if g is not
// nil. Closing the window ends the program.
func drive(g *host.GUI, run func() error) error {
	if g == nil {
		return run()
	}
	var (
		exit = make(chan bool)
		errc = make(chan error, 1)
	)
	go func() {
		errc <- run()
		close(exit)
	}()
	if err := g.Run(exit); err != nil {
		return err
	}
	select {
	case err := <-errc:
		return err
	default:
		return nil
	}
}
