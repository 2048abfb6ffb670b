package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"

	"github.com/nf/intcode/host"
	"github.com/nf/intcode/intcode"
)

// devMode runs the program in c, reloading and restarting it whenever the
// program file changes. With debug set, the debugger takes over the
// terminal and Run returns when the user exits it.
func devMode(c *config, debug bool) error {
	progFile := filepath.Clean(c.Program)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(progFile)); err != nil {
		return err
	}

	var (
		d  *debugger
		sf host.StateFunc
	)
	if debug {
		d = newDebugger()
		sf = d.StateFunc
	}
	runner, g := newRunner(c, true, debug, sf)
	if d != nil {
		d.run = runner
		log.SetPrefix("")
		log.SetOutput(d.log)
		go func() {
			if err := d.Run(); err != nil {
				log.Fatalf("debug: %v", err)
			}
			log.SetOutput(os.Stderr)
			log.SetPrefix("intcode: ")
			runner.Debug("exit", 0)
		}()
	}

	progCh := make(chan []int64)
	go func() {
		started := false
		load := time.After(1 * time.Millisecond)
		for {
			select {
			case <-load:
				log.Printf("dev: load %s", filepath.Base(progFile))
				prog, err := intcode.Load(progFile)
				if err != nil {
					log.Printf("dev: %v", err)
					break
				}
				if d != nil {
					syms, err := parseSymbols(progFile + ".sym")
					if err != nil {
						log.Printf("dev: reading symbols: %v", err)
						break
					}
					d.setSymbols(syms)
				}
				if !started {
					log.Printf("dev: start")
					progCh <- prog
					started = true
				} else {
					log.Printf("dev: reset")
					runner.Swap(prog)
				}
			case ev := <-watcher.Event:
				if (ev.Name == progFile || ev.Name == progFile+".sym") && !ev.IsAttrib() {
					load = time.After(100 * time.Millisecond)
				}
			case err := <-watcher.Error:
				log.Printf("dev: watcher: %v", err)
			}
		}
	}()
	if err := drive(g, func() error { return runner.Run(<-progCh) }); err != nil {
		return fmt.Errorf("dev: %v", err)
	}
	return nil
}
