package main

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
)

type symbols []symbol

func (s symbols) forAddr(addr int64) (ss []symbol) {
	i := sort.Search(len(s), func(i int) bool { return s[i].addr >= addr })
	for ; i < len(s); i++ {
		if s[i].addr != addr {
			break
		}
		ss = append(ss, s[i])
	}
	return ss
}

func (s symbols) withLabelPrefix(p string) (ss []symbol) {
	for _, sym := range s {
		if strings.HasPrefix(sym.label, p) {
			ss = append(ss, sym)
		}
	}
	return ss
}

// resolve returns the symbol for t, which is either a label or a decimal
// address.
func (s symbols) resolve(t string) (symbol, bool) {
	for _, sym := range s {
		if sym.label == t {
			return sym, true
		}
	}
	addr, err := strconv.ParseInt(t, 10, 64)
	if err != nil || addr < 0 {
		return symbol{}, false
	}
	if ss := s.forAddr(addr); len(ss) > 0 {
		return ss[0], true
	}
	return symbol{addr: addr, label: t}, true
}

type symbol struct {
	addr  int64
	label string
}

func (s symbol) String() string { return fmt.Sprintf("%s (%d)", s.label, s.addr) }

// parseSymbols reads a symbol file, which holds one "addr label" pair per
// line. Blank lines and lines starting with # are ignored. A missing file
// yields no symbols.
func parseSymbols(symFile string) (symbols, error) {
	f, err := os.Open(symFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		ss   symbols
		line = 0
		sc   = bufio.NewScanner(f)
	)
	for sc.Scan() {
		line++
		t := strings.TrimSpace(sc.Text())
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		a, label, ok := strings.Cut(t, " ")
		label = strings.TrimSpace(label)
		if !ok || label == "" {
			return nil, fmt.Errorf("%s:%d: missing label", symFile, line)
		}
		addr, err := strconv.ParseInt(a, 10, 64)
		if err != nil || addr < 0 {
			return nil, fmt.Errorf("%s:%d: invalid address %q", symFile, line, a)
		}
		ss = append(ss, symbol{addr: addr, label: label})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(ss, func(i, j int) bool {
		return ss[i].addr < ss[j].addr
	})
	return ss, nil
}
