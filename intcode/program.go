package intcode

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Parse parses an Intcode program: base-10 integers separated by commas.
// Whitespace around values is ignored, as is a single trailing comma.
func Parse(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ",")
	if s == "" {
		return nil, errors.New("empty program")
	}
	fields := strings.Split(s, ",")
	prog := make([]int64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return nil, errors.Errorf("word %d: invalid integer %q", i, strings.TrimSpace(f))
		}
		prog[i] = v
	}
	return prog, nil
}

// Format returns prog in the form accepted by Parse.
func Format(prog []int64) string {
	var b strings.Builder
	for i, v := range prog {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(v, 10))
	}
	return b.String()
}

// Load reads and parses the program in fileName.
func Load(fileName string) ([]int64, error) {
	b, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "Load")
	}
	prog, err := Parse(string(b))
	if err != nil {
		return nil, errors.Wrapf(err, "Load %v", fileName)
	}
	return prog, nil
}

// Patch is a set of memory writes applied to a Machine before it runs.
type Patch []PatchWord

// PatchWord sets the word at Addr to Value.
type PatchWord struct {
	Addr, Value int64
}

// ParsePatch parses a comma-separated list of addr=value pairs.
func ParsePatch(s string) (Patch, error) {
	var p Patch
	if strings.TrimSpace(s) == "" {
		return p, nil
	}
	for _, f := range strings.Split(s, ",") {
		a, v, ok := strings.Cut(strings.TrimSpace(f), "=")
		if !ok {
			return nil, errors.Errorf("patch %q: want addr=value", f)
		}
		addr, err := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
		if err != nil || addr < 0 {
			return nil, errors.Errorf("patch %q: invalid address", f)
		}
		val, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, errors.Errorf("patch %q: invalid value", f)
		}
		p = append(p, PatchWord{addr, val})
	}
	return p, nil
}

// Apply writes the patch into m's memory.
func (p Patch) Apply(m *Machine) error {
	for _, w := range p {
		if err := m.Poke(w.Addr, w.Value); err != nil {
			return err
		}
	}
	return nil
}

func (p Patch) String() string {
	var b strings.Builder
	for i, w := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(w.Addr, 10))
		b.WriteByte('=')
		b.WriteString(strconv.FormatInt(w.Value, 10))
	}
	return b.String()
}

// Set implements flag.Value.
func (p *Patch) Set(s string) error {
	q, err := ParsePatch(s)
	if err != nil {
		return err
	}
	*p = append(*p, q...)
	return nil
}
