package main

import (
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/nf/intcode/intcode"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "run.toml")
	err := os.WriteFile(name, []byte(`
program = "day2.ic"
ascii = true
input = [1, -2]
screen = true
palette = ["#000000", "#ff8000"]

[patch]
2 = 2
1 = 12
`), 0644)
	if err != nil {
		t.Fatal(err)
	}
	c, err := loadConfig(name)
	if err != nil {
		t.Fatal(err)
	}
	c.patch = intcode.Patch{{Addr: 3, Value: 4}}
	if err := c.resolve(); err != nil {
		t.Fatal(err)
	}
	if g, w := c.Program, filepath.Join(dir, "day2.ic"); g != w {
		t.Errorf("Program == %q, want %q", g, w)
	}
	if !c.ASCII || !c.Screen || c.Trace {
		t.Errorf("ASCII=%v Screen=%v Trace=%v, want true, true, false", c.ASCII, c.Screen, c.Trace)
	}
	if g, w := c.Input, []int64{1, -2}; !slices.Equal(g, w) {
		t.Errorf("Input == %v, want %v", g, w)
	}
	if g, w := c.patch.String(), "1=12,2=2,3=4"; g != w {
		t.Errorf("patch == %q, want %q", g, w)
	}
	if g, w := c.palette, []color.RGBA{{0, 0, 0, 0xff}, {0xff, 0x80, 0, 0xff}}; !slices.Equal(g, w) {
		t.Errorf("palette == %v, want %v", g, w)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	for _, c := range []struct {
		toml string
		err  string
	}{
		{`program = 3`, "config: "},
		{`programme = "x"`, `unknown key "programme"`},
		{"program = \"x\"\n[patch]\nfoo = 1", "invalid patch address"},
		{"program = \"x\"\npalette = [\"red\"]", "palette"},
		{`ascii = true`, "no program given"},
	} {
		name := filepath.Join(dir, "c.toml")
		if err := os.WriteFile(name, []byte(c.toml), 0644); err != nil {
			t.Fatal(err)
		}
		cfg, err := loadConfig(name)
		if err == nil {
			err = cfg.resolve()
		}
		if err == nil || !strings.Contains(err.Error(), c.err) {
			t.Errorf("config %q: error %v, want %q", c.toml, err, c.err)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	c, err := loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	c.Program = "x.ic"
	if err := c.resolve(); err != nil {
		t.Fatal(err)
	}
	if len(c.patch) != 0 || len(c.palette) != 0 {
		t.Errorf("default config has patch %v and palette %v", c.patch, c.palette)
	}
}
