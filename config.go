package main

import (
	"fmt"
	"image/color"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/nf/intcode/host"
	"github.com/nf/intcode/intcode"
)

// config holds the settings for a run. It is read from a TOML file, and
// then overridden by command-line flags.
type config struct {
	Program string           `toml:"program"`
	ASCII   bool             `toml:"ascii"`
	Input   []int64          `toml:"input"`
	Patch   map[string]int64 `toml:"patch"`
	Screen  bool             `toml:"screen"`
	Palette []string         `toml:"palette"`
	Trace   bool             `toml:"trace"`

	patch   intcode.Patch // from flags, applied after Patch
	palette []color.RGBA
}

// loadConfig reads the config file at name. An empty name yields the
// default config. A relative program path is relative to the config file.
func loadConfig(name string) (*config, error) {
	c := &config{}
	if name == "" {
		return c, nil
	}
	md, err := toml.DecodeFile(name, c)
	if err != nil {
		return nil, fmt.Errorf("config: %v", err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, fmt.Errorf("config: %s: unknown key %q", name, keys[0].String())
	}
	if c.Program != "" && !filepath.IsAbs(c.Program) {
		c.Program = filepath.Join(filepath.Dir(name), c.Program)
	}
	return c, nil
}

// resolve checks the config and computes the fields derived from it.
func (c *config) resolve() error {
	if c.Program == "" {
		return fmt.Errorf("no program given")
	}
	var p intcode.Patch
	for k, v := range c.Patch {
		addr, err := strconv.ParseInt(k, 10, 64)
		if err != nil || addr < 0 {
			return fmt.Errorf("config: invalid patch address %q", k)
		}
		p = append(p, intcode.PatchWord{Addr: addr, Value: v})
	}
	sort.Slice(p, func(i, j int) bool { return p[i].Addr < p[j].Addr })
	c.patch = append(p, c.patch...)

	pal, err := host.ParsePalette(c.Palette)
	if err != nil {
		return fmt.Errorf("config: palette: %v", err)
	}
	c.palette = pal
	return nil
}
