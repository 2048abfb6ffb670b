package host

import (
	"fmt"
	"image"
	"image/color"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/draw"
)

// DefaultPalette maps tile values 0 through 7 to colors.
var DefaultPalette = []color.RGBA{
	{0x00, 0x00, 0x00, 0xff}, // black
	{0xff, 0xff, 0xff, 0xff}, // white
	{0xe0, 0x80, 0x30, 0xff}, // orange
	{0x30, 0x60, 0xe0, 0xff}, // blue
	{0xe0, 0x30, 0x30, 0xff}, // red
	{0x30, 0xc0, 0x50, 0xff}, // green
	{0xf0, 0xe0, 0x40, 0xff}, // yellow
	{0xc0, 0x40, 0xc0, 0xff}, // magenta
}

// Screen is an output device that treats a program's output as a sequence
// of (x, y, tile) triples. Tiles at non-negative coordinates are drawn;
// tiles at negative coordinates are kept as status values.
// It is safe for concurrent use.
type Screen struct {
	mu      sync.Mutex
	palette []color.RGBA
	tiles   map[image.Point]int64
	status  map[image.Point]int64
	bounds  image.Rectangle
	pending []int64
	ops     int // total count of triples received
}

// NewScreen returns a Screen using palette, or DefaultPalette if palette is
// empty.
func NewScreen(palette []color.RGBA) *Screen {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return &Screen{
		palette: palette,
		tiles:   make(map[image.Point]int64),
		status:  make(map[image.Point]int64),
	}
}

// Output accepts one output value.
func (s *Screen) Output(v int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, v)
	if len(s.pending) < 3 {
		return
	}
	x, y, t := s.pending[0], s.pending[1], s.pending[2]
	s.pending = s.pending[:0]
	s.ops++
	p := image.Pt(int(x), int(y))
	if x < 0 || y < 0 {
		s.status[p] = t
		return
	}
	s.tiles[p] = t
	s.bounds = s.bounds.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
}

// Ops returns the number of triples received so far.
func (s *Screen) Ops() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ops
}

// Tile returns the tile at (x, y).
func (s *Screen) Tile(x, y int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tiles[image.Pt(x, y)]
}

// Bounds returns the smallest rectangle containing every drawn tile.
func (s *Screen) Bounds() image.Rectangle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bounds
}

// Status returns the status values as "x,y=v" pairs ordered by position.
func (s *Screen) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps := make([]image.Point, 0, len(s.status))
	for p := range s.status {
		ps = append(ps, p)
	}
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Y != ps[j].Y {
			return ps[i].Y < ps[j].Y
		}
		return ps[i].X < ps[j].X
	})
	var b strings.Builder
	for i, p := range ps {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d,%d=%d", p.X, p.Y, s.status[p])
	}
	return b.String()
}

func (s *Screen) color(t int64) color.RGBA {
	i := t % int64(len(s.palette))
	if i < 0 {
		i = -i
	}
	return s.palette[i]
}

// Image returns the drawn tiles, one pixel per tile, scaled to size.
func (s *Screen) Image(size image.Point) *image.RGBA {
	s.mu.Lock()
	src := image.NewRGBA(image.Rectangle{Max: s.bounds.Size()})
	draw.Draw(src, src.Bounds(), image.NewUniform(s.palette[0]), image.Point{}, draw.Src)
	for p, t := range s.tiles {
		p = p.Sub(s.bounds.Min)
		src.SetRGBA(p.X, p.Y, s.color(t))
	}
	bg := s.palette[0]
	s.mu.Unlock()

	dst := image.NewRGBA(image.Rectangle{Max: size})
	if src.Bounds().Empty() {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
		return dst
	}
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// ParsePalette parses colors written as "#rrggbb" or "rrggbb".
func ParsePalette(ss []string) ([]color.RGBA, error) {
	var p []color.RGBA
	for _, s := range ss {
		h := strings.TrimPrefix(s, "#")
		if len(h) != 6 {
			return nil, fmt.Errorf("bad color %q", s)
		}
		v, err := strconv.ParseUint(h, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("bad color %q", s)
		}
		p = append(p, color.RGBA{byte(v >> 16), byte(v >> 8), byte(v), 0xff})
	}
	return p, nil
}
