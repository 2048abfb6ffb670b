package host

import (
	"fmt"
	"image"
	"log"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
)

// GUI shows a Screen in a window and turns the arrow keys into joystick
// input: -1 for left, 1 for right, and 0 for neither.
type GUI struct {
	scr   *Screen
	title string
	input chan int64
}

func NewGUI(scr *Screen, title string) *GUI {
	return &GUI{
		scr:   scr,
		title: title,
		input: make(chan int64, 1),
	}
}

// Input returns a channel that yields the joystick position once per frame
// while the program is ready to read it.
func (g *GUI) Input() <-chan int64 { return g.input }

// setJoystick replaces any position the program has not yet read with v.
func (g *GUI) setJoystick(v int64) {
	select {
	case <-g.input:
	default:
	}
	select {
	case g.input <- v:
	default:
	}
}

// Run opens the window and drives it until exit is closed or the window is
// closed. It must be called from the main goroutine.
func (g *GUI) Run(exit <-chan bool) error {
	var err error
	driver.Main(func(s screen.Screen) {
		var w screen.Window
		w, err = s.NewWindow(&screen.NewWindowOptions{
			Title:  g.title,
			Width:  640,
			Height: 480,
		})
		if err != nil {
			return
		}
		defer w.Release()

		type update struct{}
		go func() {
			t := time.NewTicker(time.Second / 60)
			defer t.Stop()
			for {
				select {
				case <-t.C:
					w.Send(update{})
				case <-exit:
					w.Send(update{})
					return
				}
			}
		}()

		var (
			sz          size.Event
			buf         screen.Buffer
			ops         = -1
			status      string
			left, right bool
		)
		defer func() {
			if buf != nil {
				buf.Release()
			}
		}()
		for {
			e := w.NextEvent()

			select {
			case <-exit:
				return
			default:
			}

			switch e := e.(type) {
			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					return
				}

			case size.Event:
				sz = e
				if sz.WidthPx+sz.HeightPx == 0 {
					return
				}
				ops = -1

			case paint.Event:
				ops = -1

			case key.Event:
				down := e.Direction != key.DirRelease
				switch e.Code {
				case key.CodeEscape:
					return
				case key.CodeLeftArrow, key.CodeA:
					left = down
				case key.CodeRightArrow, key.CodeD:
					right = down
				}

			case update:
				var v int64
				switch {
				case left && !right:
					v = -1
				case right && !left:
					v = 1
				}
				g.setJoystick(v)

				if st := g.scr.Status(); st != status {
					status = st
					log.Printf("screen: %s", status)
				}
				o := g.scr.Ops()
				if o == ops || sz.WidthPx == 0 {
					break
				}
				ops = o
				if buf == nil || buf.Size() != sz.Size() {
					if buf != nil {
						buf.Release()
					}
					if buf, err = s.NewBuffer(sz.Size()); err != nil {
						err = fmt.Errorf("gui: %v", err)
						return
					}
				}
				copy(buf.RGBA().Pix, g.scr.Image(sz.Size()).Pix)
				w.Upload(image.Point{}, buf, buf.Bounds())
				w.Publish()

			case error:
				log.Print(e)
			}
		}
	})
	return err
}
