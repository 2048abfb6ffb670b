package host

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
)

// Console is a text terminal for a program. In integer mode it reads
// integers separated by whitespace or commas and writes one value per line.
// In ASCII mode every input byte is a value, and output values below 128
// are written as bytes.
type Console struct {
	r     io.Reader
	w     io.Writer
	ascii bool
}

func NewConsole(r io.Reader, w io.Writer, ascii bool) *Console {
	return &Console{r: r, w: w, ascii: ascii}
}

// Input starts reading the console and returns a channel that yields
// preset followed by the values read. The channel is closed at the end of
// input.
func (c *Console) Input(preset []int64) <-chan int64 {
	ch := make(chan int64)
	go c.readInput(preset, ch)
	return ch
}

func (c *Console) readInput(preset []int64, ch chan<- int64) {
	defer close(ch)
	for _, v := range preset {
		ch <- v
	}
	if c.r == nil {
		return
	}
	if c.ascii {
		br := bufio.NewReader(c.r)
		for {
			b, err := br.ReadByte()
			if err != nil {
				if err != io.EOF {
					log.Printf("reading input: %v", err)
				}
				return
			}
			ch <- int64(b)
		}
	}
	s := bufio.NewScanner(c.r)
	for s.Scan() {
		fields := strings.FieldsFunc(s.Text(), func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\r'
		})
		for _, f := range fields {
			v, err := strconv.ParseInt(f, 10, 64)
			if err != nil {
				log.Printf("ignoring input %q: not an integer", f)
				continue
			}
			ch <- v
		}
	}
	if err := s.Err(); err != nil {
		log.Printf("reading input: %v", err)
	}
}

// Output writes v to the console.
func (c *Console) Output(v int64) {
	if c.ascii && v >= 0 && v < 128 {
		c.w.Write([]byte{byte(v)})
		return
	}
	fmt.Fprintln(c.w, v)
}
