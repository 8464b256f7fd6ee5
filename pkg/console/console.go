// Package console connects the interpreter to a terminal: values are read
// line by line from an input stream and output events are rendered with
// lipgloss styles.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"visualg/interpreter-go/pkg/runtime"
)

const clearScreen = "\x1b[2J\x1b[H"

var palette = map[string]lipgloss.Color{
	"preto":    lipgloss.Color("0"),
	"vermelho": lipgloss.Color("1"),
	"verde":    lipgloss.Color("2"),
	"amarelo":  lipgloss.Color("3"),
	"azul":     lipgloss.Color("4"),
	"magenta":  lipgloss.Color("5"),
	"ciano":    lipgloss.Color("6"),
	"branco":   lipgloss.Color("7"),
	"cinza":    lipgloss.Color("8"),
}

// Console implements runtime.IO over a reader and a writer.
type Console struct {
	in       *bufio.Reader
	out      io.Writer
	renderer *lipgloss.Renderer
	logger   *slog.Logger
	color    bool
	timeout  time.Duration

	mu    sync.Mutex
	style lipgloss.Style

	readerOnce sync.Once
	lines      chan string
	readErr    error // set before lines is closed
}

type Option func(*Console)

// WithColor toggles ANSI rendering of color and clear-screen events.
func WithColor(enabled bool) Option {
	return func(c *Console) { c.color = enabled }
}

// WithInputTimeout makes a pending read give up after d, which the
// interpreter reports as missing input. Zero waits forever.
func WithInputTimeout(d time.Duration) Option {
	return func(c *Console) { c.timeout = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Console) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		in:       bufio.NewReader(in),
		out:      out,
		renderer: lipgloss.NewRenderer(out),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		color:    true,
		lines:    make(chan string),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.style = c.renderer.NewStyle()
	return c
}

// RequestInput reads lines until one parses as req.ExpectedType. Invalid
// answers are reported on the output and asked for again. End of input,
// timeout and cancellation close the channel without a value.
func (c *Console) RequestInput(ctx context.Context, req runtime.InputRequest) <-chan *runtime.InputValue {
	c.readerOnce.Do(func() { go c.readLines() })
	ch := make(chan *runtime.InputValue, 1)
	go func() {
		defer close(ch)
		var deadline <-chan time.Time
		if c.timeout > 0 {
			timer := time.NewTimer(c.timeout)
			defer timer.Stop()
			deadline = timer.C
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-deadline:
				c.logger.Debug("input timed out", "variable", req.VariableName)
				return
			case text, ok := <-c.lines:
				if !ok {
					if !errors.Is(c.readErr, io.EOF) {
						c.logger.Warn("input read failed", "error", c.readErr)
					}
					return
				}
				val, err := runtime.ParseInput(text, req.ExpectedType)
				if err != nil {
					c.write(fmt.Sprintf("valor invalido para %s: %v\n", req.VariableName, err))
					continue
				}
				ch <- val
				return
			}
		}
	}()
	return ch
}

// readLines feeds c.lines from the input stream until the first read error,
// then records it and closes c.lines so every later receive ends at once.
func (c *Console) readLines() {
	for {
		text, err := c.in.ReadString('\n')
		if err != nil && (err != io.EOF || text == "") {
			c.readErr = err
			close(c.lines)
			return
		}
		c.lines <- strings.TrimRight(text, "\r\n")
	}
}

func (c *Console) Emit(event runtime.OutputEvent) {
	switch e := event.(type) {
	case runtime.TextEvent:
		c.write(e.Text)
	case runtime.ClearEvent:
		if c.color {
			c.writeRaw(clearScreen)
		}
	case runtime.ChangeColorEvent:
		c.changeColor(e)
	}
}

func (c *Console) changeColor(e runtime.ChangeColorEvent) {
	color, ok := palette[strings.ToLower(e.Color)]
	if !ok {
		c.logger.Debug("unknown color ignored", "color", e.Color)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e.Target == runtime.Background {
		c.style = c.style.Background(color)
	} else {
		c.style = c.style.Foreground(color)
	}
}

// Style returns the style applied to text output.
func (c *Console) Style() lipgloss.Style {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.style
}

// write renders each line on its own so lipgloss does not pad short lines.
func (c *Console) write(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.color {
		io.WriteString(c.out, text)
		return
	}
	parts := strings.Split(text, "\n")
	for i, part := range parts {
		if part != "" {
			parts[i] = c.style.Render(part)
		}
	}
	io.WriteString(c.out, strings.Join(parts, "\n"))
}

func (c *Console) writeRaw(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	io.WriteString(c.out, text)
}
