package console

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorError = lipgloss.Color("#EF4444")
	colorMuted = lipgloss.Color("#6B7280")
)

const (
	bannerFailed   = "*** Execucao terminada ***"
	bannerFinished = "*** Fim da execucao ***"
	bannerStopped  = "*** Execucao interrompida ***"
)

// Failure prints err verbatim followed by the termination banner.
func (c *Console) Failure(err error) {
	errorStyle := c.renderer.NewStyle().Foreground(colorError)
	bannerStyle := errorStyle.Bold(true)
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.paint(errorStyle, err.Error()))
	fmt.Fprintln(c.out, c.paint(bannerStyle, bannerFailed))
}

// Finished prints the end-of-run banner.
func (c *Console) Finished() {
	c.banner(bannerFinished)
}

// Stopped prints the banner for a run stopped by the user.
func (c *Console) Stopped() {
	c.banner(bannerStopped)
}

func (c *Console) banner(text string) {
	style := c.renderer.NewStyle().Foreground(colorMuted).Italic(true)
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, c.paint(style, text))
}

func (c *Console) paint(style lipgloss.Style, text string) string {
	if !c.color {
		return text
	}
	return style.Render(text)
}

// Writer exposes the underlying output stream.
func (c *Console) Writer() io.Writer {
	return c.out
}
