package formatter

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	help   lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
	border lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title:  NewBold(t),
		ok:     NewBold(s),
		err:    NewBold(e),
		warn:   NewStyle(w),
		help:   NewEm(h),
		header: NewBold(t).Padding(0, 1),
		cell:   lipgloss.NewStyle().Padding(0, 1),
		border: NewStyle(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// Title styles a heading.
func Title(s string) string { return styles.title.Render(s) }

// Success styles a confirmation message.
func Success(s string) string { return styles.ok.Render(s) }

// Failure styles an error message.
func Failure(s string) string { return styles.err.Render(s) }

// Warning styles a warning.
func Warning(s string) string { return styles.warn.Render(s) }

// Hint styles secondary help text.
func Hint(s string) string { return styles.help.Render(s) }
