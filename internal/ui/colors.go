package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/hardbound/stacks/internal/theme"
)

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

// darkStyles and lightStyles are the two palettes the theme store switches between.
var (
	darkStyles  = NewPalette("#7D56F4", "#04B575", "#FF5F56", "#FFA500", "#626262")
	lightStyles = NewPalette("#5A3FC0", "#027A55", "#C0392B", "#A5690B", "#8A8A8A")
)

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

// paletteFor selects the stylesheet matching the current theme mode.
func paletteFor(mode theme.Mode) *Palette {
	if mode == theme.ModeLight {
		return lightStyles
	}
	return darkStyles
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
