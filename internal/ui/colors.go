package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/dumper/internal/theme"
)

var (
	lightStyles = NewPalette("#5A3FC0", "#0A7E4F", "#C62828", "#B35C00", "#6B6B6B", "#1A1A1A")
	darkStyles  = NewPalette("#7D56F4", "#04B575", "#FF5F5F", "#FFA500", "#8A8A8A", "#EDEDED")
)

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	help   lipgloss.Style
	text   lipgloss.Style
	panel  lipgloss.Style
	button lipgloss.Style
	active lipgloss.Style
	muted  lipgloss.Style
}

func NewPalette(t, s, e, w, h, fg string) *Palette {
	return &Palette{
		title:  NewBold(t).MarginBottom(1),
		ok:     NewBold(s),
		err:    NewBold(e),
		warn:   NewStyle(w),
		help:   NewEm(h),
		text:   NewStyle(fg),
		panel:  NewStyle(fg).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(h)).Padding(0, 1),
		button: NewStyle(fg).Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color(h)).Padding(0, 1),
		active: NewBold(t).Border(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color(t)).Padding(0, 1),
		muted:  NewStyle(h),
	}
}

// paletteFor returns the stylesheet of a resolved theme.
func paletteFor(resolved theme.Preference) *Palette {
	if resolved == theme.Dark {
		return darkStyles
	}
	return lightStyles
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
