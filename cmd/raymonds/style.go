package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bobmcallan/raymonds/internal/common"
	"github.com/bobmcallan/raymonds/internal/view"
)

// painter colours score text for the terminal. Plain output returns nil,
// which the markdown renderers treat as no colouring.
func (c *cli) painter() view.Painter {
	if c.plain {
		return nil
	}
	styles := make(map[common.ColorToken]lipgloss.Style)
	return func(text string, color common.ColorToken) string {
		style, ok := styles[color]
		if !ok {
			style = lipgloss.NewStyle().Foreground(lipgloss.Color("#" + color.Hex())).Bold(true)
			styles[color] = style
		}
		return style.Render(text)
	}
}
