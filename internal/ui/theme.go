package ui

import "github.com/gdamore/tcell/v2"

// Theme colors for the TUI.
var (
	ColorBackground      = tcell.NewHexColor(0x1e1e2e)
	ColorBackgroundPanel = tcell.NewHexColor(0x181825)
	ColorPrimary         = tcell.NewHexColor(0x89b4fa) // blue
	ColorText            = tcell.NewHexColor(0xcdd6f4)
	ColorTextMuted       = tcell.NewHexColor(0x6c7086)
	ColorSuccess         = tcell.NewHexColor(0xa6e3a1) // green
	ColorWarning         = tcell.NewHexColor(0xf9e2af) // yellow
	ColorBorder          = tcell.NewHexColor(0x45475a)
	ColorSelected        = tcell.NewHexColor(0x89b4fa)
	ColorSelectedText    = tcell.NewHexColor(0x1e1e2e)
)

// Summary state icons
const (
	IconReady   = "●"
	IconPending = "◐"
)

func summaryIcon(ready bool) (string, tcell.Color) {
	if ready {
		return IconReady, ColorSuccess
	}
	return IconPending, ColorWarning
}
