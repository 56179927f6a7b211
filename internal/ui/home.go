package ui

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"briefdesk/internal/store"
)

// Home is the main screen: briefing list on the left, summary preview on the
// right.
type Home struct {
	*tview.Flex
	table   *tview.Table
	preview *tview.TextView
	header  *tview.TextView
	footer  *tview.TextView

	briefings []*store.Briefing
	selected  int

	onRefresh func()
	onQuit    func()
}

func NewHome() *Home {
	h := &Home{}

	h.header = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	h.header.SetBackgroundColor(ColorBackgroundPanel)

	h.table = tview.NewTable().
		SetSelectable(true, false).
		SetSelectedStyle(tcell.StyleDefault.
			Background(ColorSelected).
			Foreground(ColorSelectedText))
	h.table.SetBackgroundColor(ColorBackground)

	h.preview = tview.NewTextView().
		SetDynamicColors(false).
		SetScrollable(true).
		SetWrap(true)
	h.preview.SetBackgroundColor(ColorBackground)

	h.footer = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	h.footer.SetBackgroundColor(ColorBackgroundPanel)
	h.footer.SetText("[green]↑↓/jk[-] navigate  [green]r[-] refresh  [green]q[-] quit")

	separator := tview.NewBox().SetBackgroundColor(ColorBorder)

	content := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(h.table, 0, 35, true).
		AddItem(separator, 1, 0, false).
		AddItem(h.preview, 0, 65, false)

	h.Flex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(h.header, 1, 0, false).
		AddItem(content, 0, 1, true).
		AddItem(h.footer, 1, 0, false)

	h.table.SetSelectionChangedFunc(func(row, col int) {
		h.selected = row
		h.updatePreview()
	})
	h.setupInput()
	return h
}

func (h *Home) SetCallbacks(onRefresh, onQuit func()) {
	h.onRefresh = onRefresh
	h.onQuit = onQuit
}

func (h *Home) setupInput() {
	h.table.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'q':
			if h.onQuit != nil {
				h.onQuit()
			}
			return nil
		case 'r':
			if h.onRefresh != nil {
				h.onRefresh()
			}
			return nil
		case 'j':
			return tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)
		case 'k':
			return tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)
		}
		return event
	})
}

func (h *Home) Update(briefings []*store.Briefing) {
	h.briefings = briefings
	h.renderTable()
	h.updateHeader()
	h.updatePreview()
}

func (h *Home) renderTable() {
	h.table.Clear()
	for i, b := range h.briefings {
		icon, color := summaryIcon(b.SummaryReady)
		title := b.Title
		if len(title) > 24 {
			title = title[:22] + ".."
		}
		age := humanize.Time(b.CreatedAt)
		text := fmt.Sprintf(" %s %-24s %s", icon, title, age)
		cell := tview.NewTableCell(text).
			SetTextColor(color).
			SetBackgroundColor(ColorBackground).
			SetExpansion(1).
			SetSelectable(true)
		h.table.SetCell(i, 0, cell)
	}

	// Clamp selection
	if h.selected >= len(h.briefings) && len(h.briefings) > 0 {
		h.selected = len(h.briefings) - 1
	}
	if len(h.briefings) > 0 {
		h.table.Select(h.selected, 0)
	}
}

func (h *Home) updateHeader() {
	pending := 0
	for _, b := range h.briefings {
		if !b.SummaryReady {
			pending++
		}
	}
	h.header.SetText(fmt.Sprintf(
		"[blue]BRIEFDESK[-]   %d briefings  [yellow]◐ %d summarizing[-]",
		len(h.briefings), pending))
}

func (h *Home) updatePreview() {
	if h.selected < 0 || h.selected >= len(h.briefings) {
		h.preview.Clear()
		return
	}
	b := h.briefings[h.selected]
	if !b.SummaryReady {
		h.preview.SetText(fmt.Sprintf("%s\n\nSummary is still being computed…", b.Title))
		return
	}
	h.preview.SetText(fmt.Sprintf("%s\n\n%s\n\n——\n\n%s", b.Title, b.Summary, b.Body))
}

// Notice flashes a one-line message in the footer.
func (h *Home) Notice(msg string) {
	h.footer.SetText(fmt.Sprintf("[yellow]%s[-]   [green]↑↓/jk[-] navigate  [green]r[-] refresh  [green]q[-] quit", msg))
}
