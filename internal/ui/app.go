package ui

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/rivo/tview"

	"briefdesk/internal/events"
	"briefdesk/internal/store"
)

// App is the terminal dashboard. It doubles as an events.Surface: relayed
// briefing events are queued and applied on the tview draw loop, so the
// dashboard refreshes without polling.
type App struct {
	tapp   *tview.Application
	home   *Home
	store  *store.Store
	logger *slog.Logger

	ch   chan events.Event
	done chan struct{}
	once sync.Once
}

func NewApp(st *store.Store, logger *slog.Logger) *App {
	a := &App{
		store:  st,
		logger: logger,
		ch:     make(chan events.Event, 16),
		done:   make(chan struct{}),
	}

	a.tapp = tview.NewApplication()
	a.home = NewHome()
	a.home.SetCallbacks(
		func() { a.refreshHome() },
		func() { a.tapp.Stop() },
	)
	a.tapp.SetRoot(a.home, true).EnableMouse(false)
	return a
}

// Send implements events.Surface.
func (a *App) Send(e events.Event) {
	select {
	case <-a.done:
		return
	default:
	}
	select {
	case a.ch <- e:
	default:
	}
}

// Destroyed implements events.Surface.
func (a *App) Destroyed() bool {
	select {
	case <-a.done:
		return true
	default:
		return false
	}
}

func (a *App) Run() error {
	go a.eventPump()
	a.refreshHome()
	err := a.tapp.Run()
	a.once.Do(func() { close(a.done) })
	return err
}

func (a *App) eventPump() {
	for {
		select {
		case <-a.done:
			return
		case e := <-a.ch:
			a.tapp.QueueUpdateDraw(func() {
				a.refreshHome()
				switch e.Type {
				case events.BriefingCreated:
					a.home.Notice(fmt.Sprintf("new briefing #%d", e.BriefingID))
				case events.SummaryReady:
					a.home.Notice(fmt.Sprintf("summary ready for #%d", e.BriefingID))
				}
			})
		}
	}
}

func (a *App) refreshHome() {
	briefings, err := a.store.LoadBriefings()
	if err != nil {
		a.logger.Warn("ui: load briefings", "err", err)
		return
	}
	a.home.Update(briefings)
}
