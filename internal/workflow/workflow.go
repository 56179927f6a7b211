// Package workflow ingests briefing documents from the inbox directory and
// computes their summaries. Each completed unit of work is announced to the
// UI through the relay: briefing-created once the record exists,
// summary-ready once the summary is persisted.
package workflow

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"briefdesk/internal/notify"
	"briefdesk/internal/store"
	"briefdesk/internal/summarize"
)

// Notifier is the relay seam. Implemented by *relay.Relay.
type Notifier interface {
	NotifyBriefingCreated(id int64)
	NotifySummaryReady(id int64)
}

type Config struct {
	InboxDir       string
	RescanInterval time.Duration
	MaxSentences   int
}

// Engine watches the inbox for new documents. fsnotify gives prompt pickup;
// a periodic rescan catches events lost while a file was still being
// written or while the watcher was down.
type Engine struct {
	store  *store.Store
	relay  Notifier
	out    *notify.Notifier
	cfg    Config
	stop   chan struct{}
	wg     sync.WaitGroup
	logger *slog.Logger
}

func New(st *store.Store, relay Notifier, out *notify.Notifier, cfg Config, logger *slog.Logger) *Engine {
	if cfg.RescanInterval <= 0 {
		cfg.RescanInterval = 30 * time.Second
	}
	return &Engine{
		store:  st,
		relay:  relay,
		out:    out,
		cfg:    cfg,
		stop:   make(chan struct{}),
		logger: logger,
	}
}

func (e *Engine) Start() error {
	if err := os.MkdirAll(e.cfg.InboxDir, 0700); err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(e.cfg.InboxDir); err != nil {
		watcher.Close()
		return err
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer watcher.Close()

		e.Scan()

		ticker := time.NewTicker(e.cfg.RescanInterval)
		defer ticker.Stop()
		for {
			select {
			case <-e.stop:
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Rename) {
					e.Scan()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				e.logger.Warn("workflow: watcher error", "err", err)
			case <-ticker.C:
				e.Scan()
			}
		}
	}()
	return nil
}

func (e *Engine) Stop() {
	close(e.stop)
	e.wg.Wait()
}

// Scan ingests every eligible inbox file that has not been seen before.
func (e *Engine) Scan() {
	entries, err := os.ReadDir(e.cfg.InboxDir)
	if err != nil {
		e.logger.Warn("workflow: read inbox", "err", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !eligible(entry.Name()) {
			continue
		}
		path := filepath.Join(e.cfg.InboxDir, entry.Name())
		seen, err := e.store.HasSource(path)
		if err != nil {
			e.logger.Warn("workflow: source lookup", "path", path, "err", err)
			continue
		}
		if seen {
			continue
		}
		e.ingest(path)
	}
}

func eligible(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".txt":
		return true
	}
	return false
}

func (e *Engine) ingest(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		e.logger.Warn("workflow: read briefing", "path", path, "err", err)
		return
	}
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	body := string(data)

	id, err := e.store.InsertBriefing(title, path, body)
	if err != nil {
		e.logger.Warn("workflow: insert briefing", "path", path, "err", err)
		return
	}
	e.logger.Info("workflow: briefing ingested", "id", id, "title", title)
	e.relay.NotifyBriefingCreated(id)
	if e.out != nil {
		e.out.BriefingCreated(&store.Briefing{ID: id, Title: title})
	}

	summary := summarize.Summarize(body, e.cfg.MaxSentences)
	if err := e.store.SetSummary(id, summary); err != nil {
		e.logger.Warn("workflow: set summary", "id", id, "err", err)
		return
	}
	e.logger.Info("workflow: summary ready", "id", id)
	e.relay.NotifySummaryReady(id)
	if e.out != nil {
		e.out.SummaryReady(&store.Briefing{ID: id, Title: title})
	}

	e.store.Touch()
}
