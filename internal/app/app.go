package app

import (
	"fmt"
	"runtime"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/kobzarvs/qstock/internal/commit"
	"github.com/kobzarvs/qstock/internal/config"
	"github.com/kobzarvs/qstock/internal/logger"
	"github.com/kobzarvs/qstock/internal/record"
	"github.com/kobzarvs/qstock/internal/session"
	"github.com/kobzarvs/qstock/internal/store"
	"github.com/kobzarvs/qstock/internal/table"
	"github.com/kobzarvs/qstock/internal/tui"
	"github.com/kobzarvs/qstock/internal/window"
)

// maxFrameRounds bounds how many chained frame requests run before a paint.
const maxFrameRounds = 4

type Options struct {
	// DataPath is the inventory snapshot; empty means store.DefaultPath.
	DataPath string
	// Seed > 0 runs on an in-memory store filled with that many demo
	// records. Nothing is saved.
	Seed  int
	Debug bool
}

// App is the top-level runtime for qstock.
type App struct {
	opts Options
}

func New(opts Options) *App {
	return &App{opts: opts}
}

// frameQueue is the paint tick of the tables: requested frames run on the
// UI goroutine after the current event, before the screen is drawn.
type frameQueue struct {
	fns []func()
}

func (q *frameQueue) RequestFrame(fn func()) { q.fns = append(q.fns, fn) }

// drain runs queued frames, including the ones they request, for at most
// rounds rounds. It reports whether the queue is empty.
func (q *frameQueue) drain(rounds int) bool {
	for i := 0; i < rounds && len(q.fns) > 0; i++ {
		fns := q.fns
		q.fns = nil
		for _, fn := range fns {
			fn()
		}
	}
	return len(q.fns) == 0
}

func (a *App) Run() (err error) {
	runtime.LockOSThread()
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(a.opts.Debug); err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, logger.Close()) }()
	log := logger.Named("app")

	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, st.Close()) }()

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	s.EnableMouse()
	defer s.Fini()

	post := func(fn func()) {
		if perr := s.PostEvent(tcell.NewEventInterrupt(fn)); perr != nil {
			log.Warn("event queue full", zap.Error(perr))
		}
	}
	frames := &frameQueue{}
	clock := clockwork.NewRealClock()

	var ui *tui.UI
	lang, lerr := language.Parse(cfg.Table.Language)
	if lerr != nil {
		log.Warn("bad collation language", zap.String("language", cfg.Table.Language), zap.Error(lerr))
		lang = language.Und
	}
	newPane := func(kind record.Kind) *tui.Pane {
		view := tui.NewView()
		t := table.New(view, st, table.Options{
			Kind: kind,
			Policy: window.Policy{
				Threshold:        cfg.Table.VirtualizeThreshold,
				Buffer:           cfg.Table.BufferRows,
				HardCap:          cfg.Table.HardCap,
				DefaultRowHeight: cfg.Table.RowHeight,
			},
			Palette:   cfg.Table.Stripes,
			Language:  lang,
			Resolver:  st,
			Catalog:   st.Catalog(),
			Scheduler: frames,
			Clock:     clock,
			Quiet:     cfg.Table.Debounce(),
			Post:      post,
			Logger:    logger.Named("table"),
			OnDefect: func(derr error) {
				ui.SetMessage(derr.Error())
			},
			OnCommitError: func(key commit.Key, _ any, cerr error) {
				ui.SetMessage(fmt.Sprintf("%s not saved: %v", key.Field, cerr))
			},
		})
		return &tui.Pane{Name: kind.String(), Table: t, View: view}
	}
	panes := []*tui.Pane{newPane(record.KindInstance), newPane(record.KindOther)}
	active, _ := record.ParseKind(cfg.Table.StartList)

	ui = tui.New(tui.Options{
		Panes:  panes,
		Active: int(active),
		Lookup: st,
		Keymap: cfg.Keymap,
		Styles: tui.NewStyles(cfg.Theme, cfg.Table.Stripes),
		Logger: logger.Named("ui"),
	})
	sess := a.openSession(log)
	if sess != nil {
		for _, p := range panes {
			if ls, ok := sess.List(p.Name); ok {
				p.RestoreState(ls, st)
			}
		}
		if name := sess.ActiveList(); name != "" {
			ui.SetActive(name)
		}
	}
	defer func() {
		for _, p := range panes {
			err = multierr.Append(err, p.Table.Flush())
			if sess != nil {
				sess.SetList(p.Name, p.SaveState())
			}
			p.Table.Close()
		}
		if sess != nil {
			sess.SetActiveList(ui.Pane().Name)
			err = multierr.Append(err, sess.Save())
		}
	}()

	w, h := s.Size()
	ui.Resize(w, h)
	for _, p := range panes {
		p.Table.Init()
	}
	var (
		lastPaint   time.Time
		paintQueued bool
		interval    = cfg.Table.PaintInterval()
	)
	paint := func() {
		if !frames.drain(maxFrameRounds) {
			post(nil)
		}
		ui.Sync()
		ui.Render(s)
		lastPaint = clock.Now()
	}
	// requestPaint paints at most once per interval; events arriving
	// faster share one deferred paint.
	requestPaint := func() {
		wait := interval - clock.Since(lastPaint)
		if wait <= 0 {
			paint()
			return
		}
		if paintQueued {
			return
		}
		paintQueued = true
		// The loop paints after handling the posted event.
		clock.AfterFunc(wait, func() {
			post(func() { paintQueued = false })
		})
	}
	paint()
	log.Info("started", zap.Int("records", st.Len()), zap.String("list", ui.Pane().Name))

	for {
		switch ev := s.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventKey:
			if ui.HandleKey(ev) {
				return nil
			}
		case *tcell.EventMouse:
			ui.HandleMouse(ev)
		case *tcell.EventResize:
			s.Sync()
			ui.Resize(s.Size())
		case *tcell.EventInterrupt:
			if fn, ok := ev.Data().(func()); ok && fn != nil {
				fn()
			}
		}
		requestPaint()
	}
}

func (a *App) openStore() (*store.Store, error) {
	log := logger.Named("store")
	if a.opts.Seed > 0 {
		st, err := store.Open(store.Options{Logger: log})
		if err != nil {
			return nil, err
		}
		st.Seed(a.opts.Seed)
		return st, nil
	}
	path := a.opts.DataPath
	if path == "" {
		p, err := store.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return store.Open(store.Options{Path: path, Logger: log})
}

// openSession loads the remembered list state. Demo runs have none, and a
// broken session file only costs the restore.
func (a *App) openSession(log *zap.Logger) *session.Manager {
	if a.opts.Seed > 0 {
		return nil
	}
	path, err := session.DefaultPath()
	if err != nil {
		log.Warn("no session path", zap.Error(err))
		return nil
	}
	m, err := session.Open(path)
	if err != nil {
		log.Warn("session not restored", zap.String("path", path), zap.Error(err))
	}
	return m
}
