// Package commit rate-limits field edits before they reach the store.
//
// Text fields are debounced per (record, field): every event re-arms a
// timer and only the value present when the quiet period elapses is
// committed. Discrete fields commit on the spot. The pipeline never owns
// record state; it only forwards (id, field, value) to a Committer.
package commit

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/kobzarvs/qstock/internal/record"
)

// DefaultQuiet is the debounce period for text fields.
const DefaultQuiet = 150 * time.Millisecond

var ErrClosed = errors.New("commit pipeline closed")

// Committer is the store's update contract.
type Committer interface {
	UpdateField(id string, field record.Field, value any) error
}

// Key identifies one debounced value.
type Key struct {
	ID    string
	Field record.Field
}

type Options struct {
	Clock clockwork.Clock
	Quiet time.Duration
	// Post runs fn on the goroutine that owns the UI. Timer callbacks go
	// through it so commits never race a render. Nil runs fn directly.
	Post func(fn func())
	// OnError receives failed commits. The pipeline does not retry or
	// roll anything back.
	OnError func(key Key, value any, err error)
	Logger  *zap.Logger
}

type pending struct {
	timer clockwork.Timer
	gen   uint64
	value any
}

// Pipeline is the schedule table of pending edits.
type Pipeline struct {
	committer Committer
	clock     clockwork.Clock
	quiet     time.Duration
	post      func(func())
	onError   func(Key, any, error)
	log       *zap.Logger

	mu      sync.Mutex
	pending map[Key]*pending
	gen     uint64
	closed  bool
}

func New(c Committer, opts Options) *Pipeline {
	p := &Pipeline{
		committer: c,
		clock:     opts.Clock,
		quiet:     opts.Quiet,
		post:      opts.Post,
		onError:   opts.OnError,
		log:       opts.Logger,
		pending:   make(map[Key]*pending),
	}
	if p.clock == nil {
		p.clock = clockwork.NewRealClock()
	}
	if p.quiet <= 0 {
		p.quiet = DefaultQuiet
	}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	return p
}

// OnFieldEvent handles one edit. Discrete edits are committed before it
// returns and their error is returned; debounced edits return nil and
// report failures through OnError.
func (p *Pipeline) OnFieldEvent(id string, field record.Field, value any, discrete bool) error {
	key := Key{ID: id, Field: field}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if old, ok := p.pending[key]; ok {
		old.timer.Stop()
		delete(p.pending, key)
	}
	if discrete {
		p.mu.Unlock()
		return p.commit(key, value)
	}
	p.gen++
	gen := p.gen
	p.pending[key] = &pending{
		gen:   gen,
		value: value,
		timer: p.clock.AfterFunc(p.quiet, func() { p.expired(key, gen) }),
	}
	p.mu.Unlock()
	return nil
}

func (p *Pipeline) expired(key Key, gen uint64) {
	if p.post != nil {
		p.post(func() { p.fire(key, gen) })
		return
	}
	p.fire(key, gen)
}

// fire commits a pending edit unless it was replaced or cancelled after
// its timer went off.
func (p *Pipeline) fire(key Key, gen uint64) {
	p.mu.Lock()
	pe, ok := p.pending[key]
	if !ok || pe.gen != gen {
		p.mu.Unlock()
		return
	}
	delete(p.pending, key)
	p.mu.Unlock()
	_ = p.commit(key, pe.value)
}

func (p *Pipeline) commit(key Key, value any) error {
	err := p.committer.UpdateField(key.ID, key.Field, value)
	if err != nil {
		p.log.Error("commit failed",
			zap.String("id", key.ID),
			zap.String("field", string(key.Field)),
			zap.Error(err))
		if p.onError != nil {
			p.onError(key, value, err)
		}
		return err
	}
	p.log.Debug("committed", zap.String("id", key.ID), zap.String("field", string(key.Field)))
	return nil
}

// Cancel drops every pending edit of a record. It returns how many were
// dropped.
func (p *Pipeline) Cancel(id string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for key, pe := range p.pending {
		if key.ID != id {
			continue
		}
		pe.timer.Stop()
		delete(p.pending, key)
		n++
	}
	return n
}

// CancelAll drops every pending edit.
func (p *Pipeline) CancelAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, pe := range p.pending {
		pe.timer.Stop()
		delete(p.pending, key)
	}
}

// Flush commits every pending edit now.
func (p *Pipeline) Flush() error {
	p.mu.Lock()
	batch := make(map[Key]any, len(p.pending))
	for key, pe := range p.pending {
		pe.timer.Stop()
		batch[key] = pe.value
		delete(p.pending, key)
	}
	p.mu.Unlock()

	var err error
	for key, value := range batch {
		err = multierr.Append(err, p.commit(key, value))
	}
	return err
}

// Close cancels everything and rejects later events.
func (p *Pipeline) Close() {
	p.CancelAll()
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

func (p *Pipeline) Pending(id string, field record.Field) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.pending[Key{ID: id, Field: field}]
	return ok
}

// PendingValue returns the value waiting to be committed.
func (p *Pipeline) PendingValue(id string, field record.Field) (any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pe, ok := p.pending[Key{ID: id, Field: field}]
	if !ok {
		return nil, false
	}
	return pe.value, true
}

func (p *Pipeline) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}
