// Package store keeps the inventory in memory and persists it as a JSON
// snapshot. It is the record source the tables read from and commit to.
package store

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/kobzarvs/qstock/internal/record"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrBadValue = errors.New("bad field value")
	ErrClosed   = errors.New("store closed")
)

// DefaultAutosave is how often a dirty store is written back.
const DefaultAutosave = 15 * time.Second

// Document is the on-disk snapshot.
type Document struct {
	Records   []record.Record   `json:"records"`
	Producers map[string]string `json:"producers,omitempty"` // id -> name
	Shops     map[string]string `json:"shops,omitempty"`     // id -> name
	Catalog   []string          `json:"catalog,omitempty"`
	LastSaved time.Time         `json:"last_saved"`
}

// Named is one relation row.
type Named struct {
	ID   string
	Name string
}

type Options struct {
	// Path of the JSON snapshot. Empty keeps the store in memory only.
	Path     string
	Autosave time.Duration
	Clock    clockwork.Clock
	Logger   *zap.Logger
}

// Store is safe for concurrent use. Listeners run synchronously on the
// goroutine that made the change, after the lock is released.
type Store struct {
	mu        sync.RWMutex
	records   []record.Record
	index     map[string]int
	producers map[string]string
	shops     map[string]string
	catalog   map[string]struct{}
	path      string
	dirty     bool
	closed    bool

	listeners    map[int]func()
	nextListener int

	clock clockwork.Clock
	log   *zap.Logger
	stop  chan struct{}
	done  chan struct{}

	// autosave failures, reported by Close
	saveErr error
}

// New returns an empty in-memory store.
func New() *Store {
	s, _ := Open(Options{})
	return s
}

// Open loads the snapshot at opts.Path, if any, and starts the autosave
// loop. A missing file yields an empty store.
func Open(opts Options) (*Store, error) {
	s := &Store{
		index:     make(map[string]int),
		producers: make(map[string]string),
		shops:     make(map[string]string),
		catalog:   make(map[string]struct{}),
		listeners: make(map[int]func()),
		path:      opts.Path,
		clock:     opts.Clock,
		log:       opts.Logger,
	}
	if s.clock == nil {
		s.clock = clockwork.NewRealClock()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.path == "" {
		return s, nil
	}
	if err := s.load(); err != nil {
		return nil, err
	}

	interval := opts.Autosave
	if interval == 0 {
		interval = DefaultAutosave
	}
	if interval > 0 {
		s.stop = make(chan struct{})
		s.done = make(chan struct{})
		go s.autosaveLoop(interval)
	}
	return s, nil
}

// DefaultPath returns the snapshot location, creating its directory.
func DefaultPath() (string, error) {
	dir := os.Getenv("QSTOCK_STATE_HOME")
	if dir == "" {
		stateDir := os.Getenv("XDG_STATE_HOME")
		if stateDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			stateDir = filepath.Join(home, ".local", "state")
		}
		dir = filepath.Join(stateDir, "qstock")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "inventory.json"), nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode %s: %w", s.path, err)
	}
	s.replace(doc)
	return nil
}

// replace installs a document. Caller holds the lock or owns s exclusively.
func (s *Store) replace(doc Document) {
	s.records = s.records[:0]
	clear(s.index)
	for _, r := range doc.Records {
		// Records without ids are kept so the renderer can report them.
		if r.ID != "" {
			if _, dup := s.index[r.ID]; !dup {
				s.index[r.ID] = len(s.records)
			}
		}
		s.records = append(s.records, r.Clone())
	}
	s.producers = cloneMap(doc.Producers)
	s.shops = cloneMap(doc.Shops)
	clear(s.catalog)
	for _, name := range doc.Catalog {
		s.catalog[foldName(name)] = struct{}{}
	}
}

func cloneMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func foldName(name string) string {
	return cases.Fold().String(name)
}

// Snapshot returns the current document.
func (s *Store) Snapshot() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Document {
	doc := Document{
		Records:   make([]record.Record, len(s.records)),
		Producers: cloneMap(s.producers),
		Shops:     cloneMap(s.shops),
		Catalog:   make([]string, 0, len(s.catalog)),
	}
	for i, r := range s.records {
		doc.Records[i] = r.Clone()
	}
	for name := range s.catalog {
		doc.Catalog = append(doc.Catalog, name)
	}
	slices.Sort(doc.Catalog)
	return doc
}

// Records returns a copy of every record in insertion order.
func (s *Store) Records() []record.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]record.Record, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out
}

// Get returns one record.
func (s *Store) Get(id string) (record.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return record.Record{}, false
	}
	return s.records[i].Clone(), true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Subscribe registers fn to run after every change.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextListener++
	id := s.nextListener
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// changed marks the store dirty, releases the lock and notifies.
func (s *Store) changed() {
	s.dirty = true
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(), len(ids))
	for i, id := range ids {
		fns[i] = s.listeners[id]
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// UpdateField sets one field of a record.
func (s *Store) UpdateField(id string, field record.Field, value any) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	r := s.records[i]
	if err := s.apply(&r, field, value); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("update %s.%s: %w", id, field, err)
	}
	s.records[i] = r
	s.log.Debug("record updated", zap.String("id", id), zap.String("field", string(field)))
	s.changed()
	return nil
}

func (s *Store) apply(r *record.Record, field record.Field, value any) error {
	switch field {
	case record.FieldName, record.FieldFamily, record.FieldFormat, record.FieldNotes:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: want string, got %T", ErrBadValue, value)
		}
		switch field {
		case record.FieldName:
			r.Name = v
		case record.FieldFamily:
			r.Family = v
		case record.FieldFormat:
			r.Format = v
		default:
			r.Notes = v
		}
	case record.FieldProducer:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: want string, got %T", ErrBadValue, value)
		}
		if _, known := s.producers[v]; v != "" && !known {
			return fmt.Errorf("%w: unknown producer %q", ErrBadValue, v)
		}
		r.ProducerID = v
	case record.FieldShops:
		v, ok := value.([]string)
		if !ok {
			return fmt.Errorf("%w: want []string, got %T", ErrBadValue, value)
		}
		for _, id := range v {
			if _, known := s.shops[id]; !known {
				return fmt.Errorf("%w: unknown shop %q", ErrBadValue, id)
			}
		}
		r.ShopIDs = slices.Clone(v)
	case record.FieldHave, record.FieldBuy:
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: want bool, got %T", ErrBadValue, value)
		}
		if field == record.FieldHave {
			r.Have = v
		} else {
			r.Buy = v
		}
	case record.FieldKind:
		switch v := value.(type) {
		case record.Kind:
			r.Kind = v
		case string:
			k, ok := record.ParseKind(v)
			if !ok {
				return fmt.Errorf("%w: unknown kind %q", ErrBadValue, v)
			}
			r.Kind = k
		default:
			return fmt.Errorf("%w: want kind, got %T", ErrBadValue, value)
		}
	default:
		return fmt.Errorf("%w: unknown field %q", ErrBadValue, field)
	}
	return nil
}

// DeleteRecord removes a record.
func (s *Store) DeleteRecord(id string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	s.records = slices.Delete(s.records, i, i+1)
	s.reindex()
	s.log.Debug("record deleted", zap.String("id", id))
	s.changed()
	return nil
}

func (s *Store) reindex() {
	clear(s.index)
	for i, r := range s.records {
		if r.ID == "" {
			continue
		}
		if _, dup := s.index[r.ID]; !dup {
			s.index[r.ID] = i
		}
	}
}

// CreateRecord inserts seed under a fresh id and returns the id.
func (s *Store) CreateRecord(seed record.Record) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrClosed
	}
	seed = seed.Clone()
	seed.ID = uuid.NewString()
	s.index[seed.ID] = len(s.records)
	s.records = append(s.records, seed)
	s.log.Debug("record created", zap.String("id", seed.ID), zap.String("family", seed.Family))
	s.changed()
	return seed.ID, nil
}

// AddProducer registers a producer and returns its id.
func (s *Store) AddProducer(name string) string {
	return s.addRelation(s.producers, name)
}

// AddShop registers a shop and returns its id.
func (s *Store) AddShop(name string) string {
	return s.addRelation(s.shops, name)
}

func (s *Store) addRelation(m map[string]string, name string) string {
	s.mu.Lock()
	id := uuid.NewString()
	m[id] = name
	s.changed()
	return id
}

// RelationName resolves a producer or shop id. Unknown ids resolve to "".
func (s *Store) RelationName(rel record.Relation, id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch rel {
	case record.RelProducer:
		return s.producers[id]
	case record.RelShop:
		return s.shops[id]
	}
	return ""
}

// Producers lists producers ordered by name.
func (s *Store) Producers() []Named {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedNamed(s.producers)
}

// Shops lists shops ordered by name.
func (s *Store) Shops() []Named {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedNamed(s.shops)
}

func sortedNamed(m map[string]string) []Named {
	out := make([]Named, 0, len(m))
	for id, name := range m {
		out = append(out, Named{ID: id, Name: name})
	}
	slices.SortFunc(out, func(a, b Named) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.ID, b.ID))
	})
	return out
}

// Families lists the distinct families in use, in first-seen order.
func (s *Store) Families() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	var out []string
	for _, r := range s.records {
		key := foldName(r.Family)
		if r.Family == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r.Family)
	}
	return out
}

// SetCatalog replaces the canonical product names.
func (s *Store) SetCatalog(names []string) {
	s.mu.Lock()
	clear(s.catalog)
	for _, name := range names {
		s.catalog[foldName(name)] = struct{}{}
	}
	s.changed()
}

// Contains reports whether name is in the catalog, ignoring case.
func (s *Store) Contains(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.catalog[foldName(name)]
	return ok
}

// CatalogLen is the number of canonical names.
func (s *Store) CatalogLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.catalog)
}

// Catalog returns the store as a record.Catalog.
func (s *Store) Catalog() record.Catalog { return catalogView{s} }

type catalogView struct{ s *Store }

func (c catalogView) Contains(name string) bool { return c.s.Contains(name) }
func (c catalogView) Len() int                  { return c.s.CatalogLen() }

// Save writes the snapshot if anything changed since the last save.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	if !s.dirty || s.path == "" {
		return nil
	}
	doc := s.snapshotLocked()
	doc.LastSaved = s.clock.Now()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode inventory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	s.dirty = false
	s.log.Debug("inventory saved", zap.String("path", s.path), zap.Int("records", len(doc.Records)))
	return nil
}

// ForceSave saves even if nothing changed.
func (s *Store) ForceSave() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = true
	return s.saveLocked()
}

func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

func (s *Store) autosaveLoop(interval time.Duration) {
	defer close(s.done)
	ticker := s.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			if err := s.Save(); err != nil {
				s.log.Error("autosave failed", zap.Error(err))
				s.mu.Lock()
				s.saveErr = multierr.Append(s.saveErr, err)
				s.mu.Unlock()
			}
		case <-s.stop:
			return
		}
	}
}

// Close stops the autosave loop, writes the final snapshot and rejects
// further mutations.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	clear(s.listeners)
	s.mu.Unlock()

	if s.stop != nil {
		close(s.stop)
		<-s.done
	}
	s.mu.Lock()
	err := s.saveErr
	s.saveErr = nil
	s.mu.Unlock()
	if s.path != "" {
		err = multierr.Append(err, s.ForceSave())
	}
	return err
}
