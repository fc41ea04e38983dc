// Package store holds the client's observable application state.
//
// A Store is the single source of truth for everything the pages render.
// Writes go through SetState, which merges whole fields, persists every
// field except the user profile under storage.KeyAppState, then notifies
// listeners synchronously in subscription order.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/harrylevesque/emailforms/internal/logging"
	"github.com/harrylevesque/emailforms/internal/models"
	"github.com/harrylevesque/emailforms/internal/storage"
)

// State is a snapshot of the application state. Slices in a snapshot are
// shared with the Store and must be treated as read-only.
type State struct {
	User          *models.User
	Forms         []models.Form
	Recipients    []models.Recipient
	Tracking      []models.TrackingRecord
	ExtractedData []models.ExtractedData
	Settings      models.Settings
}

// persisted is the on-disk subset of State. The user profile is never written.
type persisted struct {
	Forms         []models.Form           `json:"forms"`
	Recipients    []models.Recipient      `json:"recipients"`
	Tracking      []models.TrackingRecord `json:"tracking"`
	ExtractedData []models.ExtractedData  `json:"extractedData"`
	Settings      models.Settings         `json:"settings"`
}

func initialState() State {
	return State{
		Forms:         []models.Form{},
		Recipients:    []models.Recipient{},
		Tracking:      []models.TrackingRecord{},
		ExtractedData: []models.ExtractedData{},
	}
}

// Update replaces one field of the state.
type Update func(*State)

func WithUser(u *models.User) Update { return func(s *State) { s.User = u } }

func WithForms(f []models.Form) Update { return func(s *State) { s.Forms = f } }

func WithRecipients(r []models.Recipient) Update { return func(s *State) { s.Recipients = r } }

func WithTracking(t []models.TrackingRecord) Update { return func(s *State) { s.Tracking = t } }

func WithExtractedData(d []models.ExtractedData) Update {
	return func(s *State) { s.ExtractedData = d }
}

func WithSettings(st models.Settings) Update { return func(s *State) { s.Settings = st } }

// Listener receives the post-merge state.
type Listener func(State)

type subscriber struct {
	id int
	fn Listener
}

// Store is safe for concurrent use. Writes are serialised and listeners
// run outside the state lock, so a listener may read the Store or
// unsubscribe. A listener must not write to the Store.
type Store struct {
	writeMu   sync.Mutex // orders SetState and Reset
	mu        sync.Mutex // guards state and listeners
	state     State
	listeners []subscriber
	nextID    int
	kv        storage.KV
	log       *logging.Logger
}

// New creates a Store and restores the persisted subset from kv. Unreadable
// or malformed persisted state is logged and ignored.
func New(kv storage.KV, log *logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	s := &Store{state: initialState(), kv: kv, log: log}
	if err := s.load(); err != nil {
		log.Warn("Discarding persisted state", zap.Error(err))
	}
	return s
}

func (s *Store) load() error {
	raw, err := s.kv.Get(storage.KeyAppState)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", storage.KeyAppState, err)
	}
	var p persisted
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return fmt.Errorf("parsing %s: %w", storage.KeyAppState, err)
	}
	if p.Forms != nil {
		s.state.Forms = p.Forms
	}
	if p.Recipients != nil {
		s.state.Recipients = p.Recipients
	}
	if p.Tracking != nil {
		s.state.Tracking = p.Tracking
	}
	if p.ExtractedData != nil {
		s.state.ExtractedData = p.ExtractedData
	}
	s.state.Settings = p.Settings
	return nil
}

// GetState returns the current snapshot.
func (s *Store) GetState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetState applies updates in order, persists, then notifies listeners.
func (s *Store) SetState(updates ...Update) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.commit(updates)
}

// SetStateContext is SetState that does nothing once ctx is done. It
// reports whether the updates were applied.
func (s *Store) SetStateContext(ctx context.Context, updates ...Update) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	s.commit(updates)
	return true
}

func (s *Store) commit(updates []Update) {
	s.mu.Lock()
	for _, u := range updates {
		u(&s.state)
	}
	snapshot, listeners := s.state, s.subscribers()
	s.mu.Unlock()

	s.persist(snapshot)
	s.notify(snapshot, listeners)
}

// subscribers copies the listener list. Callers hold s.mu.
func (s *Store) subscribers() []subscriber {
	return append([]subscriber(nil), s.listeners...)
}

func (s *Store) persist(st State) {
	data, err := json.Marshal(persisted{
		Forms:         st.Forms,
		Recipients:    st.Recipients,
		Tracking:      st.Tracking,
		ExtractedData: st.ExtractedData,
		Settings:      st.Settings,
	})
	if err != nil {
		s.log.Error("Encoding app state", zap.Error(err))
		return
	}
	if err := s.kv.Set(storage.KeyAppState, string(data)); err != nil {
		s.log.Error("Saving app state", zap.Error(err))
	}
}

func (s *Store) notify(st State, listeners []subscriber) {
	for _, sub := range listeners {
		s.call(sub, st)
	}
}

func (s *Store) call(sub subscriber, st State) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("State listener panicked", zap.Int("listener", sub.id), zap.Any("panic", r))
		}
	}()
	sub.fn(st)
}

// Subscribe registers fn and returns a func that removes it. Calling the
// returned func more than once is harmless.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Reset restores the initial state, removes the persisted copy and notifies
// listeners.
func (s *Store) Reset() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.state = initialState()
	snapshot, listeners := s.state, s.subscribers()
	s.mu.Unlock()

	if err := s.kv.Remove(storage.KeyAppState); err != nil {
		s.log.Error("Clearing app state", zap.Error(err))
	}
	s.notify(snapshot, listeners)
}
