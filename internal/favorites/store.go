// Package favorites is the server-side replacement for the browser's
// local-storage favorites list: an explicit store with Add, Remove, and
// UpdateNote operations, persisted through an injected Storage and returning
// an immutable snapshot after every mutation.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNotFound reports a mutation against a property that is not favorited.
var ErrNotFound = errors.New("favorite not found")

// Favorite is a favorited property id with its free-text note.
type Favorite struct {
	PropertyID int64  `json:"property_id"`
	Note       string `json:"note"`
}

// Storage persists individual favorites. Implementations: the in-memory map
// in this package (tests) and the Badger adapter (production).
type Storage interface {
	Put(ctx context.Context, fav Favorite) error
	Delete(ctx context.Context, propertyID int64) error
	List(ctx context.Context) ([]Favorite, error)
}

// Store keeps the favorites list in memory and writes every change through
// to its Storage before returning. All methods are safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	byID    map[int64]Favorite
	storage Storage
}

// New creates a Store primed with whatever the storage already holds.
func New(ctx context.Context, storage Storage) (*Store, error) {
	existing, err := storage.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	byID := make(map[int64]Favorite, len(existing))
	for _, fav := range existing {
		byID[fav.PropertyID] = fav
	}
	return &Store{byID: byID, storage: storage}, nil
}

// Add favorites a property with an empty note. Adding an id that is already
// favorited is a no-op, preserving its note.
func (s *Store) Add(ctx context.Context, propertyID int64) ([]Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[propertyID]; ok {
		return s.snapshotLocked(), nil
	}
	fav := Favorite{PropertyID: propertyID}
	if err := s.storage.Put(ctx, fav); err != nil {
		return nil, fmt.Errorf("persist favorite %d: %w", propertyID, err)
	}
	s.byID[propertyID] = fav
	return s.snapshotLocked(), nil
}

// Remove un-favorites a property.
func (s *Store) Remove(ctx context.Context, propertyID int64) ([]Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[propertyID]; !ok {
		return nil, ErrNotFound
	}
	if err := s.storage.Delete(ctx, propertyID); err != nil {
		return nil, fmt.Errorf("delete favorite %d: %w", propertyID, err)
	}
	delete(s.byID, propertyID)
	return s.snapshotLocked(), nil
}

// UpdateNote replaces the note on an existing favorite.
func (s *Store) UpdateNote(ctx context.Context, propertyID int64, note string) ([]Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fav, ok := s.byID[propertyID]
	if !ok {
		return nil, ErrNotFound
	}
	fav.Note = note
	if err := s.storage.Put(ctx, fav); err != nil {
		return nil, fmt.Errorf("persist favorite %d: %w", propertyID, err)
	}
	s.byID[propertyID] = fav
	return s.snapshotLocked(), nil
}

// List returns the current snapshot.
func (s *Store) List() []Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// snapshotLocked copies the favorites into a fresh slice ordered by property
// id, so callers can never mutate store state through a returned value.
func (s *Store) snapshotLocked() []Favorite {
	snap := make([]Favorite, 0, len(s.byID))
	for _, fav := range s.byID {
		snap = append(snap, fav)
	}
	sort.Slice(snap, func(i, j int) bool { return snap[i].PropertyID < snap[j].PropertyID })
	return snap
}
