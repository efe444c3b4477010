// Package badgerkv persists the favorites list in an embedded Badger
// key-value store: key = big-endian property id, value = note bytes.
package badgerkv

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/stormhaven/stormhaven/internal/favorites"
)

// Storage implements favorites.Storage on a Badger database.
type Storage struct {
	db *badger.DB
}

// Open opens (or creates) the Badger database at dir. Badger's own chatty
// logger is silenced; operational errors still surface through the returned
// errors.
func Open(dir string, logger *slog.Logger) (*Storage, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	logger.Info("favorites storage opened", "dir", dir)
	return &Storage{db: db}, nil
}

// Close releases the database. Must be called before process exit so Badger
// can flush its value log.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) Put(_ context.Context, fav favorites.Favorite) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyFor(fav.PropertyID), []byte(fav.Note))
	})
}

func (s *Storage) Delete(_ context.Context, propertyID int64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(keyFor(propertyID))
	})
}

func (s *Storage) List(_ context.Context) ([]favorites.Favorite, error) {
	favs := make([]favorites.Favorite, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			id, err := idFrom(item.Key())
			if err != nil {
				return err
			}
			note, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			favs = append(favs, favorites.Favorite{PropertyID: id, Note: string(note)})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return favs, nil
}

func keyFor(propertyID int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(propertyID))
	return key
}

func idFrom(key []byte) (int64, error) {
	if len(key) != 8 {
		return 0, errors.New("malformed favorites key")
	}
	return int64(binary.BigEndian.Uint64(key)), nil
}
