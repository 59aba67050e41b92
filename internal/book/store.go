package book

import (
	"encoding/binary"
	"encoding/json"
	"errors"

	. "github.com/cricklet/raychess/internal/helpers"
	"github.com/cricklet/raychess/internal/zobrist"
	"github.com/dgraph-io/badger/v4"
)

// Store keeps book entries in badger, one value per position key.
type Store struct {
	db *badger.DB
}

var _ Book = (*Store)(nil)

func Open(dir string) (*Store, Error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	return open(opts)
}

// OpenInMemory is for tests and throwaway books.
func OpenInMemory() (*Store, Error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*Store, Error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, Wrap(err)
	}
	return &Store{db: db}, NilError
}

func (s *Store) Close() Error {
	if s.db == nil {
		return NilError
	}
	err := s.db.Close()
	s.db = nil
	return Wrap(err)
}

func dbKey(key zobrist.Key) []byte {
	result := make([]byte, 8)
	binary.BigEndian.PutUint64(result, uint64(key))
	return result
}

func readEntries(txn *badger.Txn, key zobrist.Key) ([]Entry, error) {
	entries := []Entry{}

	item, err := txn.Get(dbKey(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return entries, nil
	}
	if err != nil {
		return nil, err
	}

	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &entries)
	})
	return entries, err
}

func (s *Store) Entries(key zobrist.Key) ([]Entry, Error) {
	var entries []Entry
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		entries, err = readEntries(txn, key)
		return err
	})
	if err != nil {
		return nil, Wrap(err)
	}
	return entries, NilError
}

// Add adds weight to move under key, creating the entry if needed.
func (s *Store) Add(key zobrist.Key, move string, weight int) Error {
	err := s.db.Update(func(txn *badger.Txn) error {
		entries, err := readEntries(txn, key)
		if err != nil {
			return err
		}

		found := false
		for i := range entries {
			if entries[i].Move == move {
				entries[i].Weight += weight
				found = true
			}
		}
		if !found {
			entries = append(entries, Entry{move, weight})
		}
		SortEntries(entries)

		data, err := json.Marshal(entries)
		if err != nil {
			return err
		}
		return txn.Set(dbKey(key), data)
	})
	return Wrap(err)
}

// Positions counts the keys in the book.
func (s *Store) Positions() (int, Error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, Wrap(err)
}
