package alarms

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// keyPrefix namespaces alarm records inside the database.
const keyPrefix = "alarm:"

// BadgerRepository persists alarms as JSON records in a Badger database,
// one record per alarm under "alarm:<id>".
type BadgerRepository struct {
	db *badger.DB
}

// Options configures the repository.
type Options struct {
	// Path is the database directory. Empty selects in-memory mode.
	Path string
	// InMemory forces in-memory mode regardless of Path.
	InMemory bool
}

// OpenBadger opens or creates the alarm database.
func OpenBadger(opts Options) (*BadgerRepository, error) {
	var badgerOpts badger.Options

	if opts.InMemory || opts.Path == "" {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(opts.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}

		badgerOpts = badger.DefaultOptions(opts.Path)
	}

	// Reduce logging noise.
	badgerOpts = badgerOpts.WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open alarm database: %w", err)
	}

	return &BadgerRepository{db: db}, nil
}

// Close closes the underlying database.
func (r *BadgerRepository) Close() error {
	return r.db.Close()
}

// LoadAll reads the full alarm collection, sorted by ID for stable ordering.
// An empty database yields an empty slice, not an error.
func (r *BadgerRepository) LoadAll(_ context.Context) ([]*domain.Alarm, error) {
	var collection []*domain.Alarm

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var a domain.Alarm
				if err := json.Unmarshal(val, &a); err != nil {
					return fmt.Errorf("decode alarm record: %w", err)
				}

				collection = append(collection, &a)

				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(collection, func(i, j int) bool {
		return collection[i].ID < collection[j].ID
	})

	return collection, nil
}

// SaveAll replaces the stored collection with the provided one: every alarm
// is written and records absent from the new collection are removed.
func (r *BadgerRepository) SaveAll(_ context.Context, collection []*domain.Alarm) error {
	keep := make(map[string]struct{}, len(collection))
	for _, a := range collection {
		keep[a.ID] = struct{}{}
	}

	stale, err := r.staleKeys(keep)
	if err != nil {
		return err
	}

	return r.db.Update(func(txn *badger.Txn) error {
		for _, a := range collection {
			data, err := json.Marshal(a)
			if err != nil {
				return fmt.Errorf("encode alarm %s: %w", a.ID, err)
			}

			if err := txn.Set([]byte(keyPrefix+a.ID), data); err != nil {
				return fmt.Errorf("write alarm %s: %w", a.ID, err)
			}
		}

		for _, key := range stale {
			if err := txn.Delete([]byte(key)); err != nil {
				return fmt.Errorf("delete alarm record %s: %w", key, err)
			}
		}

		return nil
	})
}

// staleKeys lists stored record keys whose alarm is no longer in the collection.
func (r *BadgerRepository) staleKeys(keep map[string]struct{}) ([]string, error) {
	var stale []string

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := string(it.Item().Key())

			id := strings.TrimPrefix(key, keyPrefix)
			if _, ok := keep[id]; !ok {
				stale = append(stale, key)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return stale, nil
}
