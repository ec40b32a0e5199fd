package store

import (
	"encoding/json"
	"errors"
	"sort"

	badger "github.com/dgraph-io/badger/v4"
)

const recordKeyPrefix = "analysis:"

type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(dir string) (*BadgerStore, error) {
	return openBadger(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
}

// NewMemoryStore keeps records in memory only.
func NewMemoryStore() (*BadgerStore, error) {
	return openBadger(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
}

func openBadger(opts badger.Options) (*BadgerStore, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) Save(r *Record) error {
	val, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(recordKeyPrefix+r.Id), val)
	})
}

func (s *BadgerStore) Get(id string) (*Record, error) {
	r := &Record{}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(recordKeyPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, r)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r, nil
}

func (s *BadgerStore) Delete(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(recordKeyPrefix + id))
	})
}

// List returns records newest first.
func (s *BadgerStore) List(start, limit int) ([]*Record, int, error) {
	prefix := []byte(recordKeyPrefix)
	records := make([]*Record, 0, 10)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 10
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			r := &Record{}
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, r)
			})
			if err != nil {
				return err
			}
			records = append(records, r)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CreateTime.Equal(records[j].CreateTime) {
			return records[i].Id < records[j].Id
		}
		return records[i].CreateTime.After(records[j].CreateTime)
	})
	total := len(records)
	return page(records, start, limit), total, nil
}

func page(records []*Record, start, limit int) []*Record {
	if start < 0 {
		start = 0
	}
	if start >= len(records) {
		return []*Record{}
	}
	end := len(records)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	return records[start:end]
}
