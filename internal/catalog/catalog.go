package catalog

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Item is one catalog record. The store is the system of record; any cache
// put in front of it holds copies that never outlive the process.
type Item struct {
	ID         uint64    `json:"id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	UpdatedAt  time.Time `json:"updated_at"`
}

var ErrNotFound = errors.New("catalog: not found")

// Store is a bbolt-backed item store with offset pagination. It plays the
// "expensive data source" role: callers put a cache in front of it and come
// back here only on a miss.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes or opens a Store at the given path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	bucket := []byte("items")
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, bucket: bucket}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put inserts or overwrites an item and stamps UpdatedAt. A zero ID is
// assigned from the bucket sequence; the assigned ID is written back into
// item.
func (s *Store) Put(item *Item) error {
	item.UpdatedAt = time.Now().UTC()
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if item.ID == 0 {
			id, err := b.NextSequence()
			if err != nil {
				return err
			}
			item.ID = id
		}
		data, err := json.Marshal(item)
		if err != nil {
			return err
		}
		return b.Put(itemKey(item.ID), data)
	})
}

// Get returns the item with the given ID, or ErrNotFound.
func (s *Store) Get(id uint64) (Item, error) {
	var item Item
	var found bool
	if err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(s.bucket).Get(itemKey(id))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &item)
	}); err != nil {
		return Item{}, err
	}
	if !found {
		return Item{}, ErrNotFound
	}
	return item, nil
}

// ListPage returns one page of items in ascending ID order. Pages are
// 1-based; a page past the end is empty, not an error.
func (s *Store) ListPage(page, perPage int) ([]Item, error) {
	if page < 1 || perPage < 1 {
		return nil, fmt.Errorf("catalog: invalid page %d/%d", page, perPage)
	}
	skip := (page - 1) * perPage
	out := make([]Item, 0, perPage)
	err := s.db.View(func(tx *bolt.Tx) error {
		cur := tx.Bucket(s.bucket).Cursor()
		for k, v := cur.First(); k != nil && len(out) < perPage; k, v = cur.Next() {
			if skip > 0 {
				skip--
				continue
			}
			var item Item
			if err := json.Unmarshal(v, &item); err != nil {
				return err
			}
			out = append(out, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of stored items.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return n, err
}

// Layout: 8 bytes big endian, so cursor order matches ID order.
func itemKey(id uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, id)
	return k
}
