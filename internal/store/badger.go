package store

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/vmihailenco/msgpack/v5"
)

// BadgerStore keeps the garage blob in an embedded Badger database under an
// entity-prefixed key, with msgpack-encoded values.
type BadgerStore struct {
	key []byte
	db  *badger.DB
}

// OpenBadger opens (or creates) a Badger database at dir with quiet logging.
func OpenBadger(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db at %s: %w", dir, err)
	}
	return db, nil
}

// NewBadgerStore wraps db as a Store for the given entity type and key.
func NewBadgerStore(db *badger.DB, entityType, key string) *BadgerStore {
	return &BadgerStore{
		key: []byte(fmt.Sprintf("%s/%s", entityType, key)),
		db:  db,
	}
}

func (b *BadgerStore) Load(out interface{}) error {
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, out)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load garage state: %w", err)
	}
	return nil
}

func (b *BadgerStore) Save(value interface{}) error {
	buf, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal garage state: %w", err)
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(b.key, buf)
	})
	if err != nil {
		return fmt.Errorf("failed to save garage state: %w", err)
	}
	return nil
}
