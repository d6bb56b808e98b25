package tracking

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

// BoltStore persists records in a bbolt database, one bucket per partner.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("tracking: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("tracking: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, p := range Partners {
			if _, err := tx.CreateBucketIfNotExists([]byte(p)); err != nil {
				return fmt.Errorf("boltstore: create bucket %q: %w", p, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("tracking: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// encodeGob serializes a value using gob encoding.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob deserializes gob-encoded data into a value.
func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// Put inserts or replaces a record.
func (s *BoltStore) Put(r *Record) error {
	if err := validateRecord(r); err != nil {
		return err
	}
	data, err := encodeGob(r)
	if err != nil {
		return fmt.Errorf("boltstore: encode record: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket([]byte(r.Partner)).Put([]byte(r.ExternalID), data); err != nil {
			return fmt.Errorf("boltstore: put record: %w", err)
		}
		return nil
	})
}

// Get returns the record for partner and id.
func (s *BoltStore) Get(partner, id string) (*Record, error) {
	if err := checkPartner(partner); err != nil {
		return nil, err
	}
	var r Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(partner)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s/%s", ErrRecordNotFound, partner, id)
		}
		if err := decodeGob(data, &r); err != nil {
			return fmt.Errorf("boltstore: decode record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Update applies u to an existing record inside one write transaction.
func (s *BoltStore) Update(partner, id string, u Update) (*Record, error) {
	if err := checkPartner(partner); err != nil {
		return nil, err
	}
	var r Record
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(partner))
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s/%s", ErrRecordNotFound, partner, id)
		}
		if err := decodeGob(data, &r); err != nil {
			return fmt.Errorf("boltstore: decode record: %w", err)
		}
		r.apply(u)
		updated, err := encodeGob(&r)
		if err != nil {
			return fmt.Errorf("boltstore: encode record: %w", err)
		}
		return b.Put([]byte(id), updated)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Remove deletes a record.
func (s *BoltStore) Remove(partner, id string) error {
	if err := checkPartner(partner); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(partner)).Delete([]byte(id))
	})
}

// List returns the partner's records in key order.
func (s *BoltStore) List(partner string) ([]*Record, error) {
	if err := checkPartner(partner); err != nil {
		return nil, err
	}
	var out []*Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(partner)).ForEach(func(_, v []byte) error {
			var r Record
			if err := decodeGob(v, &r); err != nil {
				return fmt.Errorf("boltstore: decode record: %w", err)
			}
			out = append(out, &r)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
