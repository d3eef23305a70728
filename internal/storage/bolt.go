package storage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"

	"github.com/rohankatakam/tslens/internal/logging"
)

const snapshotsBucket = "snapshots"

// BoltStore implements Store on a bbolt file. Each root gets a nested
// bucket keyed by recording time, so a reverse cursor walk yields newest
// first.
type BoltStore struct {
	db     *bolt.DB
	logger *logrus.Logger
}

// NewBoltStore opens or creates the bbolt file at path
func NewBoltStore(path string, logger *logrus.Logger) (*BoltStore, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(snapshotsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &BoltStore{db: db, logger: logger}, nil
}

// Save stores rec under its root bucket
func (s *BoltStore) Save(ctx context.Context, rec *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ensureID(rec)

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal snapshot record: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		root, err := tx.Bucket([]byte(snapshotsBucket)).CreateBucketIfNotExists([]byte(rec.Root))
		if err != nil {
			return err
		}
		seq, err := root.NextSequence()
		if err != nil {
			return err
		}
		return root.Put(recordKey(rec.RecordedAt, seq), data)
	})
	if err != nil {
		return fmt.Errorf("save snapshot record: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"id": rec.ID, "root": rec.Root}).Debug("Saved snapshot record")
	return nil
}

// List returns records for root, newest first
func (s *BoltStore) List(ctx context.Context, root string, limit int) ([]*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []*Record
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(snapshotsBucket)).Bucket([]byte(root))
		if bucket == nil {
			return nil
		}
		c := bucket.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode record %x: %w", k, err)
			}
			records = append(records, &rec)
			if limit > 0 && len(records) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshot records: %w", err)
	}
	return records, nil
}

// Close closes the bolt file
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// recordKey orders by time, then insertion sequence.
func recordKey(at time.Time, seq uint64) []byte {
	key := make([]byte, 16)
	binary.BigEndian.PutUint64(key[:8], uint64(at.UnixNano()))
	binary.BigEndian.PutUint64(key[8:], seq)
	return key
}
