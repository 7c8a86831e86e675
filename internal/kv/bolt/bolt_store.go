package bolt

import (
	"context"

	"github.com/brk3/habitstate/internal/kv"
	"go.etcd.io/bbolt"
)

const rootBucket = "profiles"
const defaultProfile = "default"

// Store is a bbolt database holding one bucket of keys per profile.
type Store struct {
	db *bbolt.DB
}

func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(rootBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Profile returns a kv.Store scoped to the named profile. Closing it does not
// close the database.
func (s *Store) Profile(name string) kv.Store {
	if name == "" {
		name = defaultProfile
	}
	return &profileStore{db: s.db, name: name}
}

type profileStore struct {
	db   *bbolt.DB
	name string
}

func (p *profileStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	var (
		out string
		ok  bool
	)
	err := p.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(rootBucket)).Bucket([]byte(p.name))
		if bucket == nil {
			return nil
		}
		if v := bucket.Get([]byte(key)); v != nil {
			// v is only valid for the life of the transaction
			out, ok = string(v), true
		}
		return nil
	})
	return out, ok, err
}

func (p *profileStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.Bucket([]byte(rootBucket)).CreateBucketIfNotExists([]byte(p.name))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(key), []byte(value))
	})
}

func (p *profileStore) Close() error {
	return nil
}

var _ kv.Store = (*profileStore)(nil)
