// Package file implements the repositories on top of a JSON-file-backed
// record store. Each collection lives in one file under the data directory
// and is rewritten atomically (temp file + rename) on every commit, so a
// crash mid-write never leaves a half-written collection on disk.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/finvault/bankd/internal/domain"
)

const (
	collectionAccounts      = "accounts"
	collectionTransactions  = "transactions"
	collectionTransfers     = "transfers"
	collectionUsers         = "users"
	collectionBeneficiaries = "beneficiaries"
)

// envelope is the on-disk shape of one record. Keeping the key outside the
// record lets the store stay ignorant of each collection's ID field.
type envelope struct {
	Key    string          `json:"key"`
	Record json.RawMessage `json:"record"`
}

// collection holds records in insertion order. Keys are ULIDs, so insertion
// order is also chronological order.
type collection struct {
	records map[string]json.RawMessage
	keys    []string
}

func newCollection() *collection {
	return &collection{records: make(map[string]json.RawMessage)}
}

func (c *collection) put(key string, record json.RawMessage) {
	if _, ok := c.records[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.records[key] = record
}

func (c *collection) delete(key string) {
	if _, ok := c.records[key]; !ok {
		return
	}
	delete(c.records, key)
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
}

// lockTable hands out one mutex per record key. Entries are never removed;
// the table is bounded by the number of distinct records ever locked.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

func (t *lockTable) get(key string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[key]
	if !ok {
		l = &sync.Mutex{}
		t.locks[key] = l
	}
	return l
}

// Store is a JSON-file-backed record store with per-key locking and staged
// transactions.
type Store struct {
	dir      string
	mu       sync.RWMutex // guards collections
	commitMu sync.Mutex   // serializes commits and direct writes
	locks    *lockTable

	collections map[string]*collection
}

// Open loads all collection files found under dir, creating dir if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Store{
		dir:         dir,
		locks:       newLockTable(),
		collections: make(map[string]*collection),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if err := s.loadCollection(strings.TrimSuffix(name, ".json")); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Store) loadCollection(name string) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name+".json"))
	if err != nil {
		return fmt.Errorf("read collection %s: %w", name, err)
	}

	var envelopes []envelope
	if err := json.Unmarshal(data, &envelopes); err != nil {
		return fmt.Errorf("decode collection %s: %w", name, err)
	}

	c := newCollection()
	for _, e := range envelopes {
		c.put(e.Key, e.Record)
	}
	s.collections[name] = c
	return nil
}

func (s *Store) collectionLocked(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = newCollection()
		s.collections[name] = c
	}
	return c
}

// Get returns the record stored under key, or false if absent.
func (s *Store) Get(collection, key string) (json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[collection]
	if !ok {
		return nil, false
	}
	record, ok := c.records[key]
	return record, ok
}

// All iterates a snapshot of a collection's records in insertion order.
func (s *Store) All(collection string) iter.Seq[json.RawMessage] {
	s.mu.RLock()
	var snapshot []json.RawMessage
	if c, ok := s.collections[collection]; ok {
		snapshot = make([]json.RawMessage, 0, len(c.keys))
		for _, key := range c.keys {
			snapshot = append(snapshot, c.records[key])
		}
	}
	s.mu.RUnlock()

	return func(yield func(json.RawMessage) bool) {
		for _, record := range snapshot {
			if !yield(record) {
				return
			}
		}
	}
}

// PutNow writes one record outside any transaction and persists immediately.
func (s *Store) PutNow(collection, key string, record json.RawMessage) error {
	lock := s.locks.get(lockKey(collection, key))
	lock.Lock()
	defer lock.Unlock()

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collectionLocked(collection)
	prev, existed := c.records[key]
	c.put(key, record)

	if err := s.persistLocked(collection); err != nil {
		if existed {
			c.put(key, prev)
		} else {
			c.delete(key)
		}
		return fmt.Errorf("%w: persist %s: %v", domain.ErrWriteFailure, collection, err)
	}
	return nil
}

// DeleteNow removes one record outside any transaction and persists
// immediately.
func (s *Store) DeleteNow(collection, key string) error {
	lock := s.locks.get(lockKey(collection, key))
	lock.Lock()
	defer lock.Unlock()

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collectionLocked(collection)
	prev, existed := c.records[key]
	if !existed {
		return domain.ErrNotFound
	}
	c.delete(key)

	if err := s.persistLocked(collection); err != nil {
		c.put(key, prev)
		return fmt.Errorf("%w: persist %s: %v", domain.ErrWriteFailure, collection, err)
	}
	return nil
}

// persistLocked rewrites one collection file. Callers hold s.mu.
func (s *Store) persistLocked(name string) error {
	c := s.collectionLocked(name)
	envelopes := make([]envelope, 0, len(c.keys))
	for _, key := range c.keys {
		envelopes = append(envelopes, envelope{Key: key, Record: c.records[key]})
	}

	data, err := json.Marshal(envelopes)
	if err != nil {
		return err
	}

	path := filepath.Join(s.dir, name+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func lockKey(collection, key string) string {
	return collection + "\x00" + key
}

// Begin starts a staged transaction. Writes accumulate in memory and hit the
// store only on Commit.
func (s *Store) Begin() *Tx {
	return &Tx{
		store:  s,
		staged: make(map[string]json.RawMessage),
		held:   make(map[string]*sync.Mutex),
	}
}

type stagedWrite struct {
	collection string
	key        string
}

// Tx is a staged transaction over the store. It tracks per-key locks it has
// taken so repeated lock requests for the same key are no-ops, and applies
// its writes atomically on Commit with compensating restores if a collection
// file cannot be persisted.
type Tx struct {
	store  *Store
	mu     sync.Mutex
	staged map[string]json.RawMessage // lockKey -> record
	order  []stagedWrite
	held   map[string]*sync.Mutex
	done   bool
}

// LockKeys takes the per-record locks for the given keys in sorted order.
// Keys already held by this transaction are skipped.
func (tx *Tx) LockKeys(collection string, keys []string) {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	tx.mu.Lock()
	defer tx.mu.Unlock()

	for _, key := range sorted {
		lk := lockKey(collection, key)
		if _, ok := tx.held[lk]; ok {
			continue
		}
		lock := tx.store.locks.get(lk)
		lock.Lock()
		tx.held[lk] = lock
	}
}

// Get reads a record through the transaction, seeing this transaction's own
// staged writes before the committed state.
func (tx *Tx) Get(collection, key string) (json.RawMessage, bool) {
	tx.mu.Lock()
	if record, ok := tx.staged[lockKey(collection, key)]; ok {
		tx.mu.Unlock()
		return record, true
	}
	tx.mu.Unlock()
	return tx.store.Get(collection, key)
}

// Put stages a write. It becomes visible to other readers only on Commit.
func (tx *Tx) Put(collection, key string, record json.RawMessage) {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	lk := lockKey(collection, key)
	if _, ok := tx.staged[lk]; !ok {
		tx.order = append(tx.order, stagedWrite{collection: collection, key: key})
	}
	tx.staged[lk] = record
}

// Commit applies every staged write to the store and persists each touched
// collection. If persisting fails, all applied writes are restored and the
// previous on-disk state is rewritten, so either every write lands or none
// does. Failures are surfaced as domain.ErrWriteFailure.
func (tx *Tx) Commit(_ context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return nil
	}
	tx.done = true
	defer tx.releaseLocks()

	if len(tx.order) == 0 {
		return nil
	}

	s := tx.store
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Apply in staging order, remembering prior state for compensation.
	type prior struct {
		write   stagedWrite
		record  json.RawMessage
		existed bool
	}
	priors := make([]prior, 0, len(tx.order))
	dirty := make(map[string]bool)

	for _, w := range tx.order {
		c := s.collectionLocked(w.collection)
		prev, existed := c.records[w.key]
		priors = append(priors, prior{write: w, record: prev, existed: existed})
		c.put(w.key, tx.staged[lockKey(w.collection, w.key)])
		dirty[w.collection] = true
	}

	persisted := make([]string, 0, len(dirty))
	for name := range dirty {
		if err := s.persistLocked(name); err != nil {
			// Compensate: undo every applied write, newest first, then
			// rewrite any collection file already persisted.
			for i := len(priors) - 1; i >= 0; i-- {
				p := priors[i]
				c := s.collectionLocked(p.write.collection)
				if p.existed {
					c.put(p.write.key, p.record)
				} else {
					c.delete(p.write.key)
				}
			}
			for _, done := range persisted {
				s.persistLocked(done)
			}
			return fmt.Errorf("%w: persist %s: %v", domain.ErrWriteFailure, name, err)
		}
		persisted = append(persisted, name)
	}

	return nil
}

// Rollback discards staged writes and releases held locks. Safe to call
// after Commit.
func (tx *Tx) Rollback(_ context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return nil
	}
	tx.done = true
	tx.releaseLocks()
	tx.staged = nil
	tx.order = nil
	return nil
}

func (tx *Tx) releaseLocks() {
	for _, lock := range tx.held {
		lock.Unlock()
	}
	tx.held = map[string]*sync.Mutex{}
}
