package store

import (
	"bytes"
	"sync"

	"github.com/google/btree"
)

// byteItem is a btree.Item over a raw byte-string key, carrying its value
// alongside it, since column families here are keyed by raw record keys,
// never typed Go values.
type byteItem struct {
	key []byte
	val []byte
}

func (b byteItem) Less(than btree.Item) bool {
	other := than.(byteItem)
	return bytes.Compare(b.key, other.key) < 0
}

// memColumnFamily is one btree.BTree guarded by its own RWMutex.
type memColumnFamily struct {
	mu   sync.RWMutex
	tree *btree.BTree
}

func newMemColumnFamily() *memColumnFamily {
	return &memColumnFamily{tree: btree.New(2)}
}

func (cf *memColumnFamily) Get(key []byte) ([]byte, bool, error) {
	cf.mu.RLock()
	defer cf.mu.RUnlock()
	item := cf.tree.Get(byteItem{key: key})
	if item == nil {
		return nil, false, nil
	}
	return item.(byteItem).val, true, nil
}

func (cf *memColumnFamily) Put(key []byte, value []byte) error {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	cf.tree.ReplaceOrInsert(byteItem{key: key, val: value})
	return nil
}

func (cf *memColumnFamily) Delete(key []byte) error {
	cf.mu.Lock()
	defer cf.mu.Unlock()
	cf.tree.Delete(byteItem{key: key})
	return nil
}

// MemEngine is the in-memory, google/btree-backed Engine implementation.
// It is the default backing engine used by this module: a durable engine
// (RocksDB or similar) would satisfy the same interface but is out of
// scope here.
type MemEngine struct {
	mu    sync.Mutex
	cfs   map[string]*memColumnFamily
	flush int
}

func NewMemEngine() *MemEngine {
	return &MemEngine{cfs: make(map[string]*memColumnFamily)}
}

func (e *MemEngine) ColumnFamily(name string) ColumnFamily {
	e.mu.Lock()
	defer e.mu.Unlock()
	cf, ok := e.cfs[name]
	if !ok {
		cf = newMemColumnFamily()
		e.cfs[name] = cf
	}
	return cf
}

func (e *MemEngine) DropColumnFamily(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.cfs, name)
	return nil
}

func (e *MemEngine) Flush() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flush++
	return nil
}

func (e *MemEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfs = make(map[string]*memColumnFamily)
	return nil
}
