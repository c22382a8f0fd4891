package mtp

import (
	"context"
	"sort"
	"sync"

	"github.com/gotd/contrib/storage"
)

// MemStorage is the default peer storage.  Peers are kept in memory and are
// lost when the program exits, they are collected again from the dialogs on
// each start.
type MemStorage struct {
	mu    sync.RWMutex
	peers map[string]storage.Peer
}

var _ storage.PeerStorage = (*MemStorage)(nil)

func NewMemStorage() *MemStorage {
	return &MemStorage{
		peers: make(map[string]storage.Peer),
	}
}

func (ms *MemStorage) Add(_ context.Context, value storage.Peer) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.peers[storage.KeyFromPeer(value).String()] = value
	return nil
}

func (ms *MemStorage) Find(ctx context.Context, key storage.PeerKey) (storage.Peer, error) {
	return ms.Resolve(ctx, key.String())
}

func (ms *MemStorage) Assign(_ context.Context, key string, value storage.Peer) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.peers[key] = value
	return nil
}

func (ms *MemStorage) Resolve(_ context.Context, key string) (storage.Peer, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	peer, ok := ms.peers[key]
	if !ok {
		return storage.Peer{}, storage.ErrPeerNotFound
	}
	return peer, nil
}

// Iterate returns the iterator over the snapshot of peers, sorted by key.
// Peers added during the iteration are not visible to it.
func (ms *MemStorage) Iterate(ctx context.Context) (storage.PeerIterator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ms.mu.RLock()
	keys := make([]string, 0, len(ms.peers))
	for k := range ms.peers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]storage.Peer, len(keys))
	for i, k := range keys {
		values[i] = ms.peers[k]
	}
	ms.mu.RUnlock()

	return &memIterator{values: values, idx: -1}, nil
}

// Len returns the number of peers in the storage.
func (ms *MemStorage) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.peers)
}

type memIterator struct {
	values []storage.Peer
	idx    int
	err    error
}

func (it *memIterator) Next(ctx context.Context) bool {
	if err := ctx.Err(); err != nil {
		it.err = err
		return false
	}
	it.idx++
	return it.idx < len(it.values)
}

func (it *memIterator) Err() error {
	return it.err
}

func (it *memIterator) Value() storage.Peer {
	if it.idx < 0 || len(it.values) <= it.idx {
		return storage.Peer{}
	}
	return it.values[it.idx]
}

func (it *memIterator) Close() error {
	it.values = nil
	return nil
}
