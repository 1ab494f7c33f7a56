package directory

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/emf99/zkSMT/protocol"
)

// witnessCache memoizes hex witnesses by (root, key). Every mutation
// changes the root, so a cached witness is never stale.
type witnessCache struct {
	cache *lru.Cache
}

type witnessKey struct {
	root string
	key  string
}

func newWitnessCache(size int) (*witnessCache, error) {
	if size <= 0 {
		return &witnessCache{}, nil
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &witnessCache{cache: c}, nil
}

func (wc *witnessCache) get(root, key string) ([]protocol.MerkleProofEntry, bool) {
	if wc.cache == nil {
		return nil, false
	}
	v, ok := wc.cache.Get(witnessKey{root, key})
	if !ok {
		return nil, false
	}
	return v.([]protocol.MerkleProofEntry), true
}

func (wc *witnessCache) add(root, key string, path []protocol.MerkleProofEntry) {
	if wc.cache != nil {
		wc.cache.Add(witnessKey{root, key}, path)
	}
}

func (wc *witnessCache) len() int {
	if wc.cache == nil {
		return 0
	}
	return wc.cache.Len()
}

// resize changes the capacity of the cache, evicting the oldest
// witnesses if it shrinks. A size of zero disables the cache.
func (wc *witnessCache) resize(size int) error {
	switch {
	case size <= 0:
		wc.cache = nil
	case wc.cache == nil:
		c, err := lru.New(size)
		if err != nil {
			return err
		}
		wc.cache = c
	default:
		wc.cache.Resize(size)
	}
	return nil
}
