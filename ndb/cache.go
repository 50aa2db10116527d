package ndb

import (
	"container/list"
	"encoding/binary"
	"hash/fnv"
	"sync"

	"github.com/outlookvault/pstkit/internal/format"
)

// blockCacheShards is the number of independent cache shards, reducing
// mutex contention when a caller walks folders/messages from multiple
// goroutines against a single opened File. Must be a power of two.
const blockCacheShards = 16

// defaultBlockCacheCapacity bounds the total number of decoded block
// payloads held across all shards. Resolved BBT entries are not cached;
// a payload hit skips the BBT lookup, a miss repeats it.
const defaultBlockCacheCapacity = 4096

type blockCacheEntry struct {
	key     format.BID
	payload []byte
}

type lruShard struct {
	mu       sync.Mutex
	capacity int
	items    map[format.BID]*list.Element
	order    *list.List
}

func newLRUShard(capacity int) *lruShard {
	return &lruShard{
		capacity: capacity,
		items:    make(map[format.BID]*list.Element, capacity),
		order:    list.New(),
	}
}

func (s *lruShard) get(key format.BID) ([]byte, bool) {
	if s.capacity == 0 {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	elem, ok := s.items[key]
	if !ok {
		return nil, false
	}
	s.order.MoveToFront(elem)
	return elem.Value.(*blockCacheEntry).payload, true
}

func (s *lruShard) put(key format.BID, payload []byte) {
	if s.capacity == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if elem, ok := s.items[key]; ok {
		s.order.MoveToFront(elem)
		elem.Value.(*blockCacheEntry).payload = payload
		return
	}
	if s.order.Len() >= s.capacity {
		back := s.order.Back()
		if back != nil {
			evicted := s.order.Remove(back).(*blockCacheEntry)
			delete(s.items, evicted.key)
		}
	}
	entry := &blockCacheEntry{key: key, payload: payload}
	s.items[key] = s.order.PushFront(entry)
}

// blockCache is a sharded LRU cache of deobfuscated, CRC-validated block
// payloads keyed by BID, sitting in front of readBlock so a hot folder's
// leaf and hierarchy-table blocks aren't re-fetched and re-deciphered on
// every property access.
type blockCache struct {
	shards [blockCacheShards]*lruShard
}

func newBlockCache(capacity int) *blockCache {
	c := &blockCache{}
	perShard := capacity / blockCacheShards
	if perShard < 1 && capacity > 0 {
		perShard = 1
	}
	for i := range c.shards {
		c.shards[i] = newLRUShard(perShard)
	}
	return c
}

// shardForBID picks a shard via FNV-1a over the BID's little-endian bytes,
// the same hash pstkit's ancestor pack uses for its name-cache sharding.
func shardForBID(bid format.BID) int {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(bid))
	h := fnv.New32a()
	h.Write(b[:]) //nolint:errcheck // fnv hash.Write never errors
	return int(h.Sum32() & (blockCacheShards - 1))
}

func (c *blockCache) get(bid format.BID) ([]byte, bool) {
	return c.shards[shardForBID(bid)].get(bid)
}

func (c *blockCache) put(bid format.BID, payload []byte) {
	c.shards[shardForBID(bid)].put(bid, payload)
}
