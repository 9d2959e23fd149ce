package services

import (
	"hash/fnv"
	"sync"
)

// lockShards is the fixed shard count of the per-key lock map.
const lockShards = 32

// keyLocks serializes ingestion per document key without one global
// lock: keys hash to independently lockable shards, so updates to
// different documents proceed in parallel.
type keyLocks struct {
	shards [lockShards]sync.Mutex
}

// lock acquires the shard for a key and returns its unlock func.
func (k *keyLocks) lock(key string) func() {
	h := fnv.New32a()
	h.Write([]byte(key)) //nolint:errcheck // fnv never fails
	shard := &k.shards[h.Sum32()%lockShards]
	shard.Lock()
	return shard.Unlock
}
