package store

import "github.com/iov-one/jobchain"

// Move references for all storage types into this package
// for shorter names everywhere

type (
	ReadOnlyKVStore  = jobchain.ReadOnlyKVStore
	SetDeleter       = jobchain.SetDeleter
	KVStore          = jobchain.KVStore
	Batch            = jobchain.Batch
	Iterator         = jobchain.Iterator
	CacheableKVStore = jobchain.CacheableKVStore
	KVCacheWrap      = jobchain.KVCacheWrap
	CommitKVStore    = jobchain.CommitKVStore
	CommitID         = jobchain.CommitID
	Model            = jobchain.Model
)

// Pair constructs a model from a key-value pair
var Pair = jobchain.Pair
