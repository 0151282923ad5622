package finddup

import (
	"strings"

	zcsl "github.com/mattkeenan/zerocopyskiplist"
)

// keyBucket holds every path that produced one comparison key, in insertion order
type keyBucket struct {
	Key   string
	Paths []string
}

// keyIndex keeps buckets sorted by key so groups come out in a stable order
// regardless of traversal order. The skiplist context carries the strategy kind.
type keyIndex struct {
	skiplist *zcsl.ZeroCopySkiplist[keyBucket, string, string]
	context  string
}

// newKeyIndex creates an empty key index
func newKeyIndex(maxLevels int, context string) *keyIndex {
	if maxLevels < 8 {
		maxLevels = 16
	}

	getKeyFromItem := func(b *keyBucket) string {
		return b.Key
	}

	getItemSize := func(b *keyBucket) int {
		return len(b.Key)
	}

	cmpKey := func(a, b string) int {
		return strings.Compare(a, b)
	}

	return &keyIndex{
		skiplist: zcsl.MakeZeroCopySkiplist[keyBucket, string, string](
			maxLevels,
			getKeyFromItem,
			getItemSize,
			cmpKey,
		),
		context: context,
	}
}

// Append adds a path to the bucket for key, creating the bucket on first use
func (ki *keyIndex) Append(key, path string) {
	if itemPtr, _ := ki.skiplist.Find(key); itemPtr != nil {
		bucket := itemPtr.Item()
		bucket.Paths = append(bucket.Paths, path)
		return
	}

	ki.skiplist.Insert(&keyBucket{Key: key, Paths: []string{path}}, ki.context)
}

// ForEach iterates buckets in ascending key order until the callback returns false
func (ki *keyIndex) ForEach(callback func(*keyBucket) bool) {
	for current := ki.skiplist.First(); current != nil; current = current.Next() {
		if !callback(current.Item()) {
			break
		}
	}
}

// Length returns the number of distinct keys
func (ki *keyIndex) Length() int {
	return ki.skiplist.Length()
}

// Stats returns the number of buckets and the number of paths across all of them
func (ki *keyIndex) Stats() (keys, paths int) {
	ki.ForEach(func(b *keyBucket) bool {
		keys++
		paths += len(b.Paths)
		return true
	})
	return keys, paths
}
