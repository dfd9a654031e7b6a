// Package keys turns human readable names into the integer keys used by the
// tag and value stores.
//
// Hashing is stable across processes. The reverse mapping is a debugging aid
// only: a name is known only if it went through Of, and when two names
// collide the first one registered wins.
package keys

import (
	"math"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Key identifies a tag or a value slot on an entity.
type Key int64

var (
	namesMu sync.RWMutex
	names   = make(map[Key]string)
)

// Hash returns the key for name without recording it.
func Hash(name string) Key {
	return Key(xxhash.Sum64String(name) & math.MaxInt64)
}

// Of returns the key for name and remembers the name for Name and Format.
func Of(name string) Key {
	k := Hash(name)

	namesMu.RLock()
	_, known := names[k]
	namesMu.RUnlock()
	if known {
		return k
	}

	namesMu.Lock()
	if _, known = names[k]; !known {
		names[k] = name
	}
	namesMu.Unlock()
	return k
}

// Name reports the name registered for k, if any.
func Name(k Key) (string, bool) {
	namesMu.RLock()
	defer namesMu.RUnlock()
	name, ok := names[k]
	return name, ok
}

// Format renders k as its registered name, or "#<n>" when unknown.
func Format(k Key) string {
	if name, ok := Name(k); ok {
		return name
	}
	return "#" + strconv.FormatInt(int64(k), 10)
}

func (k Key) String() string {
	return Format(k)
}
