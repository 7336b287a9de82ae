package pad

import (
	"sort"
	"sync"
)

var (
	factories   = make(map[Variant]Factory)
	factoriesMu sync.RWMutex
)

// Register registers the factory used to create controllers of variant v.
// This should be called from variant package init() functions.
func Register(v Variant, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[v] = f
}

// Lookup returns the registered factory for v, or nil if none is registered.
func Lookup(v Variant) Factory {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	return factories[v]
}

// Registered returns all variants with a registered factory.
func Registered() []Variant {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	out := make([]Variant, 0, len(factories))
	for v := range factories {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
