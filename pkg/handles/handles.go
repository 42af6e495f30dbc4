// Package handles maps Go values to stable opaque tokens that can cross a C
// ABI boundary where ownership types cannot. A handle is non-owning
// everywhere it travels; whoever registered it decides when the reference it
// stands for is released.
package handles

import "sync"

var (
	mu     sync.Mutex
	table  = map[uintptr]interface{}{}
	nextID uintptr
)

// Register stores v and returns a token for it. The zero token is never
// issued so it can serve as "no handle".
func Register(v interface{}) uintptr {
	mu.Lock()
	defer mu.Unlock()

	for {
		nextID++
		if nextID == 0 {
			continue
		}
		if _, ok := table[nextID]; !ok {
			break
		}
	}
	table[nextID] = v
	return nextID
}

// Lookup resolves a token without consuming it. Returns nil for unknown or
// zero tokens.
func Lookup(h uintptr) interface{} {
	mu.Lock()
	defer mu.Unlock()
	return table[h]
}

// Unregister forgets a token. Unknown tokens are a no-op.
func Unregister(h uintptr) {
	mu.Lock()
	defer mu.Unlock()
	delete(table, h)
}
