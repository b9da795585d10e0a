package aspect

import (
	"reflect"
	"sync"
)

// registryKey combines callable type, owner type, and inspection mode.
type registryKey struct {
	fn    reflect.Type
	owner reflect.Type
	raw   bool
}

var (
	registry   = make(map[registryKey]*Signature)
	registryMu sync.RWMutex
)

// Inspect returns the signature of fn, classified against owner.
// owner is the pointer type of a proxy target (*T), or nil when fn is
// inspected as a free callable. Signatures are cached per type pair, so
// strategy selection happens once per callable type.
func Inspect(fn any, owner reflect.Type) (*Signature, error) {
	return lookup(reflect.TypeOf(fn), owner, false)
}

// InspectType returns the signature of a raw function type.
func InspectType(fnType, owner reflect.Type) (*Signature, error) {
	return lookup(fnType, owner, true)
}

func lookup(fnType, owner reflect.Type, raw bool) (*Signature, error) {
	key := registryKey{fn: fnType, owner: owner, raw: raw}

	// Fast path: read-lock cache check
	registryMu.RLock()
	if cached, ok := registry[key]; ok {
		registryMu.RUnlock()
		return cached, nil
	}
	registryMu.RUnlock()

	// Slow path: build and cache with write-lock
	registryMu.Lock()
	defer registryMu.Unlock()

	// Double-check pattern
	if cached, ok := registry[key]; ok {
		return cached, nil
	}

	sig, err := buildSignature(fnType, owner, raw)
	if err != nil {
		return nil, err
	}

	registry[key] = sig
	return sig, nil
}

// Reset clears the signature registry.
// This is primarily useful for test isolation.
func Reset() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[registryKey]*Signature)
}
