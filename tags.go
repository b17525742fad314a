package kmmage

import (
	"fmt"
	"reflect"
	"strings"
)

// Tags attach arbitrary values to a request, keyed by their dynamic type.
// They do not affect how a request is executed.
type Tags map[reflect.Type]any

// TagOf returns the tag stored under the type T.
func TagOf[T any](tags Tags) (T, bool) {
	v, ok := tags[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

func (t Tags) clone() Tags {
	if len(t) == 0 {
		return nil
	}
	c := make(Tags, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}

// Parameter is a custom value passed to fetchers, decoders and transformations.
type Parameter struct {
	Key   string
	Value any
	// MemoryCacheKey, when not empty, becomes part of the memory cache key.
	MemoryCacheKey string
}

// Parameters is an ordered set of request parameters with unique keys.
type Parameters struct {
	entries []Parameter
}

// Len returns the number of parameters.
func (p Parameters) Len() int { return len(p.entries) }

// Value returns the value stored for key.
func (p Parameters) Value(key string) (any, bool) {
	for _, e := range p.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Entries returns a copy of the parameters in insertion order.
func (p Parameters) Entries() []Parameter {
	return append([]Parameter(nil), p.entries...)
}

// MemoryCacheKeys returns the cache key contributions of the parameters.
func (p Parameters) MemoryCacheKeys() map[string]string {
	var keys map[string]string
	for _, e := range p.entries {
		if e.MemoryCacheKey == "" {
			continue
		}
		if keys == nil {
			keys = make(map[string]string)
		}
		keys[e.Key] = e.MemoryCacheKey
	}
	return keys
}

func (p Parameters) set(param Parameter) Parameters {
	entries := make([]Parameter, 0, len(p.entries)+1)
	replaced := false
	for _, e := range p.entries {
		if e.Key == param.Key {
			e, replaced = param, true
		}
		entries = append(entries, e)
	}
	if !replaced {
		entries = append(entries, param)
	}
	return Parameters{entries: entries}
}

func (p Parameters) remove(key string) Parameters {
	entries := make([]Parameter, 0, len(p.entries))
	for _, e := range p.entries {
		if e.Key != key {
			entries = append(entries, e)
		}
	}
	return Parameters{entries: entries}
}

func (p Parameters) String() string {
	parts := make([]string, 0, len(p.entries))
	for _, e := range p.entries {
		parts = append(parts, fmt.Sprintf("%s=%v", e.Key, e.Value))
	}
	return "Parameters(" + strings.Join(parts, ", ") + ")"
}
