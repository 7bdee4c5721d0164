package domain

import (
	"bytes"
	"encoding/json"
)

// Optional holds a value that may be absent.
// A missing JSON field, a JSON null and a missing store key all decode to None.
type Optional[T any] struct {
	value T
	set   bool
}

// Some wraps a present value
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None returns an absent value
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether a value is present
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Or returns the value, or def when absent
func (o Optional[T]) Or(def T) T {
	if !o.set {
		return def
	}
	return o.value
}

// MarshalJSON encodes None as null
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes null as None
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// OptionalString converts a (value, ok) pair as returned by store lookups
func OptionalString(v string, ok bool) Optional[string] {
	if !ok {
		return None[string]()
	}
	return Some(v)
}
