package analysis

import "encoding/json"

// Stat is the result of a statistic that may lack enough data to be computed.
// Callers either use the value or fall back to an explicit default; a zero
// value is never used to mean "no data".
type Stat[T any] struct {
	value  T
	ok     bool
	reason string
}

// Computed wraps a successfully computed value.
func Computed[T any](v T) Stat[T] {
	return Stat[T]{value: v, ok: true}
}

// Insufficient marks a statistic that could not be computed.
func Insufficient[T any](reason string) Stat[T] {
	return Stat[T]{reason: reason}
}

// Value returns the computed value and whether there was one.
func (s Stat[T]) Value() (T, bool) { return s.value, s.ok }

// OK reports whether the statistic was computed.
func (s Stat[T]) OK() bool { return s.ok }

// Reason explains why the statistic is insufficient.
func (s Stat[T]) Reason() string { return s.reason }

// Or returns the value, or def when the statistic is insufficient.
func (s Stat[T]) Or(def T) T {
	if !s.ok {
		return def
	}
	return s.value
}

// Ptr returns a pointer to the value, or nil when insufficient.
func (s Stat[T]) Ptr() *T {
	if !s.ok {
		return nil
	}
	v := s.value
	return &v
}

// MarshalJSON encodes the value, or null when insufficient.
func (s Stat[T]) MarshalJSON() ([]byte, error) {
	if !s.ok {
		return []byte("null"), nil
	}
	return json.Marshal(s.value)
}
