package store

import "testing"

// NewTestStore creates a migrated in-memory Store that is closed when the
// test ends. This is only intended for use in tests.
func NewTestStore(tb testing.TB) *Store {
	tb.Helper()

	s, err := OpenMemory()
	if err != nil {
		tb.Fatalf("Failed to open test database: %v", err)
	}
	tb.Cleanup(func() {
		s.Close()
	})
	return s
}
