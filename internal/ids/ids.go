package ids

import "github.com/oklog/ulid/v2"

// New returns a lexicographically sortable identifier suitable for storage keys.
// ulid.Make draws from a process-wide monotonic entropy source and is safe for concurrent use.
func New() string {
	return ulid.Make().String()
}

// Valid reports whether id is a well-formed identifier produced by New.
func Valid(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}
