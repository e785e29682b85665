// Package packets implements the fixed handler set dispatched by the
// wire router, the builders for the packets this host sends in
// response, and the small schema-validation predicate every handler
// that trusts a peer-supplied Dictionary runs first.
package packets

import "github.com/tma02/duckyhost/internal/variant"

// ValidateFields reports whether dict contains every key in want with
// a value of the matching Tag. Handlers call this before trusting any
// peer-supplied Dictionary; a false result means log and drop, never
// partially apply.
func ValidateFields(dict variant.Dictionary, want map[string]variant.Tag) bool {
	for key, tag := range want {
		v, ok := dict.Get(key)
		if !ok || v.Tag != tag {
			return false
		}
	}
	return true
}
