package metadata

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var diffOptions = []cmp.Option{
	cmpopts.EquateEmpty(),
}

// Diff returns a human-readable structural diff of the normalized forms
// of a and b, or "" when they are equal.
func Diff(a, b Algorithm) string {
	return cmp.Diff(a.Normalize(), b.Normalize(), diffOptions...)
}

// Equal reports whether a and b describe the same algorithm once
// normalized.
func Equal(a, b Algorithm) bool {
	return cmp.Equal(a.Normalize(), b.Normalize(), diffOptions...)
}
