package runlock

import (
	"sort"
	"strings"

	"github.com/flowforge/runlock/lockerrors"
)

// canonicalForm computes the deterministic, order-insensitive string form
// of a resource set: its members sorted and comma-joined. Two resource
// sets name the "same resources" iff their canonical forms are
// byte-equal.
func canonicalForm(resources []string) (string, error) {
	if len(resources) == 0 {
		return "", lockerrors.ErrEmptyResourceSet
	}
	sorted := make([]string, len(resources))
	copy(sorted, resources)
	sort.Strings(sorted)
	return strings.Join(sorted, ","), nil
}
