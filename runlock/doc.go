// Package runlock is the public façade of the distributed mutual-exclusion
// facility: it orchestrates reentrancy checks, retry-driven acquisition
// against a redlock.Client, periodic auto-extension of the held lease, and
// guaranteed release around the caller's critical section.
package runlock
