// Package retry implements jittered exponential backoff with a cumulative
// wait-time budget, used by the lock coordinator to space out acquisition
// attempts under contention.
package retry
