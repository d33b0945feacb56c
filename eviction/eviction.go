package eviction

import (
	"errors"
	"fmt"
	"strings"
)

/*
This file defines the eviction strategies this package knows how to build.

Both engines keep their own index and ordering and share no state with each
other, so any number of instances can run side by side.
*/

// PolicyType is a simple identifier for supported eviction strategies.
type PolicyType string

const (
	// LRUPolicy (Least Recently Used): evicts the key that has not been
	// accessed for the longest time.
	LRUPolicy PolicyType = "lru"

	// LFUPolicy (Least Frequently Used): evicts the key with the fewest
	// accesses, oldest first among equals. Frequencies age so that keys which
	// were hot long ago become evictable again.
	LFUPolicy PolicyType = "lfu"
)

// ErrUnknownPolicy is returned for a policy name that is neither LRU nor LFU.
var ErrUnknownPolicy = errors.New("eviction: unknown policy")

// ParsePolicyType converts a case-insensitive name into a PolicyType.
func ParsePolicyType(s string) (PolicyType, error) {
	switch t := PolicyType(strings.ToLower(strings.TrimSpace(s))); t {
	case LRUPolicy, LFUPolicy:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

func (t PolicyType) String() string { return string(t) }
