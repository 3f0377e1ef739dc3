package task

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// IDPolicy decides how a new task id is derived
type IDPolicy string

const (
	// PolicySequence uses a monotonic counter that is never reused in a run.
	PolicySequence IDPolicy = "sequence"
	// PolicyLength uses the current task count plus one. After a delete the
	// next id can collide with a remaining task; lookups then hit the first
	// match in insertion order.
	PolicyLength IDPolicy = "length"
	// PolicyUUID uses a random UUIDv4.
	PolicyUUID IDPolicy = "uuid"
)

// IDPolicies returns all known policies
func IDPolicies() []IDPolicy {
	return []IDPolicy{PolicySequence, PolicyLength, PolicyUUID}
}

// ParseIDPolicy maps a raw value to an IDPolicy; empty means sequence.
func ParseIDPolicy(s string) (IDPolicy, error) {
	switch IDPolicy(s) {
	case "":
		return PolicySequence, nil
	case PolicySequence, PolicyLength, PolicyUUID:
		return IDPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown id policy %q", s)
	}
}

// nextID derives an id from the current task count and the last sequence
// value handed out. It returns the id and the new sequence value.
func (p IDPolicy) nextID(count int, seq int64) (string, int64) {
	switch p {
	case PolicyLength:
		return strconv.Itoa(count + 1), seq
	case PolicyUUID:
		return uuid.NewString(), seq
	default:
		seq++
		return strconv.FormatInt(seq, 10), seq
	}
}
