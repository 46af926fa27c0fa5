// Package testutils provides deterministic generators and shared fakes for
// Tint testing. The fakes implement the tinttypes collaborator contracts so
// controller, broadcaster, and hub tests can script failures and assert on
// recorded interactions.
package testutils

import (
	"fmt"
	"sync"
	"time"
)

var (
	// Thread-safe counter for deterministic ID generation
	idCounter uint64
	idMutex   sync.Mutex

	// Thread-safe counter for deterministic timestamp generation
	timeCounter int64
	timeMutex   sync.Mutex
)

// SequentialUUID generates deterministic IDs that keep the UUID v4 shape:
// 00000001-0000-4000-8000-000000000001, 00000002-0000-4000-8000-000000000002,
// and so on. Inject it as a hub ID generator to make attach-order assertions
// stable across runs.
func SequentialUUID() string {
	idMutex.Lock()
	defer idMutex.Unlock()

	idCounter++

	// Format: xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx with version 4 and the
	// variant nibble fixed to 8
	return fmt.Sprintf("%08x-0000-4000-8000-%012x", idCounter, idCounter)
}

// SequentialClock returns timestamps that advance one second per call
// starting from 2025-01-01T00:00:01Z. Inject it as a hub clock to make
// attach-time output deterministic.
func SequentialClock() time.Time {
	timeMutex.Lock()
	defer timeMutex.Unlock()

	timeCounter++

	baseTime := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return baseTime.Add(time.Duration(timeCounter) * time.Second)
}

// ResetCounters resets the deterministic counters so every test starts from
// the same first ID and timestamp.
func ResetCounters() {
	idMutex.Lock()
	timeMutex.Lock()
	defer idMutex.Unlock()
	defer timeMutex.Unlock()

	idCounter = 0
	timeCounter = 0
}
