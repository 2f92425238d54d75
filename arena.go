package arena

import "unsafe"

// Arena is the polymorphic allocation and control surface both
// GenericArena and StreamingArena implement. Downcasting to
// StreamingArenaAPI for ring-specific operations is an explicit type
// assertion at the call site — this package does not special-case mode
// internally past construction.
type Arena interface {
	// Allocate obtains size bytes aligned to align, tracking current and
	// peak usage. It returns (nil, false) iff the request is invalid.
	Allocate(size, align uintptr) (unsafe.Pointer, bool)
	// Deallocate releases a previously-allocated region and decrements
	// current usage, saturating at zero.
	Deallocate(p unsafe.Pointer, size, align uintptr)
	// Equals reports identity: two arenas are interchangeable only if
	// they are the same underlying object.
	Equals(other Arena) bool

	// ResetLearning clears the predictor's byte-footprint estimate.
	ResetLearning()
	// SaveStatistics folds peak usage into the predictor and persists the
	// result; safe to call at any time, including repeatedly.
	SaveStatistics() error
	// Close flushes persisted statistics and releases any owned pinned
	// buffers. It is the explicit lifecycle hook standing in for a
	// destructor.
	Close() error

	// Snapshot returns a read-only telemetry view.
	Snapshot() Telemetry
}

// StreamingArenaAPI adds the producer/consumer ring operations a
// StreamingArena exposes beyond the base Arena contract.
type StreamingArenaAPI interface {
	Arena

	// InitializeRing fixes header/payload sizes and allocates the initial
	// ring storage. It must be called exactly once, before any
	// producer/consumer use.
	InitializeRing(headerSize, payloadSize uintptr, initialSlots uint64) error
	// AcquireWriteIndex adapts to jitter, then returns the next write
	// slot index modulo the current slot count. The index arithmetic is
	// lock-free; the jitter adaptation takes short mutexes on every call
	// and the ring's writer lock when it expands the ring.
	AcquireWriteIndex() uint64
	// AcquireReadIndex returns the next read slot index modulo the
	// current slot count. Lock-free. Callers must not call this while
	// CurrentLag() == 0.
	AcquireReadIndex() uint64
	// CurrentLag returns write_index - read_index, floored at zero.
	CurrentLag() uint64
	// HeaderAt returns the header buffer for slot i, or (nil, false) if i
	// is out of range.
	HeaderAt(i uint64) (unsafe.Pointer, bool)
	// PayloadAt returns the payload buffer for slot i, or (nil, false) if
	// i is out of range.
	PayloadAt(i uint64) (unsafe.Pointer, bool)
}
