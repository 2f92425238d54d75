package arena

import (
	"errors"
	"sync"
	"unsafe"
)

// genericArena is an instrumented allocator conforming to the package's
// polymorphic Arena contract: Allocate/Deallocate update current and peak
// usage counters under a single exclusion primitive, restoring and
// persisting a predictor's byte-footprint estimate across process runs.
//
// The underlying allocation itself (alignedAlloc) does not hold gaMu —
// only the counter update does, so concurrent allocators never serialize
// on the allocator itself, only on the bookkeeping.
type genericArena struct {
	gaMu sync.Mutex

	currentUsage uint64
	peakUsage    uint64

	logPath string
	pred    *predictor
}

// newGenericArena constructs a genericArena, restoring any persisted
// byte-footprint estimate into its predictor.
func newGenericArena(cfg config) *genericArena {
	ga := &genericArena{
		logPath: cfg.logPath,
		pred:    newPredictor(cfg.alpha),
	}
	if bytes, ok := loadPredictedBytes(cfg.logPath); ok {
		ga.pred.restore(bytes)
		logInfo("predictor", "session loaded", map[string]any{"predicted_bytes": bytes})
	}
	return ga
}

// Allocate obtains size bytes aligned to align from the Go heap,
// increments currentUsage, and raises peakUsage if exceeded. It returns
// (nil, false) iff size is zero or align is not a power of two — the
// only "upstream failure" modes available without a user-addressable
// allocator below the Go runtime.
func (a *genericArena) Allocate(size, align uintptr) (unsafe.Pointer, bool) {
	if size == 0 || !isPowerOfTwo(align) {
		return nil, false
	}

	ptr := alignedAlloc(size, align)

	a.gaMu.Lock()
	a.currentUsage += uint64(size)
	if a.currentUsage > a.peakUsage {
		a.peakUsage = a.currentUsage
	}
	a.gaMu.Unlock()

	return ptr, true
}

// Deallocate decrements currentUsage by size, saturating at zero. The
// underlying Go allocation is reclaimed by the garbage collector once the
// caller drops its last reference to p; there is no explicit free.
func (a *genericArena) Deallocate(p unsafe.Pointer, size, align uintptr) {
	if p == nil {
		return
	}
	a.gaMu.Lock()
	defer a.gaMu.Unlock()
	if a.currentUsage >= uint64(size) {
		a.currentUsage -= uint64(size)
	} else {
		a.currentUsage = 0
	}
}

// Equals reports whether other is the same arena instance.
func (a *genericArena) Equals(other Arena) bool {
	switch o := other.(type) {
	case *genericArena:
		return a == o
	case *streamingArena:
		return o.genericArena == a
	default:
		return false
	}
}

// ResetLearning clears the predictor's byte-footprint estimate back to a
// cold start.
func (a *genericArena) ResetLearning() {
	a.gaMu.Lock()
	defer a.gaMu.Unlock()
	a.pred.reset()
}

// SaveStatistics folds the current session's peak usage into the
// predictor and persists the resulting estimate. It may be called at any
// time, including from Close. Each call folds the peak in again, so once
// the estimate differs from the peak, repeated calls move it further
// toward the peak.
func (a *genericArena) SaveStatistics() error {
	a.gaMu.Lock()
	a.pred.observePeak(a.peakUsage)
	predicted := a.pred.predictedBytesValue()
	a.gaMu.Unlock()

	if !savePredictedBytes(a.logPath, predicted) {
		return &PersistenceError{Path: a.logPath, Op: "save", Err: errors.New("arena: failed to write persisted file")}
	}
	logInfo("predictor", "statistics saved", map[string]any{"predicted_bytes": predicted})
	return nil
}

// Close flushes persisted statistics. genericArena owns no pinned
// buffers, so there is nothing else to release.
func (a *genericArena) Close() error {
	return a.SaveStatistics()
}

// Snapshot returns a read-only telemetry view. Ring-related fields are
// always zero for a genericArena.
func (a *genericArena) Snapshot() Telemetry {
	a.gaMu.Lock()
	defer a.gaMu.Unlock()
	return Telemetry{
		CurrentUsage:   a.currentUsage,
		PeakUsage:      a.peakUsage,
		PredictedBytes: a.pred.predictedBytesValue(),
		PredictedSlots: a.pred.predictedSlotsValue(),
	}
}

func isPowerOfTwo(n uintptr) bool {
	return n != 0 && n&(n-1) == 0
}

// alignedAlloc returns a pointer into a freshly-allocated byte slice of at
// least size bytes whose address is a multiple of align. Go's allocator
// gives 8-byte alignment to byte slices of 16 bytes or more; smaller ones
// may come from its tiny allocator at lower alignment. For those, and for
// larger requested alignments (cache-line-sized pinned headers, for
// instance), we over-allocate and return an interior pointer, the same
// technique used for cache-line-aligned arena buffers throughout the
// example corpus.
func alignedAlloc(size, align uintptr) unsafe.Pointer {
	if align <= 8 && size >= 16 {
		buf := make([]byte, size)
		return unsafe.Pointer(&buf[0])
	}
	buf := make([]byte, size+align-1)
	addr := uintptr(unsafe.Pointer(&buf[0]))
	offset := uintptr(0)
	if mod := addr % align; mod != 0 {
		offset = align - mod
	}
	return unsafe.Pointer(&buf[offset])
}
