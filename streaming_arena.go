package arena

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"
)

// errRingAlreadyInitialized is returned by InitializeRing on a second call.
var errRingAlreadyInitialized = errors.New("arena: ring already initialized")

// streamingArena specializes genericArena with a producer/consumer ring of
// page-locked header/payload slot pairs. It embeds genericArena rather
// than extending it through inheritance (Go has none): allocation and
// destruction bookkeeping are delegated, ring mechanics are additive.
//
// Three distinct synchronization concerns are kept deliberately separate,
// per the package design notes:
//
//   - writeIndex/readIndex/slotCount: lock-free atomics. The index
//     arithmetic never takes a lock; AcquireWriteIndex's jitter
//     adaptation does take gaMu and statsMu briefly on every call.
//   - ringMu: a reader/writer lock guarding the headers/payloads slices
//     themselves. Expansion (the writer) appends and fully populates new
//     entries before publishing the new slotCount; HeaderAt/PayloadAt (the
//     readers) take the shared side.
//   - statsMu: a small mutex guarding the throughput/adaptation
//     bookkeeping (avgThroughputGBs, lastAdaptTime, lastThroughputCheck),
//     kept separate from ringMu so a throughput-window check never
//     contends with a header/payload read.
type streamingArena struct {
	*genericArena

	backend        pinnedBackend
	hardLimitBytes uint64

	headerSize  uintptr
	payloadSize uintptr

	ringMu   sync.RWMutex
	headers  []unsafe.Pointer
	payloads []pinnedHandle

	slotCount  atomic.Uint64
	_          [sizeOfCacheLine - 8]byte
	writeIndex atomic.Uint64
	_          [sizeOfCacheLine - 8]byte
	readIndex  atomic.Uint64
	_          [sizeOfCacheLine - 8]byte

	totalBytesProcessed atomic.Uint64

	statsMu             sync.Mutex
	avgThroughputGBs    float64
	lastAdaptTime       time.Time
	lastThroughputCheck time.Time
}

// newStreamingArena constructs a streamingArena, selecting its pinned
// backend once per the configured GPU preference.
func newStreamingArena(cfg config) *streamingArena {
	now := time.Now()
	return &streamingArena{
		genericArena:        newGenericArena(cfg),
		backend:             selectPinnedBackend(cfg.gpuDirectPreferred),
		hardLimitBytes:      cfg.hardLimitBytes,
		lastAdaptTime:       now,
		lastThroughputCheck: now,
	}
}

// InitializeRing fixes header/payload sizes and allocates the initial
// ring storage. slotCount is seeded to max(initialSlots,
// predictor.predictedSlots()) — a previously-learned slot estimate is
// honored as a floor, not an override, per the package design notes.
// Must be called exactly once before any producer/consumer use.
func (sa *streamingArena) InitializeRing(headerSize, payloadSize uintptr, initialSlots uint64) error {
	sa.ringMu.Lock()
	defer sa.ringMu.Unlock()

	if sa.headerSize != 0 || sa.payloadSize != 0 || len(sa.headers) != 0 {
		return errRingAlreadyInitialized
	}

	sa.gaMu.Lock()
	predictedSlots := sa.pred.predictedSlotsValue()
	sa.gaMu.Unlock()

	want := initialSlots
	if predictedSlots > want {
		want = predictedSlots
	}
	if want < minSlots {
		want = minSlots
	}

	headers := make([]unsafe.Pointer, 0, want)
	payloads := make([]pinnedHandle, 0, want)
	for i := uint64(0); i < want; i++ {
		payloadHandle, ok := sa.backend.allocatePinned(payloadSize)
		if !ok {
			for _, h := range payloads {
				sa.backend.freePinned(h)
			}
			return errors.New("arena: failed to allocate pinned payload during ring initialization")
		}
		headers = append(headers, alignedAlloc(headerSize, 8))
		payloads = append(payloads, payloadHandle)
	}

	sa.headerSize = headerSize
	sa.payloadSize = payloadSize
	sa.headers = headers
	sa.payloads = payloads
	sa.slotCount.Store(uint64(len(headers)))
	return nil
}

// AcquireWriteIndex adapts to jitter, charges the throughput window, then
// fetch-and-increments writeIndex and returns its prior value modulo the
// slot count read at the moment of return.
func (sa *streamingArena) AcquireWriteIndex() uint64 {
	sa.adaptToJitter()
	sa.totalBytesProcessed.Add(uint64(sa.headerSize) + uint64(sa.payloadSize))
	prev := sa.writeIndex.Add(1) - 1
	slots := sa.slotCount.Load()
	return prev % slots
}

// AcquireReadIndex fetch-and-increments readIndex and returns its prior
// value modulo the current slot count. The caller must not invoke this
// while CurrentLag() == 0 — back-pressure at acquisition time is the
// caller's responsibility, not the arena's (see the package design
// notes' resolution of the wraparound open question).
func (sa *streamingArena) AcquireReadIndex() uint64 {
	prev := sa.readIndex.Add(1) - 1
	slots := sa.slotCount.Load()
	return prev % slots
}

// CurrentLag returns write_index - read_index, floored at zero.
func (sa *streamingArena) CurrentLag() uint64 {
	w := sa.writeIndex.Load()
	r := sa.readIndex.Load()
	if w > r {
		return w - r
	}
	return 0
}

// HeaderAt returns the header buffer for slot i under the shared ring
// lock, or (nil, false) if i is out of range.
func (sa *streamingArena) HeaderAt(i uint64) (unsafe.Pointer, bool) {
	sa.ringMu.RLock()
	defer sa.ringMu.RUnlock()
	if i >= uint64(len(sa.headers)) {
		return nil, false
	}
	return sa.headers[i], true
}

// PayloadAt returns the payload buffer for slot i under the shared ring
// lock, or (nil, false) if i is out of range.
func (sa *streamingArena) PayloadAt(i uint64) (unsafe.Pointer, bool) {
	sa.ringMu.RLock()
	defer sa.ringMu.RUnlock()
	if i >= uint64(len(sa.payloads)) {
		return nil, false
	}
	return sa.payloads[i].ptr, true
}

// adaptToJitter is invoked on every producer acquisition. It folds the
// current lag into the predictor, refreshes the throughput window on a
// >=1s cadence, and — gated by a separate >=1s cadence on lastAdaptTime —
// attempts an expansion when the predictor's slot estimate has grown past
// the current slot count.
func (sa *streamingArena) adaptToJitter() {
	lag := sa.CurrentLag()

	sa.gaMu.Lock()
	sa.pred.observeLag(lag)
	predictedSlots := sa.pred.predictedSlotsValue()
	sa.gaMu.Unlock()

	now := time.Now()

	sa.statsMu.Lock()
	if now.Sub(sa.lastThroughputCheck) >= time.Second {
		elapsed := now.Sub(sa.lastThroughputCheck).Seconds()
		bytes := sa.totalBytesProcessed.Swap(0)
		var gbs float64
		if elapsed > 0 {
			gbs = (float64(bytes) / (1 << 30)) / elapsed
		}
		sa.avgThroughputGBs = 0.7*gbs + 0.3*sa.avgThroughputGBs
		sa.lastThroughputCheck = now
	}
	shouldAttempt := now.Sub(sa.lastAdaptTime) >= time.Second && predictedSlots > sa.slotCount.Load()
	sa.statsMu.Unlock()

	if shouldAttempt {
		sa.expandRing(predictedSlots)
	}
}

// expandRing attempts to grow the ring to requested slots. Admission is
// all-or-nothing against the hard byte limit; once admitted, allocation
// failures are tolerated by stopping at the last successful header/payload
// pair — slotCount is published only after the new entries are fully
// populated, and it is never shrunk.
func (sa *streamingArena) expandRing(requested uint64) {
	projected := requested * (uint64(sa.headerSize) + uint64(sa.payloadSize))
	if projected > sa.hardLimitBytes {
		logWarn("ring", "expansion rejected: projected size exceeds hard limit", nil)
		return
	}

	sa.ringMu.Lock()
	current := uint64(len(sa.headers))
	if requested <= current {
		sa.ringMu.Unlock()
		sa.touchAdaptTime()
		return
	}

	added := uint64(0)
	for i := current; i < requested; i++ {
		payloadHandle, ok := sa.backend.allocatePinned(sa.payloadSize)
		if !ok {
			break
		}
		sa.headers = append(sa.headers, alignedAlloc(sa.headerSize, 8))
		sa.payloads = append(sa.payloads, payloadHandle)
		added++
	}
	newCount := current + added
	sa.slotCount.Store(newCount)
	sa.ringMu.Unlock()

	sa.touchAdaptTime()
	if added > 0 {
		logDebug("ring", "ring expanded", map[string]any{"slot_count": newCount})
	}
}

func (sa *streamingArena) touchAdaptTime() {
	sa.statsMu.Lock()
	sa.lastAdaptTime = time.Now()
	sa.statsMu.Unlock()
}

// Close releases owned pinned payload buffers, then flushes persisted
// statistics via the embedded genericArena. Headers need no explicit
// release: they are plain Go allocations reclaimed by the garbage
// collector once dropped.
func (sa *streamingArena) Close() error {
	sa.ringMu.Lock()
	for _, h := range sa.payloads {
		sa.backend.freePinned(h)
	}
	sa.headers = nil
	sa.payloads = nil
	sa.ringMu.Unlock()

	return sa.genericArena.Close()
}

// Snapshot returns a read-only telemetry view including ring state.
func (sa *streamingArena) Snapshot() Telemetry {
	t := sa.genericArena.Snapshot()

	sa.ringMu.RLock()
	t.RingSize = uint64(len(sa.headers))
	sa.ringMu.RUnlock()

	t.RingOccupancy = sa.CurrentLag()
	t.IsWarmedUp = sa.slotCount.Load() >= minSlots

	sa.statsMu.Lock()
	t.AverageThroughputGBs = sa.avgThroughputGBs
	sa.statsMu.Unlock()

	return t
}
