package arena

import "unsafe"

// pinnedHandle identifies a page-locked allocation. Its zero value never
// aliases a real allocation.
type pinnedHandle struct {
	ptr  unsafe.Pointer
	size uintptr
}

// valid reports whether h refers to a real allocation.
func (h pinnedHandle) valid() bool {
	return h.ptr != nil
}

// pinnedBackend is the capability contract for allocating and releasing
// page-locked ("pinned") memory. A StreamingArena selects exactly one
// implementation at construction and uses it for every pinned allocation
// in its lifetime — a handle allocated by one backend must never be freed
// through the other.
type pinnedBackend interface {
	allocatePinned(size uintptr) (pinnedHandle, bool)
	freePinned(h pinnedHandle)
	name() string
}

// GPUHostAllocatorFactory is the narrow capability point for a GPU
// host-allocator binding (e.g. a CUDA driver's cudaHostAlloc/cudaFreeHost
// pair). It is nil by default, meaning no GPU backend is available and
// StreamingArena always falls back to pinnedOSBackend. It returns the
// unexported pinnedBackend interface, whose methods are unexported too, so
// only code inside this package can supply a backend through it; the
// package itself ships none.
//
// This mirrors the original implementation's runtime driver-library probe
// (load the driver, resolve symbols, fall back silently if either step
// fails) but expressed as Go's idiomatic registration point — the same
// shape as SetLogger — rather than dynamic library loading, since the
// actual GPU binding is an external collaborator this package never
// implements.
var GPUHostAllocatorFactory func() (backend pinnedBackend, ok bool)

// selectPinnedBackend chooses the pinned backend for a StreamingArena:
// the GPU-host binding when gpuDirectPreferred is set and a factory is
// registered and reports availability, otherwise the OS fallback. The
// choice is recorded once; callers never dispatch per-call.
func selectPinnedBackend(gpuDirectPreferred bool) pinnedBackend {
	if gpuDirectPreferred && GPUHostAllocatorFactory != nil {
		if backend, ok := GPUHostAllocatorFactory(); ok && backend != nil {
			logInfo("pinned", "GPU host allocator selected", map[string]any{"backend": backend.name()})
			return backend
		}
		logInfo("pinned", "GPU host allocator unavailable, falling back to OS pinned memory", nil)
	}
	return newOSPinnedBackend()
}
