//go:build unix

package arena

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// pinnedOSBackend reserves page-locked virtual memory directly from the
// operating system: an anonymous private mapping, then mlock to pin its
// pages against the pager so DMA-capable hardware sees a stable
// virtual-to-physical mapping.
type pinnedOSBackend struct{}

func newOSPinnedBackend() pinnedBackend {
	return pinnedOSBackend{}
}

func (pinnedOSBackend) name() string { return "os-mlock" }

func (pinnedOSBackend) allocatePinned(size uintptr) (pinnedHandle, bool) {
	if size == 0 {
		return pinnedHandle{}, false
	}
	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		logWarn("pinned", "mmap failed", err)
		return pinnedHandle{}, false
	}
	if err := unix.Mlock(data); err != nil {
		// Locking failed (commonly RLIMIT_MEMLOCK); the mapping is still
		// usable as ordinary committed memory, just not DMA-safe. We log
		// and keep it rather than fail the allocation outright, matching
		// the original's "best effort" pinning.
		logWarn("pinned", "mlock failed, memory is committed but not page-locked", err)
	}
	return pinnedHandle{ptr: unsafe.Pointer(&data[0]), size: size}, true
}

func (pinnedOSBackend) freePinned(h pinnedHandle) {
	if !h.valid() {
		return
	}
	data := unsafe.Slice((*byte)(h.ptr), h.size)
	_ = unix.Munlock(data)
	_ = unix.Munmap(data)
}
