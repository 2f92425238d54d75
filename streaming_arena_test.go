package arena

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamingArenaInitializeRingSeedsFromInitialSlots(t *testing.T) {
	sa := newStreamingArena(testConfig(t))
	require.NoError(t, sa.InitializeRing(64, 256, 8))

	assert.Equal(t, uint64(8), sa.slotCount.Load())
}

func TestStreamingArenaInitializeRingHonorsRestoredSlotFloor(t *testing.T) {
	sa := newStreamingArena(testConfig(t))
	sa.pred.predictedSlots = 32

	require.NoError(t, sa.InitializeRing(64, 256, 4))

	assert.Equal(t, uint64(32), sa.slotCount.Load())
}

func TestStreamingArenaInitializeRingRejectsDoubleInit(t *testing.T) {
	sa := newStreamingArena(testConfig(t))
	require.NoError(t, sa.InitializeRing(64, 256, 8))

	err := sa.InitializeRing(64, 256, 8)
	assert.ErrorIs(t, err, errRingAlreadyInitialized)
}

func TestStreamingArenaAcquireIndicesWrapModulo(t *testing.T) {
	sa := newStreamingArena(testConfig(t))
	require.NoError(t, sa.InitializeRing(64, 256, 4))

	seen := make(map[uint64]bool)
	for i := 0; i < 4; i++ {
		idx := sa.AcquireWriteIndex()
		assert.Less(t, idx, uint64(4))
		seen[idx] = true
	}
	assert.Len(t, seen, 4)

	idx := sa.AcquireWriteIndex()
	assert.Less(t, idx, uint64(4))
}

func TestStreamingArenaCurrentLag(t *testing.T) {
	sa := newStreamingArena(testConfig(t))
	require.NoError(t, sa.InitializeRing(64, 256, 8))

	assert.Equal(t, uint64(0), sa.CurrentLag())

	sa.AcquireWriteIndex()
	sa.AcquireWriteIndex()
	assert.Equal(t, uint64(2), sa.CurrentLag())

	sa.AcquireReadIndex()
	assert.Equal(t, uint64(1), sa.CurrentLag())
}

func TestStreamingArenaHeaderPayloadAtBounds(t *testing.T) {
	sa := newStreamingArena(testConfig(t))
	require.NoError(t, sa.InitializeRing(64, 256, 4))

	h, ok := sa.HeaderAt(0)
	require.True(t, ok)
	assert.NotNil(t, h)

	_, ok = sa.HeaderAt(4)
	assert.False(t, ok)

	p, ok := sa.PayloadAt(0)
	require.True(t, ok)
	assert.NotNil(t, p)

	_, ok = sa.PayloadAt(4)
	assert.False(t, ok)
}

func TestStreamingArenaExpandRingRefusesOverHardLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.hardLimitBytes = 8 * (64 + 256)
	sa := newStreamingArena(cfg)
	require.NoError(t, sa.InitializeRing(64, 256, 8))

	sa.lastAdaptTime = time.Now().Add(-2 * time.Second)
	sa.expandRing(9)

	assert.Equal(t, uint64(8), sa.slotCount.Load())
}

func TestStreamingArenaExpandRingGrowsWithinHardLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.hardLimitBytes = 64 * (64 + 256)
	sa := newStreamingArena(cfg)
	require.NoError(t, sa.InitializeRing(64, 256, 8))

	sa.lastAdaptTime = time.Now().Add(-2 * time.Second)
	sa.expandRing(16)

	assert.Equal(t, uint64(16), sa.slotCount.Load())
	h, ok := sa.HeaderAt(15)
	assert.True(t, ok)
	assert.NotNil(t, h)
}

func TestStreamingArenaExpandRingNeverShrinks(t *testing.T) {
	cfg := testConfig(t)
	cfg.hardLimitBytes = 64 * (64 + 256)
	sa := newStreamingArena(cfg)
	require.NoError(t, sa.InitializeRing(64, 256, 16))

	sa.lastAdaptTime = time.Now().Add(-2 * time.Second)
	sa.expandRing(8)

	assert.Equal(t, uint64(16), sa.slotCount.Load())
}

func TestStreamingArenaSnapshotReportsRingState(t *testing.T) {
	sa := newStreamingArena(testConfig(t))
	require.NoError(t, sa.InitializeRing(64, 256, 8))
	sa.AcquireWriteIndex()

	snap := sa.Snapshot()
	assert.Equal(t, uint64(8), snap.RingSize)
	assert.Equal(t, uint64(1), snap.RingOccupancy)
	assert.True(t, snap.IsWarmedUp)
}

func TestStreamingArenaCloseReleasesPinnedPayloads(t *testing.T) {
	sa := newStreamingArena(testConfig(t))
	require.NoError(t, sa.InitializeRing(64, 256, 4))

	require.NoError(t, sa.Close())
	assert.Nil(t, sa.payloads)
	assert.Nil(t, sa.headers)
}

// TestStreamingArenaConcurrentProducerConsumerConverge drives a single
// ring through a million concurrent acquisitions split across producer and
// consumer goroutines, then asserts the indices converge exactly and lag
// drains to zero.
func TestStreamingArenaConcurrentProducerConsumerConverge(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping torture test in short mode")
	}

	const total = 1_000_000

	sa := newStreamingArena(testConfig(t))
	require.NoError(t, sa.InitializeRing(64, 256, 64))

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			sa.AcquireWriteIndex()
		}
	}()

	go func() {
		defer wg.Done()
		produced := 0
		for produced < total {
			if sa.CurrentLag() == 0 {
				continue
			}
			sa.AcquireReadIndex()
			produced++
		}
	}()

	wg.Wait()

	assert.Equal(t, uint64(total), sa.writeIndex.Load())
	assert.Equal(t, uint64(total), sa.readIndex.Load())
	assert.Equal(t, uint64(0), sa.CurrentLag())
}
