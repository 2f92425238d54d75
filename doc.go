// Package arena implements an adaptive memory arena for sustained
// high-throughput streaming workloads (ultrasound RF acquisition is the
// motivating case: 30+ frames/second, multi-megabyte payloads).
//
// # Architecture
//
// Three mechanisms share one resource:
//
//   - a telemetry-instrumented generic allocator that tracks its own
//     current and peak working set;
//   - a predictor that learns the peak footprint and ring depth via an
//     exponentially-weighted moving average, and persists its byte
//     estimate (not the ring depth) to disk for the next process run;
//   - a producer/consumer ring of page-locked ("pinned") buffers for
//     zero-copy staging, which grows at runtime in response to measured
//     back-pressure and is bounded by a hard byte limit.
//
// Build an Arena with Builder:
//
//	a, err := arena.NewBuilder().
//		SetKey("integration-test").
//		SetMode(arena.ModeStreaming).
//		Build()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer a.Close()
//
//	sa := a.(arena.StreamingArenaAPI)
//	if err := sa.InitializeRing(64, 4<<20, 8); err != nil {
//		log.Fatal(err)
//	}
//
// Producers call AcquireWriteIndex, consumers call AcquireReadIndex;
// neither takes the ring's reader/writer lock in the steady state
// (AcquireWriteIndex does take short mutexes for the predictor and the
// throughput bookkeeping, and the writer lock when it expands the
// ring). Ring storage mutation
// (expansion) and telemetry reads (HeaderAt/PayloadAt/Snapshot) take a
// shared reader/writer lock, kept deliberately separate from the
// lock-free index arithmetic — see streaming_arena.go.
package arena
