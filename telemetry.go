package arena

// Telemetry is a read-only, point-in-time view of an arena's internal
// state, safe to consume concurrently from any number of observers (e.g.
// a dashboard). It is a value type: once returned from Snapshot it never
// aliases the arena's live state, matching the "borrow for the duration
// of a read, never retain" ownership rule.
type Telemetry struct {
	CurrentUsage         uint64  `json:"current_usage"`
	PeakUsage            uint64  `json:"peak_usage"`
	PredictedBytes       uint64  `json:"predicted_bytes"`
	RingSize             uint64  `json:"ring_size"`
	RingOccupancy        uint64  `json:"ring_occupancy"`
	PredictedSlots       uint64  `json:"predicted_slots"`
	AverageThroughputGBs float64 `json:"average_throughput_gbs"`
	IsWarmedUp           bool    `json:"is_warmed_up"`
}
