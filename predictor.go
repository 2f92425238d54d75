package arena

// predictor is an online exponentially-weighted estimator of two
// quantities observed across an arena's lifetime: peak byte footprint and
// required ring slot count. It is pure and single-owner — the embedding
// arena's mutex serializes all access, the predictor takes no lock of its
// own (see the "shared-resource policy" in the package design notes).
type predictor struct {
	alpha          float64
	predictedBytes uint64
	predictedSlots uint64
}

// newPredictor returns a predictor with alpha clamped into [0,1] and a
// cold predictedSlots floor of minSlots.
func newPredictor(alpha float64) *predictor {
	switch {
	case alpha < 0:
		alpha = 0
	case alpha > 1:
		alpha = 1
	}
	return &predictor{
		alpha:          alpha,
		predictedSlots: minSlots,
	}
}

// observePeak folds a session's peak byte usage into the EMA. The first
// observation after a cold start (predictedBytes == 0) seeds the estimate
// directly rather than blending against zero, so a single session's peak
// isn't diluted by an artificial zero floor.
func (p *predictor) observePeak(peakBytes uint64) {
	if p.predictedBytes == 0 {
		p.predictedBytes = peakBytes
		return
	}
	p.predictedBytes = uint64(p.alpha*float64(peakBytes) + (1-p.alpha)*float64(p.predictedBytes))
}

// observeLag folds an observed ring lag into the slot-count EMA, floored
// at minSlots. The floor exists so a pathological cold start (lag == 0)
// can never pin the ring at 0 or 1 slot, which would serialize producers
// and consumers against each other.
func (p *predictor) observeLag(lag uint64) {
	next := p.alpha*float64(lag) + (1-p.alpha)*float64(p.predictedSlots)
	rounded := uint64(next + 0.5)
	if rounded < minSlots {
		rounded = minSlots
	}
	p.predictedSlots = rounded
}

// predictedBytesValue returns the current byte-footprint estimate.
func (p *predictor) predictedBytesValue() uint64 {
	return p.predictedBytes
}

// predictedSlotsValue returns the current slot-count estimate.
func (p *predictor) predictedSlotsValue() uint64 {
	return p.predictedSlots
}

// restore replaces predictedBytes with a value loaded from persisted
// state at session start. It does not touch predictedSlots: slot depth
// is not persisted (see persistence.go), only byte footprint is.
func (p *predictor) restore(bytes uint64) {
	p.predictedBytes = bytes
}

// reset clears the byte-footprint estimate back to a cold start, leaving
// predictedSlots untouched.
func (p *predictor) reset() {
	p.predictedBytes = 0
}
