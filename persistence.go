package arena

import (
	"encoding/binary"
	"errors"
	"os"
)

// persistMagic tags the file format so a future incompatible layout can be
// detected instead of silently mis-loaded. This is additive: the format
// is still deliberately minimal (no version negotiation, no checksum of
// the payload itself) per the spec's "durability is not provided"
// rationale — a corrupt or foreign file degrades to a cold start exactly
// like a missing file does, it is never treated as valid.
var persistMagic = [4]byte{'A', 'A', 'V', '1'}

const persistRecordSize = len(persistMagic) + 8 // magic + uint64

// errShortRead is returned internally when a persisted file is present
// but truncated; callers observe it only as a failed load (cold start).
var errShortRead = errors.New("arena: persisted file truncated")

// savePredictedBytes writes predictedBytes to path as a tagged,
// host-independent (little-endian) binary record. It returns false on
// any failure to open or write the file; the caller treats this as a
// discarded session, not a fatal error.
func savePredictedBytes(path string, predictedBytes uint64) bool {
	buf := make([]byte, persistRecordSize)
	copy(buf, persistMagic[:])
	binary.LittleEndian.PutUint64(buf[len(persistMagic):], predictedBytes)

	if err := os.WriteFile(path, buf, 0o644); err != nil {
		logWarn("persistence", "failed to save predictor state", err)
		return false
	}
	return true
}

// loadPredictedBytes reads a previously-saved predictedBytes value from
// path. It returns (0, false) if the file is missing, unreadable, too
// short, or carries a foreign magic — all of which are non-fatal: the
// arena simply starts cold.
func loadPredictedBytes(path string) (uint64, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logWarn("persistence", "failed to load predictor state", err)
		}
		return 0, false
	}
	if len(data) < persistRecordSize {
		logWarn("persistence", "failed to load predictor state", errShortRead)
		return 0, false
	}
	if [4]byte(data[:4]) != persistMagic {
		return 0, false
	}
	return binary.LittleEndian.Uint64(data[4:persistRecordSize]), true
}
