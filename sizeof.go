package arena

// sizeOfCacheLine is the padding unit used to keep independently-mutated
// atomics on separate cache lines. 128 bytes covers both x86-64 (64)
// and Apple Silicon / other ARM64 (128) without per-arch build tags.
const sizeOfCacheLine = 128

// minSlots is the floor the predictor's slot estimate and InitializeRing
// never go below, regardless of observed lag or requested initial depth.
const minSlots = 4
