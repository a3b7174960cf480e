// Package compress implements the per-file compression worker: quality
// selection, output path mapping, the skip policy and atomic JPEG writes.
package compress

// Size-adaptive quality policy. Larger sources carry more redundant detail,
// so they are encoded harder.
const (
	MinQuality = 5
	MaxQuality = 100

	MediumSizeThreshold int64 = 5 * 1024 * 1024
	LargeSizeThreshold  int64 = 20 * 1024 * 1024

	MediumSizePenalty = 10
	LargeSizePenalty  = 20
)

// SelectQuality returns the effective JPEG quality for a source of the given size.
// Sizes strictly above a threshold take its penalty; the result is clamped to
// [MinQuality, MaxQuality].
func SelectQuality(baseQuality int, sourceSize int64) int {
	q := baseQuality
	switch {
	case sourceSize > LargeSizeThreshold:
		q -= LargeSizePenalty
	case sourceSize > MediumSizeThreshold:
		q -= MediumSizePenalty
	}
	return clamp(q, MinQuality, MaxQuality)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
