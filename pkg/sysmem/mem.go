// Package sysmem detects total system RAM, with a conservative
// fallback on platforms without a detection method. The CLI uses it to
// warn before densifying a matrix whose dense form approaches memory.
package sysmem

// DefaultMemoryBytes is the fallback (4 GB) when detection fails.
const DefaultMemoryBytes uint64 = 4 * 1024 * 1024 * 1024

// Result holds the outcome of memory detection.
type Result struct {
	// TotalBytes is the total system memory in bytes.
	TotalBytes uint64

	// Reliable is false when TotalBytes is the fallback default rather
	// than a platform-reported value.
	Reliable bool
}

// Total returns the total system memory, falling back to
// DefaultMemoryBytes when platform detection fails or is unsupported.
func Total() Result {
	bytes, ok := totalSystemMemory()
	if !ok || bytes == 0 {
		return Result{TotalBytes: DefaultMemoryBytes, Reliable: false}
	}
	return Result{TotalBytes: bytes, Reliable: true}
}
