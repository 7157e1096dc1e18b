//go:build !linux && !darwin

package sysmem

// totalSystemMemory reports no reliable value on platforms without a
// detection method, triggering the package fallback.
func totalSystemMemory() (uint64, bool) {
	return 0, false
}
