//go:build !unix

package fileutil

// FreeSpace is unavailable on this platform; callers treat zero totals as
// "unknown" and skip the capacity check.
func FreeSpace(path string) (total uint64, free uint64, err error) {
	return 0, 0, nil
}
