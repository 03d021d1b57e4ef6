//go:build unix

package fileutil

import "golang.org/x/sys/unix"

// FreeSpace reports the total and available bytes of the filesystem holding
// path.
func FreeSpace(path string) (total uint64, free uint64, err error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	total = stat.Blocks * uint64(stat.Bsize)
	free = stat.Bavail * uint64(stat.Bsize)
	return total, free, nil
}
