//go:build !windows

package readers

// Physical drive access uses the raw block device node on non windows
// platforms, e.g. /dev/sdb1.
func getPhysicalDriveReader(pathToDisk string) DiskReader {
	return &RawReader{PathToEvidenceFiles: pathToDisk}
}
