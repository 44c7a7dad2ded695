package readers

// DiskReader abstracts position based read access to a volume, whether it is
// a raw image, an EWF evidence set or a physical drive. Reads are
// synchronous and share the handle position, so callers serialize access
// per handler.
type DiskReader interface {
	CreateHandler()
	CloseHandler()
	ReadFile(int64, int) ([]byte, error)
	GetDiskSize() int64
}

func GetHandler(pathToDisk string, mode string) DiskReader {

	var dr DiskReader
	switch mode {
	case "physicalDrive":
		dr = getPhysicalDriveReader(pathToDisk)
	case "ewf":
		dr = &EWFReader{PathToEvidenceFiles: pathToDisk}
	case "raw":
		dr = &RawReader{PathToEvidenceFiles: pathToDisk}
	}
	if dr == nil {
		return nil
	}
	dr.CreateHandler()

	return dr
}
