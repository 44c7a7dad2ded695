package volume

import (
	metadata "github.com/aarsakian/FATForensics/FS"
	exfatLib "github.com/aarsakian/FATForensics/FS/EXFAT"
	fatLib "github.com/aarsakian/FATForensics/FS/FAT"
	"github.com/aarsakian/FATForensics/FS/records"
	"github.com/aarsakian/FATForensics/readers"
)

type Volume interface {
	Process(readers.DiskReader, int64) error
	GetSectorsPerCluster() int
	GetBytesPerSector() uint64
	GetInfo() string
	GetSignature() string
	GetFS() []metadata.Record
	GetRecords() []*records.FileRecord
	GetUnallocatedClusters(readers.DiskReader) []int
	GetClusterOffset(int) int64
}

// DetectBootSector classifies the first sector of a candidate volume as
// "EXFAT", "FAT" or "". Parsing is done on throwaway structs, the caller
// reparses through Process once a reader and offset are fixed.
func DetectBootSector(data []byte) string {
	if err := new(exfatLib.Exfat).ProcessBootSector(data, 0); err == nil {
		return "EXFAT"
	}
	if err := new(fatLib.Fat).ProcessBootSector(data, 0); err == nil {
		return "FAT"
	}
	return ""
}
