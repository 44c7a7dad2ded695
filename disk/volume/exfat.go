package volume

import (
	"fmt"

	metadata "github.com/aarsakian/FATForensics/FS"
	exfatLib "github.com/aarsakian/FATForensics/FS/EXFAT"
	"github.com/aarsakian/FATForensics/FS/records"
	"github.com/aarsakian/FATForensics/FS/walker"
	"github.com/aarsakian/FATForensics/logger"
	"github.com/aarsakian/FATForensics/readers"
)

// EXFAT is one exFAT volume, the parsed main boot sector plus every record
// the entry set walk produced.
type EXFAT struct {
	Exfat   *exfatLib.Exfat
	Records []*records.FileRecord
}

func (exfat *EXFAT) Process(hD readers.DiskReader, partitionOffsetB int64) error {
	data, err := hD.ReadFile(partitionOffsetB, 512)
	if err != nil {
		return err
	}

	exfat.Exfat = new(exfatLib.Exfat)
	if err := exfat.Exfat.ProcessBootSector(data, partitionOffsetB); err != nil {
		return err
	}

	msg := fmt.Sprintf("EXFAT volume at offset %d, cluster size %d",
		partitionOffsetB, exfat.Exfat.GetClusterSizeB())
	fmt.Printf("%s\n", msg)
	logger.FSLogger.Info(msg)

	wlk := walker.Walker{
		Handler:    hD,
		Addressing: *exfat.Exfat,
		Codec:      exfatLib.Codec{Addressing: *exfat.Exfat},
	}
	wlk.WalkDirectory(exfat.Exfat.VBR.RootCluster, "")
	exfat.Records = wlk.Records
	return nil
}

func (exfat EXFAT) GetFS() []metadata.Record {
	var recs []metadata.Record
	for _, record := range exfat.Records {
		recs = append(recs, record)
	}
	return recs
}

func (exfat EXFAT) GetRecords() []*records.FileRecord {
	return exfat.Records
}

func (exfat EXFAT) GetInfo() string {
	return fmt.Sprintf("%s serial %x cluster size %d", exfat.GetSignature(),
		exfat.Exfat.VBR.VolumeSerialNumber, exfat.Exfat.GetClusterSizeB())
}

func (exfat EXFAT) GetSignature() string {
	return exfat.Exfat.VBR.GetSignature()
}

func (exfat EXFAT) GetSectorsPerCluster() int {
	return int(exfat.Exfat.VBR.GetSectorsPerCluster())
}

func (exfat EXFAT) GetBytesPerSector() uint64 {
	return uint64(exfat.Exfat.VBR.GetBytesPerSector())
}

func (exfat EXFAT) GetUnallocatedClusters(hD readers.DiskReader) []int {
	return exfat.Exfat.GetUnallocatedClusters(hD)
}

func (exfat EXFAT) GetClusterOffset(cluster int) int64 {
	return exfat.Exfat.ClusterOffset(uint32(cluster))
}
