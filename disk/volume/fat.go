package volume

import (
	"fmt"

	metadata "github.com/aarsakian/FATForensics/FS"
	fatLib "github.com/aarsakian/FATForensics/FS/FAT"
	"github.com/aarsakian/FATForensics/FS/records"
	"github.com/aarsakian/FATForensics/FS/walker"
	"github.com/aarsakian/FATForensics/logger"
	"github.com/aarsakian/FATForensics/readers"
)

// FAT is one FAT16 or FAT32 volume, the parsed geometry plus every record
// the directory walk produced.
type FAT struct {
	Fat     *fatLib.Fat
	Records []*records.FileRecord
}

func (fat *FAT) Process(hD readers.DiskReader, partitionOffsetB int64) error {
	data, err := hD.ReadFile(partitionOffsetB, 512)
	if err != nil {
		return err
	}

	fat.Fat = new(fatLib.Fat)
	if err := fat.Fat.ProcessBootSector(data, partitionOffsetB); err != nil {
		return err
	}

	msg := fmt.Sprintf("%s volume at offset %d, cluster size %d",
		fat.Fat.GetVariant(), partitionOffsetB, fat.Fat.GetClusterSizeB())
	fmt.Printf("%s\n", msg)
	logger.FSLogger.Info(msg)

	wlk := walker.Walker{
		Handler:    hD,
		Addressing: *fat.Fat,
		Codec:      fatLib.Codec{Addressing: *fat.Fat},
	}

	if fat.Fat.GetVariant() == records.VariantFAT16 {
		wlk.WalkFixedRegion(fat.Fat.RootRegionOffset(), fat.Fat.RootRegionSize(), "")
	} else {
		wlk.WalkDirectory(fat.Fat.VBR.RootCluster, "")
	}
	fat.Records = wlk.Records
	return nil
}

func (fat FAT) GetFS() []metadata.Record {
	var recs []metadata.Record
	for _, record := range fat.Records {
		recs = append(recs, record)
	}
	return recs
}

func (fat FAT) GetRecords() []*records.FileRecord {
	return fat.Records
}

func (fat FAT) GetInfo() string {
	return fmt.Sprintf("%s cluster size %d", fat.Fat.GetVariant(), fat.Fat.GetClusterSizeB())
}

func (fat FAT) GetSignature() string {
	return fat.Fat.GetVariant()
}

func (fat FAT) GetSectorsPerCluster() int {
	return int(fat.Fat.VBR.SectorsPerCluster)
}

func (fat FAT) GetBytesPerSector() uint64 {
	return uint64(fat.Fat.VBR.BytesPerSector)
}

func (fat FAT) GetUnallocatedClusters(hD readers.DiskReader) []int {
	return fat.Fat.GetUnallocatedClusters(hD)
}

func (fat FAT) GetClusterOffset(cluster int) int64 {
	return fat.Fat.ClusterOffset(uint32(cluster))
}
