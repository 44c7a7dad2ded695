package MBR

import (
	"errors"
	"fmt"

	volume "github.com/aarsakian/FATForensics/disk/volume"
	"github.com/aarsakian/FATForensics/logger"
	"github.com/aarsakian/FATForensics/readers"
	"github.com/aarsakian/FATForensics/utils"
)

var PartitionTypes = map[uint8]string{
	0x01: "FAT12",
	0x04: "FAT16 <32M",
	0x06: "FAT16",
	0x07: "HPFS/NTFS/exFAT",
	0x0b: "W95 FAT32",
	0x0c: "W95 FAT32 (LBA)",
	0x0e: "W95 FAT16 (LBA)",
	0x0f: "Extended",
	0x27: "Hidden NTFS Win"}

type MBR struct {
	BootCode           [446]byte //0-445
	Partitions         []Partition
	ExtendedPartitions []ExtendedPartition
	Signature          []byte //510-511
}

type ExtendedPartition struct {
	Partition   *Partition
	TableOffset int
}
type Partition struct {
	Flag     uint8
	StartCHS [3]byte
	Type     uint8
	EndCHS   [3]byte
	StartLBA uint32
	Size     uint32 //sectors
	Volume   volume.Volume
}

func (partition Partition) GetOffset() uint64 {
	return uint64(partition.StartLBA)
}

func (partition Partition) GetPartitionType() string {
	return PartitionTypes[partition.Type]
}

func (partition Partition) hasFATType() bool {
	switch partition.Type {
	case 0x01, 0x04, 0x06, 0x07, 0x0b, 0x0c, 0x0e:
		return true
	}
	return false
}

// LocateVolume probes the partition's boot sector. The table type byte only
// narrows the candidates, the boot sector signature decides: 0x07 can carry
// exFAT as well as NTFS, and formatters do not always keep the type byte in
// step with the filesystem.
func (partition *Partition) LocateVolume(hD readers.DiskReader) {
	if !partition.hasFATType() {
		return
	}

	partitionOffsetB := int64(partition.GetOffset()) * 512
	data, err := hD.ReadFile(partitionOffsetB, 512)
	if err != nil {
		logger.FSLogger.Error(fmt.Sprintf("boot sector read failed at sector %d: %v",
			partition.GetOffset(), err))
		return
	}

	switch volume.DetectBootSector(data) {
	case "EXFAT":
		partition.Volume = new(volume.EXFAT)
	case "FAT":
		partition.Volume = new(volume.FAT)
	default:
		msg := fmt.Sprintf("partition type %#x at sector %d has no FAT or exFAT boot sector",
			partition.Type, partition.GetOffset())
		logger.FSLogger.Warning(msg)
	}
}

func (extPartition ExtendedPartition) GetOffset() uint64 {
	return uint64(extPartition.Partition.StartLBA) + uint64(extPartition.TableOffset)
}

func (extPartition *ExtendedPartition) LocateVolume(hD readers.DiskReader) {
	extPartition.Partition.LocateVolume(hD)
}

func (mbr MBR) IsProtective() bool {
	return mbr.Partitions[0].Type == 0xEE // 1st partition flag
}

func (mbr MBR) GetPartition(partitionNum int) Partition {
	return mbr.Partitions[partitionNum]
}

func LocatePartitions(data []byte) []Partition {
	pos := 0
	var partitions []Partition
	for pos < len(data) {
		var partition *Partition = new(Partition) //explicit is better
		utils.Unmarshal(data[pos:pos+16], partition)
		if partition.Type == 0x00 {
			break
		}
		partitions = append(partitions, *partition)
		pos += 16
	}

	return partitions
}

// PopulatePseudoMBR fabricates a single partition at sector zero for media
// formatted without a partition table, USB sticks and SD cards mostly.
func (mbr *MBR) PopulatePseudoMBR(voltype string) {
	partition := new(Partition)

	utils.Unmarshal(make([]byte, 16), partition)
	switch voltype {
	case "EXFAT":
		partition.Type = 0x07
	default:
		partition.Type = 0x0c
	}
	mbr.Partitions = []Partition{*partition}
}

func (mbr *MBR) DiscoverExtendedPartitions(buffer []byte, offset int) {
	var extPartitions []ExtendedPartition
	partitions := LocatePartitions(buffer[446:510])
	for idx := range partitions {
		extPartitions = append(extPartitions, ExtendedPartition{Partition: &partitions[idx], TableOffset: offset})
	}
	mbr.ExtendedPartitions = extPartitions
}

func (mbr *MBR) Parse(buffer []byte) {

	utils.Unmarshal(buffer, mbr)
	mbr.Partitions = LocatePartitions(buffer[446:510])
	mbr.Signature = buffer[510:]

}

func (mbr MBR) GetExtendedPartitionOffset() (int, error) {
	for _, partition := range mbr.Partitions {
		if partition.Type == 0x0f {
			return int(partition.GetOffset()), nil
		}
	}
	return -1, errors.New("extended partition not found")
}

func (mbr *MBR) UpdateExtendedPartitionsOffsets(extendedTableSectorOffset uint32) {
	for idx := range mbr.Partitions {
		if mbr.Partitions[idx].Type != 0x0f {
			continue
		}
		mbr.Partitions[idx].StartLBA += extendedTableSectorOffset
	}
}

func (partition Partition) GetVolInfo() string {
	if partition.Volume == nil {
		return ""
	}
	return partition.Volume.GetInfo()
}

func (partiton Partition) GetVolume() volume.Volume {
	return partiton.Volume
}

func (extPartition ExtendedPartition) GetVolume() volume.Volume {
	return extPartition.Partition.Volume
}

func (partition Partition) GetInfo() string {
	return fmt.Sprintf(" %s at %d size %d sectors", partition.GetPartitionType(), partition.GetOffset(), partition.Size)

}

func (extPartition ExtendedPartition) GetInfo() string {

	return fmt.Sprintf("\textended partition  %s at %d size %d sectors",
		extPartition.Partition.GetPartitionType(), extPartition.Partition.GetOffset(), extPartition.Partition.Size)
}

func (extpartition ExtendedPartition) GetVolInfo() string {
	if extPartitionVolume := extpartition.GetVolume(); extPartitionVolume != nil {
		return extPartitionVolume.GetInfo()
	}
	return ""
}
