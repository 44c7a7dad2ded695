package FAT

import (
	"errors"
	"fmt"

	"github.com/aarsakian/FATForensics/FS/records"
	"github.com/aarsakian/FATForensics/logger"
	"github.com/aarsakian/FATForensics/readers"
	"github.com/aarsakian/FATForensics/utils"
)

var ErrBootSector = errors.New("not a FAT16/FAT32 boot sector")

const (
	fat16EndOfChain = 0xFFF8
	fat32EndOfChain = 0x0FFFFFF8
	fat32EntryMask  = 0x0FFFFFFF
)

// chainBreakSentinel is what ReadFATEntry returns when the table itself
// cannot be read. It equals an end of chain marker on purpose: downstream
// chain building treats a damaged table and a terminated chain the same way.
const chainBreakSentinel = 0xFFFFFFFF

type VBR struct { //Volume Boot Record, BPB prefix shared by FAT16 and FAT32
	JumpInstruction   [3]byte //0-2
	OemID             [8]byte //3-10
	BytesPerSector    uint16  //11-12
	SectorsPerCluster uint8   //13
	ReservedSectors   uint16  //14-15
	NumFATs           uint8   //16
	RootEntryCount    uint16  //17-18 FAT16 root region entries, zero on FAT32
	TotalSectors16    uint16  //19-20
	Media             uint8   //21
	FATSize16         uint16  //22-23 zero on FAT32
	SectorsPerTrack   uint16  //24-25
	NumHeads          uint16  //26-27
	HiddenSectors     uint32  //28-31
	TotalSectors32    uint32  //32-35
	FATSize32         uint32  //36-39 FAT32 only
	ExtFlags          uint16  //40-41
	FSVersion         uint16  //42-43
	RootCluster       uint32  //44-47 FAT32 only
}

// Fat holds the parsed geometry of one FAT16 or FAT32 volume and implements
// the cluster addressing contract over it.
type Fat struct {
	VBR              *VBR
	Variant          string
	PartitionOffsetB int64
}

func (vbr *VBR) Parse(data []byte) error {
	if len(data) < 512 {
		return fmt.Errorf("boot sector truncated to %d bytes", len(data))
	}
	return utils.Unmarshal(data, vbr)
}

// ProcessBootSector parses the first sector and fixes the variant. A FAT
// size of zero in the 16bit field distinguishes FAT32.
func (fat *Fat) ProcessBootSector(data []byte, partitionOffsetB int64) error {
	vbr := new(VBR)
	if err := vbr.Parse(data); err != nil {
		return err
	}
	if data[510] != 0x55 || data[511] != 0xAA {
		return ErrBootSector
	}
	switch vbr.BytesPerSector {
	case 512, 1024, 2048, 4096:
	default:
		return ErrBootSector
	}
	if vbr.SectorsPerCluster == 0 || vbr.NumFATs == 0 {
		return ErrBootSector
	}
	fat.VBR = vbr
	fat.PartitionOffsetB = partitionOffsetB
	if vbr.FATSize16 != 0 {
		fat.Variant = records.VariantFAT16
	} else {
		fat.Variant = records.VariantFAT32
	}
	return nil
}

func (fat Fat) GetVariant() string {
	return fat.Variant
}

func (fat Fat) GetClusterSizeB() int {
	return int(fat.VBR.SectorsPerCluster) * int(fat.VBR.BytesPerSector)
}

func (fat Fat) fatSizeSectors() uint32 {
	if fat.Variant == records.VariantFAT16 {
		return uint32(fat.VBR.FATSize16)
	}
	return fat.VBR.FATSize32
}

// rootDirSectors is the size of the fixed FAT16 root region, zero on FAT32.
func (fat Fat) rootDirSectors() uint32 {
	bps := uint32(fat.VBR.BytesPerSector)
	return (uint32(fat.VBR.RootEntryCount)*32 + bps - 1) / bps
}

// RootRegionOffset locates the fixed FAT16 root directory region.
func (fat Fat) RootRegionOffset() int64 {
	sectors := uint32(fat.VBR.ReservedSectors) + uint32(fat.VBR.NumFATs)*fat.fatSizeSectors()
	return fat.PartitionOffsetB + int64(sectors)*int64(fat.VBR.BytesPerSector)
}

func (fat Fat) RootRegionSize() int {
	return int(fat.VBR.RootEntryCount) * 32
}

func (fat Fat) totalSectors() uint32 {
	if fat.VBR.TotalSectors16 != 0 {
		return uint32(fat.VBR.TotalSectors16)
	}
	return fat.VBR.TotalSectors32
}

// dataClusterCount is the number of clusters the data area holds, zero when
// the boot sector carries no total sector count.
func (fat Fat) dataClusterCount() uint32 {
	totalSectors := fat.totalSectors()
	metaSectors := uint32(fat.VBR.ReservedSectors) +
		uint32(fat.VBR.NumFATs)*fat.fatSizeSectors() + fat.rootDirSectors()
	if totalSectors <= metaSectors {
		return 0
	}
	return (totalSectors - metaSectors) / uint32(fat.VBR.SectorsPerCluster)
}

func (fat Fat) ClusterOffset(cluster uint32) int64 {
	sectors := int64(fat.VBR.ReservedSectors) + int64(fat.VBR.NumFATs)*int64(fat.fatSizeSectors()) +
		int64(fat.rootDirSectors()) + int64(cluster-2)*int64(fat.VBR.SectorsPerCluster)
	return fat.PartitionOffsetB + sectors*int64(fat.VBR.BytesPerSector)
}

func (fat Fat) ReadFATEntry(hD readers.DiskReader, cluster uint32) uint32 {
	reservedOffsetB := fat.PartitionOffsetB +
		int64(fat.VBR.ReservedSectors)*int64(fat.VBR.BytesPerSector)

	if fat.Variant == records.VariantFAT16 {
		data, err := hD.ReadFile(reservedOffsetB+int64(cluster)*2, 2)
		if err != nil || len(data) < 2 {
			logger.FSLogger.Warning(fmt.Sprintf("FAT16 table read failed for cluster %d", cluster))
			return chainBreakSentinel
		}
		return uint32(data[0]) | uint32(data[1])<<8
	}

	data, err := hD.ReadFile(reservedOffsetB+int64(cluster)*4, 4)
	if err != nil || len(data) < 4 {
		logger.FSLogger.Warning(fmt.Sprintf("FAT32 table read failed for cluster %d", cluster))
		return chainBreakSentinel
	}
	val := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
	return val & fat32EntryMask
}

func (fat Fat) IsValidCluster(cluster uint32) bool {
	if cluster < 2 {
		return false
	}
	if count := fat.dataClusterCount(); count != 0 && cluster >= count+2 {
		return false
	}
	if fat.Variant == records.VariantFAT16 {
		return cluster < fat16EndOfChain
	}
	return cluster < fat32EndOfChain
}

// GetUnallocatedClusters lists data clusters whose table entry is free. The
// table is padded to whole sectors, so the scan is cut at the data area's
// cluster count rather than the table's byte length.
func (fat Fat) GetUnallocatedClusters(hD readers.DiskReader) []int {
	var unallocated []int

	entrySize := 4
	if fat.Variant == records.VariantFAT16 {
		entrySize = 2
	}
	tableLenB := int(fat.fatSizeSectors()) * int(fat.VBR.BytesPerSector)
	reservedOffsetB := fat.PartitionOffsetB +
		int64(fat.VBR.ReservedSectors)*int64(fat.VBR.BytesPerSector)

	table, err := hD.ReadFile(reservedOffsetB, tableLenB)
	if err != nil {
		logger.FSLogger.Error(fmt.Sprintf("allocation table read failed %v", err))
		return unallocated
	}

	lastCluster := len(table)/entrySize - 1
	if count := fat.dataClusterCount(); count != 0 && int(count)+1 < lastCluster {
		lastCluster = int(count) + 1
	}

	for cluster := 2; cluster <= lastCluster; cluster++ {
		var val uint32
		if entrySize == 2 {
			val = uint32(table[cluster*2]) | uint32(table[cluster*2+1])<<8
		} else {
			val = (uint32(table[cluster*4]) | uint32(table[cluster*4+1])<<8 |
				uint32(table[cluster*4+2])<<16 | uint32(table[cluster*4+3])<<24) & fat32EntryMask
		}
		if val == 0 {
			unallocated = append(unallocated, cluster)
		}
	}
	return unallocated
}
