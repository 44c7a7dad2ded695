package EXFAT

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/aarsakian/FATForensics/FS/records"
	"github.com/aarsakian/FATForensics/logger"
	"github.com/aarsakian/FATForensics/readers"
	"github.com/aarsakian/FATForensics/utils"
)

var ErrInvalidSignature = errors.New("EXFAT signature not found")

const (
	exfatEndOfChain    = 0xFFFFFFF7
	chainBreakSentinel = 0xFFFFFFFF

	entryTypeAllocationBitmap = 0x81
)

type VBR struct { //main boot sector
	JumpInstruction        [3]byte  //0-2
	FileSystemName         [8]byte  //3-10  "EXFAT   "
	MustBeZero             [53]byte //11-63
	PartitionOffset        uint64   //64-71 sectors, media relative
	VolumeLength           uint64   //72-79 sectors
	FatOffset              uint32   //80-83 sectors, volume relative
	FatLength              uint32   //84-87 sectors
	ClusterHeapOffset      uint32   //88-91 sectors
	ClusterCount           uint32   //92-95
	RootCluster            uint32   //96-99
	VolumeSerialNumber     uint32   //100-103
	FileSystemRevision     uint16   //104-105
	VolumeFlags            uint16   //106-107
	BytesPerSectorShift    uint8    //108 actual size is 1<<shift
	SectorsPerClusterShift uint8    //109
	NumberOfFats           uint8    //110
	DriveSelect            uint8    //111
	PercentInUse           uint8    //112
}

// Exfat holds one parsed exFAT volume geometry and its cluster addressing.
type Exfat struct {
	VBR              *VBR
	PartitionOffsetB int64
}

func (vbr VBR) GetSignature() string {
	return string(vbr.FileSystemName[:])
}

func (vbr VBR) GetBytesPerSector() uint32 {
	return 1 << vbr.BytesPerSectorShift
}

func (vbr VBR) GetSectorsPerCluster() uint32 {
	return 1 << vbr.SectorsPerClusterShift
}

func (exfat *Exfat) ProcessBootSector(data []byte, partitionOffsetB int64) error {
	if len(data) < 512 {
		return fmt.Errorf("boot sector truncated to %d bytes", len(data))
	}
	vbr := new(VBR)
	if err := utils.Unmarshal(data, vbr); err != nil {
		return err
	}
	if vbr.GetSignature() != "EXFAT   " {
		return ErrInvalidSignature
	}
	exfat.VBR = vbr
	exfat.PartitionOffsetB = partitionOffsetB
	return nil
}

func (exfat Exfat) GetVariant() string {
	return records.VariantExFAT
}

func (exfat Exfat) GetClusterSizeB() int {
	return int(exfat.VBR.GetBytesPerSector()) * int(exfat.VBR.GetSectorsPerCluster())
}

func (exfat Exfat) ClusterOffset(cluster uint32) int64 {
	heapOffsetB := int64(exfat.VBR.ClusterHeapOffset) * int64(exfat.VBR.GetBytesPerSector())
	return exfat.PartitionOffsetB + heapOffsetB +
		int64(cluster-2)*int64(exfat.GetClusterSizeB())
}

// ReadFATEntry returns the raw 32 bit table entry, unmasked. exFAT only
// chains directories and fragmented files through the table; contiguous
// files bypass it entirely.
func (exfat Exfat) ReadFATEntry(hD readers.DiskReader, cluster uint32) uint32 {
	fatOffsetB := exfat.PartitionOffsetB +
		int64(exfat.VBR.FatOffset)*int64(exfat.VBR.GetBytesPerSector())

	data, err := hD.ReadFile(fatOffsetB+int64(cluster)*4, 4)
	if err != nil || len(data) < 4 {
		logger.FSLogger.Warning(fmt.Sprintf("exFAT table read failed for cluster %d", cluster))
		return chainBreakSentinel
	}
	return uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
}

func (exfat Exfat) IsValidCluster(cluster uint32) bool {
	return cluster >= 2 && cluster < exfatEndOfChain
}

// GetUnallocatedClusters reads the allocation bitmap, located through its
// root directory entry, and lists every cluster whose bit is clear. One bit
// per cluster starting at cluster 2, least significant bit first.
func (exfat Exfat) GetUnallocatedClusters(hD readers.DiskReader) []int {
	var unallocated []int

	bitmapCluster, bitmapLength := exfat.findAllocationBitmap(hD)
	if bitmapCluster < 2 {
		logger.FSLogger.Warning("allocation bitmap entry not found in root directory")
		return unallocated
	}

	bitmap, err := hD.ReadFile(exfat.ClusterOffset(bitmapCluster), int(bitmapLength))
	if err != nil {
		logger.FSLogger.Error(fmt.Sprintf("allocation bitmap read failed %v", err))
		return unallocated
	}

	for idx, b := range bitmap {
		for bit := 0; bit < 8; bit++ {
			cluster := uint32(idx*8+bit) + 2
			if cluster >= exfat.VBR.ClusterCount+2 {
				return unallocated
			}
			if b&(1<<bit) == 0 {
				unallocated = append(unallocated, int(cluster))
			}
		}
	}
	return unallocated
}

// findAllocationBitmap scans the first root directory cluster for the bitmap
// entry, type 0x81. The bitmap is read from its first cluster for its whole
// declared length, it is laid out contiguously in practice.
func (exfat Exfat) findAllocationBitmap(hD readers.DiskReader) (uint32, uint64) {
	data, err := hD.ReadFile(exfat.ClusterOffset(exfat.VBR.RootCluster), exfat.GetClusterSizeB())
	if err != nil {
		logger.FSLogger.Error(fmt.Sprintf("root directory read failed %v", err))
		return 0, 0
	}
	for idx := 0; idx+DirEntrySize <= len(data); idx += DirEntrySize {
		entry := data[idx : idx+DirEntrySize]
		if entry[0] == 0x00 {
			break
		}
		if entry[0] != entryTypeAllocationBitmap {
			continue
		}
		firstCluster := uint32(entry[20]) | uint32(entry[21])<<8 | uint32(entry[22])<<16 | uint32(entry[23])<<24
		length := binary.LittleEndian.Uint64(entry[24:32])
		return firstCluster, length
	}
	return 0, 0
}
