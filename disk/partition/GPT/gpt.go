package GPT

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	volume "github.com/aarsakian/FATForensics/disk/volume"
	"github.com/aarsakian/FATForensics/logger"
	"github.com/aarsakian/FATForensics/readers"
	"github.com/aarsakian/FATForensics/utils"
)

var ErrInvalidGPTSignature = errors.New("EFI PART signature not found")

var PartitionTypeGuids = map[string]string{
	"ebd0a0a2-b9e5-4433-87c0-68b6b72699c7": "Basic Data Partition",
	"c12a7328-f81f-11d2-ba4b-00a0c93ec93b": "EFI System Partition",
	"e3c9e316-0b5c-4db8-817d-f92df00215ae": "Microsoft Reserved",
	"de94bba4-06d1-4d40-a16a-bfd50179d6ac": "Windows Recovery",
	"0fc63daf-8483-4772-8e79-3d69d8477de4": "Linux Filesystem",
}

type GPT struct {
	Header     *Header
	Partitions []Partition
}

type Header struct {
	Signature           [8]byte  //0-7 "EFI PART"
	Revision            uint32   //8-11
	HeaderSize          uint32   //12-15
	HeaderCRC           uint32   //16-19
	Reserved            [4]byte  //20-23
	CurrentLBA          uint64   //24-31
	BackupLBA           uint64   //32-39
	FirstUsableLBA      uint64   //40-47
	LastUsableLBA       uint64   //48-55
	DiskGUID            [16]byte //56-71
	PartitionsStartLBA  uint64   //72-79
	NofPartitionEntries uint32   //80-83
	PartitionEntrySize  uint32   //84-87
	PartitionsArrayCRC  uint32   //88-91
}

type Partition struct {
	PartitionTypeGUID [16]byte //0-15
	PartitionGUID     [16]byte //16-31
	StartLBA          uint64   //32-39
	EndLBA            uint64   //40-47
	Attributes        uint64   //48-55
	Name              [72]byte //56-127 UTF-16
	Volume            volume.Volume
}

func (header *Header) Parse(data []byte) error {
	if err := utils.Unmarshal(data, header); err != nil {
		return err
	}
	if string(header.Signature[:]) != "EFI PART" {
		return ErrInvalidGPTSignature
	}
	return nil
}

func (gpt *GPT) ParseHeader(data []byte) error {
	gpt.Header = new(Header)
	return gpt.Header.Parse(data)
}

func (gpt GPT) GetPartitionArraySize() uint32 {
	return gpt.Header.NofPartitionEntries * gpt.Header.PartitionEntrySize
}

func (gpt *GPT) ParsePartitions(data []byte) {
	entrySize := int(gpt.Header.PartitionEntrySize)
	if entrySize == 0 {
		entrySize = 128
	}

	var partitions []Partition
	for pos := 0; pos+entrySize <= len(data); pos += entrySize {
		partition := new(Partition)
		utils.Unmarshal(data[pos:pos+entrySize], partition)
		if partition.StartLBA == 0 { //unused slot
			continue
		}
		partitions = append(partitions, *partition)
	}
	gpt.Partitions = partitions
}

func (gpt GPT) GetPartition(partitionNum int) Partition {
	return gpt.Partitions[partitionNum]
}

func (partition Partition) GetOffset() uint64 {
	return partition.StartLBA
}

// GetPartitionType resolves the type GUID. The first three fields are little
// endian on disk, reordered here before uuid parses them as RFC 4122.
func (partition Partition) GetPartitionType() string {
	guid, err := uuid.FromBytes(mixedEndianToBigEndian(partition.PartitionTypeGUID))
	if err != nil {
		return "unknown"
	}
	if name, found := PartitionTypeGuids[guid.String()]; found {
		return name
	}
	return guid.String()
}

func (partition Partition) GetName() string {
	return strings.TrimRight(utils.DecodeUTF16(partition.Name[:]), "\x00")
}

func (partition *Partition) LocateVolume(hD readers.DiskReader) {
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
	}
}

func (partition Partition) GetVolume() volume.Volume {
	return partition.Volume
}

func (partition Partition) GetVolInfo() string {
	if partition.Volume == nil {
		return ""
	}
	return partition.Volume.GetInfo()
}

func (partition Partition) GetInfo() string {
	return fmt.Sprintf(" %s %s at %d size %d sectors", partition.GetPartitionType(),
		partition.GetName(), partition.StartLBA, partition.EndLBA-partition.StartLBA+1)
}

func mixedEndianToBigEndian(guid [16]byte) []byte {
	reordered := make([]byte, 16)
	reordered[0], reordered[1], reordered[2], reordered[3] = guid[3], guid[2], guid[1], guid[0]
	reordered[4], reordered[5] = guid[5], guid[4]
	reordered[6], reordered[7] = guid[7], guid[6]
	copy(reordered[8:], guid[8:])
	return reordered
}
