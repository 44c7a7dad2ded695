package MBR

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mbrSector(entries ...[16]byte) []byte {
	data := make([]byte, 512)
	for idx, entry := range entries {
		copy(data[446+idx*16:], entry[:])
	}
	data[510] = 0x55
	data[511] = 0xAA
	return data
}

func partitionEntry(ptype uint8, startLBA uint32, sectors uint32) [16]byte {
	var entry [16]byte
	entry[4] = ptype
	binary.LittleEndian.PutUint32(entry[8:], startLBA)
	binary.LittleEndian.PutUint32(entry[12:], sectors)
	return entry
}

func TestParseLocatesPartitions(t *testing.T) {
	data := mbrSector(
		partitionEntry(0x0c, 2048, 204800),
		partitionEntry(0x07, 206848, 409600),
	)

	mbr := new(MBR)
	mbr.Parse(data)

	require.Len(t, mbr.Partitions, 2)
	assert.Equal(t, []byte{0x55, 0xAA}, mbr.Signature)

	first := mbr.GetPartition(0)
	assert.Equal(t, uint64(2048), first.GetOffset())
	assert.Equal(t, uint32(204800), first.Size)
	assert.Equal(t, "W95 FAT32 (LBA)", first.GetPartitionType())
	assert.True(t, first.hasFATType())

	second := mbr.GetPartition(1)
	assert.Equal(t, "HPFS/NTFS/exFAT", second.GetPartitionType())
}

func TestParseStopsAtEmptySlot(t *testing.T) {
	data := mbrSector(partitionEntry(0x0b, 63, 1000))

	mbr := new(MBR)
	mbr.Parse(data)

	assert.Len(t, mbr.Partitions, 1)
}

func TestIsProtective(t *testing.T) {
	mbr := new(MBR)
	mbr.Parse(mbrSector(partitionEntry(0xEE, 1, 0xFFFFFFFF)))

	assert.True(t, mbr.IsProtective())
	assert.False(t, mbr.Partitions[0].hasFATType())
}

func TestPopulatePseudoMBR(t *testing.T) {
	mbr := new(MBR)
	mbr.PopulatePseudoMBR("EXFAT")
	require.Len(t, mbr.Partitions, 1)
	assert.Equal(t, uint8(0x07), mbr.Partitions[0].Type)
	assert.Equal(t, uint64(0), mbr.Partitions[0].GetOffset())

	mbr.PopulatePseudoMBR("FAT")
	assert.Equal(t, uint8(0x0c), mbr.Partitions[0].Type)
}

func TestGetExtendedPartitionOffset(t *testing.T) {
	mbr := new(MBR)
	mbr.Parse(mbrSector(
		partitionEntry(0x0c, 2048, 1000),
		partitionEntry(0x0f, 4096, 5000),
	))

	offset, err := mbr.GetExtendedPartitionOffset()
	require.NoError(t, err)
	assert.Equal(t, 4096, offset)

	mbr.UpdateExtendedPartitionsOffsets(100)
	assert.Equal(t, uint64(4196), mbr.Partitions[1].GetOffset())
	assert.Equal(t, uint64(2048), mbr.Partitions[0].GetOffset())

	bare := new(MBR)
	bare.Parse(mbrSector(partitionEntry(0x0c, 2048, 1000)))
	_, err = bare.GetExtendedPartitionOffset()
	assert.Error(t, err)
}
