package FAT

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aarsakian/FATForensics/FS/records"
)

type sectorReader struct {
	data []byte
}

func (r sectorReader) CreateHandler() {}
func (r sectorReader) CloseHandler()  {}

func (r sectorReader) GetDiskSize() int64 {
	return int64(len(r.data))
}

func (r sectorReader) ReadFile(offset int64, length int) ([]byte, error) {
	if offset < 0 || offset >= int64(len(r.data)) {
		return nil, errors.New("read past end of image")
	}
	end := offset + int64(length)
	if end > int64(len(r.data)) {
		end = int64(len(r.data))
	}
	return r.data[offset:end], nil
}

func fat32BootSector() []byte {
	data := make([]byte, 512)
	binary.LittleEndian.PutUint16(data[11:], 512) //bytes per sector
	data[13] = 1                                  //sectors per cluster
	binary.LittleEndian.PutUint16(data[14:], 32)  //reserved
	data[16] = 2                                  //number of FATs
	binary.LittleEndian.PutUint32(data[36:], 100) //FAT size 32
	binary.LittleEndian.PutUint32(data[44:], 2)   //root cluster
	data[510] = 0x55
	data[511] = 0xAA
	return data
}

func fat16BootSector() []byte {
	data := make([]byte, 512)
	binary.LittleEndian.PutUint16(data[11:], 512)
	data[13] = 4
	binary.LittleEndian.PutUint16(data[14:], 1)
	data[16] = 2
	binary.LittleEndian.PutUint16(data[17:], 512) //root entries
	binary.LittleEndian.PutUint16(data[22:], 64)  //FAT size 16
	data[510] = 0x55
	data[511] = 0xAA
	return data
}

func TestProcessBootSectorVariants(t *testing.T) {
	fat := new(Fat)
	require.NoError(t, fat.ProcessBootSector(fat32BootSector(), 0))
	assert.Equal(t, records.VariantFAT32, fat.GetVariant())
	assert.Equal(t, 512, fat.GetClusterSizeB())

	fat = new(Fat)
	require.NoError(t, fat.ProcessBootSector(fat16BootSector(), 0))
	assert.Equal(t, records.VariantFAT16, fat.GetVariant())
	assert.Equal(t, 2048, fat.GetClusterSizeB())
}

func TestProcessBootSectorRejectsGarbage(t *testing.T) {
	data := fat32BootSector()
	data[510] = 0x00
	assert.ErrorIs(t, new(Fat).ProcessBootSector(data, 0), ErrBootSector)

	data = fat32BootSector()
	binary.LittleEndian.PutUint16(data[11:], 513)
	assert.ErrorIs(t, new(Fat).ProcessBootSector(data, 0), ErrBootSector)

	assert.Error(t, new(Fat).ProcessBootSector(make([]byte, 100), 0))
}

func TestClusterOffsetsFAT32(t *testing.T) {
	fat := new(Fat)
	require.NoError(t, fat.ProcessBootSector(fat32BootSector(), 4096))

	// reserved 32 + two FATs of 100 sectors, then the data area
	assert.Equal(t, int64(4096+232*512), fat.ClusterOffset(2))
	assert.Equal(t, int64(4096+233*512), fat.ClusterOffset(3))
}

func TestRootRegionFAT16(t *testing.T) {
	fat := new(Fat)
	require.NoError(t, fat.ProcessBootSector(fat16BootSector(), 0))

	// reserved 1 + two FATs of 64 sectors
	assert.Equal(t, int64(129*512), fat.RootRegionOffset())
	assert.Equal(t, 512*32, fat.RootRegionSize())
	// data area starts past the 32 root directory sectors
	assert.Equal(t, int64(161*512), fat.ClusterOffset(2))
	assert.Equal(t, int64(161*512+2048), fat.ClusterOffset(3))
}

func TestIsValidClusterBoundaries(t *testing.T) {
	fat16 := new(Fat)
	require.NoError(t, fat16.ProcessBootSector(fat16BootSector(), 0))
	assert.False(t, fat16.IsValidCluster(0))
	assert.False(t, fat16.IsValidCluster(1))
	assert.True(t, fat16.IsValidCluster(2))
	assert.True(t, fat16.IsValidCluster(0xFFF7))
	assert.False(t, fat16.IsValidCluster(0xFFF8))

	fat32 := new(Fat)
	require.NoError(t, fat32.ProcessBootSector(fat32BootSector(), 0))
	assert.True(t, fat32.IsValidCluster(2))
	assert.True(t, fat32.IsValidCluster(0x0FFFFFF7))
	assert.False(t, fat32.IsValidCluster(0x0FFFFFF8))
}

func TestIsValidClusterBoundedByDataArea(t *testing.T) {
	// reserved 1 + two FATs of 64 + 32 root sectors, then 10 clusters of 4
	data := fat16BootSector()
	binary.LittleEndian.PutUint16(data[19:], 201) //total sectors

	fat := new(Fat)
	require.NoError(t, fat.ProcessBootSector(data, 0))
	assert.True(t, fat.IsValidCluster(11))
	assert.False(t, fat.IsValidCluster(12))
	assert.False(t, fat.IsValidCluster(0xFFF7))
}

func TestReadFATEntryMasksFAT32(t *testing.T) {
	fat := new(Fat)
	require.NoError(t, fat.ProcessBootSector(fat32BootSector(), 0))

	image := make([]byte, 64*512)
	binary.LittleEndian.PutUint32(image[32*512+5*4:], 0xF0000009) //high nibble is reserved
	assert.Equal(t, uint32(9), fat.ReadFATEntry(sectorReader{image}, 5))
}

func TestReadFATEntryFAT16(t *testing.T) {
	fat := new(Fat)
	require.NoError(t, fat.ProcessBootSector(fat16BootSector(), 0))

	image := make([]byte, 4*512)
	binary.LittleEndian.PutUint16(image[512+5*2:], 0x1234)
	assert.Equal(t, uint32(0x1234), fat.ReadFATEntry(sectorReader{image}, 5))
}

func TestReadFATEntryFailureIsChainBreak(t *testing.T) {
	fat := new(Fat)
	require.NoError(t, fat.ProcessBootSector(fat32BootSector(), 0))

	assert.Equal(t, uint32(chainBreakSentinel), fat.ReadFATEntry(sectorReader{nil}, 5))
}

func TestGetUnallocatedClusters(t *testing.T) {
	fat := new(Fat)
	require.NoError(t, fat.ProcessBootSector(fat16BootSector(), 0))

	// one FAT of 64 sectors right after the reserved sector
	image := make([]byte, 130*512)
	table := image[512:]
	binary.LittleEndian.PutUint16(table[2*2:], 0xFFFF)
	binary.LittleEndian.PutUint16(table[4*2:], 5)
	binary.LittleEndian.PutUint16(table[5*2:], 0xFFF8)

	unallocated := fat.GetUnallocatedClusters(sectorReader{image})
	assert.NotContains(t, unallocated, 2)
	assert.Contains(t, unallocated, 3)
	assert.NotContains(t, unallocated, 4)
	assert.NotContains(t, unallocated, 5)
	assert.Contains(t, unallocated, 6)
}

func TestGetUnallocatedClustersCutAtDataAreaEnd(t *testing.T) {
	data := fat16BootSector()
	binary.LittleEndian.PutUint16(data[19:], 201) //10 data clusters

	fat := new(Fat)
	require.NoError(t, fat.ProcessBootSector(data, 0))

	// an all zero table holds entries well past the last data cluster
	image := make([]byte, 130*512)
	unallocated := fat.GetUnallocatedClusters(sectorReader{image})
	assert.Len(t, unallocated, 10)
	assert.Contains(t, unallocated, 11)
	assert.NotContains(t, unallocated, 12)
}
