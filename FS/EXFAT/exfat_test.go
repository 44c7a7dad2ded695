package EXFAT

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

func exfatBootSector() []byte {
	data := make([]byte, 512)
	copy(data[3:11], "EXFAT   ")
	binary.LittleEndian.PutUint32(data[80:], 24)   //fat offset sectors
	binary.LittleEndian.PutUint32(data[84:], 8)    //fat length
	binary.LittleEndian.PutUint32(data[88:], 32)   //cluster heap offset
	binary.LittleEndian.PutUint32(data[92:], 1024) //cluster count
	binary.LittleEndian.PutUint32(data[96:], 4)    //root cluster
	data[108] = 9                                  //512 bytes per sector
	data[109] = 3                                  //8 sectors per cluster
	return data
}

func TestProcessBootSector(t *testing.T) {
	exfat := new(Exfat)
	require.NoError(t, exfat.ProcessBootSector(exfatBootSector(), 0))

	assert.Equal(t, records.VariantExFAT, exfat.GetVariant())
	assert.Equal(t, uint32(512), exfat.VBR.GetBytesPerSector())
	assert.Equal(t, uint32(8), exfat.VBR.GetSectorsPerCluster())
	assert.Equal(t, 4096, exfat.GetClusterSizeB())
}

func TestProcessBootSectorRejectsWrongSignature(t *testing.T) {
	data := exfatBootSector()
	copy(data[3:11], "NTFS    ")
	assert.ErrorIs(t, new(Exfat).ProcessBootSector(data, 0), ErrInvalidSignature)

	assert.Error(t, new(Exfat).ProcessBootSector(make([]byte, 12), 0))
}

func TestClusterOffset(t *testing.T) {
	exfat := new(Exfat)
	require.NoError(t, exfat.ProcessBootSector(exfatBootSector(), 2048))

	heap := int64(2048 + 32*512)
	assert.Equal(t, heap, exfat.ClusterOffset(2))
	assert.Equal(t, heap+2*4096, exfat.ClusterOffset(4))
}

func TestReadFATEntryIsUnmasked(t *testing.T) {
	exfat := new(Exfat)
	require.NoError(t, exfat.ProcessBootSector(exfatBootSector(), 0))

	image := make([]byte, 40*512)
	binary.LittleEndian.PutUint32(image[24*512+7*4:], 0xFFFFFFFF)
	assert.Equal(t, uint32(0xFFFFFFFF), exfat.ReadFATEntry(sectorReader{image}, 7))
}

func TestIsValidClusterBoundaries(t *testing.T) {
	exfat := new(Exfat)
	require.NoError(t, exfat.ProcessBootSector(exfatBootSector(), 0))

	assert.False(t, exfat.IsValidCluster(1))
	assert.True(t, exfat.IsValidCluster(2))
	assert.True(t, exfat.IsValidCluster(0xFFFFFFF6))
	assert.False(t, exfat.IsValidCluster(0xFFFFFFF7))
}

func TestGetUnallocatedClustersFromBitmap(t *testing.T) {
	exfat := new(Exfat)
	require.NoError(t, exfat.ProcessBootSector(exfatBootSector(), 0))

	image := make([]byte, 200*512)

	// root directory at cluster 4 holds the bitmap entry
	rootOffset := exfat.ClusterOffset(4)
	entry := image[rootOffset : rootOffset+32]
	entry[0] = 0x81
	binary.LittleEndian.PutUint32(entry[20:], 6) //bitmap lives at cluster 6
	binary.LittleEndian.PutUint64(entry[24:], 2) //two bytes cover 16 clusters

	bitmapOffset := exfat.ClusterOffset(6)
	image[bitmapOffset] = 0xFD   //cluster 3 free, 2 and 4..9 allocated
	image[bitmapOffset+1] = 0xFF //clusters 10..17 allocated

	unallocated := exfat.GetUnallocatedClusters(sectorReader{image})
	assert.Equal(t, []int{3}, unallocated)
}
