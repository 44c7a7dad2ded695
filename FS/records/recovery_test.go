package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aarsakian/FATForensics/utils"
)

const testClusterSize = 4

// testImage fills clusters 2..11 with recognizable content, cluster n holds
// four bytes of value n.
func testImage() []byte {
	data := make([]byte, 10*testClusterSize)
	for cluster := 2; cluster < 12; cluster++ {
		for i := 0; i < testClusterSize; i++ {
			data[(cluster-2)*testClusterSize+i] = byte(cluster)
		}
	}
	return data
}

func clusterBytes(clusters ...byte) []byte {
	var data []byte
	for _, cluster := range clusters {
		for i := 0; i < testClusterSize; i++ {
			data = append(data, cluster)
		}
	}
	return data
}

func testRecord(variant string, table map[uint32]uint32, startCluster uint32, size int64) FileRecord {
	return FileRecord{
		Name:         "file.bin",
		Size:         size,
		StartCluster: startCluster,
		Status:       StatusDeleted,
		Variant:      variant,
		Addressing:   testAddresser{variant: variant, clusterSize: testClusterSize, table: table},
	}
}

func TestRecoverIntactChain(t *testing.T) {
	table := map[uint32]uint32{5: 7, 7: 9, 9: 0xFFF8}
	record := testRecord(VariantFAT32, table, 5, 3*testClusterSize)

	content, partial, err := record.recoverContent(imageReader{testImage()})
	require.NoError(t, err)
	assert.False(t, partial)
	assert.Equal(t, clusterBytes(5, 7, 9), content)
}

// boundedAddresser narrows the valid cluster range to [2, maxCluster).
type boundedAddresser struct {
	testAddresser
	maxCluster uint32
}

func (addresser boundedAddresser) IsValidCluster(cluster uint32) bool {
	return cluster >= 2 && cluster < addresser.maxCluster
}

func TestRecoverZeroedChainAssumesConsecutive(t *testing.T) {
	// deletion zeroed the table entries, only the start cluster survives
	record := testRecord(VariantFAT32, map[uint32]uint32{}, 5, 5*testClusterSize)

	content, partial, err := record.recoverContent(imageReader{testImage()})
	require.NoError(t, err)
	assert.False(t, partial)
	assert.Equal(t, clusterBytes(5, 6, 7, 8, 9), content)
}

func TestRecoverConsecutiveFallbackStopsAtClusterRangeEnd(t *testing.T) {
	// zeroed table and a file claiming more clusters than remain before the
	// end of the data area; the assumed run must not reach past it
	record := testRecord(VariantFAT32, map[uint32]uint32{}, 5, 5*testClusterSize)
	record.Addressing = boundedAddresser{
		testAddresser: testAddresser{variant: VariantFAT32, clusterSize: testClusterSize},
		maxCluster:    8,
	}

	content, partial, err := record.recoverContent(imageReader{testImage()})
	require.NoError(t, err)
	assert.True(t, partial)
	assert.Equal(t, clusterBytes(5, 6, 7), content)
}

func TestRecoverCircularChainTerminates(t *testing.T) {
	table := map[uint32]uint32{5: 3, 3: 5}
	record := testRecord(VariantFAT32, table, 5, 4*testClusterSize)

	content, partial, err := record.recoverContent(imageReader{testImage()})
	require.NoError(t, err)
	assert.False(t, partial)
	// the truncated chain is discarded for a consecutive run
	assert.Equal(t, clusterBytes(5, 6, 7, 8), content)
}

func TestRecoverFAT16LargeFileSkipsTable(t *testing.T) {
	// table claims a diverging chain; past the threshold it is ignored
	table := map[uint32]uint32{2: 9}
	clusters := fat16ConsecutiveThreshold + 1
	record := testRecord(VariantFAT16, table, 2, int64(clusters*testClusterSize))

	image := make([]byte, 30*testClusterSize)
	for i := range image {
		image[i] = byte(i / testClusterSize)
	}
	content, partial, err := record.recoverContent(imageReader{image})
	require.NoError(t, err)
	assert.False(t, partial)
	assert.Equal(t, image[:clusters*testClusterSize], content)
}

func TestRecoverExfatContiguous(t *testing.T) {
	record := testRecord(VariantExFAT, map[uint32]uint32{}, 5, 3*testClusterSize)
	record.Contiguous = true

	content, partial, err := record.recoverContent(imageReader{testImage()})
	require.NoError(t, err)
	assert.False(t, partial)
	assert.Equal(t, clusterBytes(5, 6, 7), content)
}

func TestRecoverTailPastImageIsPartial(t *testing.T) {
	record := testRecord(VariantFAT32, map[uint32]uint32{}, 10, 4*testClusterSize)

	content, partial, err := record.recoverContent(imageReader{testImage()})
	require.NoError(t, err)
	assert.True(t, partial)
	assert.Equal(t, clusterBytes(10, 11), content)
}

func TestRecoverLastClusterClippedToLogicalSize(t *testing.T) {
	record := testRecord(VariantFAT32, map[uint32]uint32{}, 5, testClusterSize+1)

	content, partial, err := record.recoverContent(imageReader{testImage()})
	require.NoError(t, err)
	assert.False(t, partial)
	assert.Equal(t, append(clusterBytes(5), byte(6)), content)
}

func TestRecoverRejectsDirectory(t *testing.T) {
	record := testRecord(VariantFAT32, map[uint32]uint32{}, 5, 100)
	record.Directory = true

	_, _, err := record.recoverContent(imageReader{testImage()})
	assert.ErrorIs(t, err, ErrTargetIsDirectory)
}

func TestRecoverRejectsReservedStartCluster(t *testing.T) {
	record := testRecord(VariantFAT32, map[uint32]uint32{}, 1, 100)

	_, _, err := record.recoverContent(imageReader{testImage()})
	assert.ErrorIs(t, err, ErrInvalidClusterReference)
}

func TestRecoverEmptyFile(t *testing.T) {
	record := testRecord(VariantFAT32, map[uint32]uint32{}, 5, 0)

	content, partial, err := record.recoverContent(imageReader{testImage()})
	require.NoError(t, err)
	assert.False(t, partial)
	assert.Empty(t, content)
}

func TestLocateDataDeliversAskedFile(t *testing.T) {
	table := map[uint32]uint32{5: 6, 6: 0xFFF8}
	record := testRecord(VariantFAT32, table, 5, 2*testClusterSize)

	results := make(chan utils.AskedFile, 1)
	err := record.LocateData(imageReader{testImage()}, results)
	require.NoError(t, err)

	asked := <-results
	assert.Equal(t, "file.bin", asked.Fname)
	assert.Equal(t, 5, asked.Id)
	assert.False(t, asked.Partial)
	assert.Equal(t, clusterBytes(5, 6), asked.Content)
}
