package live

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aarsakian/FATForensics/FS/records"
)

func TestCollectWalksMemoryFs(t *testing.T) {
	memFs := afero.NewMemMapFs()
	require.NoError(t, memFs.MkdirAll("/mnt/DCIM", 0755))
	require.NoError(t, afero.WriteFile(memFs, "/mnt/DCIM/IMG_01.JPG", make([]byte, 600), 0644))
	require.NoError(t, afero.WriteFile(memFs, "/mnt/notes.txt", []byte("hello"), 0644))

	liveRecords := Enumerator{Fs: memFs}.Collect("/mnt")

	byPath := make(map[string]*records.FileRecord)
	for _, record := range liveRecords {
		byPath[record.FullPath] = record
	}

	require.Contains(t, byPath, "/DCIM/IMG_01.JPG")
	require.Contains(t, byPath, "/notes.txt")
	require.Contains(t, byPath, "/DCIM")

	img := byPath["/DCIM/IMG_01.JPG"]
	assert.Equal(t, int64(600), img.Size)
	assert.Equal(t, records.StatusPresent, img.Status)
	assert.False(t, img.Directory)
	assert.True(t, byPath["/DCIM"].Directory)
}

func TestCollectFeedsReplacedDetection(t *testing.T) {
	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, "/mnt/budget.xlsx", make([]byte, 2048), 0644))

	liveRecords := Enumerator{Fs: memFs}.Collect("/mnt")

	deleted := []*records.FileRecord{
		{Name: "BUDGET.XLSX", Size: 1024, Status: records.StatusDeleted},
	}
	records.DetectReplaced(deleted, liveRecords)

	assert.Equal(t, records.StatusReplaced, deleted[0].Status)
}
