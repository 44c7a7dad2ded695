package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	metadata "github.com/aarsakian/FATForensics/FS"
	"github.com/aarsakian/FATForensics/FS/records"
)

func TestBuildSharesPathComponents(t *testing.T) {
	recs := []metadata.Record{
		&records.FileRecord{Name: "DCIM", FullPath: "/DCIM", Directory: true, Status: records.StatusPresent},
		&records.FileRecord{Name: "IMG_01.JPG", FullPath: "/DCIM/IMG_01.JPG", Status: records.StatusPresent},
		&records.FileRecord{Name: "?MG_02.JPG", FullPath: "/DCIM/?MG_02.JPG", Status: records.StatusDeleted},
	}

	var fileTree Tree
	fileTree.Build(recs)

	require.NotNil(t, fileTree.root)
	require.Len(t, fileTree.root.children, 1)

	dcim, found := fileTree.root.children["DCIM"]
	require.True(t, found)
	assert.Len(t, dcim.children, 2)
	assert.NotNil(t, dcim.record)

	deleted, found := dcim.children["?MG_02.JPG"]
	require.True(t, found)
	assert.True(t, deleted.record.IsDeleted())
}

func TestAddRecordCreatesIntermediateNodes(t *testing.T) {
	fileTree := Tree{root: &Node{children: map[string]*Node{}}}
	fileTree.AddRecord(&records.FileRecord{Name: "notes.txt", FullPath: "/a/b/notes.txt", Status: records.StatusPresent})

	a, found := fileTree.root.children["a"]
	require.True(t, found)
	assert.Nil(t, a.record)

	b, found := a.children["b"]
	require.True(t, found)

	leaf, found := b.children["notes.txt"]
	require.True(t, found)
	assert.NotNil(t, leaf.record)
}
