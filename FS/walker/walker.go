package walker

import (
	"fmt"

	"github.com/aarsakian/FATForensics/FS/records"
	"github.com/aarsakian/FATForensics/logger"
	"github.com/aarsakian/FATForensics/readers"
)

// EntryCodec turns one directory cluster (or the FAT16 root region) into
// deleted file records and subdirectory references. The closed set of
// implementations is the FAT 8.3/LFN codec and the exFAT entry set codec,
// selected once per volume.
type EntryCodec interface {
	DecodeDirectory(data []byte, path string) ([]*records.FileRecord, []records.SubdirRef, bool)
}

// Walker traverses a directory tree depth first, keeping the order of one
// directory's own cluster chain intact before descending into its
// subdirectories.
type Walker struct {
	Handler    readers.DiskReader
	Addressing records.Addresser
	Codec      EntryCodec
	Records    []*records.FileRecord
}

// WalkDirectory follows one directory's own allocation chain, decoding every
// cluster, then recurses into discovered subdirectories. The visited set is
// scoped to this chain and created fresh for every descent, deliberately not
// inherited: it bounds loops on the directory's own links but a subdirectory
// pointing back at an ancestor is not defended against.
func (walker *Walker) WalkDirectory(cluster uint32, path string) {
	visited := make(map[uint32]bool)
	var subdirs []records.SubdirRef

	clusterSizeB := walker.Addressing.GetClusterSizeB()

	for walker.Addressing.IsValidCluster(cluster) && !visited[cluster] {
		visited[cluster] = true

		data, err := walker.Handler.ReadFile(walker.Addressing.ClusterOffset(cluster), clusterSizeB)
		if err != nil {
			msg := fmt.Sprintf("directory cluster %d unreadable: %v", cluster, err)
			logger.FSLogger.Error(msg)
			break
		}

		recs, subs, end := walker.Codec.DecodeDirectory(data, path)
		walker.Records = append(walker.Records, recs...)
		subdirs = append(subdirs, subs...)
		if end {
			break
		}

		next := walker.Addressing.ReadFATEntry(walker.Handler, cluster)
		if next == 0 || next == 1 {
			break
		}
		cluster = next
	}

	walker.descend(subdirs, path)
}

// WalkFixedRegion decodes the FAT16 root directory region, which occupies a
// fixed span between the allocation tables and the data area instead of a
// cluster chain.
func (walker *Walker) WalkFixedRegion(offset int64, length int, path string) {
	if length == 0 {
		return
	}
	data, err := walker.Handler.ReadFile(offset, length)
	if err != nil {
		logger.FSLogger.Error(fmt.Sprintf("root region unreadable: %v", err))
		return
	}
	recs, subdirs, _ := walker.Codec.DecodeDirectory(data, path)
	walker.Records = append(walker.Records, recs...)
	walker.descend(subdirs, path)
}

func (walker *Walker) descend(subdirs []records.SubdirRef, path string) {
	for _, subdir := range subdirs {
		name := subdir.Name
		if name == "" {
			name = fmt.Sprintf("subdir_%d", subdir.Cluster)
		}
		walker.WalkDirectory(subdir.Cluster, path+"/"+name)
	}
}
