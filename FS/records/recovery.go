package records

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/aarsakian/FATForensics/logger"
	"github.com/aarsakian/FATForensics/readers"
	"github.com/aarsakian/FATForensics/utils"
)

var (
	ErrTargetIsDirectory       = errors.New("recovery target is a directory")
	ErrInvalidClusterReference = errors.New("start cluster references no data area")
)

// Once a file needs more clusters than this on FAT16 the allocation table is
// not consulted at all and consecutive clusters are assumed.
const fat16ConsecutiveThreshold = 20

// LocateData reconstructs the record's byte content and sends it to the
// results channel. Validation errors are returned before any device read;
// every failure past that point degrades to a partial or empty result,
// flagged on the AskedFile, and the caller judges success by the produced
// length.
func (record FileRecord) LocateData(hD readers.DiskReader, results chan<- utils.AskedFile) error {
	content, partial, err := record.recoverContent(hD)
	if err != nil {
		return err
	}
	results <- utils.AskedFile{Fname: record.GetFname(), Content: content,
		Id: int(record.StartCluster), Partial: partial}
	return nil
}

func (record FileRecord) recoverContent(hD readers.DiskReader) ([]byte, bool, error) {
	if record.Directory {
		return nil, false, ErrTargetIsDirectory
	}
	if record.StartCluster < 2 {
		return nil, false, ErrInvalidClusterReference
	}

	clusterSizeB := record.Addressing.GetClusterSizeB()
	clustersNeeded := int((record.Size + int64(clusterSizeB) - 1) / int64(clusterSizeB))
	if clustersNeeded == 0 {
		return []byte{}, false, nil
	}

	var buf bytes.Buffer
	buf.Grow(int(record.Size))

	if record.Variant == VariantExFAT && record.Contiguous {
		record.readConsecutive(hD, &buf, clustersNeeded)
		// a short contiguous read on a longer file suggests the hint is
		// stale, retry through the allocation table
		if int64(buf.Len())*2 >= record.Size || clustersNeeded <= 2 {
			return buf.Bytes(), int64(buf.Len()) < record.Size, nil
		}
		msg := fmt.Sprintf("contiguous read of %s yielded %d of %d bytes, following table",
			record.GetFname(), buf.Len(), record.Size)
		logger.FSLogger.Warning(msg)
		buf.Reset()
	}

	chain := record.buildClusterChain(hD, clustersNeeded)
	if len(chain) < clustersNeeded {
		// deleted files usually have their table entries zeroed; assume the
		// file occupied consecutive clusters instead
		buf.Reset()
		record.readConsecutive(hD, &buf, clustersNeeded)
		return buf.Bytes(), int64(buf.Len()) < record.Size, nil
	}

	for _, cluster := range chain {
		data, err := hD.ReadFile(record.Addressing.ClusterOffset(cluster), clusterSizeB)
		if err != nil || len(data) == 0 {
			break
		}
		remaining := record.Size - int64(buf.Len())
		if int64(len(data)) > remaining {
			data = data[:remaining]
		}
		buf.Write(data)
	}

	return buf.Bytes(), int64(buf.Len()) < record.Size, nil
}

// readConsecutive pulls clusters sequentially from the start cluster, no
// table lookups, stopping at the end of the addressable cluster range or
// the first failed or empty read.
func (record FileRecord) readConsecutive(hD readers.DiskReader, buf *bytes.Buffer, clustersNeeded int) {
	clusterSizeB := record.Addressing.GetClusterSizeB()

	for i := 0; i < clustersNeeded; i++ {
		cluster := record.StartCluster + uint32(i)
		if !record.Addressing.IsValidCluster(cluster) {
			break
		}
		data, err := hD.ReadFile(record.Addressing.ClusterOffset(cluster), clusterSizeB)
		if err != nil || len(data) == 0 {
			break
		}
		remaining := record.Size - int64(buf.Len())
		if int64(len(data)) > remaining {
			data = data[:remaining]
		}
		buf.Write(data)
	}
}

// buildClusterChain follows the allocation table from the start cluster,
// capped at clustersNeeded entries. Next values of 0 or 1 are an expected
// chain break once a file has been deleted; a revisited cluster truncates
// the chain instead of looping.
func (record FileRecord) buildClusterChain(hD readers.DiskReader, clustersNeeded int) []uint32 {
	if record.Variant == VariantFAT16 && clustersNeeded > fat16ConsecutiveThreshold {
		return nil
	}

	var chain []uint32
	visited := make(map[uint32]bool)
	cluster := record.StartCluster

	for len(chain) < clustersNeeded {
		if !record.Addressing.IsValidCluster(cluster) {
			break
		}
		if visited[cluster] {
			msg := fmt.Sprintf("circular cluster chain at %d for %s", cluster, record.GetFname())
			logger.FSLogger.Warning(msg)
			break
		}
		visited[cluster] = true
		chain = append(chain, cluster)

		next := record.Addressing.ReadFATEntry(hD, cluster)
		if next == 0 || next == 1 {
			break
		}
		cluster = next
	}
	return chain
}
