package records

import (
	"fmt"
	"strings"
	"time"

	"github.com/aarsakian/FATForensics/readers"
	"github.com/aarsakian/FATForensics/utils"
)

const (
	StatusPresent  = "Present"
	StatusDeleted  = "Deleted"
	StatusReplaced = "Replaced"
)

const (
	VariantFAT16 = "FAT16"
	VariantFAT32 = "FAT32"
	VariantExFAT = "EXFAT"
)

// Addresser is the per variant capability contract over one volume's
// geometry: cluster byte offsets, allocation table entries and cluster
// validity. FAT16, FAT32 and exFAT volumes each provide one.
type Addresser interface {
	ClusterOffset(cluster uint32) int64
	ReadFATEntry(hD readers.DiskReader, cluster uint32) uint32
	IsValidCluster(cluster uint32) bool
	GetClusterSizeB() int
	GetVariant() string
}

// SubdirRef points the walker at a discovered subdirectory.
type SubdirRef struct {
	Cluster uint32
	Name    string
}

// FileRecord is the canonical output of a scan, one per reconstructed
// directory entry. Status and the content hash are the only fields mutated
// after creation.
type FileRecord struct {
	Name         string // reconstructed name, long form preferred
	ShortName    string
	FullPath     string
	Size         int64
	Crtime       time.Time // zero when the on disk field did not decode
	Mtime        time.Time
	Atime        time.Time
	Attributes   uint16
	Directory    bool
	Status       string
	StartCluster uint32
	Contiguous   bool // exFAT NoFatChain, lets recovery skip the table
	Confidence   int
	Provenance   string
	Variant      string
	Addressing   Addresser

	hash string
}

func (record FileRecord) GetFname() string {
	if record.Name != "" {
		return record.Name
	}
	return record.ShortName
}

func (record FileRecord) GetFullPath() string {
	return record.FullPath
}

func (record FileRecord) GetLogicalFileSize() int64 {
	return record.Size
}

func (record FileRecord) GetID() int {
	return int(record.StartCluster)
}

func (record FileRecord) GetStatus() string {
	return record.Status
}

func (record FileRecord) GetConfidence() int {
	return record.Confidence
}

func (record FileRecord) GetProvenance() string {
	return record.Provenance
}

func (record FileRecord) IsDeleted() bool {
	return record.Status == StatusDeleted || record.Status == StatusReplaced
}

func (record FileRecord) IsReplaced() bool {
	return record.Status == StatusReplaced
}

func (record FileRecord) IsFolder() bool {
	return record.Directory
}

func (record FileRecord) HasFilenameExtension(extension string) bool {
	name := record.GetFname()
	return strings.HasSuffix(name, strings.ToUpper("."+extension)) ||
		strings.HasSuffix(name, strings.ToLower("."+extension))
}

func (record FileRecord) HasFilename(filename string) bool {
	return record.GetFname() == filename
}

func (record FileRecord) HasFilenames(filenames []string) bool {
	for _, filename := range filenames {
		if record.HasFilename(filename) {
			return true
		}
	}
	return false
}

func (record FileRecord) HasPath(filespath string) bool {
	return strings.HasPrefix(record.FullPath, filespath)
}

func (record FileRecord) HasPrefix(prefix string) bool {
	return strings.HasPrefix(record.GetFname(), prefix)
}

func (record FileRecord) HasSuffix(suffix string) bool {
	return strings.HasSuffix(record.GetFname(), suffix)
}

func (record FileRecord) GetHash() string {
	return record.hash
}

// ComputeHash materializes the record's content and caches its digest.
// Deliberately lazy: scanning raw clusters for every deleted record found
// would dominate scan time.
func (record *FileRecord) ComputeHash(hD readers.DiskReader, algorithm string) string {
	if record.hash != "" {
		return record.hash
	}
	content, _, err := record.recoverContent(hD)
	if err != nil {
		return ""
	}
	if strings.EqualFold(algorithm, "sha1") {
		record.hash = utils.GetSHA1(content)
	} else {
		record.hash = utils.GetMD5(content)
	}
	return record.hash
}

func (record FileRecord) ShowInfo() {
	kind := "file"
	if record.Directory {
		kind = "dir"
	}
	fmt.Printf("%s %s %s size %d start cluster %d confidence %d%% [%s]\n",
		record.Status, kind, record.GetFname(), record.Size, record.StartCluster,
		record.Confidence, record.Provenance)
}

func (record FileRecord) ShowTimestamps() {
	fmt.Printf("c %s m %s a %s ", utils.ConvertToIsoTime(record.Crtime),
		utils.ConvertToIsoTime(record.Mtime), utils.ConvertToIsoTime(record.Atime))
}

func (record FileRecord) ShowPath(partitionId int) {
	fmt.Printf("Partition%d%s\n", partitionId, record.FullPath)
}

// ScoreConfidence applies the per variant recovery heuristics. Pure over the
// record's own fields, no I/O.
func (record *FileRecord) ScoreConfidence() {
	var confidence int
	if record.Variant == VariantExFAT {
		confidence = 50
		if record.hasRecoveredName() {
			confidence += 30
		}
		if !record.Crtime.IsZero() {
			confidence += 10
		}
		if record.Size > 0 && !record.Directory {
			confidence += 10
		}
	} else {
		confidence = 30
		if record.hasRecoveredName() {
			confidence += 30
		}
		if !record.Crtime.IsZero() {
			confidence += 20
		}
		if record.Size > 0 && !record.Directory {
			confidence += 10
		}
		if record.Addressing != nil && record.Addressing.IsValidCluster(record.StartCluster) {
			confidence += 10
		}
	}
	if confidence > 100 {
		confidence = 100
	}
	record.Confidence = confidence
}

func (record FileRecord) hasRecoveredName() bool {
	name := record.GetFname()
	if name == "" || strings.HasPrefix(name, "?") {
		return false
	}
	return !strings.HasPrefix(name, "subdir_")
}
