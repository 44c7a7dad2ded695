package EXFAT

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/aarsakian/FATForensics/FS/records"
	"github.com/aarsakian/FATForensics/logger"
	"github.com/aarsakian/FATForensics/utils"
)

const DirEntrySize = 32

// Low seven bits of the entry type byte. The high bit is the in-use flag:
// clearing it is how exFAT marks an entry set deleted, the inverse of FAT's
// 0xE5 convention.
const (
	EntryTypeFile      = 0x05
	EntryTypeStreamExt = 0x40
	EntryTypeFileName  = 0x41
	InUseBit           = 0x80
)

const (
	FlagNoFatChain    = 0x02 // stream entry secondary flags bit 1: contiguous file
	AttrDirectory     = 0x0010
	MaxNameEntries    = 17
	nameUnitsPerEntry = 15
)

// Codec decodes exFAT directory clusters, one primary/stream/name entry set
// per file. Deleted entry sets become FileRecords; in-use directories only
// contribute subdirectory references for recursion.
type Codec struct {
	Addressing records.Addresser
}

func (codec Codec) DecodeDirectory(data []byte, path string) ([]*records.FileRecord, []records.SubdirRef, bool) {
	var recs []*records.FileRecord
	var subdirs []records.SubdirRef

	idx := 0
	for idx+DirEntrySize <= len(data) {
		entry := data[idx : idx+DirEntrySize]

		if entry[0] == 0x00 { //end of directory
			return recs, subdirs, true
		}

		if entry[0]&^InUseBit != EntryTypeFile {
			idx += DirEntrySize
			continue
		}

		inUse := entry[0]&InUseBit != 0
		secondaryCount := int(entry[1])
		if secondaryCount < 2 {
			logger.FSLogger.Warning(fmt.Sprintf("file entry with %d secondaries skipped", secondaryCount))
			idx += DirEntrySize
			continue
		}
		if idx+2*DirEntrySize > len(data) {
			break
		}

		stream := data[idx+DirEntrySize : idx+2*DirEntrySize]
		if stream[0]&^InUseBit != EntryTypeStreamExt {
			idx += DirEntrySize
			continue
		}

		contiguous := stream[1]&FlagNoFatChain != 0
		nameLength := int(stream[3])
		size := binary.LittleEndian.Uint64(stream[8:16])
		firstCluster := binary.LittleEndian.Uint32(stream[20:24])

		name := codec.decodeName(data, idx, secondaryCount, nameLength)

		attributes := binary.LittleEndian.Uint16(entry[4:6])
		isDir := attributes&AttrDirectory != 0

		if inUse {
			if isDir && firstCluster >= 2 {
				subdirs = append(subdirs, records.SubdirRef{Cluster: firstCluster, Name: name})
			}
			idx += (1 + secondaryCount) * DirEntrySize
			continue
		}

		record := &records.FileRecord{
			Name:         name,
			ShortName:    name,
			FullPath:     path + "/" + name,
			Size:         int64(size),
			Crtime:       utils.ParseExfatTimestamp(binary.LittleEndian.Uint32(entry[8:12])),
			Mtime:        utils.ParseExfatTimestamp(binary.LittleEndian.Uint32(entry[12:16])),
			Atime:        utils.ParseExfatTimestamp(binary.LittleEndian.Uint32(entry[16:20])),
			Attributes:   attributes,
			Directory:    isDir,
			Status:       records.StatusDeleted,
			StartCluster: firstCluster,
			Contiguous:   contiguous,
			Variant:      records.VariantExFAT,
			Addressing:   codec.Addressing,
			Provenance: fmt.Sprintf("deleted exFAT entry set %d in %s, %d secondaries",
				idx/DirEntrySize, path+"/", secondaryCount),
		}
		record.ScoreConfidence()
		recs = append(recs, record)
		// deleted directories are recorded but never recursed into

		idx += (1 + secondaryCount) * DirEntrySize
	}
	return recs, subdirs, false
}

// decodeName concatenates the UTF-16 payload of up to 17 name entries, 15
// units each starting at byte 2, and cuts it at the stream entry's declared
// name length.
func (codec Codec) decodeName(data []byte, setOffset int, secondaryCount int, nameLength int) string {
	nameEntries := secondaryCount - 1
	if nameEntries > MaxNameEntries {
		nameEntries = MaxNameEntries
	}

	var utf16le []byte
	for n := 0; n < nameEntries; n++ {
		offset := setOffset + (2+n)*DirEntrySize
		if offset+DirEntrySize > len(data) {
			break
		}
		entry := data[offset : offset+DirEntrySize]
		if entry[0]&^InUseBit != EntryTypeFileName {
			break
		}
		utf16le = append(utf16le, entry[2:2+2*nameUnitsPerEntry]...)
	}

	if nameLength > 0 && 2*nameLength < len(utf16le) {
		utf16le = utf16le[:2*nameLength]
	}
	for len(utf16le) >= 2 && bytes.Equal(utf16le[len(utf16le)-2:], []byte{0x00, 0x00}) {
		utf16le = utf16le[:len(utf16le)-2]
	}
	return utils.DecodeUTF16(utf16le)
}
