package FAT

import (
	"bytes"
	"fmt"
	"unicode"

	"github.com/aarsakian/FATForensics/FS/records"
	"github.com/aarsakian/FATForensics/logger"
	"github.com/aarsakian/FATForensics/utils"
)

const DirEntrySize = 32

const (
	DeletedMarker = 0xE5
	ZeroedMarker  = 0x20 // blanked first byte left by some wipe passes
	DotMarker     = 0x2E
)

const (
	AttrReadOnly    = 0x01
	AttrHidden      = 0x02
	AttrSystem      = 0x04
	AttrVolumeLabel = 0x08
	AttrDirectory   = 0x10
	AttrArchive     = 0x20
	AttrLongName    = 0x0F
)

type DirEntry struct {
	Name         [11]byte //0-10   8.3 name, space padded
	Attributes   uint8    //11
	NTRes        uint8    //12
	CrtTimeTenth uint8    //13
	CrtDate      uint16   //14-15
	CrtTime      uint16   //16-17
	AccDate      uint16   //18-19
	ClusterHigh  uint16   //20-21
	WrtDate      uint16   //22-23
	WrtTime      uint16   //24-25
	ClusterLow   uint16   //26-27
	FileSize     uint32   //28-31
}

type LFNEntry struct {
	Sequence     uint8    //0     bit 6 marks the last (highest) fragment
	Name1        [10]byte //1-10  five UTF-16 units
	Attributes   uint8    //11    always 0x0F
	Type         uint8    //12
	Checksum     uint8    //13    over the companion 8.3 name
	Name2        [12]byte //14-25 six UTF-16 units
	FirstCluster uint16   //26-27 always zero
	Name3        [4]byte  //28-31 two UTF-16 units
}

// Codec decodes FAT16/FAT32 directory clusters. Deleted entries become
// FileRecords; live entries only contribute subdirectory references for
// recursion, listing present files is the mounted volume's job.
type Codec struct {
	Addressing records.Addresser
}

func (codec Codec) DecodeDirectory(data []byte, path string) ([]*records.FileRecord, []records.SubdirRef, bool) {
	var recs []*records.FileRecord
	var subdirs []records.SubdirRef
	var lfnFragments []LFNEntry

	for idx := 0; idx+DirEntrySize <= len(data); idx += DirEntrySize {
		entry := data[idx : idx+DirEntrySize]

		if entry[0] == 0x00 { //end of directory
			return recs, subdirs, true
		}
		if entry[0] == ZeroedMarker {
			continue
		}
		if entry[11] == AttrLongName {
			var lfn LFNEntry
			utils.Unmarshal(entry, &lfn)
			lfnFragments = append(lfnFragments, lfn)
			continue
		}
		if entry[11]&AttrVolumeLabel != 0 {
			lfnFragments = nil
			continue
		}
		if entry[0] == DotMarker {
			lfnFragments = nil
			continue
		}

		var dirent DirEntry
		utils.Unmarshal(entry, &dirent)

		deleted := entry[0] == DeletedMarker
		shortName := decodeShortName(dirent.Name[:], deleted)
		longName := assembleLongName(lfnFragments, dirent.Name[:])
		lfnFragments = nil

		name := longName
		if name == "" {
			name = shortName
		} else if deleted {
			name = recoverFirstChar(name, shortName)
		}

		startCluster := uint32(dirent.ClusterHigh)<<16 | uint32(dirent.ClusterLow)
		isDir := dirent.Attributes&AttrDirectory != 0

		if !deleted {
			if isDir && startCluster >= 2 {
				subdirs = append(subdirs, records.SubdirRef{Cluster: startCluster, Name: name})
			}
			continue
		}

		record := &records.FileRecord{
			Name:         name,
			ShortName:    shortName,
			FullPath:     path + "/" + name,
			Size:         int64(dirent.FileSize),
			Crtime:       utils.ParseFATTimestamp(dirent.CrtDate, dirent.CrtTime),
			Mtime:        utils.ParseFATTimestamp(dirent.WrtDate, dirent.WrtTime),
			Atime:        utils.ParseFATTimestamp(dirent.AccDate, 0),
			Attributes:   uint16(dirent.Attributes),
			Directory:    isDir,
			Status:       records.StatusDeleted,
			StartCluster: startCluster,
			Variant:      codec.Addressing.GetVariant(),
			Addressing:   codec.Addressing,
		}
		record.Provenance = fmt.Sprintf("%s deleted directory entry %d in %s",
			codec.Addressing.GetVariant(), idx/DirEntrySize, path+"/")
		record.ScoreConfidence()
		recs = append(recs, record)
		// deleted directories are recorded but never recursed into
	}
	return recs, subdirs, false
}

// assembleLongName rebuilds the long name from buffered fragments, which sit
// on disk highest sequence first. Three fixed UTF-16 ranges per fragment are
// concatenated and trailing NUL / 0xFFFF padding trimmed. The stored
// checksum is only diagnostic, a mismatch never rejects the name.
func assembleLongName(fragments []LFNEntry, shortName []byte) string {
	if len(fragments) == 0 {
		return ""
	}

	var utf16le []byte
	for idx := len(fragments) - 1; idx >= 0; idx-- {
		fragment := fragments[idx]
		utf16le = append(utf16le, fragment.Name1[:]...)
		utf16le = append(utf16le, fragment.Name2[:]...)
		utf16le = append(utf16le, fragment.Name3[:]...)
	}

	for len(utf16le) >= 2 {
		last := utf16le[len(utf16le)-2:]
		if bytes.Equal(last, []byte{0x00, 0x00}) || bytes.Equal(last, []byte{0xFF, 0xFF}) {
			utf16le = utf16le[:len(utf16le)-2]
		} else {
			break
		}
	}

	if expected := ShortNameChecksum(shortName); expected != fragments[0].Checksum {
		msg := fmt.Sprintf("LFN checksum mismatch: entries carry %#x, 8.3 name gives %#x",
			fragments[0].Checksum, expected)
		logger.FSLogger.Warning(msg)
	}

	return utils.DecodeUTF16(utf16le)
}

// ShortNameChecksum is the rotate right and add sum over the 11 byte 8.3
// name that LFN fragments store to tie themselves to their short entry.
func ShortNameChecksum(name []byte) uint8 {
	var sum uint8
	for _, val := range name[:11] {
		sum = (sum >> 1) | (sum << 7)
		sum += val
	}
	return sum
}

func decodeShortName(name []byte, deleted bool) string {
	base := bytes.TrimRight(name[:8], " ")
	extension := bytes.TrimRight(name[8:11], " ")

	if deleted && len(base) > 0 {
		// first character was overwritten by the deletion marker
		base = append([]byte{'?'}, base[1:]...)
	}
	if len(extension) > 0 {
		return string(base) + "." + string(extension)
	}
	return string(base)
}

// recoverFirstChar repairs a long name whose first character was lost with
// the deletion marker by borrowing it from the 8.3 name, lower cased when
// the rest of the long name suggests lower case.
func recoverFirstChar(longName string, shortName string) string {
	if len(longName) == 0 || longName[0] != '?' || len(shortName) == 0 || shortName[0] == '?' {
		return longName
	}
	first := rune(shortName[0])
	if len(longName) > 1 && unicode.IsLower(rune(longName[1])) && unicode.IsUpper(first) {
		first = unicode.ToLower(first)
	}
	return string(first) + longName[1:]
}
