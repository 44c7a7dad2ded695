package metadata

import (
	"github.com/aarsakian/FATForensics/readers"
	"github.com/aarsakian/FATForensics/utils"
)

type Record interface {
	HasFilenameExtension(string) bool
	HasFilename(string) bool
	HasFilenames([]string) bool
	HasPath(string) bool
	HasSuffix(string) bool
	HasPrefix(string) bool
	IsDeleted() bool
	IsReplaced() bool
	IsFolder() bool
	GetFname() string
	GetFullPath() string
	GetID() int
	GetLogicalFileSize() int64
	GetStatus() string
	GetConfidence() int
	GetProvenance() string
	ShowInfo()
	ShowTimestamps()
	ShowPath(int)

	LocateData(readers.DiskReader, chan<- utils.AskedFile) error
	ComputeHash(readers.DiskReader, string) string
	GetHash() string
}

func FilterByExtensions(records []Record, extensions []string) []Record {
	var filteredRecords []Record
	for _, extension := range extensions {
		filteredRecords = append(filteredRecords, FilterByExtension(records, extension)...)
	}
	return filteredRecords
}

func FilterByExtension(records []Record, extension string) []Record {

	return utils.Filter(records, func(record Record) bool {
		return record.HasFilenameExtension(extension)
	})

}

func FilterByNames(records []Record, filenames []string) []Record {

	return utils.Filter(records, func(record Record) bool {
		return record.HasFilenames(filenames)
	})

}

func FilterByPath(records []Record, filespath string) []Record {
	return utils.Filter(records, func(record Record) bool {
		return record.HasPath(filespath)
	})
}

func FilterByName(records []Record, filename string) []Record {
	return utils.Filter(records, func(record Record) bool {
		return record.HasFilename(filename)
	})

}

func FilterByPrefixSuffix(records []Record, prefix string, suffix string) []Record {

	return utils.Filter(records, func(record Record) bool {
		return record.HasPrefix(prefix) && record.HasSuffix(suffix)
	})

}

func FilterOutFiles(records []Record) []Record {
	return utils.Filter(records, func(record Record) bool {
		return record.IsFolder()
	})
}

func FilterOutFolders(records []Record) []Record {
	return utils.Filter(records, func(record Record) bool {
		return !record.IsFolder()
	})
}

func FilterDeleted(records []Record, includeDeleted bool) []Record {
	return utils.Filter(records, func(record Record) bool {
		if includeDeleted {
			return record.IsDeleted()
		} else {
			return !record.IsDeleted()
		}

	})
}

func FilterReplaced(records []Record) []Record {
	return utils.Filter(records, func(record Record) bool {
		return record.IsReplaced()
	})
}

func FilterByConfidence(records []Record, minConfidence int) []Record {
	return utils.Filter(records, func(record Record) bool {
		return record.GetConfidence() >= minConfidence
	})
}
