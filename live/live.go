package live

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/aarsakian/FATForensics/FS/records"
	"github.com/aarsakian/FATForensics/logger"
)

// Enumerator lists the files of a mounted volume through the OS, producing
// present records that cross referencing compares against the image's
// deleted entries. The filesystem is injectable so tests run on a memory
// backed one.
type Enumerator struct {
	Fs afero.Fs
}

func NewEnumerator() Enumerator {
	return Enumerator{Fs: afero.NewOsFs()}
}

// Collect walks the drive rooted at root, a drive letter path like "E:\\" on
// windows or a mount point elsewhere. Unreadable subtrees are logged and
// skipped.
func (enumerator Enumerator) Collect(root string) []*records.FileRecord {
	var liveRecords []*records.FileRecord

	err := afero.Walk(enumerator.Fs, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			logger.FSLogger.Warning(fmt.Sprintf("live enumeration skipping %s: %v", path, err))
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}

		relPath := strings.TrimPrefix(path, root)
		relPath = "/" + strings.Trim(strings.ReplaceAll(relPath, "\\", "/"), "/")

		liveRecords = append(liveRecords, &records.FileRecord{
			Name:      info.Name(),
			ShortName: info.Name(),
			FullPath:  relPath,
			Size:      info.Size(),
			Mtime:     info.ModTime(),
			Directory: info.IsDir(),
			Status:    records.StatusPresent,
		})
		return nil
	})
	if err != nil {
		logger.FSLogger.Error(fmt.Sprintf("live enumeration of %s failed: %v", root, err))
	}

	msg := fmt.Sprintf("live enumeration of %s collected %d entries", root, len(liveRecords))
	logger.FSLogger.Info(msg)
	return liveRecords
}
