package records

import (
	"fmt"
	"strings"

	"github.com/aarsakian/FATForensics/logger"
)

// DetectReplaced cross references deleted records against live ones by case
// insensitive file name. A live file with the same name but a different size
// means the deleted record's storage was likely reused, so its whole name
// group is relabeled Replaced. Matching ignores the directory path; files
// with the same name in different directories alias.
func DetectReplaced(deleted []*FileRecord, live []*FileRecord) {
	liveSizes := make(map[string][]int64)
	for _, record := range live {
		if record.Directory {
			continue
		}
		name := strings.ToLower(record.GetFname())
		liveSizes[name] = append(liveSizes[name], record.Size)
	}

	groups := make(map[string][]*FileRecord)
	for _, record := range deleted {
		if record.Directory || record.Status != StatusDeleted {
			continue
		}
		name := strings.ToLower(record.GetFname())
		groups[name] = append(groups[name], record)
	}

	for name, group := range groups {
		sizes, ok := liveSizes[name]
		if !ok {
			continue
		}
		if !hasDifferingSize(group, sizes) {
			continue
		}
		for _, record := range group {
			record.Status = StatusReplaced
		}
		msg := fmt.Sprintf("marked %d deleted records named %s as replaced", len(group), name)
		logger.FSLogger.Info(msg)
	}
}

func hasDifferingSize(group []*FileRecord, liveSizes []int64) bool {
	for _, record := range group {
		for _, size := range liveSizes {
			if size != record.Size {
				return true
			}
		}
	}
	return false
}
