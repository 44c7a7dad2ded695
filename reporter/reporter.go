package reporter

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	metadata "github.com/aarsakian/FATForensics/FS"
	"github.com/aarsakian/FATForensics/tree"
)

type Reporter struct {
	ShowTimestamps bool
	ShowFileSize   bool
	ShowPath       bool
	ShowConfidence bool
	ShowHash       bool
	ShowTree       bool
}

func (rp Reporter) Show(records []metadata.Record, partitionId int, fileTree tree.Tree) {
	printer := message.NewPrinter(language.English)

	for _, record := range records {

		record.ShowInfo()

		if rp.ShowTimestamps {
			record.ShowTimestamps()

		}

		if rp.ShowFileSize {
			printer.Printf("size %d bytes\n", record.GetLogicalFileSize())

		}

		if rp.ShowPath {
			record.ShowPath(partitionId)
		}

		if rp.ShowConfidence && record.IsDeleted() {
			printer.Printf("confidence %d (%s)\n", record.GetConfidence(), record.GetProvenance())
		}

		if rp.ShowHash && record.GetHash() != "" {
			printer.Printf("hash %s\n", record.GetHash())
		}
	}

	printer.Printf("%d records in partition %d\n", len(records), partitionId+1)

	if rp.ShowTree {
		fileTree.Show()
	}

}
