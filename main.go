package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"strings"
	"time"

	EWFLogger "github.com/aarsakian/EWF_Reader/logger"
	metadata "github.com/aarsakian/FATForensics/FS"
	"github.com/aarsakian/FATForensics/disk"
	"github.com/aarsakian/FATForensics/exporter"
	"github.com/aarsakian/FATForensics/filtermanager"
	"github.com/aarsakian/FATForensics/filters"
	"github.com/aarsakian/FATForensics/live"
	FSLogger "github.com/aarsakian/FATForensics/logger"
	"github.com/aarsakian/FATForensics/platform"
	"github.com/aarsakian/FATForensics/reporter"
	"github.com/aarsakian/FATForensics/tree"
	"github.com/aarsakian/FATForensics/utils"
	VMDKLogger "github.com/aarsakian/VMDK_Reader/logger"
)

func main() {
	var location string
	evidencefile := flag.String("evidence", "", "path to image file (EWF/Raw formats are supported)")
	physicalDrive := flag.Int("physicaldrive", -1, "select disk drive number")
	driveLetter := flag.String("driveletter", "", "mounted drive letter to cross reference deleted records against, e.g. E:")
	partitionNum := flag.Int("partition", 0, "select partition number")

	flag.StringVar(&location, "location", "", "the path to export files")
	exportFiles := flag.String("filenames", "", "files to export use comma as a seperator")
	exportFilesPath := flag.String("path", "", "base path of files to export")
	fileExtensions := flag.String("extensions", "", "search file system records by extensions use comma as a seperator")
	filePrefixes := flag.String("prefixes", "", "filter records by filename prefixes use comma as a seperator")
	fileSuffixes := flag.String("suffixes", "", "filter records by filename suffixes, paired with -prefixes")
	deleted := flag.Bool("deleted", false, "show only deleted records")
	replaced := flag.Bool("replaced", false, "show only deleted records whose name was reused by a live file")
	minConfidence := flag.Int("confidence", 0, "keep deleted records scored at or above this recovery confidence (0-100)")
	folders := flag.Bool("folders", false, "include folders in the results")

	showTimestamps := flag.Bool("showtimestamps", false, "show all file system timestamps")
	showFileSize := flag.Bool("filesize", false, "show file size")
	showPath := flag.Bool("showpath", false, "show the full path of the selected files")
	showConfidence := flag.Bool("showconfidence", false, "show recovery confidence and provenance of deleted records")
	buildtree := flag.Bool("tree", false, "reconstruct file system tree")
	showtree := flag.Bool("showtree", false, "show file system tree")

	listPartitions := flag.Bool("listpartitions", false, "list partitions")
	volinfo := flag.Bool("volinfo", false, "show volume information")
	listUnallocated := flag.Bool("listunallocated", false, "list unallocated clusters")
	collectUnallocated := flag.Bool("unallocated", false, "collect unallocated area of a volume")
	listDrives := flag.Bool("listdrives", false, "list logical drives of this machine")

	hashFiles := flag.String("hash", "", "hash exported files, enter md5 or sha1")
	verifySignatures := flag.Bool("verify", false, "verify Authenticode signatures of exported executables")
	strategy := flag.String("strategy", "overwrite", "what strategy will be used for files sharing the same name, default is ovewrite, or use Id")
	logactive := flag.Bool("log", false, "enable logging")
	profile := flag.Bool("profile", false, "profile memory usage")

	flag.Parse() //ready to parse

	var fileNamesToExport []string
	var recordsPerPartition map[int][]metadata.Record

	recordsTree := tree.Tree{}
	if *profile {
		go func() {
			log.Println("pprof listening on :6060")
			log.Println(http.ListenAndServe("localhost:6060", nil))
		}()
	}

	rp := reporter.Reporter{
		ShowTimestamps: *showTimestamps,
		ShowFileSize:   *showFileSize,
		ShowPath:       *showPath,
		ShowConfidence: *showConfidence,
		ShowHash:       *hashFiles != "",
		ShowTree:       *showtree,
	}

	if *logactive {
		now := time.Now()
		logfilename := "logs" + now.Format("2006-01-02T15_04_05") + ".txt"
		FSLogger.InitializeLogger(*logactive, logfilename)
		VMDKLogger.InitializeLogger(*logactive, logfilename)
		EWFLogger.InitializeLogger(*logactive, logfilename)

	}

	if *listDrives {
		drives, err := platform.ListLogicalDrives()
		if err != nil {
			fmt.Println(err)
			return
		}
		for _, drive := range drives {
			fmt.Printf("%s %s %s total %d free %d\n", drive.Letter, drive.Filesystem,
				drive.Label, drive.TotalSize, drive.FreeSize)
		}
		return
	}

	exp := exporter.Exporter{Location: location, Hash: strings.ToUpper(*hashFiles), Strategy: *strategy}

	flm := filtermanager.FilterManager{}

	if *exportFiles != "" {
		fileNamesToExport = append(fileNamesToExport, utils.GetEntries(*exportFiles)...)
		flm.Register(filters.NameFilter{Filenames: fileNamesToExport})
	}

	if *fileExtensions != "" {
		flm.Register(filters.ExtensionsFilter{Extensions: strings.Split(*fileExtensions, ",")})
	}

	if *exportFilesPath != "" {
		flm.Register(filters.PathFilter{NamePath: *exportFilesPath})
	}

	if *filePrefixes != "" && *fileSuffixes != "" {
		prefixes := utils.GetEntries(*filePrefixes)
		suffixes := utils.GetEntries(*fileSuffixes)
		if len(prefixes) == len(suffixes) {
			flm.Register(filters.PrefixesSuffixesFilter{Prefixes: prefixes, Suffixes: suffixes})
		} else {
			fmt.Println("prefixes and suffixes must pair up")
			return
		}
	}

	if *deleted {
		flm.Register(filters.DeletedFilter{Include: *deleted})
	}

	if *replaced {
		flm.Register(filters.ReplacedFilter{Include: *replaced})
	}

	if *minConfidence > 0 {
		flm.Register(filters.ConfidenceFilter{MinConfidence: *minConfidence})
	}

	flm.Register(filters.FoldersFilter{Include: *folders})

	if *evidencefile == "" && *physicalDrive == -1 {
		flag.Usage()
		return
	}

	dsk := new(disk.Disk)
	if err := dsk.Initialize(*evidencefile, *physicalDrive); err != nil {
		fmt.Println(err)
		return
	}
	defer dsk.Close()

	recordsPerPartition, err := dsk.Process(*partitionNum - 1)
	if err != nil {
		fmt.Println(err)
		return
	}

	if *driveLetter != "" {
		liveRecords := live.NewEnumerator().Collect(*driveLetter + "\\")
		dsk.CrossReference(liveRecords, *partitionNum-1)
	}

	if *listPartitions {
		dsk.ListPartitions()
	}

	if *volinfo {
		dsk.ShowVolumeInfo()
	}

	if *listUnallocated {
		dsk.ListUnallocated()
	}

	if *collectUnallocated {
		exp.ExportUnallocated(*dsk)
	}

	for partitionId, records := range recordsPerPartition {

		records = flm.ApplyFilters(records)

		if location != "" {
			exp.ExportRecords(records, *dsk, partitionId)
			if *hashFiles != "" {
				exp.HashFiles(records)
			}
			if *verifySignatures {
				exp.VerifySignatures(records)
			}
		}

		if *hashFiles != "" && location == "" {
			// hashed in place from the image, only the inspected records pay
			// the cluster scan
			for _, record := range records {
				record.ComputeHash(dsk.Handler, *hashFiles)
			}
		}

		if *buildtree {
			recordsTree.Build(records)

		}

		rp.Show(records, partitionId, recordsTree)

	}

}
