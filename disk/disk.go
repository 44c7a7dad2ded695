package disk

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	metadata "github.com/aarsakian/FATForensics/FS"
	"github.com/aarsakian/FATForensics/FS/records"
	gptLib "github.com/aarsakian/FATForensics/disk/partition/GPT"
	mbrLib "github.com/aarsakian/FATForensics/disk/partition/MBR"
	"github.com/aarsakian/FATForensics/disk/volume"
	"github.com/aarsakian/FATForensics/logger"
	"github.com/aarsakian/FATForensics/platform"
	"github.com/aarsakian/FATForensics/readers"
	"github.com/aarsakian/FATForensics/utils"
)

// ErrBareVolume marks media formatted without a partition table, the boot
// sector of a FAT or exFAT volume sits directly at sector zero.
var ErrBareVolume = errors.New("volume boot sector discovered instead of MBR")

type Partition interface {
	GetOffset() uint64
	LocateVolume(readers.DiskReader)
	GetVolume() volume.Volume
	GetInfo() string
	GetVolInfo() string
}

type Disk struct {
	MBR        *mbrLib.MBR
	GPT        *gptLib.GPT
	Handler    readers.DiskReader
	Partitions []Partition
}

func (disk *Disk) Initialize(evidencefile string, physicaldrive int) error {
	var hD readers.DiskReader
	if evidencefile != "" {
		extension := path.Ext(evidencefile)
		if strings.ToLower(extension) == ".e01" {
			hD = readers.GetHandler(evidencefile, "ewf")
		} else {
			hD = readers.GetHandler(evidencefile, "raw")
		}

	} else {
		if !platform.IsElevated() {
			return platform.ErrPrivilegeRequired
		}
		hD = readers.GetHandler(fmt.Sprintf("\\\\.\\PHYSICALDRIVE%d", physicaldrive), "physicalDrive")
	}
	disk.Handler = hD
	return nil
}

func (disk *Disk) Process(partitionNum int) (map[int][]metadata.Record, error) {

	err := disk.DiscoverPartitions()
	if errors.Is(err, ErrBareVolume) {
		msg := "No MBR discovered, volume boot sector found at 1st sector"
		fmt.Printf("%s\n", msg)
		logger.FSLogger.Warning(msg)

		disk.CreatePseudoMBR(disk.detectBareVolumeType())
	} else if err != nil {
		return nil, err
	}
	disk.ProcessPartitions(partitionNum)

	disk.DiscoverFileSystems(partitionNum)
	return disk.GetFileSystemMetadata(), nil
}

func (disk Disk) Close() {
	disk.Handler.CloseHandler()
}

func (disk Disk) hasProtectiveMBR() bool {
	return disk.MBR.IsProtective()
}

func (disk *Disk) DiscoverFileSystems(partitionNum int) {
	for idx := range disk.Partitions {
		if partitionNum != -1 && partitionNum != idx {
			continue
		}

		vol := disk.Partitions[idx].GetVolume()
		if vol == nil {
			continue
		}
		partitionOffsetB := int64(disk.Partitions[idx].GetOffset() * 512)
		fmt.Printf("Processing partition %d at %d ================================================\n",
			idx+1, partitionOffsetB)
		if err := vol.Process(disk.Handler, partitionOffsetB); err != nil {
			msg := fmt.Sprintf("partition %d volume processing failed: %v", idx+1, err)
			fmt.Printf("%s\n", msg)
			logger.FSLogger.Error(msg)
		}

	}
}

func (disk *Disk) populateMBR() error {
	var mbr mbrLib.MBR
	physicalOffset := int64(0)
	length := int(512) // MBR always at first sector

	data, err := disk.Handler.ReadFile(physicalOffset, length) // read 1st sector
	if err != nil {
		return err
	}

	if volume.DetectBootSector(data) != "" {
		return ErrBareVolume
	}

	mbr.Parse(data)
	offset, err := mbr.GetExtendedPartitionOffset()
	if err == nil {
		data, err := disk.Handler.ReadFile(physicalOffset+int64(offset)*512, length)
		if err == nil {
			mbr.DiscoverExtendedPartitions(data, offset)
		}

	}
	disk.MBR = &mbr
	if utils.Hexify(mbr.Signature[:]) != "55aa" {
		return errors.New("mbr not valid")
	}
	return nil
}

func (disk *Disk) populateGPT() error {

	physicalOffset := int64(512) // gpt always starts at 512

	data, err := disk.Handler.ReadFile(physicalOffset, 512)
	if err != nil {
		return err
	}

	var gpt gptLib.GPT
	if err := gpt.ParseHeader(data); err != nil {
		return err
	}
	length := gpt.GetPartitionArraySize()

	data, err = disk.Handler.ReadFile(int64(gpt.Header.PartitionsStartLBA*512), int(length))
	if err != nil {
		return err
	}

	gpt.ParsePartitions(data)

	disk.GPT = &gpt
	return nil
}

func (disk Disk) detectBareVolumeType() string {
	data, err := disk.Handler.ReadFile(0, 512)
	if err != nil {
		return ""
	}
	return volume.DetectBootSector(data)
}

func (disk *Disk) CreatePseudoMBR(voltype string) {
	var mbr mbrLib.MBR

	mbr.PopulatePseudoMBR(voltype)
	disk.MBR = &mbr
	for idx := range disk.MBR.Partitions {
		disk.Partitions = append(disk.Partitions, &disk.MBR.Partitions[idx])
	}

}

func (disk *Disk) DiscoverPartitions() error {

	err := disk.populateMBR()
	if err != nil {
		return err
	}
	if disk.hasProtectiveMBR() {
		if err := disk.populateGPT(); err != nil {
			return err
		}
		for idx := range disk.GPT.Partitions {

			disk.Partitions = append(disk.Partitions, &disk.GPT.Partitions[idx])

		}

	} else {
		for idx := range disk.MBR.Partitions {
			disk.Partitions = append(disk.Partitions, &disk.MBR.Partitions[idx])
		}
		for idx := range disk.MBR.ExtendedPartitions {
			disk.Partitions = append(disk.Partitions, &disk.MBR.ExtendedPartitions[idx])
		}
	}
	return nil
}

func (disk *Disk) ProcessPartitions(partitionNum int) {

	for idx := range disk.Partitions {
		if partitionNum != -1 && partitionNum != idx {
			continue
		}
		disk.Partitions[idx].LocateVolume(disk.Handler)

		parttionOffset := disk.Partitions[idx].GetOffset()
		vol := disk.Partitions[idx].GetVolume()
		if vol == nil {
			msg := "No known volume at partition %d (currently supported FAT16 FAT32 EXFAT)."
			logger.FSLogger.Error(fmt.Sprintf(msg, idx))
			continue //fs not found
		}
		msg := "Partition %d at %d sector"
		fmt.Printf(msg+"\n", idx+1, parttionOffset)
		logger.FSLogger.Info(fmt.Sprintf(msg, idx+1, parttionOffset))

	}

}

func (disk Disk) GetFileSystemMetadata() map[int][]metadata.Record {

	recordsPerPartition := map[int][]metadata.Record{}
	for idx, partition := range disk.Partitions {

		vol := partition.GetVolume()
		if vol == nil {
			continue
		}
		recordsPerPartition[idx] = vol.GetFS()

	}
	return recordsPerPartition
}

// Worker pulls the content of each record and feeds it to the exporter over
// the results channel. Recovery failures are logged and skipped, one
// unrecoverable file never aborts the batch.
func (disk Disk) Worker(wg *sync.WaitGroup, recs []metadata.Record, results chan<- utils.AskedFile, partitionNum int) {
	defer wg.Done()

	for _, record := range recs {

		if record.IsFolder() {
			msg := fmt.Sprintf("Record %s Id %d is folder! No data to export.", record.GetFname(), record.GetID())
			logger.FSLogger.Warning(msg)
			continue
		}

		fmt.Printf("pulling data file %s Id %d\n", record.GetFname(), record.GetID())
		if err := record.LocateData(disk.Handler, results); err != nil {
			msg := fmt.Sprintf("recovery of %s Id %d failed: %v", record.GetFname(), record.GetID(), err)
			fmt.Printf("%s\n", msg)
			logger.FSLogger.Error(msg)
		}

	}
	close(results)

}

// CrossReference flags deleted records whose name now belongs to a live file
// of a different size, comparing against a directory enumeration of the
// mounted volume rather than the image's own directory entries.
func (disk Disk) CrossReference(liveRecords []*records.FileRecord, partitionNum int) {
	for idx, partition := range disk.Partitions {
		if partitionNum != -1 && partitionNum != idx {
			continue
		}
		vol := partition.GetVolume()
		if vol == nil {
			continue
		}
		deleted := utils.Filter(vol.GetRecords(), func(record *records.FileRecord) bool {
			return record.IsDeleted()
		})
		records.DetectReplaced(deleted, liveRecords)
	}
}

func (disk Disk) ShowVolumeInfo() {
	for _, partition := range disk.Partitions {
		info := partition.GetVolInfo()
		if info == "" {
			continue
		}
		fmt.Printf("%s \n", info)
	}
}

func (disk Disk) ListPartitions() {
	if disk.hasProtectiveMBR() {
		fmt.Printf("GPT:\n")
	} else {
		fmt.Printf("MBR:\n")
	}

	for _, partition := range disk.Partitions {
		fmt.Printf("%s\n", partition.GetInfo())
	}

}

func (disk Disk) ListUnallocated() {
	for _, partition := range disk.Partitions {
		vol := partition.GetVolume()
		if vol == nil {
			continue
		}
		unallocatedClusters := vol.GetUnallocatedClusters(disk.Handler)

		for _, unallocatedCluster := range unallocatedClusters {
			fmt.Printf("%d \t", unallocatedCluster)
		}

		fmt.Printf("Total unallocated clusters %d\n", len(unallocatedClusters))
	}
}

// CollectUnallocated streams runs of consecutive free clusters to the
// carving consumer, one block per run.
func (disk Disk) CollectUnallocated(blocks chan<- []byte) {
	defer close(blocks)

	for _, partition := range disk.Partitions {

		vol := partition.GetVolume()
		if vol == nil {
			continue
		}

		clusterSizeB := vol.GetSectorsPerCluster() * int(vol.GetBytesPerSector())

		unallocatedClusters := vol.GetUnallocatedClusters(disk.Handler)
		if len(unallocatedClusters) == 0 {
			continue
		}

		runStart := unallocatedClusters[0]
		prevCluster := unallocatedClusters[0]

		flush := func(firstCluster int, lastCluster int) {
			data, err := disk.Handler.ReadFile(vol.GetClusterOffset(firstCluster),
				(lastCluster-firstCluster+1)*clusterSizeB)
			if err != nil {
				logger.FSLogger.Error(fmt.Sprintf("unallocated run at cluster %d unreadable: %v",
					firstCluster, err))
				return
			}
			blocks <- data
		}

		for _, unallocatedCluster := range unallocatedClusters[1:] {
			if unallocatedCluster-prevCluster > 1 {
				flush(runStart, prevCluster)
				runStart = unallocatedCluster
			}
			prevCluster = unallocatedCluster
		}
		flush(runStart, prevCluster)

	}

}
