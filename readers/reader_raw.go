package readers

import (
	"fmt"
	"os"

	"github.com/aarsakian/FATForensics/logger"
)

type RawReader struct {
	PathToEvidenceFiles string
	fd                  *os.File
}

func (imgreader *RawReader) CreateHandler() {
	file, err := os.Open(imgreader.PathToEvidenceFiles)
	if err != nil {
		fmt.Printf("err %s in getting handle of file \n", err)
		return
	}
	imgreader.fd = file
}

func (imgreader RawReader) CloseHandler() {
	if imgreader.fd != nil {
		imgreader.fd.Close()
	}
}

func (imgreader RawReader) ReadFile(physicalOffset int64, length int) ([]byte, error) {

	data := make([]byte, length)
	_, err := imgreader.fd.ReadAt(data, physicalOffset)
	logger.FSLogger.Info(fmt.Sprintf("raw read: offset %d len %d", physicalOffset, length))
	if err != nil {
		msg := fmt.Sprintf("error %s reading at offset %d", err, physicalOffset)
		logger.FSLogger.Error(msg)
		return nil, err
	}
	return data, nil

}

func (imgreader RawReader) GetDiskSize() int64 {
	finfo, err := os.Stat(imgreader.PathToEvidenceFiles)
	if err != nil {
		return -1
	}
	return finfo.Size()
}
