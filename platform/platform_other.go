//go:build !windows

package platform

import (
	"errors"
	"os"
)

func IsElevated() bool {
	return os.Geteuid() == 0
}

// Drive letters are a windows concept; other platforms address volumes by
// device node and enumerate nothing here.
func ListLogicalDrives() ([]LogicalDrive, error) {
	return nil, errors.New("logical drive enumeration is windows only")
}

func VerifySignature(path string) SignatureStatus {
	return SignatureError
}
