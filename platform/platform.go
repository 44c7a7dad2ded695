package platform

import "errors"

var ErrPrivilegeRequired = errors.New("raw device access requires elevated privileges")

// LogicalDrive describes a mounted volume as reported by the operating
// system. The scanner only consumes the letter and the filesystem kind.
type LogicalDrive struct {
	Letter     string
	Filesystem string
	Label      string
	TotalSize  uint64
	FreeSize   uint64
}

type SignatureStatus int

const (
	SignatureError SignatureStatus = iota
	Signed
	Unsigned
)

func (status SignatureStatus) String() string {
	switch status {
	case Signed:
		return "Signed"
	case Unsigned:
		return "Unsigned"
	}
	return "Error"
}
