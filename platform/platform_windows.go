//go:build windows

package platform

import (
	"fmt"
	"unsafe"

	"github.com/aarsakian/FATForensics/logger"
	"golang.org/x/sys/windows"
)

var (
	wintrust               = windows.NewLazySystemDLL("wintrust.dll")
	procWinVerifyTrust     = wintrust.NewProc("WinVerifyTrust")
	driveActionVerify      = windows.GUID{Data1: 0x00aac56b, Data2: 0xcd44, Data3: 0x11d0, Data4: [8]byte{0x8c, 0xc2, 0x00, 0xc0, 0x4f, 0xc2, 0x95, 0xee}}
	trustErrorNoSignature  = uintptr(0x800B0100) // TRUST_E_NOSIGNATURE
	trustErrorSubjectForm  = uintptr(0x800B0003) // TRUST_E_SUBJECT_FORM_UNKNOWN
	trustErrorExplicitDeny = uintptr(0x800B0111) // TRUST_E_EXPLICIT_DISTRUST
)

// IsElevated reports whether the process token carries administrator rights,
// required before a \\.\ device handle can be opened.
func IsElevated() bool {
	var token windows.Token
	err := windows.OpenProcessToken(windows.CurrentProcess(), windows.TOKEN_QUERY, &token)
	if err != nil {
		logger.FSLogger.Error(fmt.Sprintf("token query failed %v", err))
		return false
	}
	defer token.Close()
	return token.IsElevated()
}

func ListLogicalDrives() ([]LogicalDrive, error) {
	var drives []LogicalDrive

	bitmask, err := windows.GetLogicalDrives()
	if err != nil {
		logger.FSLogger.Error(err)
		return nil, err
	}

	for letter := 'A'; letter <= 'Z'; letter++ {
		if bitmask&(1<<uint(letter-'A')) == 0 {
			continue
		}
		root, _ := windows.UTF16PtrFromString(string(letter) + ":\\")

		volumeName := make([]uint16, windows.MAX_PATH+1)
		fsName := make([]uint16, windows.MAX_PATH+1)
		var serial, maxComponentLen, fsFlags uint32

		err := windows.GetVolumeInformation(root, &volumeName[0], uint32(len(volumeName)),
			&serial, &maxComponentLen, &fsFlags, &fsName[0], uint32(len(fsName)))
		if err != nil {
			continue
		}

		var freeBytes, totalBytes, totalFreeBytes uint64
		windows.GetDiskFreeSpaceEx(root, &freeBytes, &totalBytes, &totalFreeBytes)

		drives = append(drives, LogicalDrive{
			Letter:     string(letter),
			Filesystem: windows.UTF16ToString(fsName),
			Label:      windows.UTF16ToString(volumeName),
			TotalSize:  totalBytes,
			FreeSize:   totalFreeBytes,
		})
	}
	return drives, nil
}

type winTrustFileInfo struct {
	cbStruct     uint32
	filePath     *uint16
	hFile        uintptr
	knownSubject *windows.GUID
}

type winTrustData struct {
	cbStruct           uint32
	policyCallbackData uintptr
	sipClientData      uintptr
	uiChoice           uint32
	revocationChecks   uint32
	unionChoice        uint32
	fileInfo           *winTrustFileInfo
	stateAction        uint32
	stateData          uintptr
	urlReference       *uint16
	provFlags          uint32
	uiContext          uint32
	signatureSettings  uintptr
}

// VerifySignature returns the Authenticode verdict for a path. The verdict is
// presentation only, recovery never consults it.
func VerifySignature(path string) SignatureStatus {
	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return SignatureError
	}

	fileInfo := winTrustFileInfo{filePath: pathPtr}
	fileInfo.cbStruct = uint32(unsafe.Sizeof(fileInfo))

	data := winTrustData{
		uiChoice:         2, // WTD_UI_NONE
		revocationChecks: 0, // WTD_REVOKE_NONE
		unionChoice:      1, // WTD_CHOICE_FILE
		fileInfo:         &fileInfo,
	}
	data.cbStruct = uint32(unsafe.Sizeof(data))

	ret, _, _ := procWinVerifyTrust.Call(0, uintptr(unsafe.Pointer(&driveActionVerify)),
		uintptr(unsafe.Pointer(&data)))

	switch ret {
	case 0:
		return Signed
	case trustErrorNoSignature, trustErrorSubjectForm, trustErrorExplicitDeny:
		return Unsigned
	}
	return SignatureError
}
