package utils

import (
	"bytes"
	"crypto/md5"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/encoding/unicode"
)

// AskedFile carries recovered content from the disk worker to the exporter.
type AskedFile struct {
	Fname   string
	Content []byte
	Id      int
	Partial bool
}

var bufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

func GetBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

func PutBuffer(buf *bytes.Buffer) {
	buf.Reset()
	bufferPool.Put(buf)
}

// Unmarshal populates a struct from a little endian byte stream, field by
// field in declaration order. Supported kinds are uint8-uint64 and fixed
// byte arrays; remaining fields (pointers, slices, structs) terminate the walk.
func Unmarshal(data []byte, v any) error {
	structValPtr := reflect.ValueOf(v)
	structType := reflect.TypeOf(v)
	if structType.Kind() != reflect.Ptr || structType.Elem().Kind() != reflect.Struct {
		return errors.New("must be a pointer to a struct")
	}

	idx := 0
	for i := 0; i < structValPtr.Elem().NumField(); i++ {
		field := structValPtr.Elem().Field(i)
		switch field.Kind() {
		case reflect.Uint8:
			if idx+1 > len(data) {
				return errors.New("data exhausted")
			}
			field.SetUint(uint64(data[idx]))
			idx += 1
		case reflect.Uint16:
			if idx+2 > len(data) {
				return errors.New("data exhausted")
			}
			field.SetUint(uint64(binary.LittleEndian.Uint16(data[idx : idx+2])))
			idx += 2
		case reflect.Uint32:
			if idx+4 > len(data) {
				return errors.New("data exhausted")
			}
			field.SetUint(uint64(binary.LittleEndian.Uint32(data[idx : idx+4])))
			idx += 4
		case reflect.Uint64:
			if idx+8 > len(data) {
				return errors.New("data exhausted")
			}
			field.SetUint(binary.LittleEndian.Uint64(data[idx : idx+8]))
			idx += 8
		case reflect.Array:
			length := field.Len()
			if idx+length > len(data) {
				return errors.New("data exhausted")
			}
			for j := 0; j < length; j++ {
				field.Index(j).SetUint(uint64(data[idx+j]))
			}
			idx += length
		default:
			return nil
		}
	}
	return nil
}

func DecodeUTF16(data []byte) string {
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	decoded, err := decoder.Bytes(data)
	if err != nil {
		return ""
	}
	return string(decoded)
}

func Hexify(data []byte) string {
	return hex.EncodeToString(data)
}

func Filter[T any](items []T, keep func(T) bool) []T {
	var filtered []T
	for _, item := range items {
		if keep(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

func GetEntries(selected string) []string {
	return strings.Split(selected, ",")
}

func GetEntriesInt(selected string) []int {
	var entries []int
	if selected == "" {
		return entries
	}
	for _, entry := range strings.Split(selected, ",") {
		val, err := strconv.Atoi(entry)
		if err != nil {
			continue
		}
		entries = append(entries, val)
	}
	return entries
}

func GetMD5(data []byte) string {
	digest := md5.Sum(data)
	return hex.EncodeToString(digest[:])
}

func GetSHA1(data []byte) string {
	digest := sha1.Sum(data)
	return hex.EncodeToString(digest[:])
}

func WriteFile(fullpath string, data []byte) {
	err := os.WriteFile(fullpath, data, 0660)
	if err != nil {
		fmt.Printf("error %s writing %s\n", err, fullpath)
	}
}
