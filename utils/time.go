package utils

import (
	"time"
)

// FAT packed date: bits 15-9 year since 1980, 8-5 month, 4-0 day.
// FAT packed time: bits 15-11 hour, 10-5 minute, 4-0 seconds/2.
// Values outside the calendar range decode to the zero time, never to an error.
func ParseFATTimestamp(date uint16, timeval uint16) time.Time {
	year := int(date>>9) + 1980
	month := int(date >> 5 & 0x0F)
	day := int(date & 0x1F)

	hour := int(timeval >> 11)
	minute := int(timeval >> 5 & 0x3F)
	second := int(timeval&0x1F) * 2

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}
	}
	if hour > 23 || minute > 59 || second > 59 {
		return time.Time{}
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
}

// exFAT packed timestamp: bits 31-25 year since 1980, 24-21 month, 20-16 day,
// 15-11 hour, 10-5 minute, 4-0 seconds/2.
func ParseExfatTimestamp(ts uint32) time.Time {
	year := int(ts>>25) + 1980
	month := int(ts >> 21 & 0x0F)
	day := int(ts >> 16 & 0x1F)
	hour := int(ts >> 11 & 0x1F)
	minute := int(ts >> 5 & 0x3F)
	second := int(ts&0x1F) * 2

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}
	}
	if hour > 23 || minute > 59 || second > 59 {
		return time.Time{}
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
}

func ConvertToIsoTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}
