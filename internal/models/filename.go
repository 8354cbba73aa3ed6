package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	RecordExt    = ".json"
	LegacyExt    = ".txt"
	HeaderSuffix = "_Header"
)

func RecordFileName(key string, modified DateTime) string {
	return fmt.Sprintf("%s_%s%s", key, modified.Stamp(), RecordExt)
}

func HeaderFileName(key string, modified DateTime) string {
	return fmt.Sprintf("%s_%s%s%s", key, modified.Stamp(), HeaderSuffix, RecordExt)
}

// FileName is a parsed record or header filename.
type FileName struct {
	Key    string
	Stamp  string
	Header bool
	Ext    string
}

// ParseFileName splits a record, header or legacy filename into its parts.
// The key is everything before the last underscore of the stem, so keys may
// contain underscores themselves.
func ParseFileName(name string) (FileName, bool) {
	name = filepath.Base(name)
	ext := filepath.Ext(name)
	if ext != RecordExt && ext != LegacyExt {
		return FileName{}, false
	}
	stem := strings.TrimSuffix(name, ext)

	header := false
	if strings.HasSuffix(stem, HeaderSuffix) {
		header = true
		stem = strings.TrimSuffix(stem, HeaderSuffix)
	}

	i := strings.LastIndex(stem, "_")
	if i < 0 {
		return FileName{}, false
	}
	return FileName{Key: stem[:i], Stamp: stem[i+1:], Header: header, Ext: ext}, true
}

func IsRecordFile(name string) bool {
	f, ok := ParseFileName(name)
	return ok && !f.Header && f.Ext == RecordExt
}

func IsHeaderFile(name string) bool {
	f, ok := ParseFileName(name)
	return ok && f.Header && f.Ext == RecordExt
}

// RecordPathFor maps a header path to the full record path next to it.
// Other paths are returned unchanged.
func RecordPathFor(path string) string {
	if strings.HasSuffix(path, HeaderSuffix+RecordExt) {
		return strings.TrimSuffix(path, HeaderSuffix+RecordExt) + RecordExt
	}
	return path
}

// HeaderPathFor maps a full record path to its header path.
func HeaderPathFor(path string) string {
	if strings.HasSuffix(path, HeaderSuffix+RecordExt) {
		return path
	}
	return strings.TrimSuffix(path, RecordExt) + HeaderSuffix + RecordExt
}
