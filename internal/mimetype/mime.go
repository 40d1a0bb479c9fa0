// Package mimetype infers a Content-Type from a file extension using a
// two-tier lookup: a fast-path switch over a handful of common
// extensions, falling back to a binary search over a sorted table,
// falling back again to application/octet-stream.
//
// The table here covers common web extensions with the same lookup
// shape as a full MIME table, not an exhaustive one — it is treated as
// an implementation detail of a pure lookup function.
package mimetype

import (
	"sort"
	"strings"
)

const fallback = "application/octet-stream"

// entry is one (extension, MIME) pair in the sorted fallback table.
type entry struct {
	ext, mime string
}

// table must stay sorted by ext for the binary search in Lookup.
var table = func() []entry {
	e := []entry{
		{".avi", "video/x-msvideo"},
		{".bmp", "image/bmp"},
		{".csv", "text/csv"},
		{".doc", "application/msword"},
		{".eot", "application/vnd.ms-fontobject"},
		{".gif", "image/gif"},
		{".gz", "application/gzip"},
		{".ico", "image/x-icon"},
		{".jpeg", "image/jpeg"},
		{".json", "application/json"},
		{".mjs", "text/javascript"},
		{".mp3", "audio/mpeg"},
		{".mp4", "video/mp4"},
		{".otf", "font/otf"},
		{".pdf", "application/pdf"},
		{".php", "application/x-httpd-php"},
		{".rtf", "application/rtf"},
		{".svg", "image/svg+xml"},
		{".ttf", "font/ttf"},
		{".wasm", "application/wasm"},
		{".wav", "audio/wav"},
		{".webm", "video/webm"},
		{".webp", "image/webp"},
		{".woff", "font/woff"},
		{".woff2", "font/woff2"},
		{".xml", "application/xml"},
		{".zip", "application/zip"},
	}
	sort.Slice(e, func(i, j int) bool { return e[i].ext < e[j].ext })
	return e
}()

// Lookup infers a MIME type from path's extension.
func Lookup(path string) string {
	ext := extOf(path)
	if ext == "" {
		return fallback
	}

	if m, ok := fastPath(ext); ok {
		return m
	}

	i := sort.Search(len(table), func(i int) bool { return table[i].ext >= ext })
	if i < len(table) && table[i].ext == ext {
		return table[i].mime
	}
	return fallback
}

// fastPath switches on the four-character extension tag for the
// handful of extensions common enough to skip the table lookup
// entirely.
func fastPath(ext string) (string, bool) {
	var tag [4]byte
	copy(tag[:], ext)

	switch string(tag[:]) {
	case ".css":
		return "text/css", true
	case ".htm":
		return "text/html", true
	case ".jpg":
		return "image/jpeg", true
	case ".js\x00":
		return "text/javascript", true
	case ".png":
		return "image/png", true
	case ".txt":
		return "text/plain", true
	}

	return "", false
}

func extOf(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return strings.ToLower(path[i:])
}
