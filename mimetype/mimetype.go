// Package mimetype maps file extensions to MIME type strings.
package mimetype

import (
	"path/filepath"
	"strings"
)

// Fallback is returned for unknown or missing extensions.
const Fallback = "application/octet-stream"

var byExtension = map[string]string{
	"html":  "text/html",
	"htm":   "text/html",
	"css":   "text/css",
	"js":    "application/javascript",
	"json":  "application/json",
	"png":   "image/png",
	"jpg":   "image/jpeg",
	"jpeg":  "image/jpeg",
	"gif":   "image/gif",
	"svg":   "image/svg+xml",
	"ico":   "image/x-icon",
	"txt":   "text/plain",
	"wasm":  "application/wasm",
	"woff":  "font/woff",
	"woff2": "font/woff2",
	"ttf":   "font/ttf",
	"otf":   "font/otf",
	"mp4":   "video/mp4",
	"webm":  "video/webm",
	"ogg":   "audio/ogg",
	"mp3":   "audio/mpeg",
}

// ForPath returns the MIME type for the given file path based on its
// extension. Matching is case-insensitive; only the last extension of a
// multi-extension name is considered (archive.tar.gz matches "gz").
func ForPath(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return Fallback
	}

	if mimeType, ok := byExtension[strings.ToLower(ext)]; ok {
		return mimeType
	}
	return Fallback
}
