package constants

import (
	"mime"
	"path/filepath"
	"strings"
)

// AllowedExtensions holds the default allowed file extensions for receipt files.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"heic": {},
}

// contentTypes maps receipt extensions to their upload content type.
// mime.TypeByExtension covers the rest.
var contentTypes = map[string]string{
	"pdf":  "application/pdf",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"heic": "image/heic",
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// AllowedExt checks if a file extension is in the allowed receipt set.
func AllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

// ContentTypeForPath derives the declared content type from a file's
// extension. Returns "application/octet-stream" for unknown extensions.
func ContentTypeForPath(path string) string {
	ext := NormalizeExt(filepath.Ext(path))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension("." + ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
