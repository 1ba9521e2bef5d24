package model

import (
	"path/filepath"
	"strings"
)

const (
	MIMEOctetStream = "application/octet-stream"
	MIMEPDF         = "application/pdf"
	MIMEText        = "text/plain"
)

// mimeTable maps lower-case extensions to content types. HTML and RTF are
// deliberately reported as text/plain so previews never render markup.
var mimeTable = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".pdf":  MIMEPDF,
	".txt":  MIMEText,
	".log":  MIMEText,
	".rtf":  MIMEText,
	".html": MIMEText,
}

// MIMEType infers a content type from the file extension only
func MIMEType(name string) string {
	if mime, ok := mimeTable[strings.ToLower(filepath.Ext(name))]; ok {
		return mime
	}
	return MIMEOctetStream
}

// IsImage reports whether name has one of the previewable image extensions
func IsImage(name string) bool {
	return strings.HasPrefix(MIMEType(name), "image/")
}
