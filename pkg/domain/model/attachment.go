package model

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// FileEntry is one regular file found under an extraction folder
type FileEntry struct {
	AbsolutePath string // Path on the staging filesystem
	RelativePath string // Path relative to the folder root, OS separators
	Size         int64  // Size in bytes
}

// Attachment is the client-facing descriptor of an extracted file
type Attachment struct {
	RelativePath string `json:"relativePath"`
	Size         int64  `json:"size"`
	MIME         string `json:"mime"`
	PreviewURL   string `json:"previewUrl"`
	DownloadURL  string `json:"downloadUrl"`
}

// Manifest is the result of one upload and extraction
type Manifest struct {
	FolderID    string        `json:"folderId"`
	Attachments []*Attachment `json:"attachments"`
}

// NewAttachment builds the descriptor for entry inside folderID
func NewAttachment(folderID string, entry *FileEntry) *Attachment {
	rel := filepath.ToSlash(entry.RelativePath)
	escaped := url.PathEscape(rel)

	return &Attachment{
		RelativePath: rel,
		Size:         entry.Size,
		MIME:         MIMEType(rel),
		PreviewURL:   path.Join("/preview", url.PathEscape(folderID)) + "/" + escaped,
		DownloadURL:  path.Join("/download", url.PathEscape(folderID)) + "/" + escaped,
	}
}

// NewAttachments maps every entry to a descriptor, keeping the listing order
func NewAttachments(folderID string, entries []*FileEntry) []*Attachment {
	attachments := make([]*Attachment, 0, len(entries))
	for _, entry := range entries {
		attachments = append(attachments, NewAttachment(folderID, entry))
	}
	return attachments
}

// SlashPath converts a client supplied relative path into forward slash form
func SlashPath(rel string) string {
	return strings.ReplaceAll(rel, `\`, "/")
}
