package model

import (
	"io"
	"time"
)

// FileContent is an opened staged file ready to be streamed
type FileContent struct {
	Name    string // Base name presented to the client
	MIME    string
	Size    int64
	ModTime time.Time
	Content io.ReadSeekCloser
}

// Close releases the underlying file
func (c *FileContent) Close() error {
	if c == nil || c.Content == nil {
		return nil
	}
	return c.Content.Close()
}

// PreviewKind tells how a preview has to be rendered
type PreviewKind string

const (
	PreviewImage PreviewKind = "image"
	PreviewText  PreviewKind = "text"
)

// Preview is either an image stream or decoded text
type Preview struct {
	Kind PreviewKind
	File *FileContent // set for PreviewImage
	Text string       // set for PreviewText
}

// Upload is an incoming email container file
type Upload struct {
	Filename string // Original client side name, only its extension is kept
	Content  io.Reader
}

// SweepResult summarizes one retention pass
type SweepResult struct {
	Removed []string // Paths removed from the staging area
}
