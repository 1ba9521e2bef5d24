package model_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/msgbox/pkg/domain/model"
)

func TestNewAttachment(t *testing.T) {
	entry := &model.FileEntry{
		AbsolutePath: "/data/extracted/abc/attachments/photo.jpg",
		RelativePath: "attachments/photo.jpg",
		Size:         42,
	}

	a := model.NewAttachment("abc", entry)

	gt.Equal(t, a.RelativePath, "attachments/photo.jpg")
	gt.Equal(t, a.Size, int64(42))
	gt.Equal(t, a.MIME, "image/jpeg")
	gt.Equal(t, a.PreviewURL, "/preview/abc/attachments%2Fphoto.jpg")
	gt.Equal(t, a.DownloadURL, "/download/abc/attachments%2Fphoto.jpg")
}

func TestNewAttachment_EscapesSegments(t *testing.T) {
	a := model.NewAttachment("abc", &model.FileEntry{RelativePath: "Re: hello/50% off #1.txt"})

	gt.True(t, strings.HasPrefix(a.PreviewURL, "/preview/abc/"))
	encoded := strings.TrimPrefix(a.PreviewURL, "/preview/abc/")
	gt.False(t, strings.Contains(encoded, "/"))
	gt.False(t, strings.Contains(encoded, " "))
	gt.False(t, strings.Contains(encoded, "#"))
	gt.True(t, strings.Contains(encoded, "50%25"))
}

func TestNewAttachments(t *testing.T) {
	entries := []*model.FileEntry{
		{RelativePath: "message.txt", Size: 1},
		{RelativePath: "attachments/photo.jpg", Size: 2},
		{RelativePath: "notes.txt", Size: 3},
	}

	attachments := model.NewAttachments("id", entries)
	gt.A(t, attachments).Length(3)
	gt.Equal(t, attachments[1].MIME, "image/jpeg")
	gt.Equal(t, attachments[2].MIME, "text/plain")
}

func TestSlashPath(t *testing.T) {
	gt.Equal(t, model.SlashPath(`attachments\photo.jpg`), "attachments/photo.jpg")
	gt.Equal(t, model.SlashPath("a/b"), "a/b")
}
