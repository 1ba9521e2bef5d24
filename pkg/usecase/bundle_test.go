package usecase_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/msgbox/pkg/domain/model"
	"github.com/m-mizutani/msgbox/pkg/domain/types"
	"github.com/m-mizutani/msgbox/pkg/usecase"
	"github.com/spf13/afero"
)

func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	gt.NoError(t, err)

	files := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		gt.NoError(t, err)
		content, err := io.ReadAll(rc)
		gt.NoError(t, err)
		gt.NoError(t, rc.Close())
		files[f.Name] = string(content)
	}
	return files
}

func TestBundleUseCase_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store, fs := newStore(t)
	originals := sampleMessage()
	seedFolder(t, store, fs, originals)
	uc := usecase.NewBundle(store)

	bundle, err := uc.Create(ctx, &model.ZipRequest{
		FolderID: testFolderID,
		Files:    []string{"notes.txt", "attachments%2Fphoto.jpg", "missing.txt"},
	})
	gt.NoError(t, err)
	gt.A(t, bundle.Entries).Length(2)
	gt.A(t, bundle.Skipped).Length(1)
	gt.Equal(t, bundle.Skipped[0], "missing.txt")

	content, err := uc.Open(ctx, bundle)
	gt.NoError(t, err)
	gt.Equal(t, content.Name, "download.zip")
	gt.Equal(t, content.MIME, "application/zip")

	data, err := io.ReadAll(content.Content)
	gt.NoError(t, err)
	gt.NoError(t, content.Close())

	files := readZip(t, data)
	gt.Equal(t, len(files), 2)
	gt.Equal(t, files["notes.txt"], originals["notes.txt"])
	gt.Equal(t, files["attachments/photo.jpg"], originals["attachments/photo.jpg"])

	uc.Discard(ctx, bundle)
	exists, err := afero.Exists(fs, bundle.Path)
	gt.NoError(t, err)
	gt.False(t, exists)

	// discarding twice is harmless
	uc.Discard(ctx, bundle)
}

func TestBundleUseCase_Create_Errors(t *testing.T) {
	ctx := context.Background()
	store, fs := newStore(t)
	seedFolder(t, store, fs, sampleMessage())
	uc := usecase.NewBundle(store)

	tests := []struct {
		name string
		req  *model.ZipRequest
	}{
		{name: "nil request", req: nil},
		{name: "missing folder id", req: &model.ZipRequest{Files: []string{"notes.txt"}}},
		{name: "no files", req: &model.ZipRequest{FolderID: testFolderID, Files: []string{}}},
		{name: "unknown folder", req: &model.ZipRequest{FolderID: "00000000-0000-0000-0000-000000000000", Files: []string{"notes.txt"}}},
		{name: "traversal", req: &model.ZipRequest{FolderID: testFolderID, Files: []string{"..%2F..%2Fsecret.txt"}}},
		{name: "bad encoding", req: &model.ZipRequest{FolderID: testFolderID, Files: []string{"100%.txt"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Create(ctx, tt.req)
			gt.Error(t, err)
			gt.True(t, types.HasTag(err, types.ErrTagValidation))
		})
	}
}

func TestBundleUseCase_Create_AllMissing(t *testing.T) {
	ctx := context.Background()
	store, fs := newStore(t)
	seedFolder(t, store, fs, sampleMessage())
	uc := usecase.NewBundle(store)

	bundle, err := uc.Create(ctx, &model.ZipRequest{FolderID: testFolderID, Files: []string{"nope.txt"}})
	gt.NoError(t, err)
	gt.A(t, bundle.Entries).Length(0)

	data, err := afero.ReadFile(fs, bundle.Path)
	gt.NoError(t, err)
	gt.Equal(t, len(readZip(t, data)), 0)
}
