package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/msgbox/pkg/domain/model"
	"github.com/m-mizutani/msgbox/pkg/domain/types"
	"github.com/m-mizutani/msgbox/pkg/infra/staging"
	"github.com/m-mizutani/msgbox/pkg/usecase"
	"github.com/spf13/afero"
)

const testFolderID = "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d"

// MockExtractor writes a fixed tree into the output directory
type MockExtractor struct {
	fs    afero.Fs
	files map[string]string
	err   error
	calls []MockCall
}

type MockCall struct {
	Input  string
	OutDir string
}

func (m *MockExtractor) Extract(ctx context.Context, input, outDir string) error {
	m.calls = append(m.calls, MockCall{Input: input, OutDir: outDir})
	for rel, content := range m.files {
		path := filepath.Join(outDir, filepath.FromSlash(rel))
		if err := m.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := afero.WriteFile(m.fs, path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return m.err
}

func newStore(t *testing.T) (*staging.Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	store := staging.New(fs, "/srv", staging.WithIDGenerator(func() string { return testFolderID }))
	gt.NoError(t, store.Init())
	return store, fs
}

func sampleMessage() map[string]string {
	return map[string]string{
		"message.txt":           "Hello,\nsee attached.\n",
		"attachments/photo.jpg": "\xff\xd8\xff\xe0jpeg",
		"notes.txt":             "remember the milk",
	}
}

func TestExtractionUseCase_Extract_Success(t *testing.T) {
	ctx := context.Background()
	store, fs := newStore(t)
	mock := &MockExtractor{fs: fs, files: sampleMessage()}

	uc := usecase.NewExtraction(store, mock)
	manifest, err := uc.Extract(ctx, &model.Upload{
		Filename: "sample.msg",
		Content:  strings.NewReader("outlook container"),
	})
	gt.NoError(t, err)

	gt.Equal(t, manifest.FolderID, testFolderID)
	gt.A(t, manifest.Attachments).Length(3)

	gt.A(t, mock.calls).Length(1)
	gt.Equal(t, mock.calls[0].Input, filepath.Join("/srv", "uploads", testFolderID+".msg"))
	gt.Equal(t, mock.calls[0].OutDir, filepath.Join("/srv", "extracted", testFolderID))

	byPath := map[string]*model.Attachment{}
	for _, a := range manifest.Attachments {
		byPath[a.RelativePath] = a
	}

	photo := byPath["attachments/photo.jpg"]
	gt.NotNil(t, photo)
	gt.Equal(t, photo.MIME, "image/jpeg")
	gt.True(t, strings.HasSuffix(photo.PreviewURL, "attachments%2Fphoto.jpg"))
	gt.Equal(t, photo.Size, int64(len(sampleMessage()["attachments/photo.jpg"])))

	notes := byPath["notes.txt"]
	gt.NotNil(t, notes)
	gt.Equal(t, notes.MIME, "text/plain")
	gt.Equal(t, notes.DownloadURL, "/download/"+testFolderID+"/notes.txt")

	upload, err := afero.ReadFile(fs, mock.calls[0].Input)
	gt.NoError(t, err)
	gt.Equal(t, string(upload), "outlook container")
}

func TestExtractionUseCase_Extract_EmptyOutput(t *testing.T) {
	store, fs := newStore(t)
	uc := usecase.NewExtraction(store, &MockExtractor{fs: fs})

	manifest, err := uc.Extract(context.Background(), &model.Upload{Filename: "empty.msg", Content: strings.NewReader("x")})
	gt.NoError(t, err)
	gt.A(t, manifest.Attachments).Length(0)
}

func TestExtractionUseCase_Extract_ToolFailure(t *testing.T) {
	store, fs := newStore(t)
	toolErr := goerr.New("Error: file is not an OLE2 container", goerr.T(types.ErrTagExtraction))
	mock := &MockExtractor{
		fs:    fs,
		files: map[string]string{"partial.txt": "half"},
		err:   toolErr,
	}

	uc := usecase.NewExtraction(store, mock)
	_, err := uc.Extract(context.Background(), &model.Upload{Filename: "broken.msg", Content: strings.NewReader("x")})
	gt.Error(t, err)
	gt.True(t, types.HasTag(err, types.ErrTagExtraction))
	gt.True(t, errors.Is(err, toolErr))
	gt.S(t, err.Error()).Contains("not an OLE2 container")

	// partial output is not rolled back
	exists, err := afero.Exists(fs, filepath.Join("/srv", "extracted", testFolderID, "partial.txt"))
	gt.NoError(t, err)
	gt.True(t, exists)
}

func TestExtractionUseCase_Extract_NoUpload(t *testing.T) {
	store, fs := newStore(t)
	mock := &MockExtractor{fs: fs}
	uc := usecase.NewExtraction(store, mock)

	_, err := uc.Extract(context.Background(), nil)
	gt.Error(t, err)
	gt.True(t, types.HasTag(err, types.ErrTagValidation))
	gt.A(t, mock.calls).Length(0)
}
