package staging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/msgbox/pkg/domain/model"
	"github.com/m-mizutani/msgbox/pkg/domain/types"
	"github.com/m-mizutani/msgbox/pkg/utils/logging"
	"github.com/spf13/afero"
)

const (
	uploadsDirName   = "uploads"
	extractedDirName = "extracted"
	zipExt           = ".zip"
)

// Store owns the on-disk staging area:
//
//	<base>/uploads/<generatedName>
//	<base>/extracted/<folderId>/...
//	<base>/extracted/<folderId>.zip
type Store struct {
	fs           afero.Fs
	uploadsDir   string
	extractedDir string
	newID        func() string
}

// Option configures a Store
type Option func(*Store)

// WithIDGenerator replaces the folder id generator
func WithIDGenerator(f func() string) Option {
	return func(s *Store) {
		s.newID = f
	}
}

// New creates a Store rooted at baseDir on fs
func New(fs afero.Fs, baseDir string, opts ...Option) *Store {
	base := filepath.Clean(baseDir)
	s := &Store{
		fs:           fs,
		uploadsDir:   filepath.Join(base, uploadsDirName),
		extractedDir: filepath.Join(base, extractedDirName),
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewOS creates a Store on the real filesystem. baseDir is made absolute because
// the external extraction tool receives paths from it.
func NewOS(baseDir string, opts ...Option) (*Store, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve data directory", goerr.V("data_dir", baseDir))
	}
	return New(afero.NewOsFs(), abs, opts...), nil
}

// Fs exposes the underlying filesystem
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// UploadsDir returns the directory holding raw uploads
func (s *Store) UploadsDir() string {
	return s.uploadsDir
}

// ExtractedDir returns the directory holding extraction folders
func (s *Store) ExtractedDir() string {
	return s.extractedDir
}

// Init creates the staging directories
func (s *Store) Init() error {
	for _, dir := range []string{s.uploadsDir, s.extractedDir} {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return goerr.Wrap(err, "failed to create staging directory", goerr.T(types.ErrTagIO), goerr.V("dir", dir))
		}
	}
	return nil
}

// SaveUpload stores r under a freshly generated name and returns the folder id
// derived from it together with the stored file path.
func (s *Store) SaveUpload(ctx context.Context, upload *model.Upload) (string, string, error) {
	if err := s.fs.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return "", "", goerr.Wrap(err, "failed to create uploads directory", goerr.T(types.ErrTagIO))
	}

	folderID := s.newID()
	if err := model.ValidateFolderID(folderID); err != nil {
		return "", "", goerr.Wrap(err, "generated folder id is not usable")
	}

	name := folderID + strings.ToLower(filepath.Ext(filepath.Base(model.SlashPath(upload.Filename))))
	dst := filepath.Join(s.uploadsDir, name)

	f, err := s.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", "", goerr.Wrap(err, "failed to create upload file", goerr.T(types.ErrTagIO), goerr.V("path", dst))
	}
	defer f.Close()

	n, err := io.Copy(f, upload.Content)
	if err != nil {
		_ = s.fs.Remove(dst)
		return "", "", goerr.Wrap(err, "failed to store upload", goerr.T(types.ErrTagIO), goerr.V("path", dst))
	}

	logging.From(ctx).Debug("Stored upload",
		"folder_id", folderID,
		"path", dst,
		"size_bytes", n,
	)

	return folderID, dst, nil
}

// FolderDir returns the extraction directory of folderID
func (s *Store) FolderDir(folderID string) (string, error) {
	if err := model.ValidateFolderID(folderID); err != nil {
		return "", err
	}
	return filepath.Join(s.extractedDir, folderID), nil
}

// CreateFolder creates the extraction directory of folderID. Existing
// directories are reused.
func (s *Store) CreateFolder(folderID string) (string, error) {
	dir, err := s.FolderDir(folderID)
	if err != nil {
		return "", err
	}
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", goerr.Wrap(err, "failed to create output directory", goerr.T(types.ErrTagIO), goerr.V("dir", dir))
	}
	return dir, nil
}

// FolderExists reports whether folderID has an extraction directory
func (s *Store) FolderExists(folderID string) (bool, error) {
	dir, err := s.FolderDir(folderID)
	if err != nil {
		return false, err
	}
	ok, err := afero.DirExists(s.fs, dir)
	if err != nil {
		return false, goerr.Wrap(err, "failed to check folder", goerr.T(types.ErrTagIO), goerr.V("dir", dir))
	}
	return ok, nil
}

// Resolve joins a decoded relative path to the folder root and rejects any
// result that escapes the root.
func (s *Store) Resolve(folderID, rel string) (string, error) {
	root, err := s.FolderDir(folderID)
	if err != nil {
		return "", err
	}
	return resolveWithin(root, rel)
}

func resolveWithin(root, rel string) (string, error) {
	if strings.ContainsRune(rel, 0) {
		return "", goerr.New("invalid path", goerr.T(types.ErrTagValidation), goerr.V("path", rel))
	}

	cleanRoot := filepath.Clean(root)
	resolved := filepath.Join(cleanRoot, filepath.FromSlash(model.SlashPath(rel)))
	if resolved == cleanRoot || !strings.HasPrefix(resolved, cleanRoot+string(filepath.Separator)) {
		return "", goerr.New("path escapes folder root", goerr.T(types.ErrTagValidation), goerr.V("path", rel))
	}
	return resolved, nil
}

// StatFile returns info of a regular file. Missing paths and directories are
// reported as not found.
func (s *Store) StatFile(path string) (os.FileInfo, error) {
	info, err := s.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(err, "file not found", goerr.T(types.ErrTagNotFound), goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to stat file", goerr.T(types.ErrTagIO), goerr.V("path", path))
	}
	if !info.Mode().IsRegular() {
		return nil, goerr.New("file not found", goerr.T(types.ErrTagNotFound), goerr.V("path", path))
	}
	return info, nil
}

// Open opens a staged regular file for streaming
func (s *Store) Open(path string) (*model.FileContent, error) {
	info, err := s.StatFile(path)
	if err != nil {
		return nil, err
	}

	f, err := s.fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(err, "file not found", goerr.T(types.ErrTagNotFound), goerr.V("path", path))
		}
		return nil, goerr.Wrap(err, "failed to open file", goerr.T(types.ErrTagIO), goerr.V("path", path))
	}

	return &model.FileContent{
		Name:    filepath.Base(path),
		MIME:    model.MIMEType(path),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Content: f,
	}, nil
}

// ReadFile reads a staged regular file entirely
func (s *Store) ReadFile(path string) ([]byte, error) {
	if _, err := s.StatFile(path); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, goerr.Wrap(err, "cannot read file", goerr.T(types.ErrTagRead), goerr.V("path", path))
	}
	return data, nil
}

// BundlePath returns where the temporary zip of folderID is written
func (s *Store) BundlePath(folderID string) (string, error) {
	if err := model.ValidateFolderID(folderID); err != nil {
		return "", err
	}
	return filepath.Join(s.extractedDir, folderID+zipExt), nil
}

// Remove deletes a single staged file
func (s *Store) Remove(path string) error {
	if err := s.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return goerr.Wrap(err, "failed to remove file", goerr.T(types.ErrTagIO), goerr.V("path", path))
	}
	return nil
}
