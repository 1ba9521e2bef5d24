package staging

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/msgbox/pkg/domain/model"
	"github.com/m-mizutani/msgbox/pkg/domain/types"
	"github.com/m-mizutani/msgbox/pkg/utils/logging"
	"github.com/spf13/afero"
)

// List returns every regular file below root with its path relative to root.
// Directories are traversed but never emitted. Callers must not rely on the order.
func (s *Store) List(ctx context.Context, root string) ([]*model.FileEntry, error) {
	info, err := s.fs.Stat(root)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read directory", goerr.T(types.ErrTagIO), goerr.V("root", root))
	}
	if !info.IsDir() {
		return nil, goerr.New("not a directory", goerr.T(types.ErrTagIO), goerr.V("root", root))
	}

	var entries []*model.FileEntry
	walkErr := afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return goerr.Wrap(err, "failed to traverse directory", goerr.T(types.ErrTagIO), goerr.V("path", path))
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return goerr.Wrap(err, "failed to compute relative path", goerr.T(types.ErrTagIO), goerr.V("path", path))
		}

		entries = append(entries, &model.FileEntry{
			AbsolutePath: path,
			RelativePath: rel,
			Size:         info.Size(),
		})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	logging.From(ctx).Debug("Listed extracted files", "root", root, "file_count", len(entries))
	return entries, nil
}
