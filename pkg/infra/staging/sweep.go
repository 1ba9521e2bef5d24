package staging

import (
	"context"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/msgbox/pkg/domain/types"
	"github.com/m-mizutani/msgbox/pkg/utils/logging"
	"github.com/spf13/afero"
)

// Sweep removes uploads, extraction folders and leftover bundles whose
// modification time is before cutoff. Only direct children of the staging
// directories are considered. Individual removal errors are logged and the
// sweep continues.
func (s *Store) Sweep(ctx context.Context, cutoff time.Time) ([]string, error) {
	logger := logging.From(ctx)
	var removed []string

	for _, dir := range []string{s.uploadsDir, s.extractedDir} {
		exists, err := afero.DirExists(s.fs, dir)
		if err != nil {
			return removed, goerr.Wrap(err, "failed to check staging directory", goerr.T(types.ErrTagIO), goerr.V("dir", dir))
		}
		if !exists {
			continue
		}

		children, err := afero.ReadDir(s.fs, dir)
		if err != nil {
			return removed, goerr.Wrap(err, "failed to read staging directory", goerr.T(types.ErrTagIO), goerr.V("dir", dir))
		}

		for _, child := range children {
			if !child.ModTime().Before(cutoff) {
				continue
			}

			path := filepath.Join(dir, child.Name())
			if err := s.fs.RemoveAll(path); err != nil {
				logger.Warn("Failed to remove expired staging entry", "path", path, "error", err)
				continue
			}
			removed = append(removed, path)
		}
	}

	return removed, nil
}
