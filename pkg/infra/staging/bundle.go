package staging

import (
	"archive/zip"
	"compress/flate"
	"context"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/msgbox/pkg/domain/model"
	"github.com/m-mizutani/msgbox/pkg/domain/types"
	"github.com/m-mizutani/msgbox/pkg/utils/logging"
)

// BundleItem is one requested archive member
type BundleItem struct {
	Name string // Name inside the archive, forward slashes
	Path string // Resolved source path
}

// WriteBundle writes a zip of items to the temporary bundle path of folderID
// using maximum compression. Items whose source is missing are skipped. On
// failure the partial archive is removed.
func (s *Store) WriteBundle(ctx context.Context, folderID string, items []BundleItem) (*model.Bundle, error) {
	logger := logging.From(ctx)

	dst, err := s.BundlePath(folderID)
	if err != nil {
		return nil, err
	}

	out, err := s.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create archive", goerr.T(types.ErrTagZip), goerr.V("path", dst))
	}

	bundle := &model.Bundle{
		FolderID: folderID,
		Path:     dst,
	}

	zw := zip.NewWriter(out)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	fail := func(err error) (*model.Bundle, error) {
		_ = zw.Close()
		_ = out.Close()
		if rmErr := s.fs.Remove(dst); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.Warn("Failed to remove partial archive", "path", dst, "error", rmErr)
		}
		return nil, err
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.Name]; ok {
			continue
		}
		seen[item.Name] = struct{}{}

		info, err := s.fs.Stat(item.Path)
		if err != nil || !info.Mode().IsRegular() {
			bundle.Skipped = append(bundle.Skipped, item.Name)
			continue
		}

		if err := s.addToArchive(zw, item, info); err != nil {
			return fail(err)
		}
		bundle.Entries = append(bundle.Entries, item.Name)
	}

	if err := zw.Close(); err != nil {
		return fail(goerr.Wrap(err, "failed to finalize archive", goerr.T(types.ErrTagZip), goerr.V("path", dst)))
	}
	if err := out.Close(); err != nil {
		return fail(goerr.Wrap(err, "failed to close archive", goerr.T(types.ErrTagZip), goerr.V("path", dst)))
	}

	logger.Debug("Wrote zip bundle",
		"folder_id", folderID,
		"path", dst,
		"entries", len(bundle.Entries),
		"skipped", len(bundle.Skipped),
	)

	return bundle, nil
}

func (s *Store) addToArchive(zw *zip.Writer, item BundleItem, info os.FileInfo) error {
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return goerr.Wrap(err, "failed to build zip header", goerr.T(types.ErrTagZip), goerr.V("name", item.Name))
	}
	header.Name = item.Name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return goerr.Wrap(err, "failed to add archive entry", goerr.T(types.ErrTagZip), goerr.V("name", item.Name))
	}

	src, err := s.fs.Open(item.Path)
	if err != nil {
		return goerr.Wrap(err, "failed to open archive source", goerr.T(types.ErrTagZip), goerr.V("path", item.Path))
	}
	defer src.Close()

	if _, err := io.Copy(w, src); err != nil {
		return goerr.Wrap(err, "failed to write archive entry", goerr.T(types.ErrTagZip), goerr.V("name", item.Name))
	}
	return nil
}
