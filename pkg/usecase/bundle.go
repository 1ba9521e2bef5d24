package usecase

import (
	"context"
	"net/url"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/msgbox/pkg/domain/interfaces"
	"github.com/m-mizutani/msgbox/pkg/domain/model"
	"github.com/m-mizutani/msgbox/pkg/domain/types"
	"github.com/m-mizutani/msgbox/pkg/infra/staging"
	"github.com/m-mizutani/msgbox/pkg/utils/logging"
)

type bundleUseCase struct {
	store *staging.Store
}

// NewBundle creates a new instance of BundleUseCase
func NewBundle(store *staging.Store) interfaces.BundleUseCase {
	return &bundleUseCase{store: store}
}

// Create decodes and resolves every requested path, then writes the archive.
// Paths that do not exist are skipped without error.
func (uc *bundleUseCase) Create(ctx context.Context, req *model.ZipRequest) (*model.Bundle, error) {
	logger := logging.From(ctx)

	if req == nil {
		return nil, goerr.New("no files selected", goerr.T(types.ErrTagValidation))
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	exists, err := uc.store.FolderExists(req.FolderID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, goerr.New("folder does not exist", goerr.T(types.ErrTagValidation), goerr.V("folder_id", req.FolderID))
	}

	items := make([]staging.BundleItem, 0, len(req.Files))
	for _, file := range req.Files {
		decoded, err := url.PathUnescape(file)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid file path encoding", goerr.T(types.ErrTagValidation), goerr.V("path", file))
		}

		path, err := uc.store.Resolve(req.FolderID, decoded)
		if err != nil {
			return nil, err
		}

		items = append(items, staging.BundleItem{
			Name: model.SlashPath(decoded),
			Path: path,
		})
	}

	bundle, err := uc.store.WriteBundle(ctx, req.FolderID, items)
	if err != nil {
		logger.Error("Failed to build zip bundle", "error", err, "folder_id", req.FolderID)
		return nil, err
	}

	logger.Info("Built zip bundle",
		"folder_id", req.FolderID,
		"requested", len(req.Files),
		"entries", len(bundle.Entries),
		"skipped", bundle.Skipped,
	)
	return bundle, nil
}

// Open opens the archive for streaming under the fixed download name
func (uc *bundleUseCase) Open(ctx context.Context, bundle *model.Bundle) (*model.FileContent, error) {
	content, err := uc.store.Open(bundle.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open zip bundle", goerr.T(types.ErrTagZip), goerr.V("folder_id", bundle.FolderID))
	}
	content.Name = model.BundleFilename
	content.MIME = "application/zip"
	return content, nil
}

// Discard removes the archive. Failures are logged because the response has
// already been sent.
func (uc *bundleUseCase) Discard(ctx context.Context, bundle *model.Bundle) {
	if bundle == nil {
		return
	}
	if err := uc.store.Remove(bundle.Path); err != nil {
		logging.From(ctx).Warn("Failed to delete zip bundle", "error", err, "path", bundle.Path)
		return
	}
	logging.From(ctx).Debug("Deleted zip bundle", "path", bundle.Path)
}
