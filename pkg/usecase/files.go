package usecase

import (
	"context"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/msgbox/pkg/domain/interfaces"
	"github.com/m-mizutani/msgbox/pkg/domain/model"
	"github.com/m-mizutani/msgbox/pkg/domain/types"
	"github.com/m-mizutani/msgbox/pkg/infra/staging"
	"github.com/m-mizutani/msgbox/pkg/utils/logging"
)

type fileUseCase struct {
	store *staging.Store
}

// NewFiles creates a new instance of FileUseCase
func NewFiles(store *staging.Store) interfaces.FileUseCase {
	return &fileUseCase{store: store}
}

// Preview returns images as a stream and everything else as UTF-8 text.
// relPath must already be decoded.
func (uc *fileUseCase) Preview(ctx context.Context, folderID, relPath string) (*model.Preview, error) {
	path, err := uc.store.Resolve(folderID, relPath)
	if err != nil {
		return nil, err
	}

	if model.IsImage(path) {
		file, err := uc.store.Open(path)
		if err != nil {
			return nil, err
		}
		return &model.Preview{Kind: model.PreviewImage, File: file}, nil
	}

	data, err := uc.store.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		logging.From(ctx).Debug("Preview rejected non UTF-8 content", "folder_id", folderID, "path", relPath)
		return nil, goerr.New("cannot read file", goerr.T(types.ErrTagRead), goerr.V("folder_id", folderID), goerr.V("path", relPath))
	}

	return &model.Preview{Kind: model.PreviewText, Text: string(data)}, nil
}

// Open returns the file for download regardless of its type
func (uc *fileUseCase) Open(ctx context.Context, folderID, relPath string) (*model.FileContent, error) {
	path, err := uc.store.Resolve(folderID, relPath)
	if err != nil {
		return nil, err
	}
	return uc.store.Open(path)
}
