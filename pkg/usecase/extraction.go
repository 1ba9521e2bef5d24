package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/msgbox/pkg/domain/interfaces"
	"github.com/m-mizutani/msgbox/pkg/domain/model"
	"github.com/m-mizutani/msgbox/pkg/domain/types"
	"github.com/m-mizutani/msgbox/pkg/infra/staging"
	"github.com/m-mizutani/msgbox/pkg/utils/logging"
)

type extractionUseCase struct {
	store     *staging.Store
	extractor interfaces.Extractor
}

// NewExtraction creates a new instance of ExtractionUseCase
func NewExtraction(store *staging.Store, extractor interfaces.Extractor) interfaces.ExtractionUseCase {
	return &extractionUseCase{
		store:     store,
		extractor: extractor,
	}
}

// Extract stores the upload, unpacks it into extracted/<folderId> and lists the result
func (uc *extractionUseCase) Extract(ctx context.Context, upload *model.Upload) (*model.Manifest, error) {
	if upload == nil || upload.Content == nil {
		return nil, goerr.New("no .msg file uploaded", goerr.T(types.ErrTagValidation))
	}

	folderID, inputPath, err := uc.store.SaveUpload(ctx, upload)
	if err != nil {
		return nil, err
	}

	logger := logging.From(ctx).With("folder_id", folderID)
	ctx = logging.With(ctx, logger)

	outDir, err := uc.store.CreateFolder(folderID)
	if err != nil {
		return nil, err
	}

	logger.Info("Extracting uploaded file",
		"filename", upload.Filename,
		"input", inputPath,
		"output", outDir,
	)

	// Partial output is left in place on failure
	if err := uc.extractor.Extract(ctx, inputPath, outDir); err != nil {
		logger.Error("Extraction failed", "error", err)
		return nil, goerr.Wrap(err, "failed to extract uploaded file", goerr.V("folder_id", folderID))
	}

	entries, err := uc.store.List(ctx, outDir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list extracted files", goerr.V("folder_id", folderID))
	}

	manifest := &model.Manifest{
		FolderID:    folderID,
		Attachments: model.NewAttachments(folderID, entries),
	}

	logger.Info("Extraction completed", "file_count", len(manifest.Attachments))
	return manifest, nil
}
