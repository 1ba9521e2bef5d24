package interfaces

import (
	"context"

	"github.com/m-mizutani/msgbox/pkg/domain/model"
)

// ExtractionUseCase stages an upload and unpacks it
type ExtractionUseCase interface {
	// Extract stores the upload, runs the extractor and returns the manifest of produced files
	Extract(ctx context.Context, upload *model.Upload) (*model.Manifest, error)
}

// FileUseCase serves single files out of an extraction folder
type FileUseCase interface {
	// Preview returns image bytes or decoded text of the file
	Preview(ctx context.Context, folderID, relPath string) (*model.Preview, error)

	// Open returns the file for download
	Open(ctx context.Context, folderID, relPath string) (*model.FileContent, error)
}

// BundleUseCase builds temporary zip archives of selected files
type BundleUseCase interface {
	// Create writes the archive. Requested paths are percent-encoded relative paths.
	Create(ctx context.Context, req *model.ZipRequest) (*model.Bundle, error)

	// Open opens a created archive for streaming
	Open(ctx context.Context, bundle *model.Bundle) (*model.FileContent, error)

	// Discard deletes the archive. Errors are logged only.
	Discard(ctx context.Context, bundle *model.Bundle)
}

// RetentionUseCase removes expired staging data
type RetentionUseCase interface {
	// Sweep removes uploads and extraction folders older than the retention age
	Sweep(ctx context.Context) (*model.SweepResult, error)
}
