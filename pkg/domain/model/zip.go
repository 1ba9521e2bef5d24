package model

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/msgbox/pkg/domain/types"
)

// BundleFilename is the name offered to the client for every zip download
const BundleFilename = "download.zip"

var folderIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateFolderID checks that id is a single safe path segment
func ValidateFolderID(id string) error {
	err := validation.Validate(id,
		validation.Required,
		validation.Length(1, 128),
		validation.Match(folderIDPattern).Error("must be a single path segment"),
	)
	if err != nil {
		return goerr.Wrap(err, "invalid folder id", goerr.T(types.ErrTagValidation), goerr.V("folder_id", id))
	}
	return nil
}

// ZipRequest is the body of a bundle request
type ZipRequest struct {
	FolderID string   `json:"folderId"`
	Files    []string `json:"files"`
}

// Validate checks required fields. Folder existence is checked by the use case.
func (r *ZipRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.FolderID, validation.Required, validation.Match(folderIDPattern)),
		validation.Field(&r.Files, validation.Required, validation.Each(validation.Required)),
	)
	if err != nil {
		return goerr.Wrap(err, "no files selected", goerr.T(types.ErrTagValidation), goerr.V("folder_id", r.FolderID))
	}
	return nil
}

// Bundle is a finalized zip archive waiting to be streamed
type Bundle struct {
	FolderID string
	Path     string   // Location of the temporary archive
	Entries  []string // Names written to the archive
	Skipped  []string // Requested paths that did not exist
}
