package http

import (
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/msgbox/pkg/domain/interfaces"
	"github.com/m-mizutani/msgbox/pkg/domain/model"
	"github.com/m-mizutani/msgbox/pkg/domain/types"
	"github.com/m-mizutani/msgbox/pkg/utils/logging"
	"golang.org/x/time/rate"
)

// multipartMemory is the part of an upload kept in memory before spilling to a temp file
const multipartMemory = 8 << 20

// ExtractHandler handles uploads of email container files
type ExtractHandler struct {
	extractionUC  interfaces.ExtractionUseCase
	maxUploadSize int64
	limiter       *rate.Limiter
}

// NewExtractHandler creates a new ExtractHandler. limiter may be nil.
func NewExtractHandler(uc interfaces.ExtractionUseCase, maxUploadSize int64, limiter *rate.Limiter) *ExtractHandler {
	return &ExtractHandler{
		extractionUC:  uc,
		maxUploadSize: maxUploadSize,
		limiter:       limiter,
	}
}

// Handle processes POST /extract
func (h *ExtractHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.From(ctx)

	if h.limiter != nil && !h.limiter.Allow() {
		handleError(w, r, goerr.New("too many extraction requests", goerr.T(types.ErrTagRateLimited)))
		return
	}

	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		handleError(w, r, uploadError(err))
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logger.Warn("Failed to remove multipart temp files", "error", err)
		}
	}()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		handleError(w, r, uploadError(err))
		return
	}
	defer file.Close()

	manifest, err := h.extractionUC.Extract(ctx, &model.Upload{
		Filename: header.Filename,
		Content:  file,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(ctx, w, manifest)
}

func uploadError(err error) error {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return goerr.Wrap(err, "no .msg file uploaded", goerr.T(types.ErrTagValidation))
	case errors.As(err, &maxErr):
		return goerr.Wrap(err, "uploaded file is too large", goerr.T(types.ErrTagValidation), goerr.V("limit", maxErr.Limit))
	default:
		return goerr.Wrap(err, "invalid upload request", goerr.T(types.ErrTagValidation))
	}
}
