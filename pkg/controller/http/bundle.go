package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/msgbox/pkg/domain/interfaces"
	"github.com/m-mizutani/msgbox/pkg/domain/model"
	"github.com/m-mizutani/msgbox/pkg/domain/types"
)

const maxBundleRequestSize = 1 << 20

// BundleHandler streams zip archives of selected files
type BundleHandler struct {
	bundleUC interfaces.BundleUseCase
}

// NewBundleHandler creates a new BundleHandler
func NewBundleHandler(uc interfaces.BundleUseCase) *BundleHandler {
	return &BundleHandler{bundleUC: uc}
}

// Handle processes POST /zip. The temporary archive is deleted once the
// response has been written.
func (h *BundleHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req model.ZipRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBundleRequestSize)).Decode(&req); err != nil {
		handleError(w, r, goerr.Wrap(err, "invalid JSON body", goerr.T(types.ErrTagValidation)))
		return
	}

	bundle, err := h.bundleUC.Create(ctx, &req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	defer h.bundleUC.Discard(ctx, bundle)

	content, err := h.bundleUC.Open(ctx, bundle)
	if err != nil {
		handleError(w, r, err)
		return
	}
	defer content.Close()

	serveContent(w, r, content, "attachment")
}
