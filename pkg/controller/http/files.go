package http

import (
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/msgbox/pkg/domain/interfaces"
	"github.com/m-mizutani/msgbox/pkg/domain/model"
	"github.com/m-mizutani/msgbox/pkg/domain/types"
	"github.com/m-mizutani/msgbox/pkg/utils/logging"
	"github.com/oapi-codegen/runtime"
)

// FileHandler serves preview and download of extracted files
type FileHandler struct {
	fileUC interfaces.FileUseCase
}

// NewFileHandler creates a new FileHandler
func NewFileHandler(uc interfaces.FileUseCase) *FileHandler {
	return &FileHandler{fileUC: uc}
}

// Preview processes GET /preview/{folder}/{filePath}
func (h *FileHandler) Preview(w http.ResponseWriter, r *http.Request) {
	folderID, relPath, err := bindFileParams(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	preview, err := h.fileUC.Preview(r.Context(), folderID, relPath)
	if err != nil {
		handleError(w, r, err)
		return
	}

	switch preview.Kind {
	case model.PreviewImage:
		defer preview.File.Close()
		serveContent(w, r, preview.File, "inline")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.WriteHeader(http.StatusOK)
		if _, err := io.WriteString(w, preview.Text); err != nil {
			logging.From(r.Context()).Warn("Failed to write preview", "error", err)
		}
	}
}

// Download processes GET /download/{folder}/{filePath}
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	folderID, relPath, err := bindFileParams(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	content, err := h.fileUC.Open(r.Context(), folderID, relPath)
	if err != nil {
		handleError(w, r, err)
		return
	}
	defer content.Close()

	serveContent(w, r, content, "attachment")
}

// bindFileParams returns the decoded folder id and relative file path
func bindFileParams(r *http.Request) (string, string, error) {
	var folderID string
	if err := runtime.BindStyledParameterWithOptions("simple", "folder", chi.URLParam(r, "folder"), &folderID,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		}); err != nil {
		return "", "", goerr.Wrap(err, "invalid folder parameter", goerr.T(types.ErrTagValidation))
	}

	raw := chi.URLParam(r, "filePath")
	relPath, err := url.PathUnescape(raw)
	if err != nil || relPath == "" {
		return "", "", goerr.New("invalid file path", goerr.T(types.ErrTagValidation), goerr.V("path", raw))
	}

	return folderID, relPath, nil
}

// serveContent streams content with the given disposition. Range and
// conditional requests are handled by http.ServeContent.
func serveContent(w http.ResponseWriter, r *http.Request, content *model.FileContent, disposition string) {
	w.Header().Set("Content-Type", content.MIME)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{
		"filename": content.Name,
	}))
	http.ServeContent(w, r, content.Name, content.ModTime, content.Content)
}
