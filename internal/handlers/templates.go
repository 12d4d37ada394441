package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sbilibin2017/filekit/internal/models"
	"github.com/sbilibin2017/filekit/internal/services"
)

//go:generate mockgen -source=templates.go -destination=templates_mock.go -package=handlers

// TemplateLister lists templates page by page.
type TemplateLister interface {
	List(ctx context.Context, search string, page models.Page) ([]models.TemplateDB, int, error)
}

// TemplateAdder stores a batch of template files.
type TemplateAdder interface {
	Add(ctx context.Context, uploads []services.Upload) ([]models.TemplateDB, error)
}

// TemplateItem is one template in a listing.
// swagger:model TemplateItem
type TemplateItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Size      int64  `json:"size"`
	CreatedAt string `json:"created_at"`
}

// TemplatesResponse is one page of templates.
// swagger:model TemplatesResponse
type TemplatesResponse struct {
	TotalCount int            `json:"total_count"`
	Templates  []TemplateItem `json:"templates"`
}

// SavedTemplate describes a stored upload.
// swagger:model SavedTemplate
type SavedTemplate struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Path string `json:"path"`
}

// AddTemplateResponse lists the stored uploads.
// swagger:model AddTemplateResponse
type AddTemplateResponse struct {
	Msg   string          `json:"msg"`
	Files []SavedTemplate `json:"files"`
}

// NewGetTemplatesHandler returns a handler listing templates.
// @Summary List templates
// @Description Case-insensitive search on template name. Served on GET and POST.
// @Tags admin
// @Produce json
// @Param search query string false "Name fragment"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} handlers.TemplatesResponse
// @Failure 500 {object} handlers.MessageResponse
// @Router /admin/get-templates [get]
// @Router /admin/get-templates [post]
// @Security BearerAuth
func NewGetTemplatesHandler(svc TemplateLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templates, total, err := svc.List(r.Context(), r.URL.Query().Get("search"), parsePage(r))
		if err != nil {
			logError(r, "internal server error", err)
			writeJSON(w, http.StatusInternalServerError, MessageResponse{Msg: "Database Error", Error: err.Error()})
			return
		}

		items := make([]TemplateItem, len(templates))
		for i, t := range templates {
			items[i] = TemplateItem{
				ID:        t.ID,
				Name:      t.Name,
				Type:      t.Type,
				Size:      t.Size,
				CreatedAt: t.CreatedAt.Format(models.TimeLayout),
			}
		}

		writeJSON(w, http.StatusOK, TemplatesResponse{TotalCount: total, Templates: items})
	}
}

// NewAddTemplateHandler returns a handler storing uploaded templates.
// @Summary Upload templates
// @Description Stores every file of the batch in one timestamped folder and records it.
// @Tags admin
// @Accept mpfd
// @Produce json
// @Param files formData file true "Template files"
// @Success 200 {object} handlers.AddTemplateResponse
// @Failure 400 {object} handlers.MessageResponse "No files part in the request"
// @Failure 500 {object} handlers.MessageResponse "Database Error"
// @Router /admin/add-template [post]
// @Security BearerAuth
func NewAddTemplateHandler(svc TemplateAdder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uploads, closeUploads, err := formUploads(r)
		defer closeUploads()
		if err != nil || len(uploads) == 0 {
			writeMessage(w, http.StatusBadRequest, "No files part in the request")
			return
		}

		saved, err := svc.Add(r.Context(), uploads)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrNoFiles):
				writeMessage(w, http.StatusBadRequest, "No files selected")
			default:
				logError(r, "internal server error", err)
				writeJSON(w, http.StatusInternalServerError, MessageResponse{Msg: "Database Error", Error: err.Error()})
			}
			return
		}

		files := make([]SavedTemplate, len(saved))
		for i, t := range saved {
			files[i] = SavedTemplate{Name: t.Name, Type: t.Type, Path: t.Path}
		}
		writeJSON(w, http.StatusOK, AddTemplateResponse{
			Msg:   "Templates uploaded and saved successfully",
			Files: files,
		})
	}
}
