package handlers

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/filekit/internal/models"
	"github.com/sbilibin2017/filekit/internal/services"
)

//go:generate mockgen -source=files.go -destination=files_mock.go -package=handlers

// FileLister lists generated files.
type FileLister interface {
	GetFiles(ctx context.Context, userID *int64, page models.Page) ([]models.FileDB, int, error)
	GetAllFiles(ctx context.Context, page models.Page) ([]models.FileWithOwner, int, error)
}

// FileDownloader opens a generated file.
type FileDownloader interface {
	Download(ctx context.Context, id int64) (*models.FileDB, io.ReadCloser, error)
}

// FileDeleter removes a generated file.
type FileDeleter interface {
	Delete(ctx context.Context, id int64) error
}

// FileItem is one file in a listing.
// swagger:model FileItem
type FileItem struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Path       string `json:"path"`
	CreatedAt  string `json:"created_at"`
	TotalPages int    `json:"total_pages"`
	OwnerName  string `json:"owner_name,omitempty"`
}

// FilesResponse is one page of files.
// swagger:model FilesResponse
type FilesResponse struct {
	Files           []FileItem `json:"files"`
	TotalFilesCount int        `json:"total_files_count"`
	CurrentPage     int        `json:"current_page"`
	TotalPages      int        `json:"total_pages"`
	Message         string     `json:"message"`
}

func newFileItem(f models.FileDB) FileItem {
	return FileItem{
		ID:         f.ID,
		Name:       f.Name,
		Path:       f.Path,
		CreatedAt:  f.CreatedAt.Format(models.TimeLayout),
		TotalPages: f.TotalPages,
	}
}

func writeFilesError(w http.ResponseWriter, r *http.Request, err error) {
	logError(r, "internal server error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Error occurred: " + err.Error()})
}

// NewGetFilesHandler returns a handler listing files, optionally of one owner.
// @Summary List files
// @Tags files
// @Produce json
// @Param userId query int false "Owner id"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} handlers.FilesResponse
// @Router /file/get-files [get]
func NewGetFilesHandler(svc FileLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := parsePage(r)

		var userID *int64
		if id, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64); err == nil && id > 0 {
			userID = &id
		}

		files, total, err := svc.GetFiles(r.Context(), userID, page)
		if err != nil {
			writeFilesError(w, r, err)
			return
		}

		items := make([]FileItem, len(files))
		for i, f := range files {
			items[i] = newFileItem(f)
		}

		writeJSON(w, http.StatusOK, FilesResponse{
			Files:           items,
			TotalFilesCount: total,
			CurrentPage:     page.Number,
			TotalPages:      page.TotalPages(total),
			Message:         "Files retrieved successfully",
		})
	}
}

// NewGetAllFilesHandler returns a handler listing every file with its owner's name.
// @Summary List all files with owners
// @Tags files
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} handlers.FilesResponse
// @Router /file/get-all-files [get]
func NewGetAllFilesHandler(svc FileLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := parsePage(r)

		files, total, err := svc.GetAllFiles(r.Context(), page)
		if err != nil {
			writeFilesError(w, r, err)
			return
		}

		items := make([]FileItem, len(files))
		for i, f := range files {
			items[i] = newFileItem(f.FileDB)
			items[i].OwnerName = f.OwnerName
		}

		writeJSON(w, http.StatusOK, FilesResponse{
			Files:           items,
			TotalFilesCount: total,
			CurrentPage:     page.Number,
			TotalPages:      page.TotalPages(total),
			Message:         "Files retrieved successfully",
		})
	}
}

// NewDownloadHandler returns a handler streaming a generated CSV.
// @Summary Download a file
// @Tags files
// @Produce text/csv
// @Param id path int true "File id"
// @Success 200 {file} file
// @Failure 404 {object} handlers.MessageResponse
// @Router /file/download/{id} [get]
func NewDownloadHandler(svc FileDownloader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "id"))
		if err != nil {
			writeMessage(w, http.StatusNotFound, "File not found")
			return
		}

		file, rc, err := svc.Download(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrFileNotFound):
				writeMessage(w, http.StatusNotFound, "File not found")
			case errors.Is(err, services.ErrArtifactNotFound):
				writeMessage(w, http.StatusNotFound, "File does not exist on the server")
			default:
				logError(r, "internal server error", err)
				writeMessage(w, http.StatusInternalServerError, "Error downloading file: "+err.Error())
			}
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, rc); err != nil {
			logError(r, "failed to stream file", err, "file_id", id)
		}
	}
}

// NewDeleteFileHandler returns a handler removing a file and its artifact.
// @Summary Delete a file
// @Tags admin
// @Produce json
// @Param id path int true "File id"
// @Success 200 {object} handlers.MessageResponse "File and its record have been deleted successfully"
// @Failure 404 {object} handlers.MessageResponse
// @Failure 500 {object} handlers.MessageResponse
// @Router /admin/delete-file/{id} [delete]
// @Security BearerAuth
func NewDeleteFileHandler(svc FileDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "id"))
		if err != nil {
			writeMessage(w, http.StatusNotFound, "File not found")
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			switch {
			case errors.Is(err, services.ErrFileNotFound):
				writeMessage(w, http.StatusNotFound, "File not found")
			case errors.Is(err, services.ErrArtifactNotFound):
				writeMessage(w, http.StatusNotFound, "File not found on the server")
			default:
				logError(r, "internal server error", err)
				writeJSON(w, http.StatusInternalServerError, MessageResponse{
					Msg:   "An error occurred while deleting the file",
					Error: err.Error(),
				})
			}
			return
		}

		writeMessage(w, http.StatusOK, "File and its record have been deleted successfully")
	}
}
