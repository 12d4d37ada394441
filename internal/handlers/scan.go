package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/sbilibin2017/filekit/internal/middlewares"
	"github.com/sbilibin2017/filekit/internal/models"
	"github.com/sbilibin2017/filekit/internal/services"
)

//go:generate mockgen -source=scan.go -destination=scan_mock.go -package=handlers

// Scanner turns uploaded invoices into a CSV artifact.
type Scanner interface {
	Scan(ctx context.Context, userID int64, uploads []services.Upload) (*models.FileDB, error)
}

// ScanResponse points at the generated CSV.
// swagger:model ScanResponse
type ScanResponse struct {
	// default: CSV created successfully.
	Msg     string `json:"msg"`
	CSVPath string `json:"csv_path"`
}

// NewScanHandler returns a handler running the invoice pipeline.
// @Summary Scan invoices
// @Description Parses the uploaded PDFs, extracts their tables into one CSV and records it for userId.
// @Tags files
// @Accept mpfd
// @Produce json
// @Param files formData file true "Invoice PDFs"
// @Param userId formData int true "Owner id"
// @Success 200 {object} handlers.ScanResponse
// @Failure 400 {object} handlers.MessageResponse "No files part in the request"
// @Failure 401 {object} handlers.MessageResponse "UnAuthorized request"
// @Failure 500 {object} handlers.MessageResponse "Error processing file"
// @Router /file/scan [post]
func NewScanHandler(svc Scanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uploads, closeUploads, err := formUploads(r)
		defer closeUploads()
		if err != nil || len(uploads) == 0 {
			writeMessage(w, http.StatusBadRequest, "No files part in the request")
			return
		}

		userID, err := strconv.ParseInt(strings.TrimSpace(r.FormValue("userId")), 10, 64)
		if err != nil || userID <= 0 {
			writeMessage(w, http.StatusUnauthorized, "UnAuthorized request")
			return
		}
		if tokenUserID, ok := middlewares.UserIDFromContext(r.Context()); ok && tokenUserID != userID {
			writeMessage(w, http.StatusUnauthorized, "UnAuthorized request")
			return
		}

		file, err := svc.Scan(r.Context(), userID, uploads)
		if err != nil {
			logError(r, "scan failed", err, "user_id", userID)
			writeMessage(w, http.StatusInternalServerError, "Error processing file: "+err.Error())
			return
		}

		writeJSON(w, http.StatusOK, ScanResponse{Msg: "CSV created successfully.", CSVPath: file.Path})
	}
}
