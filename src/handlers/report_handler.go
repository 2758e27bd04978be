// src/handlers/report_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/username/creditreport/src/logger"
	"github.com/username/creditreport/src/parsers/parsererror"
	"github.com/username/creditreport/src/security/validation"
	"github.com/username/creditreport/src/services"
	"github.com/username/creditreport/src/utils"
)

// Upload form fields, in the order they are tried.
var uploadFields = []string{"xmlfile", "file"}

// multipartOverhead is allowed on top of the file size limit for the form envelope.
const multipartOverhead = 1 << 20

type ReportHandler struct {
	reportService  services.ReportService
	maxUploadBytes int64
}

func NewReportHandler(service services.ReportService, maxUploadBytes int64) *ReportHandler {
	return &ReportHandler{
		reportService:  service,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *ReportHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	tooLarge := fmt.Sprintf("File too large (max %s)", formatSize(h.maxUploadBytes))

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			log.Warn("Upload request body too large", "error", err, "limit", h.maxUploadBytes)
			utils.SendJSONError(w, tooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		log.Warn("Failed to parse multipart form", "error", err)
		utils.SendJSONError(w, "No file uploaded. Please select an XML file.", http.StatusBadRequest)
		return
	}

	file, fileHeader, err := formFile(r)
	if err != nil {
		log.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "No file uploaded. Please select an XML file.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > h.maxUploadBytes {
		log.Warn("Uploaded file header reports size too large", "fileSize", fileHeader.Size, "limit", h.maxUploadBytes)
		utils.SendJSONError(w, tooLarge, http.StatusRequestEntityTooLarge)
		return
	}

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		log.Warn("Invalid client-declared file type", "contentType", clientContentType, "error", err)
		utils.SendJSONError(w, "Invalid file type. Only XML files are allowed.", http.StatusBadRequest)
		return
	}

	detectedContentType, err := validation.ValidateFileContentByMagicBytes(file)
	if err != nil {
		log.Warn("Server-side file content validation failed", "filename", fileHeader.Filename, "error", err)
		if errors.Is(err, validation.ErrValidationFailed) {
			utils.SendJSONError(w, "Invalid file content. Only XML files are allowed.", http.StatusBadRequest)
		} else {
			utils.SendJSONError(w, "Failed to read uploaded file", http.StatusInternalServerError)
		}
		return
	}
	uploadedBy := "anonymous"
	if subject, ok := GetSubjectFromContext(r.Context()); ok {
		uploadedBy = subject
	}
	log.Info("Processing upload request", "filename", fileHeader.Filename, "uploadedBy", uploadedBy, "clientType", clientContentType, "detectedType", detectedContentType)

	report, err := h.reportService.ProcessUpload(r.Context(), file, fileHeader.Filename)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUploadTooLarge):
			utils.SendJSONError(w, tooLarge, http.StatusRequestEntityTooLarge)
		case errors.Is(err, parsererror.ErrUnrecognizedSchema):
			utils.SendJSONError(w, "Unrecognized report format. Expected an Experian credit report.", http.StatusBadRequest)
		case errors.Is(err, services.ErrParsingFailed):
			utils.SendJSONError(w, "Error parsing XML. The file may be malformed.", http.StatusBadRequest)
		default:
			log.Error("Upload processing error", "filename", fileHeader.Filename, "error", err)
			utils.SendJSONError(w, "Server error during file processing.", http.StatusInternalServerError)
		}
		return
	}

	utils.SendJSON(w, map[string]any{
		"message": "File uploaded and processed successfully!",
		"report":  report,
	}, http.StatusCreated)
}

func formatSize(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%d MB", n>>20)
	}
	return fmt.Sprintf("%d bytes", n)
}

func formFile(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	var lastErr error
	for _, field := range uploadFields {
		file, header, err := r.FormFile(field)
		if err == nil {
			return file, header, nil
		}
		lastErr = err
	}
	return nil, nil, lastErr
}

func (h *ReportHandler) HandleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reportService.ListReports(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("Error listing reports", "error", err)
		utils.SendJSONError(w, "Server error fetching reports.", http.StatusInternalServerError)
		return
	}
	utils.SendJSON(w, reports, http.StatusOK)
}

// HandleGetReport returns one report with an ETag and answers 304 when the client already has it.
func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	id := chi.URLParam(r, "id")

	report, err := h.reportService.GetReport(r.Context(), id)
	if err != nil {
		h.sendReportError(w, r, err, "Server error fetching report.")
		return
	}

	currentETag, etagErr := utils.GenerateETag(report)
	if etagErr != nil {
		log.Error("Failed to generate ETag for report", "reportID", id, "error", etagErr)
	}

	w.Header().Set("Cache-Control", "no-cache, private")

	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		for _, cETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
			if strings.TrimSpace(cETag) == quotedETag {
				log.Debug("ETag match for report", "reportID", id, "etag", currentETag)
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	utils.SendJSON(w, report, http.StatusOK)
}

func (h *ReportHandler) HandleRenameReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		DisplayName *string `json:"displayName"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64*1024)).Decode(&body); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if body.DisplayName == nil {
		utils.SendJSONError(w, "Display name is required.", http.StatusBadRequest)
		return
	}

	report, err := h.reportService.RenameReport(r.Context(), id, *body.DisplayName)
	if err != nil {
		if errors.Is(err, validation.ErrValidationFailed) {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.sendReportError(w, r, err, "Server error updating report name.")
		return
	}
	utils.SendJSON(w, report, http.StatusOK)
}

func (h *ReportHandler) HandleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.reportService.DeleteReport(r.Context(), id); err != nil {
		h.sendReportError(w, r, err, "Server error deleting report.")
		return
	}
	utils.SendJSON(w, map[string]string{"message": "Report deleted successfully."}, http.StatusOK)
}

// HandleHealth reports liveness and the number of stored reports.
func (h *ReportHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	n, err := h.reportService.CountReports(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("Health check failed", "error", err)
		utils.SendJSON(w, map[string]any{"status": "unavailable"}, http.StatusServiceUnavailable)
		return
	}
	utils.SendJSON(w, map[string]any{"status": "ok", "reports": n}, http.StatusOK)
}

func (h *ReportHandler) sendReportError(w http.ResponseWriter, r *http.Request, err error, serverMsg string) {
	if errors.Is(err, services.ErrReportNotFound) {
		utils.SendJSONError(w, "Report not found.", http.StatusNotFound)
		return
	}
	logger.FromContext(r.Context()).Error(serverMsg, "reportID", chi.URLParam(r, "id"), "error", err)
	utils.SendJSONError(w, serverMsg, http.StatusInternalServerError)
}
