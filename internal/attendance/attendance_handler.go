package attendance

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"face-attendance/internal/intake"
	intakeerrors "face-attendance/internal/intake/errors"
	"face-attendance/internal/shared/apperror"
	"face-attendance/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// multipartOverhead leaves room for boundaries and part headers on top of
// the image ceiling.
const multipartOverhead = 64 << 10

// imageFields are the form fields accepted for the captured image, in order.
var imageFields = []string{"image", "file"}

type Handler struct {
	service       Service
	maxImageBytes int64
	logger        *zap.Logger
}

func NewHandler(service Service, maxImageBytes int64, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("attendance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.handler")
	}
	if maxImageBytes <= 0 {
		maxImageBytes = intake.DefaultMaxBytes
	}
	return &Handler{service: service, maxImageBytes: maxImageBytes, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("attendance request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Record(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxImageBytes+multipartOverhead)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeServiceError(c, intakeerrors.ErrImageTooLarge.WithDetails(map[string]any{
				"max_bytes": h.maxImageBytes,
			}))
			return
		}
		h.writeServiceError(c, intakeerrors.ErrImageMissing.WithCause(err))
		return
	}
	defer form.RemoveAll()

	img, err := intake.FromFileHeader(firstFile(form), h.maxImageBytes)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	defer img.Release()

	result, err := h.service.Record(c.Request.Context(), img)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Outcome == OutcomeUnknownIdentity {
		status = http.StatusOK
	}
	response.Success(c, status, result, nil)
}

func firstFile(form *multipart.Form) *multipart.FileHeader {
	for _, field := range imageFields {
		if files := form.File[field]; len(files) > 0 {
			return files[0]
		}
	}
	return nil
}

func (h *Handler) GetAll(c *gin.Context) {
	var req ListAttendanceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, total, err := h.service.GetAll(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, pageSize := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	meta := response.NewPaginationMeta(total, page, pageSize)
	response.Success(c, http.StatusOK, resp, &meta)
}

func (h *Handler) GetHistory(c *gin.Context) {
	var req HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	resp, err := h.service.GetHistory(c.Request.Context(), req.Limit)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

// Export answers with an xlsx report of the filtered events. The workbook is
// built in memory so a failure can still be reported as JSON.
func (h *Handler) Export(c *gin.Context) {
	var req ListAttendanceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.writeServiceError(c, apperror.MapValidationError(err))
		return
	}

	rows, err := h.service.Export(c.Request.Context(), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, rows); err != nil {
		h.writeServiceError(c, apperror.ErrInternal.WithCause(err))
		return
	}

	filename := "attendance_report.xlsx"
	if req.StartDate != "" || req.EndDate != "" {
		filename = fmt.Sprintf("attendance_%s_%s.xlsx", orAll(req.StartDate), orAll(req.EndDate))
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, ExportContentType, buf.Bytes())
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}
