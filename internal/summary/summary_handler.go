package summary

import (
	"net/http"

	"face-attendance/internal/shared/apperror"
	"face-attendance/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetAll(c *gin.Context) {
	var req ListSummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.AbortWithError(c, apperror.MapValidationError(err))
		return
	}

	resp, total, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		response.AbortWithError(c, err)
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
