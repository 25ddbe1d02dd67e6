// Package handler implements the HTTP endpoints of the sync API.
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/erpsync/backend/internal/domain/shared"
	"github.com/erpsync/backend/internal/interfaces/http/dto"
	"github.com/erpsync/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success envelope
func (h *BaseHandler) Success(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(message, data))
}

// SuccessWithMeta sends a success envelope with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, message string, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(message, data, total, page, pageSize))
}

// Created sends a 201 envelope
func (h *BaseHandler) Created(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(message, data))
}

// BadRequest rejects a request before it reaches the engine
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(message, nil))
}

// HandleError translates engine errors into the failure envelope. Batch
// errors carry one message per failing item; everything else carries a
// single message. Unknown errors stay opaque.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var batchErr *shared.BatchError
	if errors.As(err, &batchErr) {
		status := dto.GetHTTPStatus(batchErr.Items[0].Err.Code)
		c.JSON(status, dto.NewErrorResponse("batch validation failed", batchErr.Messages()))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		c.JSON(status, dto.NewErrorResponse(domainErr.Message, nil))
		return
	}

	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponse("an unexpected error occurred", nil))
}

// pathInt reads an integer path parameter, rejecting the request on
// anything unparseable
func (h *BaseHandler) pathInt(c *gin.Context, name string) (int, bool) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil {
		h.BadRequest(c, "invalid "+name+" path parameter")
		return 0, false
	}
	return value, true
}

// checkBatch rejects empty batches and batches over the configured size
// cap. An empty list usually means the exporter misnamed the field, so
// silently succeeding would hide the defect.
func (h *BaseHandler) checkBatch(c *gin.Context, size, max int) bool {
	if size == 0 {
		h.BadRequest(c, "batch contains no records")
		return false
	}
	if max > 0 && size > max {
		h.BadRequest(c, fmt.Sprintf("batch exceeds the maximum of %d records", max))
		return false
	}
	return true
}

// parseFilter binds the common list query parameters
func (h *BaseHandler) parseFilter(c *gin.Context) (shared.Filter, bool) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest,
			dto.NewErrorResponse("invalid query parameters", middleware.ValidationMessages(err)))
		return shared.Filter{}, false
	}

	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	filter.OrderBy = req.OrderBy
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search
	return filter, true
}
