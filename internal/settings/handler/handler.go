package handler

import (
	"io"
	"net/http"

	"byabshik_backend/internal/settings/service"
	"byabshik_backend/internal/settings/transport"
	"byabshik_backend/platform/httpkit"
	"byabshik_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for settings.
type Handler struct {
	svc     *service.Service
	val     *validator.Validator
	maxLogo int64
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgMissingFile      = "file is required"
	msgFileTooLarge     = "file is too large"
)

// New creates a new settings handler. maxLogo bounds the upload size.
func New(svc *service.Service, val *validator.Validator, maxLogo int64) *Handler {
	return &Handler{svc: svc, val: val, maxLogo: maxLogo}
}

// Get returns the settings.
// GET /api/v1/admin/settings
func (h *Handler) Get(c *gin.Context) {
	result, err := h.svc.Get(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UpdateCourier stores the courier account.
// PUT /api/v1/admin/settings/courier
func (h *Handler) UpdateCourier(c *gin.Context) {
	var req transport.UpdateCourierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.UpdateCourier(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// UploadLogo stores the brand logo.
// POST /api/v1/admin/settings/logo
func (h *Handler) UploadLogo(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxLogo+(1<<20))
	fileHeader, err := c.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgMissingFile, nil)
		return
	}
	if fileHeader.Size > h.maxLogo {
		httpkit.Error(c, http.StatusBadRequest, msgFileTooLarge, nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, h.maxLogo+1))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.UploadLogo(c.Request.Context(), fileHeader.Header.Get("Content-Type"), data)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
