package handler

import (
	"net/http"

	"byabshik_backend/internal/courier/service"
	"byabshik_backend/internal/courier/transport"
	"byabshik_backend/platform/httpkit"
	"byabshik_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for courier dispatch and tracking.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new courier handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Dispatch hands one order to the courier.
// POST /api/v1/admin/orders/:id/dispatch
func (h *Handler) Dispatch(c *gin.Context) {
	result, err := h.svc.Dispatch(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// BulkDispatch hands several orders to the courier, inline or queued.
// POST /api/v1/admin/orders/dispatch
func (h *Handler) BulkDispatch(c *gin.Context) {
	var query transport.BulkDispatchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	var req transport.BulkDispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if query.Async {
		queued, err := h.svc.QueueBulkDispatch(c.Request.Context(), req.IDs)
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.JSON(c, http.StatusAccepted, queued)
		return
	}
	httpkit.OK(c, h.svc.BulkDispatch(c.Request.Context(), req.IDs))
}

// Sync refreshes one order from the courier.
// POST /api/v1/admin/orders/:id/sync
func (h *Handler) Sync(c *gin.Context) {
	result, err := h.svc.Sync(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// SyncAll refreshes every in-flight consignment.
// POST /api/v1/admin/courier/sync
func (h *Handler) SyncAll(c *gin.Context) {
	result, err := h.svc.SyncAll(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// TestConnection verifies the courier credentials.
// POST /api/v1/admin/settings/courier/test
func (h *Handler) TestConnection(c *gin.Context) {
	result, err := h.svc.TestConnection(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Webhook receives courier notifications.
// POST /api/v1/webhooks/steadfast
func (h *Handler) Webhook(c *gin.Context) {
	var payload transport.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	result, err := h.svc.HandleWebhook(c.Request.Context(), payload)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
