package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campus-qa/access-control-service/internal/services"
	"github.com/campus-qa/access-control-service/internal/utils"
	"github.com/campus-qa/access-control-service/internal/validator"
)

type AccessRequestHandler struct {
	BaseHandler
	requestService services.AccessRequestService
	exportService  services.ExportService
}

func NewAccessRequestHandler(
	requestService services.AccessRequestService,
	exportService services.ExportService,
	logger utils.Logger,
) *AccessRequestHandler {
	return &AccessRequestHandler{
		BaseHandler:    NewBaseHandler(logger),
		requestService: requestService,
		exportService:  exportService,
	}
}

// SubmitRequest opens a new elevation request
// @Summary Submit access request
// @Tags access-requests
// @Accept json
// @Produce json
// @Param request body validator.SubmitAccessRequest true "Request data"
// @Success 201 {object} models.AccessRequestRecord
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /access-requests [post]
func (h *AccessRequestHandler) SubmitRequest(c *gin.Context) {
	var req validator.SubmitAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting access request", "username", req.Username)

	record, err := h.requestService.Submit(c.Request.Context(), req.Username, req.Reason)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// ApproveRequest approves the requester's pending request
// @Summary Approve access request
// @Tags access-requests
// @Produce json
// @Param username path string true "Requester username"
// @Success 200 {object} models.AccessRequestRecord
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /access-requests/approve/{username} [post]
func (h *AccessRequestHandler) ApproveRequest(c *gin.Context) {
	username := c.Param("username")
	h.LogRequest(c, "Approving access request", "username", username)

	record, err := h.requestService.Approve(c.Request.Context(), username)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// DenyRequest denies the requester's pending request
// @Summary Deny access request
// @Tags access-requests
// @Produce json
// @Param username path string true "Requester username"
// @Success 200 {object} models.AccessRequestRecord
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /access-requests/deny/{username} [post]
func (h *AccessRequestHandler) DenyRequest(c *gin.Context) {
	username := c.Param("username")
	h.LogRequest(c, "Denying access request", "username", username)

	record, err := h.requestService.Deny(c.Request.Context(), username)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// CloseAccess records a capability removal as a closed audit entry
// @Summary Close access
// @Tags access-requests
// @Accept json
// @Produce json
// @Param entry body validator.CloseAccessRequest true "Closure data"
// @Success 201 {object} models.AccessRequestRecord
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /access-requests/close [post]
func (h *AccessRequestHandler) CloseAccess(c *gin.Context) {
	var req validator.CloseAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	date, err := validator.ParseAuditDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid date",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Closing access", "username", req.Username)

	record, err := h.requestService.Close(c.Request.Context(), req.Username, req.Reason, date)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// ReopenRequest creates a fresh pending request from a closed entry
// @Summary Reopen access request
// @Tags access-requests
// @Produce json
// @Param id path int true "Closed request ID"
// @Success 201 {object} models.AccessRequestRecord
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /access-requests/{id}/reopen [post]
func (h *AccessRequestHandler) ReopenRequest(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Reopening access request", "request_id", id)

	record, err := h.requestService.Reopen(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// UpdateDescription edits the free text of a non-terminal request
// @Summary Update request description
// @Tags access-requests
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param description body validator.UpdateDescriptionRequest true "New description"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /access-requests/{id}/description [put]
func (h *AccessRequestHandler) UpdateDescription(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req validator.UpdateDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating request description", "request_id", id)

	if err := h.requestService.UpdateDescription(c.Request.Context(), id, req.Description); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Description updated"})
}

// GetRequest retrieves one request by id
// @Summary Get access request
// @Tags access-requests
// @Produce json
// @Param id path int true "Request ID"
// @Success 200 {object} models.AccessRequestRecord
// @Failure 404 {object} ErrorResponse
// @Router /access-requests/{id} [get]
func (h *AccessRequestHandler) GetRequest(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	record, err := h.requestService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// ListPending lists pending requests
// @Summary List pending requests
// @Tags access-requests
// @Produce json
// @Success 200 {array} models.AccessRequestRecord
// @Router /access-requests/pending [get]
func (h *AccessRequestHandler) ListPending(c *gin.Context) {
	records, err := h.requestService.ListPending(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// ListClosed lists closed audit entries
// @Summary List closed requests
// @Tags access-requests
// @Produce json
// @Success 200 {array} models.AccessRequestRecord
// @Router /access-requests/closed [get]
func (h *AccessRequestHandler) ListClosed(c *gin.Context) {
	records, err := h.requestService.ListClosed(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// ExportClosed downloads the closed-entry audit trail as xlsx
// @Summary Export closed requests
// @Tags access-requests
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /access-requests/closed/export [get]
func (h *AccessRequestHandler) ExportClosed(c *gin.Context) {
	h.LogRequest(c, "Exporting closed requests")

	data, err := h.exportService.ExportClosedRequests(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="closed_requests.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *BaseHandler) parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid id parameter",
		})
		return 0, false
	}
	return uint(id), true
}
