package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-qa/access-control-service/internal/models"
	"github.com/campus-qa/access-control-service/internal/services"
	"github.com/campus-qa/access-control-service/internal/utils"
	"github.com/campus-qa/access-control-service/internal/validator"
)

type FlagHandler struct {
	BaseHandler
	flagService   services.ContentFlagService
	exportService services.ExportService
}

func NewFlagHandler(
	flagService services.ContentFlagService,
	exportService services.ExportService,
	logger utils.Logger,
) *FlagHandler {
	return &FlagHandler{
		BaseHandler:   NewBaseHandler(logger),
		flagService:   flagService,
		exportService: exportService,
	}
}

// FlagContent places a moderation flag on a content item
// @Summary Flag content
// @Tags flags
// @Accept json
// @Produce json
// @Param flag body validator.FlagContentRequest true "Flag data"
// @Success 201 {object} models.ContentFlagRecord
// @Failure 400 {object} ErrorResponse
// @Router /flags [post]
func (h *FlagHandler) FlagContent(c *gin.Context) {
	var req validator.FlagContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Flagging content", "target_type", req.TargetType, "target_id", req.TargetID)

	record, err := h.flagService.Flag(
		c.Request.Context(),
		models.FlagTargetType(req.TargetType),
		req.TargetID,
		req.FlaggedBy,
		req.Reason,
	)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// ResolveFlag moves a flag to its terminal resolved state
// @Summary Resolve flag
// @Tags flags
// @Produce json
// @Param id path int true "Flag ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /flags/{id}/resolve [post]
func (h *FlagHandler) ResolveFlag(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Resolving flag", "flag_id", id)

	if err := h.flagService.Resolve(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Flag resolved"})
}

// ListFlags lists every flag
// @Summary List flags
// @Tags flags
// @Produce json
// @Success 200 {array} models.ContentFlagRecord
// @Router /flags [get]
func (h *FlagHandler) ListFlags(c *gin.Context) {
	records, err := h.flagService.ListAll(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// ListUnresolved lists open flags
// @Summary List unresolved flags
// @Tags flags
// @Produce json
// @Success 200 {array} models.ContentFlagRecord
// @Router /flags/unresolved [get]
func (h *FlagHandler) ListUnresolved(c *gin.Context) {
	records, err := h.flagService.ListUnresolved(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// ExportFlags downloads the flag ledger as xlsx
// @Summary Export flags
// @Tags flags
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /flags/export [get]
func (h *FlagHandler) ExportFlags(c *gin.Context) {
	h.LogRequest(c, "Exporting flags")

	data, err := h.exportService.ExportFlags(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="content_flags.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
