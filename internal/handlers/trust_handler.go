package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campus-qa/access-control-service/internal/services"
	"github.com/campus-qa/access-control-service/internal/utils"
	"github.com/campus-qa/access-control-service/internal/validator"
)

type TrustHandler struct {
	BaseHandler
	trustService services.TrustWeightService
}

func NewTrustHandler(trustService services.TrustWeightService, logger utils.Logger) *TrustHandler {
	return &TrustHandler{
		BaseHandler:  NewBaseHandler(logger),
		trustService: trustService,
	}
}

// SetWeight upserts one trust edge; weight zero removes it
// @Summary Set trust weight
// @Tags trust
// @Accept json
// @Produce json
// @Param edge body validator.SetTrustWeightRequest true "Trust edge"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Router /trust [put]
func (h *TrustHandler) SetWeight(c *gin.Context) {
	var req validator.SetTrustWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Setting trust weight", "truster", req.TrusterUsername, "trustee", req.TrusteeUsername, "weight", req.Weight)

	if err := h.trustService.SetWeight(c.Request.Context(), req.TrusterUsername, req.TrusteeUsername, req.Weight); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Trust weight set"})
}

// GetWeight reads one trust edge; absence reads as zero
// @Summary Get trust weight
// @Tags trust
// @Produce json
// @Param truster path string true "Truster username"
// @Param trustee path string true "Trustee username"
// @Success 200 {object} map[string]interface{}
// @Router /trust/{truster}/{trustee} [get]
func (h *TrustHandler) GetWeight(c *gin.Context) {
	truster := c.Param("truster")
	trustee := c.Param("trustee")

	weight, err := h.trustService.GetWeight(c.Request.Context(), truster, trustee)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"truster_username": truster,
		"trustee_username": trustee,
		"weight":           weight,
	})
}

// ListTrusted lists a truster's positive-weight edges
// @Summary List trusted identities
// @Tags trust
// @Produce json
// @Param truster path string true "Truster username"
// @Success 200 {array} models.TrustWeightRecord
// @Router /trust/{truster} [get]
func (h *TrustHandler) ListTrusted(c *gin.Context) {
	truster := c.Param("truster")

	records, err := h.trustService.ListTrusted(c.Request.Context(), truster)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}
